package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const avatarURLExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// AvatarService hands out presigned S3 URLs for profile images. The
// object key is what users.image stores.
type AvatarService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	config *config.Config
}

func NewAvatarService(db *sql.DB, repos repomanager.RepositoryManager, cfg *config.Config) *AvatarService {
	return &AvatarService{db: db, repos: repos, config: cfg}
}

func avatarKeyPrefix(userID string) string {
	return "avatars/" + userID + "/"
}

func newAvatarKey(userID string) string {
	return avatarKeyPrefix(userID) + uuid.NewString()
}

func (s *AvatarService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// CreateUpload returns a fresh object key under the user's prefix and a
// presigned PUT URL for it.
func (s *AvatarService) CreateUpload(ctx context.Context, userID string) (key, url string, err error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", "", fmt.Errorf("s3 client: %w", err)
	}

	bucket := s.config.S3Bucket
	key = newAvatarKey(userID)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(avatarURLExpiry))
	if err != nil {
		return "", "", fmt.Errorf("presign put: %w", err)
	}

	return key, req.URL, nil
}

// SetAvatar points users.image at key once the upload finished. Keys
// outside the user's own prefix are rejected.
func (s *AvatarService) SetAvatar(ctx context.Context, userID, key string) error {
	if !strings.HasPrefix(key, avatarKeyPrefix(userID)) || len(key) == len(avatarKeyPrefix(userID)) {
		return fmt.Errorf("%w: foreign avatar key", common.ErrValidation)
	}
	if err := s.repos.Users(s.db).SetImage(ctx, userID, key); err != nil {
		return fmt.Errorf("set image: %w", err)
	}
	return nil
}

// GetURL presigns a GET for the user's current avatar.
func (s *AvatarService) GetURL(ctx context.Context, userID string) (string, error) {
	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if user.Image == "" {
		return "", common.ErrorNotFound
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", fmt.Errorf("s3 client: %w", err)
	}

	bucket := s.config.S3Bucket
	key := user.Image

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(avatarURLExpiry))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}
