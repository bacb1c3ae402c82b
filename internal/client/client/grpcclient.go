package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const DefaultUserAgent = "gophauth-cli"

type GRPCClient struct {
	endpointURL string
	userAgent   string
	conn        *grpc.ClientConn
	client      api.AuthServiceClient

	mu    sync.RWMutex
	token string
}

func NewGRPCClient(endpointURL, userAgent string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, userAgent: userAgent}
	if err := c.initGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) initGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.sessionTokenInterceptor),
	)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewAuthServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *GRPCClient) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// withSessionMetadata replaces the session token and user agent on the
// outgoing metadata. An empty token is omitted.
func withSessionMetadata(ctx context.Context, token, userAgent string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.SessionTokenHeaderName)
	if token != "" {
		md.Set(common.SessionTokenHeaderName, token)
	}
	if userAgent != "" {
		md.Set(common.UserAgentHeaderName, userAgent)
	}
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) sessionTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	ctx = withSessionMetadata(ctx, s.Token(), s.userAgent)
	return invoker(ctx, method, req, reply, cc, opts...)
}

// mapError turns a gRPC status into the matching common sentinel.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.AlreadyExists:
		return common.ErrDuplicateEmail
	case codes.Unauthenticated:
		if st.Message() == common.ErrSessionInvalid.Error() {
			return common.ErrSessionInvalid
		}
		return common.ErrInvalidCredentials
	case codes.PermissionDenied:
		return common.ErrSessionInvalid
	case codes.FailedPrecondition:
		return common.ErrChallengeExpired
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrValidation, st.Message())
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.Unavailable, codes.DeadlineExceeded:
		return common.ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &api.Empty{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return common.ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) SignUp(ctx context.Context, email, name, password string) (*api.AuthResponse, error) {
	resp, err := s.client.SignUp(ctx, &api.SignUpRequest{Email: email, Name: name, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) SignIn(ctx context.Context, email, password string) (*api.AuthResponse, error) {
	resp, err := s.client.SignIn(ctx, &api.SignInRequest{Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) SignOut(ctx context.Context) error {
	_, err := s.client.SignOut(ctx, &api.Empty{})
	return s.mapError(err)
}

func (s *GRPCClient) GetSession(ctx context.Context) (*api.AuthResponse, error) {
	resp, err := s.client.GetSession(ctx, &api.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) ListSessions(ctx context.Context) ([]*api.Session, error) {
	resp, err := s.client.ListSessions(ctx, &api.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Sessions, nil
}

func (s *GRPCClient) RevokeOtherSessions(ctx context.Context) (int64, error) {
	resp, err := s.client.RevokeOtherSessions(ctx, &api.Empty{})
	if err != nil {
		return 0, s.mapError(err)
	}
	return resp.Revoked, nil
}

func (s *GRPCClient) DeleteUser(ctx context.Context) error {
	_, err := s.client.DeleteUser(ctx, &api.Empty{})
	return s.mapError(err)
}

func (s *GRPCClient) UpdateProfile(ctx context.Context, name string) (*api.User, error) {
	resp, err := s.client.UpdateProfile(ctx, &api.UpdateProfileRequest{Name: name})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.User, nil
}

func (s *GRPCClient) ListCredentials(ctx context.Context) ([]*api.Credential, error) {
	resp, err := s.client.ListCredentials(ctx, &api.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Credentials, nil
}

func (s *GRPCClient) BeginPasskeyRegistration(ctx context.Context) (*api.CeremonyResponse, error) {
	resp, err := s.client.BeginPasskeyRegistration(ctx, &api.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) FinishPasskeyRegistration(ctx context.Context, handle string, response json.RawMessage, name string) error {
	_, err := s.client.FinishPasskeyRegistration(ctx, &api.FinishPasskeyRegistrationRequest{
		Handle:   handle,
		Response: response,
		Name:     name,
	})
	return s.mapError(err)
}

func (s *GRPCClient) BeginPasskeyLogin(ctx context.Context, email string) (*api.CeremonyResponse, error) {
	resp, err := s.client.BeginPasskeyLogin(ctx, &api.BeginPasskeyLoginRequest{Email: email})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) FinishPasskeyLogin(ctx context.Context, handle string, response json.RawMessage) (*api.AuthResponse, error) {
	resp, err := s.client.FinishPasskeyLogin(ctx, &api.FinishPasskeyLoginRequest{Handle: handle, Response: response})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) RequestEmailVerification(ctx context.Context) error {
	_, err := s.client.RequestEmailVerification(ctx, &api.Empty{})
	return s.mapError(err)
}

func (s *GRPCClient) VerifyEmail(ctx context.Context, token string) (*api.User, error) {
	resp, err := s.client.VerifyEmail(ctx, &api.VerifyEmailRequest{Token: token})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.User, nil
}

func (s *GRPCClient) CreateAvatarUpload(ctx context.Context) (string, string, error) {
	resp, err := s.client.CreateAvatarUpload(ctx, &api.Empty{})
	if err != nil {
		return "", "", s.mapError(err)
	}
	return resp.Key, resp.URL, nil
}

func (s *GRPCClient) SetAvatar(ctx context.Context, key string) (*api.User, error) {
	resp, err := s.client.SetAvatar(ctx, &api.SetAvatarRequest{Key: key})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.User, nil
}

func (s *GRPCClient) GetAvatarURL(ctx context.Context) (string, error) {
	resp, err := s.client.GetAvatarURL(ctx, &api.Empty{})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.URL, nil
}
