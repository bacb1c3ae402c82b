// Package grpc exposes the identity services over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// UserService is the identity surface the handlers need.
type UserService interface {
	SignUp(ctx context.Context, email, name string, cred services.Credential, meta models.SessionMeta) (*services.AuthResult, error)
	SignIn(ctx context.Context, cred services.Credential, meta models.SessionMeta) (*services.AuthResult, error)
	SignOut(ctx context.Context, token string) error
	GetSession(ctx context.Context, token string) (*models.User, *models.Session, error)
	ListSessions(ctx context.Context, userID string) ([]*models.Session, error)
	RevokeOtherSessions(ctx context.Context, userID, keepToken string) (int64, error)
	DeleteUser(ctx context.Context, userID string) error
	UpdateProfile(ctx context.Context, userID, name string) (*models.User, error)
	ListCredentials(ctx context.Context, userID string) ([]*models.Account, error)
	AddCredential(ctx context.Context, userID string, cred services.Credential) error
	BeginPasskeyRegistration(ctx context.Context, userID string) (*services.Ceremony, error)
	BeginPasskeyLogin(ctx context.Context, email string) (*services.Ceremony, error)
}

type EmailVerifier interface {
	Request(ctx context.Context, userID string) (string, error)
	Verify(ctx context.Context, token string) (*models.User, error)
}

type AvatarStore interface {
	CreateUpload(ctx context.Context, userID string) (key, url string, err error)
	SetAvatar(ctx context.Context, userID, key string) error
	GetURL(ctx context.Context, userID string) (string, error)
}

type GRPCServer struct {
	api.UnimplementedAuthServiceServer
	address string
	users   UserService
	emails  EmailVerifier
	avatars AvatarStore
	metrics *metrics.Metrics
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, us UserService, ev EmailVerifier, as AvatarStore, m *metrics.Metrics) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		users:   us,
		emails:  ev,
		avatars: as,
		metrics: m,
	}
}

// newServer builds the grpc.Server with interceptors, tracing and the
// health service registered.
func (s *GRPCServer) newServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(s.metricsInterceptor, s.sessionInterceptor),
	)

	api.RegisterAuthServiceServer(srv, s)

	hs := health.NewServer()
	hs.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return srv, hs
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv, hs := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
