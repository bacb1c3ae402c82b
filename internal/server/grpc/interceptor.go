package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

type ctxKey string

const identityKey ctxKey = "identity"

// identity is the validated caller of a protected method.
type identity struct {
	user    *models.User
	session *models.Session
}

func identityFrom(ctx context.Context) (*identity, bool) {
	id, ok := ctx.Value(identityKey).(*identity)
	return id, ok
}

// protectedMethods require a valid session token.
var protectedMethods = map[string]bool{
	api.FullMethod(api.MethodGetSession):                true,
	api.FullMethod(api.MethodListSessions):              true,
	api.FullMethod(api.MethodRevokeOtherSessions):       true,
	api.FullMethod(api.MethodDeleteUser):                true,
	api.FullMethod(api.MethodUpdateProfile):             true,
	api.FullMethod(api.MethodListCredentials):           true,
	api.FullMethod(api.MethodBeginPasskeyRegistration):  true,
	api.FullMethod(api.MethodFinishPasskeyRegistration): true,
	api.FullMethod(api.MethodRequestEmailVerification):  true,
	api.FullMethod(api.MethodCreateAvatarUpload):        true,
	api.FullMethod(api.MethodSetAvatar):                 true,
	api.FullMethod(api.MethodGetAvatarURL):              true,
}

func firstValue(md metadata.MD, key string) string {
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

func tokenFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	return firstValue(md, common.SessionTokenHeaderName)
}

// sessionMeta extracts the peer address and the client-declared user agent.
func sessionMeta(ctx context.Context) models.SessionMeta {
	var meta models.SessionMeta

	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		addr := p.Addr.String()
		if host, _, err := net.SplitHostPort(addr); err == nil {
			addr = host
		}
		meta.IPAddress = addr
	}

	if md, ok := metadata.FromIncomingContext(ctx); ok {
		meta.UserAgent = firstValue(md, common.UserAgentHeaderName)
		if meta.UserAgent == "" {
			meta.UserAgent = firstValue(md, "user-agent")
		}
	}
	return meta
}

func (s *GRPCServer) sessionInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if protectedMethods[info.FullMethod] {

		user, session, err := s.users.GetSession(ctx, tokenFromContext(ctx))
		if err != nil {
			return nil, s.toStatus(ctx, err)
		}

		ctx = context.WithValue(ctx, identityKey, &identity{user: user, session: session})
	}

	return handler(ctx, req)
}

func (s *GRPCServer) metricsInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.metrics.ObserveRPC(info.FullMethod, status.Code(err).String(), time.Since(start))
	return resp, err
}
