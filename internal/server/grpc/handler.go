package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// caller returns the identity set by sessionInterceptor.
func caller(ctx context.Context) (*identity, error) {
	id, ok := identityFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "session invalid")
	}
	return id, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *api.Empty) (*api.PingResponse, error) {

	return &api.PingResponse{Status: "OK"}, nil

}

func (s *GRPCServer) SignUp(ctx context.Context, req *api.SignUpRequest) (*api.AuthResponse, error) {

	result, err := s.users.SignUp(ctx, req.Email, req.Name, services.PasswordCredential{Password: req.Password}, sessionMeta(ctx))
	s.metrics.AuthAttempt(api.MethodSignUp, common.ProviderPassword, err)

	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "user_id", result.User.ID)
	return authToAPI(result), nil

}

func (s *GRPCServer) SignIn(ctx context.Context, req *api.SignInRequest) (*api.AuthResponse, error) {

	result, err := s.users.SignIn(ctx, services.PasswordCredential{Email: req.Email, Password: req.Password}, sessionMeta(ctx))
	s.metrics.AuthAttempt(api.MethodSignIn, common.ProviderPassword, err)

	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Signed in", "user_id", result.User.ID, "provider", common.ProviderPassword)
	return authToAPI(result), nil

}

// SignOut revokes the caller's token if there is one. It never fails on an
// unknown or missing token.
func (s *GRPCServer) SignOut(ctx context.Context, req *api.Empty) (*api.Empty, error) {

	if err := s.users.SignOut(ctx, tokenFromContext(ctx)); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.Empty{}, nil

}

func (s *GRPCServer) GetSession(ctx context.Context, req *api.Empty) (*api.AuthResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	return &api.AuthResponse{User: userToAPI(id.user), Session: sessionToAPI(id.session, true)}, nil
}

// ListSessions never returns bearer tokens; the caller's own session is
// flagged as current instead.
func (s *GRPCServer) ListSessions(ctx context.Context, req *api.Empty) (*api.ListSessionsResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.users.ListSessions(ctx, id.user.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	resp := &api.ListSessionsResponse{Sessions: make([]*api.Session, 0, len(list))}
	for _, session := range list {
		item := sessionToAPI(session, false)
		item.Current = session.Token == id.session.Token
		resp.Sessions = append(resp.Sessions, item)
	}
	return resp, nil
}

func (s *GRPCServer) RevokeOtherSessions(ctx context.Context, req *api.Empty) (*api.RevokeOtherSessionsResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	n, err := s.users.RevokeOtherSessions(ctx, id.user.ID, id.session.Token)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.RevokeOtherSessionsResponse{Revoked: n}, nil
}

func (s *GRPCServer) DeleteUser(ctx context.Context, req *api.Empty) (*api.Empty, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.users.DeleteUser(ctx, id.user.ID); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "User deleted", "user_id", id.user.ID)
	return &api.Empty{}, nil
}

func (s *GRPCServer) UpdateProfile(ctx context.Context, req *api.UpdateProfileRequest) (*api.UserResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.users.UpdateProfile(ctx, id.user.ID, req.Name)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.UserResponse{User: userToAPI(user)}, nil
}

func (s *GRPCServer) ListCredentials(ctx context.Context, req *api.Empty) (*api.ListCredentialsResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.users.ListCredentials(ctx, id.user.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	resp := &api.ListCredentialsResponse{Credentials: make([]*api.Credential, 0, len(list))}
	for _, a := range list {
		resp.Credentials = append(resp.Credentials, credentialToAPI(a))
	}
	return resp, nil
}

func (s *GRPCServer) BeginPasskeyRegistration(ctx context.Context, req *api.Empty) (*api.CeremonyResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	ceremony, err := s.users.BeginPasskeyRegistration(ctx, id.user.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return ceremonyToAPI(ceremony), nil
}

func (s *GRPCServer) FinishPasskeyRegistration(ctx context.Context, req *api.FinishPasskeyRegistrationRequest) (*api.Empty, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	cred := services.PasskeyCredential{Handle: req.Handle, Response: req.Response, Name: req.Name}
	if err := s.users.AddCredential(ctx, id.user.ID, cred); err != nil {
		s.logger.Warn(ctx, "Passkey registration failed", "user_id", id.user.ID, "error", err)
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Passkey registered", "user_id", id.user.ID)
	return &api.Empty{}, nil
}

func (s *GRPCServer) BeginPasskeyLogin(ctx context.Context, req *api.BeginPasskeyLoginRequest) (*api.CeremonyResponse, error) {

	ceremony, err := s.users.BeginPasskeyLogin(ctx, req.Email)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return ceremonyToAPI(ceremony), nil

}

func (s *GRPCServer) FinishPasskeyLogin(ctx context.Context, req *api.FinishPasskeyLoginRequest) (*api.AuthResponse, error) {

	result, err := s.users.SignIn(ctx, services.PasskeyCredential{Handle: req.Handle, Response: req.Response}, sessionMeta(ctx))
	s.metrics.AuthAttempt(api.MethodFinishPasskeyLogin, common.ProviderPasskey, err)

	if err != nil {
		if errors.Is(err, services.ErrPasskeyCloned) {
			s.logger.Warn(ctx, "Passkey clone warning, assertion rejected", "error", err)
		}
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Signed in", "user_id", result.User.ID, "provider", common.ProviderPasskey)
	return authToAPI(result), nil

}

// RequestEmailVerification issues a token. Mail delivery is out of scope;
// the token is handed off through the log.
func (s *GRPCServer) RequestEmailVerification(ctx context.Context, req *api.Empty) (*api.Empty, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	token, err := s.emails.Request(ctx, id.user.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Email verification requested", "user_id", id.user.ID, "email", id.user.Email, "verification_token", token)
	return &api.Empty{}, nil
}

func (s *GRPCServer) VerifyEmail(ctx context.Context, req *api.VerifyEmailRequest) (*api.UserResponse, error) {

	user, err := s.emails.Verify(ctx, req.Token)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.UserResponse{User: userToAPI(user)}, nil

}

func (s *GRPCServer) CreateAvatarUpload(ctx context.Context, req *api.Empty) (*api.CreateAvatarUploadResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	key, url, err := s.avatars.CreateUpload(ctx, id.user.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.CreateAvatarUploadResponse{Key: key, URL: url}, nil
}

func (s *GRPCServer) SetAvatar(ctx context.Context, req *api.SetAvatarRequest) (*api.UserResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.avatars.SetAvatar(ctx, id.user.ID, req.Key); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	user := *id.user
	user.Image = req.Key
	return &api.UserResponse{User: userToAPI(&user)}, nil
}

func (s *GRPCServer) GetAvatarURL(ctx context.Context, req *api.Empty) (*api.GetAvatarURLResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	url, err := s.avatars.GetURL(ctx, id.user.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.GetAvatarURLResponse{URL: url}, nil
}
