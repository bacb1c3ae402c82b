package api

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "gophauth.v1.AuthService"

// Method names.
const (
	MethodPing                      = "Ping"
	MethodSignUp                    = "SignUp"
	MethodSignIn                    = "SignIn"
	MethodSignOut                   = "SignOut"
	MethodGetSession                = "GetSession"
	MethodListSessions              = "ListSessions"
	MethodRevokeOtherSessions       = "RevokeOtherSessions"
	MethodDeleteUser                = "DeleteUser"
	MethodUpdateProfile             = "UpdateProfile"
	MethodListCredentials           = "ListCredentials"
	MethodBeginPasskeyRegistration  = "BeginPasskeyRegistration"
	MethodFinishPasskeyRegistration = "FinishPasskeyRegistration"
	MethodBeginPasskeyLogin         = "BeginPasskeyLogin"
	MethodFinishPasskeyLogin        = "FinishPasskeyLogin"
	MethodRequestEmailVerification  = "RequestEmailVerification"
	MethodVerifyEmail               = "VerifyEmail"
	MethodCreateAvatarUpload        = "CreateAvatarUpload"
	MethodSetAvatar                 = "SetAvatar"
	MethodGetAvatarURL              = "GetAvatarURL"
)

// FullMethod returns the "/service/method" path of method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// AuthServiceServer is implemented by the gRPC server.
type AuthServiceServer interface {
	Ping(context.Context, *Empty) (*PingResponse, error)
	SignUp(context.Context, *SignUpRequest) (*AuthResponse, error)
	SignIn(context.Context, *SignInRequest) (*AuthResponse, error)
	SignOut(context.Context, *Empty) (*Empty, error)
	GetSession(context.Context, *Empty) (*AuthResponse, error)
	ListSessions(context.Context, *Empty) (*ListSessionsResponse, error)
	RevokeOtherSessions(context.Context, *Empty) (*RevokeOtherSessionsResponse, error)
	DeleteUser(context.Context, *Empty) (*Empty, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*UserResponse, error)
	ListCredentials(context.Context, *Empty) (*ListCredentialsResponse, error)
	BeginPasskeyRegistration(context.Context, *Empty) (*CeremonyResponse, error)
	FinishPasskeyRegistration(context.Context, *FinishPasskeyRegistrationRequest) (*Empty, error)
	BeginPasskeyLogin(context.Context, *BeginPasskeyLoginRequest) (*CeremonyResponse, error)
	FinishPasskeyLogin(context.Context, *FinishPasskeyLoginRequest) (*AuthResponse, error)
	RequestEmailVerification(context.Context, *Empty) (*Empty, error)
	VerifyEmail(context.Context, *VerifyEmailRequest) (*UserResponse, error)
	CreateAvatarUpload(context.Context, *Empty) (*CreateAvatarUploadResponse, error)
	SetAvatar(context.Context, *SetAvatarRequest) (*UserResponse, error)
	GetAvatarURL(context.Context, *Empty) (*GetAvatarURLResponse, error)
}

// unary builds the descriptor of one unary method, decoding into Req and
// routing through the server's interceptor chain.
func unary[Req any, Resp any](method string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(AuthServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}

// AuthServiceDesc describes AuthService for grpc.Server.RegisterService.
var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, AuthServiceServer.Ping),
		unary(MethodSignUp, AuthServiceServer.SignUp),
		unary(MethodSignIn, AuthServiceServer.SignIn),
		unary(MethodSignOut, AuthServiceServer.SignOut),
		unary(MethodGetSession, AuthServiceServer.GetSession),
		unary(MethodListSessions, AuthServiceServer.ListSessions),
		unary(MethodRevokeOtherSessions, AuthServiceServer.RevokeOtherSessions),
		unary(MethodDeleteUser, AuthServiceServer.DeleteUser),
		unary(MethodUpdateProfile, AuthServiceServer.UpdateProfile),
		unary(MethodListCredentials, AuthServiceServer.ListCredentials),
		unary(MethodBeginPasskeyRegistration, AuthServiceServer.BeginPasskeyRegistration),
		unary(MethodFinishPasskeyRegistration, AuthServiceServer.FinishPasskeyRegistration),
		unary(MethodBeginPasskeyLogin, AuthServiceServer.BeginPasskeyLogin),
		unary(MethodFinishPasskeyLogin, AuthServiceServer.FinishPasskeyLogin),
		unary(MethodRequestEmailVerification, AuthServiceServer.RequestEmailVerification),
		unary(MethodVerifyEmail, AuthServiceServer.VerifyEmail),
		unary(MethodCreateAvatarUpload, AuthServiceServer.CreateAvatarUpload),
		unary(MethodSetAvatar, AuthServiceServer.SetAvatar),
		unary(MethodGetAvatarURL, AuthServiceServer.GetAvatarURL),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophauth/v1/auth.json",
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthServiceDesc, srv)
}
