package api

import (
	"context"

	"google.golang.org/grpc"
)

// AuthServiceClient is the client side of AuthService.
type AuthServiceClient interface {
	Ping(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*PingResponse, error)
	SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	SignOut(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error)
	GetSession(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*AuthResponse, error)
	ListSessions(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListSessionsResponse, error)
	RevokeOtherSessions(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*RevokeOtherSessionsResponse, error)
	DeleteUser(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error)
	UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*UserResponse, error)
	ListCredentials(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListCredentialsResponse, error)
	BeginPasskeyRegistration(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*CeremonyResponse, error)
	FinishPasskeyRegistration(ctx context.Context, in *FinishPasskeyRegistrationRequest, opts ...grpc.CallOption) (*Empty, error)
	BeginPasskeyLogin(ctx context.Context, in *BeginPasskeyLoginRequest, opts ...grpc.CallOption) (*CeremonyResponse, error)
	FinishPasskeyLogin(ctx context.Context, in *FinishPasskeyLoginRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	RequestEmailVerification(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error)
	VerifyEmail(ctx context.Context, in *VerifyEmailRequest, opts ...grpc.CallOption) (*UserResponse, error)
	CreateAvatarUpload(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*CreateAvatarUploadResponse, error)
	SetAvatar(ctx context.Context, in *SetAvatarRequest, opts ...grpc.CallOption) (*UserResponse, error)
	GetAvatarURL(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*GetAvatarURLResponse, error)
}

type authServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthServiceClient(cc grpc.ClientConnInterface) AuthServiceClient {
	return &authServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *authServiceClient) Ping(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *authServiceClient) SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MethodSignUp, in, opts)
}

func (c *authServiceClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MethodSignIn, in, opts)
}

func (c *authServiceClient) SignOut(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodSignOut, in, opts)
}

func (c *authServiceClient) GetSession(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MethodGetSession, in, opts)
}

func (c *authServiceClient) ListSessions(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListSessionsResponse, error) {
	return invoke[ListSessionsResponse](ctx, c.cc, MethodListSessions, in, opts)
}

func (c *authServiceClient) RevokeOtherSessions(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*RevokeOtherSessionsResponse, error) {
	return invoke[RevokeOtherSessionsResponse](ctx, c.cc, MethodRevokeOtherSessions, in, opts)
}

func (c *authServiceClient) DeleteUser(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteUser, in, opts)
}

func (c *authServiceClient) UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, MethodUpdateProfile, in, opts)
}

func (c *authServiceClient) ListCredentials(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListCredentialsResponse, error) {
	return invoke[ListCredentialsResponse](ctx, c.cc, MethodListCredentials, in, opts)
}

func (c *authServiceClient) BeginPasskeyRegistration(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*CeremonyResponse, error) {
	return invoke[CeremonyResponse](ctx, c.cc, MethodBeginPasskeyRegistration, in, opts)
}

func (c *authServiceClient) FinishPasskeyRegistration(ctx context.Context, in *FinishPasskeyRegistrationRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodFinishPasskeyRegistration, in, opts)
}

func (c *authServiceClient) BeginPasskeyLogin(ctx context.Context, in *BeginPasskeyLoginRequest, opts ...grpc.CallOption) (*CeremonyResponse, error) {
	return invoke[CeremonyResponse](ctx, c.cc, MethodBeginPasskeyLogin, in, opts)
}

func (c *authServiceClient) FinishPasskeyLogin(ctx context.Context, in *FinishPasskeyLoginRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MethodFinishPasskeyLogin, in, opts)
}

func (c *authServiceClient) RequestEmailVerification(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodRequestEmailVerification, in, opts)
}

func (c *authServiceClient) VerifyEmail(ctx context.Context, in *VerifyEmailRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, MethodVerifyEmail, in, opts)
}

func (c *authServiceClient) CreateAvatarUpload(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*CreateAvatarUploadResponse, error) {
	return invoke[CreateAvatarUploadResponse](ctx, c.cc, MethodCreateAvatarUpload, in, opts)
}

func (c *authServiceClient) SetAvatar(ctx context.Context, in *SetAvatarRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, MethodSetAvatar, in, opts)
}

func (c *authServiceClient) GetAvatarURL(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*GetAvatarURLResponse, error) {
	return invoke[GetAvatarURLResponse](ctx, c.cc, MethodGetAvatarURL, in, opts)
}
