package api

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnimplementedAuthServiceServer answers every method with codes.Unimplemented.
// Embed it to implement only part of AuthServiceServer.
type UnimplementedAuthServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedAuthServiceServer) Ping(context.Context, *Empty) (*PingResponse, error) {
	return nil, unimplemented(MethodPing)
}
func (UnimplementedAuthServiceServer) SignUp(context.Context, *SignUpRequest) (*AuthResponse, error) {
	return nil, unimplemented(MethodSignUp)
}
func (UnimplementedAuthServiceServer) SignIn(context.Context, *SignInRequest) (*AuthResponse, error) {
	return nil, unimplemented(MethodSignIn)
}
func (UnimplementedAuthServiceServer) SignOut(context.Context, *Empty) (*Empty, error) {
	return nil, unimplemented(MethodSignOut)
}
func (UnimplementedAuthServiceServer) GetSession(context.Context, *Empty) (*AuthResponse, error) {
	return nil, unimplemented(MethodGetSession)
}
func (UnimplementedAuthServiceServer) ListSessions(context.Context, *Empty) (*ListSessionsResponse, error) {
	return nil, unimplemented(MethodListSessions)
}
func (UnimplementedAuthServiceServer) RevokeOtherSessions(context.Context, *Empty) (*RevokeOtherSessionsResponse, error) {
	return nil, unimplemented(MethodRevokeOtherSessions)
}
func (UnimplementedAuthServiceServer) DeleteUser(context.Context, *Empty) (*Empty, error) {
	return nil, unimplemented(MethodDeleteUser)
}
func (UnimplementedAuthServiceServer) UpdateProfile(context.Context, *UpdateProfileRequest) (*UserResponse, error) {
	return nil, unimplemented(MethodUpdateProfile)
}
func (UnimplementedAuthServiceServer) ListCredentials(context.Context, *Empty) (*ListCredentialsResponse, error) {
	return nil, unimplemented(MethodListCredentials)
}
func (UnimplementedAuthServiceServer) BeginPasskeyRegistration(context.Context, *Empty) (*CeremonyResponse, error) {
	return nil, unimplemented(MethodBeginPasskeyRegistration)
}
func (UnimplementedAuthServiceServer) FinishPasskeyRegistration(context.Context, *FinishPasskeyRegistrationRequest) (*Empty, error) {
	return nil, unimplemented(MethodFinishPasskeyRegistration)
}
func (UnimplementedAuthServiceServer) BeginPasskeyLogin(context.Context, *BeginPasskeyLoginRequest) (*CeremonyResponse, error) {
	return nil, unimplemented(MethodBeginPasskeyLogin)
}
func (UnimplementedAuthServiceServer) FinishPasskeyLogin(context.Context, *FinishPasskeyLoginRequest) (*AuthResponse, error) {
	return nil, unimplemented(MethodFinishPasskeyLogin)
}
func (UnimplementedAuthServiceServer) RequestEmailVerification(context.Context, *Empty) (*Empty, error) {
	return nil, unimplemented(MethodRequestEmailVerification)
}
func (UnimplementedAuthServiceServer) VerifyEmail(context.Context, *VerifyEmailRequest) (*UserResponse, error) {
	return nil, unimplemented(MethodVerifyEmail)
}
func (UnimplementedAuthServiceServer) CreateAvatarUpload(context.Context, *Empty) (*CreateAvatarUploadResponse, error) {
	return nil, unimplemented(MethodCreateAvatarUpload)
}
func (UnimplementedAuthServiceServer) SetAvatar(context.Context, *SetAvatarRequest) (*UserResponse, error) {
	return nil, unimplemented(MethodSetAvatar)
}
func (UnimplementedAuthServiceServer) GetAvatarURL(context.Context, *Empty) (*GetAvatarURLResponse, error) {
	return nil, unimplemented(MethodGetAvatarURL)
}
