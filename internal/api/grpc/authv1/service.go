package authv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "diary.auth.v1.Auth"

const (
	Auth_Register_FullMethodName       = "/" + ServiceName + "/Register"
	Auth_Login_FullMethodName          = "/" + ServiceName + "/Login"
	Auth_Refresh_FullMethodName        = "/" + ServiceName + "/Refresh"
	Auth_Logout_FullMethodName         = "/" + ServiceName + "/Logout"
	Auth_Revoke_FullMethodName         = "/" + ServiceName + "/Revoke"
	Auth_Profile_FullMethodName        = "/" + ServiceName + "/Profile"
	Auth_ChangePassword_FullMethodName = "/" + ServiceName + "/ChangePassword"
	Auth_UpdateProfile_FullMethodName  = "/" + ServiceName + "/UpdateProfile"
	Auth_DeleteAccount_FullMethodName  = "/" + ServiceName + "/DeleteAccount"
)

// AuthServer is the server API for the Auth service.
type AuthServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*TokenResponse, error)
	Refresh(context.Context, *RefreshRequest) (*TokenResponse, error)
	Logout(context.Context, *LogoutRequest) (*emptypb.Empty, error)
	Revoke(context.Context, *RevokeRequest) (*emptypb.Empty, error)
	Profile(context.Context, *emptypb.Empty) (*ProfileResponse, error)
	ChangePassword(context.Context, *ChangePasswordRequest) (*emptypb.Empty, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*ProfileResponse, error)
	DeleteAccount(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

// UnimplementedAuthServer can be embedded to have forward compatible
// implementations.
type UnimplementedAuthServer struct{}

func (UnimplementedAuthServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedAuthServer) Login(context.Context, *LoginRequest) (*TokenResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedAuthServer) Refresh(context.Context, *RefreshRequest) (*TokenResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Refresh not implemented")
}
func (UnimplementedAuthServer) Logout(context.Context, *LogoutRequest) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method Logout not implemented")
}
func (UnimplementedAuthServer) Revoke(context.Context, *RevokeRequest) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method Revoke not implemented")
}
func (UnimplementedAuthServer) Profile(context.Context, *emptypb.Empty) (*ProfileResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Profile not implemented")
}
func (UnimplementedAuthServer) ChangePassword(context.Context, *ChangePasswordRequest) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method ChangePassword not implemented")
}
func (UnimplementedAuthServer) UpdateProfile(context.Context, *UpdateProfileRequest) (*ProfileResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateProfile not implemented")
}
func (UnimplementedAuthServer) DeleteAccount(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteAccount not implemented")
}

// RegisterAuthServer registers srv on s.
func RegisterAuthServer(s grpc.ServiceRegistrar, srv AuthServer) {
	s.RegisterService(&Auth_ServiceDesc, srv)
}

// unary builds a gRPC method handler that decodes Req and dispatches to call
// through the server's interceptor chain.
func unary[Req, Resp any](fullMethod string, call func(AuthServer, context.Context, *Req) (Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AuthServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AuthServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Auth_ServiceDesc is the grpc.ServiceDesc for the Auth service. It is not
// backed by a registered proto file descriptor, so server reflection cannot
// describe it and the server does not enable reflection.
var Auth_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unary(Auth_Register_FullMethodName, AuthServer.Register)},
		{MethodName: "Login", Handler: unary(Auth_Login_FullMethodName, AuthServer.Login)},
		{MethodName: "Refresh", Handler: unary(Auth_Refresh_FullMethodName, AuthServer.Refresh)},
		{MethodName: "Logout", Handler: unary(Auth_Logout_FullMethodName, AuthServer.Logout)},
		{MethodName: "Revoke", Handler: unary(Auth_Revoke_FullMethodName, AuthServer.Revoke)},
		{MethodName: "Profile", Handler: unary(Auth_Profile_FullMethodName, AuthServer.Profile)},
		{MethodName: "ChangePassword", Handler: unary(Auth_ChangePassword_FullMethodName, AuthServer.ChangePassword)},
		{MethodName: "UpdateProfile", Handler: unary(Auth_UpdateProfile_FullMethodName, AuthServer.UpdateProfile)},
		{MethodName: "DeleteAccount", Handler: unary(Auth_DeleteAccount_FullMethodName, AuthServer.DeleteAccount)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "diary/auth/v1/auth.json",
}

// AuthClient is the client API for the Auth service. Every call uses the
// JSON codec.
type AuthClient struct {
	cc grpc.ClientConnInterface
}

// NewAuthClient creates a client on top of cc.
func NewAuthClient(cc grpc.ClientConnInterface) *AuthClient {
	return &AuthClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{CallOption()}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AuthClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, Auth_Register_FullMethodName, in, opts)
}

func (c *AuthClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, Auth_Login_FullMethodName, in, opts)
}

func (c *AuthClient) Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, Auth_Refresh_FullMethodName, in, opts)
}

func (c *AuthClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, Auth_Logout_FullMethodName, in, opts)
}

func (c *AuthClient) Revoke(ctx context.Context, in *RevokeRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, Auth_Revoke_FullMethodName, in, opts)
}

func (c *AuthClient) Profile(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c.cc, Auth_Profile_FullMethodName, in, opts)
}

func (c *AuthClient) ChangePassword(ctx context.Context, in *ChangePasswordRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, Auth_ChangePassword_FullMethodName, in, opts)
}

func (c *AuthClient) UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c.cc, Auth_UpdateProfile_FullMethodName, in, opts)
}

func (c *AuthClient) DeleteAccount(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, Auth_DeleteAccount_FullMethodName, in, opts)
}
