package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Fully qualified method names of the auth service. Requests and responses
// are google.protobuf.Struct messages.
const (
	ServiceName  = "entrelibros.auth.v1.AuthService"
	LoginMethod  = "/" + ServiceName + "/Login"
	WhoAmIMethod = "/" + ServiceName + "/WhoAmI"
	PingMethod   = "/" + ServiceName + "/Ping"
)

// AuthServer is implemented by GRPCServer.
//
// Login takes {email, password} and returns
// {token, expires_at, user:{id,email,role}, message}.
// WhoAmI needs the access_token metadata key and returns {user:{id,role}}.
type AuthServer interface {
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WhoAmI(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func unaryHandler(method string, call func(AuthServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AuthServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AuthServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// AuthServiceDesc describes the auth service for grpc.Server.RegisterService.
var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Login", Handler: unaryHandler(LoginMethod, AuthServer.Login)},
		{MethodName: "WhoAmI", Handler: unaryHandler(WhoAmIMethod, AuthServer.WhoAmI)},
		{MethodName: "Ping", Handler: unaryHandler(PingMethod, AuthServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "entrelibros/auth/v1/auth.proto",
}

// RegisterAuthServer registers s on r.
func RegisterAuthServer(r grpc.ServiceRegistrar, s AuthServer) {
	r.RegisterService(&AuthServiceDesc, s)
}
