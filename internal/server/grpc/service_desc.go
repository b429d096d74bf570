package grpc

import (
	"context"

	"github.com/blinkdrive/blinkauth/internal/authrpc"
	"github.com/blinkdrive/blinkauth/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// authServiceServer is the server side of the contract in package authrpc.
type authServiceServer interface {
	Register(context.Context, *structpb.Struct) (*wrapperspb.BoolValue, error)
	Authenticate(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	ValidateToken(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	RevokeToken(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: common.ServiceName,
	HandlerType: (*authServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Register",
			Handler:    unaryHandler(authrpc.MethodRegister, authServiceServer.Register),
		},
		{
			MethodName: "Authenticate",
			Handler:    unaryHandler(authrpc.MethodAuthenticate, authServiceServer.Authenticate),
		},
		{
			MethodName: "ValidateToken",
			Handler:    unaryHandler(authrpc.MethodValidateToken, authServiceServer.ValidateToken),
		},
		{
			MethodName: "RevokeToken",
			Handler:    unaryHandler(authrpc.MethodRevokeToken, authServiceServer.RevokeToken),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "blinkauth/v1/auth.proto",
}

// unaryHandler adapts a typed method to grpc.MethodHandler the same way
// protoc-gen-go-grpc output does.
func unaryHandler[Req, Resp proto.Message](fullMethod string, call func(authServiceServer, context.Context, Req) (Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newMessage[Req]()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(authServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(authServiceServer), ctx, req.(Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func newMessage[M proto.Message]() M {
	var zero M
	return zero.ProtoReflect().New().Interface().(M)
}
