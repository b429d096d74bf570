package grpc

import (
	"context"

	"github.com/blinkdrive/blinkauth/internal/authrpc"
	"github.com/blinkdrive/blinkauth/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error) {

	username, password, err := authrpc.Credentials(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	ok, err := s.auth.Register(ctx, username, password)
	if err != nil {
		s.logger.Error(ctx, err.Error())
		return nil, status.Error(codes.Internal, common.ErrorInternal.Error())
	}

	return wrapperspb.Bool(ok), nil

}

func (s *GRPCServer) Authenticate(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {

	username, password, err := authrpc.Credentials(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	token, ok, err := s.auth.Authenticate(ctx, username, password)
	if err != nil {
		s.logger.Error(ctx, err.Error())
		return nil, status.Error(codes.Internal, common.ErrorInternal.Error())
	}
	if !ok {
		return wrapperspb.String(""), nil
	}

	return wrapperspb.String(token), nil

}

func (s *GRPCServer) ValidateToken(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return wrapperspb.Bool(s.auth.ValidateToken(ctx, req.GetValue())), nil
}

func (s *GRPCServer) RevokeToken(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {

	ok, err := s.auth.RevokeToken(ctx, req.GetValue())
	if err != nil {
		s.logger.Error(ctx, err.Error())
		return nil, status.Error(codes.Internal, common.ErrorInternal.Error())
	}

	return wrapperspb.Bool(ok), nil

}
