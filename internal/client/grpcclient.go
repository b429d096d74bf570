// Package client is the caller side of the blinkauth gRPC service.
package client

import (
	"context"
	"errors"

	"github.com/blinkdrive/blinkauth/internal/authrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var ErrNotConnected = errors.New("client is not connected")

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
}

// NewGRPCClient prepares a connection to endpointURL. Extra options are
// appended after the default insecure transport credentials.
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	return nil
}

func (s *GRPCClient) Register(ctx context.Context, username, password string) (bool, error) {
	if s.conn == nil {
		return false, ErrNotConnected
	}
	resp := &wrapperspb.BoolValue{}
	if err := s.conn.Invoke(ctx, authrpc.MethodRegister, authrpc.NewCredentials(username, password), resp); err != nil {
		return false, err
	}
	return resp.GetValue(), nil
}

// Authenticate returns the issued token, or ok == false when the server
// refused the credentials.
func (s *GRPCClient) Authenticate(ctx context.Context, username, password string) (token string, ok bool, err error) {
	if s.conn == nil {
		return "", false, ErrNotConnected
	}
	resp := &wrapperspb.StringValue{}
	if err := s.conn.Invoke(ctx, authrpc.MethodAuthenticate, authrpc.NewCredentials(username, password), resp); err != nil {
		return "", false, err
	}
	if resp.GetValue() == "" {
		return "", false, nil
	}
	return resp.GetValue(), true, nil
}

func (s *GRPCClient) ValidateToken(ctx context.Context, token string) (bool, error) {
	if s.conn == nil {
		return false, ErrNotConnected
	}
	resp := &wrapperspb.BoolValue{}
	if err := s.conn.Invoke(ctx, authrpc.MethodValidateToken, wrapperspb.String(token), resp); err != nil {
		return false, err
	}
	return resp.GetValue(), nil
}

func (s *GRPCClient) RevokeToken(ctx context.Context, token string) (bool, error) {
	if s.conn == nil {
		return false, ErrNotConnected
	}
	resp := &wrapperspb.BoolValue{}
	if err := s.conn.Invoke(ctx, authrpc.MethodRevokeToken, wrapperspb.String(token), resp); err != nil {
		return false, err
	}
	return resp.GetValue(), nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
