// Package authrpc is the wire contract of the blinkauth gRPC service. The
// service is declared by hand on top of protobuf well-known types, so no
// generated code is needed on either side:
//
//	Register(Struct{username, password})      returns BoolValue
//	Authenticate(Struct{username, password})  returns StringValue, "" when refused
//	ValidateToken(StringValue)                returns BoolValue
//	RevokeToken(StringValue)                  returns BoolValue
package authrpc

import (
	"errors"

	"github.com/blinkdrive/blinkauth/internal/common"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	MethodRegister      = "/" + common.ServiceName + "/Register"
	MethodAuthenticate  = "/" + common.ServiceName + "/Authenticate"
	MethodValidateToken = "/" + common.ServiceName + "/ValidateToken"
	MethodRevokeToken   = "/" + common.ServiceName + "/RevokeToken"
)

const (
	fieldUsername = "username"
	fieldPassword = "password"
)

var ErrMalformedCredentials = errors.New("credentials must carry string fields username and password")

// NewCredentials packs a username/password pair.
func NewCredentials(username, password string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldUsername: structpb.NewStringValue(username),
		fieldPassword: structpb.NewStringValue(password),
	}}
}

// Credentials unpacks what NewCredentials packed.
func Credentials(s *structpb.Struct) (username, password string, err error) {
	if s == nil {
		return "", "", ErrMalformedCredentials
	}
	u, uok := s.GetFields()[fieldUsername].GetKind().(*structpb.Value_StringValue)
	p, pok := s.GetFields()[fieldPassword].GetKind().(*structpb.Value_StringValue)
	if !uok || !pok {
		return "", "", ErrMalformedCredentials
	}
	return u.StringValue, p.StringValue, nil
}
