// Package common contains shared constants and sentinel errors used across
// blinkauth components.
package common

// ServiceName is the fully-qualified gRPC service name of the authority.
const ServiceName = "blinkauth.v1.AuthService"

// RequestIDHeaderName is the gRPC metadata key that carries a per-call
// request id. The server generates one when the caller does not.
const RequestIDHeaderName = "x-request-id"
