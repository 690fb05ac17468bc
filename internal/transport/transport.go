// Package transport defines the interface for pluggable inbound transports.
//
// Each transport (HTTP, gRPC) implements this interface and serves the
// Service it is given. Transports don't care how translation happens; they
// only decode requests, call the Service and encode results or tagged errors.
package transport

import (
	"context"

	"github.com/nadzzz/lingua/internal/message"
)

// Service is the request pipeline exposed by every transport.
// *dispatch.Dispatcher implements it.
type Service interface {
	Translate(ctx context.Context, req *message.TranslationRequest) (*message.TranslationResult, error)
	Synthesize(ctx context.Context, req *message.SpeechRequest) (*message.SpeechResult, error)
}

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "grpc", "http").
	Name() string

	// Listen starts accepting requests and hands them to svc.
	// It blocks until the context is cancelled.
	Listen(ctx context.Context, svc Service) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
