// Package grpc implements the gRPC transport for lingua.
//
// The Lingua service is described by hand and carried with a JSON codec, so
// clients send the same request bodies as the HTTP API with the "json"
// content subtype. The standard grpc.health.v1 service is registered
// alongside it.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/nadzzz/lingua/internal/apierr"
	"github.com/nadzzz/lingua/internal/message"
	"github.com/nadzzz/lingua/internal/transport"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "lingua.v1.Lingua"

// Trailer keys carrying the tagged error on failed calls.
const (
	TrailerErrorKind  = "lingua-error-kind"
	TrailerHTTPStatus = "lingua-http-status"
)

// Transport implements transport.Transport over gRPC.
type Transport struct {
	port   int
	server *grpc.Server
	health *health.Server
}

// New creates a new gRPC transport on the given port.
func New(port int) *Transport {
	return &Transport{port: port}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "grpc" }

// Listen binds the configured port and serves svc until ctx is cancelled.
func (t *Transport) Listen(ctx context.Context, svc transport.Service) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	slog.Info("grpc transport listening", "port", t.port)
	return t.Serve(ctx, lis, svc)
}

// Serve serves svc on lis until ctx is cancelled.
func (t *Transport) Serve(ctx context.Context, lis net.Listener, svc transport.Service) error {
	t.server = grpc.NewServer(grpc.UnaryInterceptor(logUnary))
	t.server.RegisterService(&serviceDesc, svc)

	t.health = health.NewServer()
	healthpb.RegisterHealthServer(t.server, t.health)
	t.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		slog.Info("grpc transport shutting down")
		t.health.Shutdown()
		t.server.GracefulStop()
	}()

	if err := t.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Close gracefully stops the gRPC server.
func (t *Transport) Close() error {
	if t.health != nil {
		t.health.Shutdown()
	}
	if t.server != nil {
		t.server.GracefulStop()
	}
	return nil
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*transport.Service)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Translate", Handler: translateHandler},
		{MethodName: "Synthesize", Handler: synthesizeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lingua/v1/lingua.proto",
}

func translateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(message.TranslationRequest)
	if err := dec(in); err != nil {
		return nil, status.Error(codes.InvalidArgument, "Invalid request body")
	}
	call := func(ctx context.Context, req any) (any, error) {
		res, err := srv.(transport.Service).Translate(ctx, req.(*message.TranslationRequest))
		if err != nil {
			return nil, toStatus(ctx, err)
		}
		return res, nil
	}
	if interceptor == nil {
		return call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Translate"}
	return interceptor(ctx, in, info, call)
}

func synthesizeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(message.SpeechRequest)
	if err := dec(in); err != nil {
		return nil, status.Error(codes.InvalidArgument, "Invalid request body")
	}
	call := func(ctx context.Context, req any) (any, error) {
		res, err := srv.(transport.Service).Synthesize(ctx, req.(*message.SpeechRequest))
		if err != nil {
			return nil, toStatus(ctx, err)
		}
		return res, nil
	}
	if interceptor == nil {
		return call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Synthesize"}
	return interceptor(ctx, in, info, call)
}

// toStatus converts a tagged error into a gRPC status and records the kind
// and equivalent HTTP status in the trailer.
func toStatus(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		if _, tagged := apierr.As(err); !tagged {
			return status.FromContextError(err).Err()
		}
	}
	_ = grpc.SetTrailer(ctx, metadata.Pairs(
		TrailerErrorKind, string(apierr.KindOf(err)),
		TrailerHTTPStatus, strconv.Itoa(apierr.StatusOf(err)),
	))
	return status.Error(Code(err), apierr.MessageOf(err))
}

// Code maps a tagged error to a gRPC status code.
func Code(err error) codes.Code {
	e, ok := apierr.As(err)
	if !ok {
		return codes.Internal
	}
	switch e.Kind {
	case apierr.KindMissingInput, apierr.KindInvalidInput:
		return codes.InvalidArgument
	case apierr.KindUnavailable, apierr.KindTransport:
		return codes.Unavailable
	case apierr.KindUpstream:
		switch e.Status {
		case http.StatusTooManyRequests:
			return codes.ResourceExhausted
		case http.StatusUnauthorized:
			return codes.Unauthenticated
		case http.StatusForbidden:
			return codes.PermissionDenied
		case http.StatusServiceUnavailable:
			return codes.Unavailable
		}
		return codes.Internal
	default:
		return codes.Internal
	}
}

func logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)
	if code == codes.OK || code == codes.InvalidArgument {
		slog.Debug("grpc call", "method", info.FullMethod, "code", code.String(), "duration", time.Since(start))
	} else {
		slog.Warn("grpc call failed", "method", info.FullMethod, "code", code.String(), "duration", time.Since(start))
	}
	return resp, err
}
