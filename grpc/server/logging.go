package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnaryLoggingInterceptor logs one line per call. Client-side failures are logged
// at debug level, server-side ones as errors.
func UnaryLoggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		res, err := handler(ctx, req)
		logCall(ctx, log, info.FullMethod, start, err)
		return res, err
	}
}

func StreamLoggingInterceptor(log *slog.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		logCall(ss.Context(), log, info.FullMethod, start, err)
		return err
	}
}

func logCall(ctx context.Context, log *slog.Logger, method string, start time.Time, err error) {
	code := status.Code(err)
	attrs := []any{"method", method, "code", code.String(), "duration", time.Since(start)}
	switch code {
	case codes.OK:
		log.DebugContext(ctx, "grpc call", attrs...)
	case codes.Internal, codes.Unknown, codes.Unavailable, codes.DataLoss:
		log.ErrorContext(ctx, "grpc call failed", append(attrs, "error", err)...)
	default:
		log.DebugContext(ctx, "grpc call rejected", append(attrs, "error", err)...)
	}
}
