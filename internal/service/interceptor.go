package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Leganyst/class-scheduler/internal/logging"
)

const requestIDMetadataKey = "x-request-id"

// LoggingInterceptor кладёт в контекст логгер запроса и пишет итог вызова.
func LoggingInterceptor(logger *logrus.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		requestID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(requestIDMetadataKey); len(v) > 0 {
				requestID = v[0]
			}
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}

		entry := logger.WithFields(logrus.Fields{
			"method":     info.FullMethod,
			"request_id": requestID,
		})
		ctx = logging.WithLogger(ctx, entry)

		started := time.Now()
		resp, err := handler(ctx, req)

		entry = entry.WithFields(logrus.Fields{
			"code":        status.Code(err).String(),
			"duration_ms": time.Since(started).Milliseconds(),
		})
		if err != nil {
			entry.WithError(err).Warn("grpc call failed")
		} else {
			entry.Debug("grpc call finished")
		}
		return resp, err
	}
}
