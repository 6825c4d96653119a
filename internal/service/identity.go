package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	schedulingv1 "github.com/Leganyst/class-scheduler/internal/api/scheduling/v1"
)

// actorFromContext читает ID действующего пользователя из метаданных.
// Аутентификация выполняется выше; здесь ID только разбирается.
func actorFromContext(ctx context.Context) (*uuid.UUID, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, nil
	}
	values := md.Get(schedulingv1.UserIDMetadataKey)
	if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(values[0]))
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%s must be a uuid", schedulingv1.UserIDMetadataKey)
	}
	return &id, nil
}

// WithActor добавляет ID пользователя в исходящие метаданные клиента.
func WithActor(ctx context.Context, actor string) context.Context {
	if actor == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, schedulingv1.UserIDMetadataKey, actor)
}
