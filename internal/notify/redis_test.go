package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/class-scheduler/internal/model"
	"github.com/Leganyst/class-scheduler/internal/scheduling"
)

type fakePublisher struct {
	channel string
	payload []byte
	err     error
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	return redis.NewIntResult(1, f.err)
}

func TestRedisNotifierPublishesJSON(t *testing.T) {
	pub := &fakePublisher{}
	n := NewRedisNotifier(pub, "schedules")

	change := scheduling.Change{
		Type:  model.EventTypeScheduleCreated,
		Actor: "a5b0b0d2-0000-4000-8000-000000000001",
		Schedules: []scheduling.ScheduleView{{
			ID: "s1", RoomID: "r1", Date: "2024-06-01", StartTime: "09:00:00", EndTime: "10:00:00", Status: "confirmed",
		}},
	}
	require.NoError(t, n.Notify(context.Background(), change))
	require.Equal(t, "schedules", pub.channel)

	var got scheduling.Change
	require.NoError(t, json.Unmarshal(pub.payload, &got))
	require.Equal(t, change, got)
}

func TestRedisNotifierReturnsPublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("connection refused")}
	n := NewRedisNotifier(pub, "schedules")

	err := n.Notify(context.Background(), scheduling.Change{Type: model.EventTypeScheduleCancelled})
	require.ErrorContains(t, err, "connection refused")
}
