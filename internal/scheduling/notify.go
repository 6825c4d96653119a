package scheduling

import (
	"context"

	"github.com/Leganyst/class-scheduler/internal/model"
)

// Change: зафиксированное изменение расписания.
type Change struct {
	Type      model.EventType `json:"type"`
	Actor     string          `json:"actor,omitempty"`
	Schedules []ScheduleView  `json:"schedules"`
}

// Notifier получает изменения после коммита.
type Notifier interface {
	Notify(ctx context.Context, change Change) error
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Change) error { return nil }
