package notify

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	plannerrepo "github.com/yungbote/lifepilot-backend/internal/data/repos/planner"
	types "github.com/yungbote/lifepilot-backend/internal/domain"
	"github.com/yungbote/lifepilot-backend/internal/domain/planner"
	"github.com/yungbote/lifepilot-backend/internal/observability"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
	"github.com/yungbote/lifepilot-backend/internal/realtime"
)

const (
	DefaultInterval = 5 * time.Minute
	DueWindow       = 24 * time.Hour
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
)

type Notification struct {
	UserID   uuid.UUID      `json:"-"`
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Message  string         `json:"message"`
	Priority Priority       `json:"priority"`
	EntityID uuid.UUID      `json:"entityId"`
	Data     map[string]any `json:"data,omitempty"`
}

// Source reports the notifications that are due at now.
type Source interface {
	Due(ctx context.Context, now time.Time) ([]Notification, error)
}

type Publisher interface {
	Publish(ctx context.Context, n Notification)
}

// Poller runs Source on a fixed interval and publishes the results, high
// priority first. A notification with an EntityID is published once for as
// long as the source keeps reporting it.
type Poller struct {
	Interval  time.Duration
	Source    Source
	Publisher Publisher
	Log       *logger.Logger
	Metrics   *observability.Metrics
	Now       func() time.Time

	mu   sync.Mutex
	sent map[string]struct{}
}

func notificationKey(n Notification) string {
	if n.EntityID == uuid.Nil {
		return ""
	}
	return n.Type + ":" + n.EntityID.String()
}

func (p *Poller) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := p.Tick(ctx); err != nil && p.Log != nil {
			p.Log.Warn("notification poll failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Tick polls once and returns how many notifications were published.
func (p *Poller) Tick(ctx context.Context) (int, error) {
	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}
	due, err := p.Source.Due(ctx, now)
	if err != nil {
		return 0, err
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].Priority == PriorityHigh && due[j].Priority != PriorityHigh
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	// Keys no longer reported are forgotten, so a rescheduled task notifies again.
	seen := make(map[string]struct{}, len(due))
	published := 0
	for _, n := range due {
		key := notificationKey(n)
		if key != "" {
			seen[key] = struct{}{}
			if _, dup := p.sent[key]; dup {
				continue
			}
		}
		p.Publisher.Publish(ctx, n)
		p.Metrics.IncNotification(n.Type, string(n.Priority))
		published++
	}
	p.sent = seen
	return published, nil
}

// DueTaskSource reports incomplete, non-rejected tasks due within DueWindow.
type DueTaskSource struct {
	DB *gorm.DB
}

func (s *DueTaskSource) Due(ctx context.Context, now time.Time) ([]Notification, error) {
	var tasks []*types.Task
	err := s.DB.WithContext(ctx).
		Scopes(plannerrepo.NotRejected).
		Where("completed = ? AND due_date IS NOT NULL AND due_date >= ? AND due_date <= ?", false, now, now.Add(DueWindow)).
		Order("due_date ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("load due tasks: %w", err)
	}
	out := make([]Notification, 0, len(tasks))
	for _, t := range tasks {
		prio := PriorityNormal
		if t.Priority != nil && *t.Priority == planner.PriorityHigh {
			prio = PriorityHigh
		}
		out = append(out, Notification{
			UserID:   t.UserID,
			Type:     "task_due",
			Title:    "Task due soon",
			Message:  fmt.Sprintf("%q is due %s", t.Title, t.DueDate.Format(time.RFC1123)),
			Priority: prio,
			EntityID: t.ID,
			Data:     map[string]any{"task": t},
		})
	}
	return out, nil
}

// Emit is the subset of services.Emitter the publisher needs.
type Emit interface {
	Emit(ctx context.Context, msg realtime.Message)
}

// RealtimePublisher sends each notification to its owner's room.
type RealtimePublisher struct {
	Emitter Emit
}

func (p *RealtimePublisher) Publish(ctx context.Context, n Notification) {
	p.Emitter.Emit(ctx, realtime.Message{
		Room:  realtime.UserRoom(n.UserID),
		Event: realtime.EventNotification,
		Data:  n,
	})
}
