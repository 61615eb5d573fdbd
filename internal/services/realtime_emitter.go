package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
	"github.com/yungbote/lifepilot-backend/internal/realtime"
	"github.com/yungbote/lifepilot-backend/internal/realtime/bus"
)

// Emitter pushes server-originated events. The sender is never excluded.
type Emitter interface {
	Emit(ctx context.Context, msg realtime.Message)
}

type HubEmitter struct{ Hub *realtime.Hub }

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.Message) {
	e.Hub.Broadcast(msg)
}

// RedisEmitter publishes through the bus; every instance's forwarder re-broadcasts locally.
type RedisEmitter struct {
	Bus bus.Bus
	Log *logger.Logger
}

func (e *RedisEmitter) Emit(ctx context.Context, msg realtime.Message) {
	if err := e.Bus.Publish(ctx, msg); err != nil && e.Log != nil {
		e.Log.Warn("realtime publish failed", "event", string(msg.Event), "error", err)
	}
}

func emitEntity(ctx context.Context, emit Emitter, userID uuid.UUID, entity string, op realtime.Op, data any) {
	if emit == nil || userID == uuid.Nil {
		return
	}
	emit.Emit(ctx, realtime.Message{
		Room:  realtime.UserRoom(userID),
		Event: realtime.EntityEvent(entity, op),
		Data:  data,
	})
}
