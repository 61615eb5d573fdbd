package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/lifepilot-backend/internal/domain/ailog"
)

func TestHistoryPaging(t *testing.T) {
	e := newTestEnv(t)
	for i := 0; i < 3; i++ {
		e.recorder.Record(e.ctx, AILogEntry{UserID: e.user.ID, Action: ailog.ActionChat, EntityType: ailog.EntityConversation})
	}
	e.recorder.Record(e.ctx, AILogEntry{UserID: uuid.New(), Action: ailog.ActionChat, EntityType: ailog.EntityConversation})
	hs := NewHistoryService(e.aiLogs)

	all, err := hs.List(e.ctx, e.user.ID, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len=%d want 3", len(all))
	}
	page, err := hs.List(e.ctx, e.user.ID, 2, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page) != 1 {
		t.Fatalf("page len=%d want 1", len(page))
	}

	none, err := hs.List(e.ctx, uuid.New(), 10, 0)
	if err != nil || none == nil || len(none) != 0 {
		t.Fatalf("empty history %#v err=%v", none, err)
	}
}
