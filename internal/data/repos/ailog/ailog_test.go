package ailog

import (
	"context"
	"testing"

	"github.com/yungbote/lifepilot-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lifepilot-backend/internal/domain"
	"github.com/yungbote/lifepilot-backend/internal/domain/ailog"
	"github.com/yungbote/lifepilot-backend/internal/pkg/dbctx"
)

func TestAILogRepoListNewestFirst(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewAILogRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, db, "logs@example.com")
	other := testutil.SeedUser(t, ctx, db, "other-logs@example.com")

	for _, a := range []ailog.Action{ailog.ActionCreate, ailog.ActionApprove, ailog.ActionChat} {
		if _, err := repo.Create(dbc, []*types.AILog{{UserID: u.ID, Action: a, EntityType: "task"}}); err != nil {
			t.Fatalf("Create %s: %v", a, err)
		}
	}
	if _, err := repo.Create(dbc, []*types.AILog{{UserID: other.ID, Action: ailog.ActionChat, EntityType: ailog.EntityConversation}}); err != nil {
		t.Fatalf("Create other: %v", err)
	}

	rows, err := repo.ListByUser(dbc, u.ID, 2, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len=%d want 2", len(rows))
	}
	if rows[0].CreatedAt.Before(rows[1].CreatedAt) {
		t.Fatalf("expected newest first")
	}
	all, err := repo.ListByUser(dbc, u.ID, 0, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("ListByUser all len=%d err=%v", len(all), err)
	}
}
