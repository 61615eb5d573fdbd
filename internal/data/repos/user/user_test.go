package user

import (
	"context"
	"errors"
	"testing"

	"gorm.io/datatypes"

	"github.com/yungbote/lifepilot-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lifepilot-backend/internal/domain"
	"github.com/yungbote/lifepilot-backend/internal/pkg/dbctx"
	apperrors "github.com/yungbote/lifepilot-backend/internal/pkg/errors"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewUserRepo(db, testutil.Logger(t))

	users, err := repo.Create(dbc, []*types.User{{Email: "user@example.com", Password: "hash", Name: "U"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	u := users[0]

	if ok, err := repo.EmailExists(dbc, "user@example.com"); err != nil || !ok {
		t.Fatalf("EmailExists ok=%v err=%v", ok, err)
	}
	if _, err := repo.GetByEmail(dbc, "nobody@example.com"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("GetByEmail missing err=%v", err)
	}
	if err := repo.UpdateName(dbc, u.ID, "Updated"); err != nil {
		t.Fatalf("UpdateName: %v", err)
	}
	if err := repo.UpdateAISettings(dbc, u.ID, datatypes.JSON(`{"aiProvider":"openai"}`)); err != nil {
		t.Fatalf("UpdateAISettings: %v", err)
	}
	if err := repo.MarkOnboarded(dbc, u.ID); err != nil {
		t.Fatalf("MarkOnboarded: %v", err)
	}
	got, err := repo.GetByID(dbc, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Updated" || !got.Onboarded || len(got.AISettings) == 0 {
		t.Fatalf("unexpected user: %+v", got)
	}
	if rows, err := repo.GetByIDs(dbc, nil); err != nil || len(rows) != 0 {
		t.Fatalf("GetByIDs(nil) len=%d err=%v", len(rows), err)
	}
}
