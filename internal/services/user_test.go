package services

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/yungbote/lifepilot-backend/internal/domain/user"
	apperrors "github.com/yungbote/lifepilot-backend/internal/pkg/errors"
	"github.com/yungbote/lifepilot-backend/internal/platform/ctxutil"
)

func TestUserServiceRequiresUser(t *testing.T) {
	e := newTestEnv(t)
	us := NewUserService(e.db, e.log, e.users)
	if _, err := us.GetMe(e.ctx); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("err=%v want ErrUnauthorized", err)
	}
}

func TestUpdateName(t *testing.T) {
	e := newTestEnv(t)
	us := NewUserService(e.db, e.log, e.users)
	ctx := ctxutil.WithRequestData(e.ctx, &ctxutil.RequestData{UserID: e.user.ID})

	if _, err := us.UpdateName(ctx, "   "); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("blank name err=%v", err)
	}
	u, err := us.UpdateName(ctx, "  Grace  ")
	if err != nil {
		t.Fatalf("UpdateName: %v", err)
	}
	if u.Name != "Grace" {
		t.Fatalf("name=%q", u.Name)
	}
}

func TestAISettingsMerge(t *testing.T) {
	e := newTestEnv(t)
	us := NewUserService(e.db, e.log, e.users)
	ctx := ctxutil.WithRequestData(e.ctx, &ctxutil.RequestData{UserID: e.user.ID})

	got, err := us.GetAISettings(ctx)
	if err != nil {
		t.Fatalf("GetAISettings: %v", err)
	}
	def := user.DefaultAISettings()
	if got.AIProvider != def.AIProvider || got.ConfidenceThreshold != def.ConfidenceThreshold {
		t.Fatalf("defaults not applied: %+v", got)
	}

	updated, err := us.UpdateAISettings(ctx, json.RawMessage(`{"aiProvider":"gemini","permissions":{"tasks":"always"}}`))
	if err != nil {
		t.Fatalf("UpdateAISettings: %v", err)
	}
	if updated.AIProvider != "gemini" || updated.Permissions["tasks"] != "always" || updated.Permissions["goals"] != "ask" {
		t.Fatalf("merge result %+v", updated)
	}

	reloaded, err := us.GetAISettings(ctx)
	if err != nil {
		t.Fatalf("GetAISettings: %v", err)
	}
	if reloaded.AIProvider != "gemini" || reloaded.PersonalityMode != def.PersonalityMode {
		t.Fatalf("reloaded %+v", reloaded)
	}

	bad := []string{
		`{"aiProvider":"skynet"}`,
		`{"permissions":{"tasks":"sometimes"}}`,
		`{"confidenceThreshold":101}`,
		`{"suggestionFrequency":-1}`,
		`not json`,
	}
	for _, body := range bad {
		if _, err := us.UpdateAISettings(ctx, json.RawMessage(body)); !errors.Is(err, apperrors.ErrInvalidArgument) {
			t.Fatalf("%s: err=%v want ErrInvalidArgument", body, err)
		}
	}
	if after, _ := us.GetAISettings(ctx); after.AIProvider != "gemini" {
		t.Fatalf("rejected patch leaked into storage: %+v", after)
	}
}
