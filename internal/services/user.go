package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/lifepilot-backend/internal/data/repos"
	types "github.com/yungbote/lifepilot-backend/internal/domain"
	"github.com/yungbote/lifepilot-backend/internal/domain/user"
	"github.com/yungbote/lifepilot-backend/internal/pkg/dbctx"
	apperrors "github.com/yungbote/lifepilot-backend/internal/pkg/errors"
	"github.com/yungbote/lifepilot-backend/internal/platform/ctxutil"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
)

const maxNameLength = 100

type UserService interface {
	GetMe(ctx context.Context) (*types.User, error)
	UpdateName(ctx context.Context, name string) (*types.User, error)
	// GetAISettings returns the stored settings laid over the defaults.
	GetAISettings(ctx context.Context) (*types.AISettings, error)
	// UpdateAISettings merges a partial settings document into the stored one.
	UpdateAISettings(ctx context.Context, patch json.RawMessage) (*types.AISettings, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{
		db:       db,
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
	}
}

func requireUser(ctx context.Context) (uuid.UUID, error) {
	id := ctxutil.UserID(ctx)
	if id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("user id not set in request data: %w", apperrors.ErrUnauthorized)
	}
	return id, nil
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return us.userRepo.GetByID(dbctx.Context{Ctx: ctx}, userID)
}

func (us *userService) UpdateName(ctx context.Context, name string) (*types.User, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLength {
		return nil, invalid("name", "must be 1-%d characters", maxNameLength)
	}
	var out *types.User
	if err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := us.userRepo.UpdateName(dbc, userID, name); err != nil {
			return err
		}
		u, err := us.userRepo.GetByID(dbc, userID)
		if err != nil {
			return err
		}
		out = u
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func (us *userService) GetAISettings(ctx context.Context) (*types.AISettings, error) {
	u, err := us.GetMe(ctx)
	if err != nil {
		return nil, err
	}
	s, err := decodeAISettings(u.AISettings)
	if err != nil {
		us.log.Warn("stored ai settings unreadable; using defaults", "user_id", u.ID.String(), "error", err)
		d := user.DefaultAISettings()
		return &d, nil
	}
	return s, nil
}

func (us *userService) UpdateAISettings(ctx context.Context, patch json.RawMessage) (*types.AISettings, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if len(patch) == 0 {
		return nil, invalid("settings", "body required")
	}
	var out *types.AISettings
	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		u, err := us.userRepo.GetByID(dbc, userID)
		if err != nil {
			return err
		}
		current, err := decodeAISettings(u.AISettings)
		if err != nil {
			d := user.DefaultAISettings()
			current = &d
		}
		if err := json.Unmarshal(patch, current); err != nil {
			return invalid("settings", "invalid JSON: %v", err)
		}
		if err := validateAISettings(current); err != nil {
			return err
		}
		raw, err := json.Marshal(current)
		if err != nil {
			return err
		}
		if err := us.userRepo.UpdateAISettings(dbc, userID, datatypes.JSON(raw)); err != nil {
			return err
		}
		out = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decodeAISettings(raw datatypes.JSON) (*types.AISettings, error) {
	s := user.DefaultAISettings()
	if len(raw) == 0 || string(raw) == "null" {
		return &s, nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

var validPermissions = map[string]bool{
	user.PermissionAsk:    true,
	user.PermissionAlways: true,
	user.PermissionNever:  true,
}

var validAIProviders = map[string]bool{
	"auto":        true,
	"openai":      true,
	"gemini":      true,
	"huggingface": true,
	"anthropic":   true,
}

func validateAISettings(s *types.AISettings) error {
	if !validAIProviders[strings.ToLower(s.AIProvider)] {
		return invalid("aiProvider", "unknown provider %q", s.AIProvider)
	}
	for k, v := range s.Permissions {
		if !validPermissions[v] {
			return invalid("permissions."+k, "must be ask, always or never")
		}
	}
	if s.ConfidenceThreshold < 0 || s.ConfidenceThreshold > 100 {
		return invalid("confidenceThreshold", "must be between 0 and 100")
	}
	if s.SuggestionFrequency < 0 || s.SuggestionFrequency > 10 {
		return invalid("suggestionFrequency", "must be between 0 and 10")
	}
	return nil
}
