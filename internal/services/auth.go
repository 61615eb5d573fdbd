package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/lifepilot-backend/internal/data/repos"
	types "github.com/yungbote/lifepilot-backend/internal/domain"
	"github.com/yungbote/lifepilot-backend/internal/pkg/dbctx"
	apperrors "github.com/yungbote/lifepilot-backend/internal/pkg/errors"
	"github.com/yungbote/lifepilot-backend/internal/platform/ctxutil"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
)

const minPasswordLength = 6

type JWTClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type AuthTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

type AuthService interface {
	RegisterUser(ctx context.Context, email, password, name string) (*types.User, error)
	LoginUser(ctx context.Context, email, password string) (*AuthTokens, error)
	// RefreshUser rotates the caller's session. refreshToken must belong to it.
	RefreshUser(ctx context.Context, refreshToken string) (*AuthTokens, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (as *authService) RegisterUser(ctx context.Context, email, password, name string) (*types.User, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" || password == "" {
		return nil, invalid("email", "email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("email", "invalid email address")
	}
	if len(password) < minPasswordLength {
		return nil, invalid("password", "must be at least %d characters", minPasswordLength)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var created *types.User
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := as.userRepo.EmailExists(dbc, email)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("user already exists: %w", apperrors.ErrConflict)
		}
		users, err := as.userRepo.Create(dbc, []*types.User{{
			Email:    email,
			Password: string(hashed),
			Name:     name,
		}})
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		created = users[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("user registered", "user_id", created.ID.String())
	return created, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (*AuthTokens, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, invalid("email", "email and password are required")
	}
	user, err := as.userRepo.GetByEmail(dbctx.Context{Ctx: ctx}, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrUnauthorized)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrUnauthorized)
	}

	var tokens *AuthTokens
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := as.userTokenRepo.PruneExpired(dbc, user.ID, time.Now()); err != nil {
			return fmt.Errorf("prune sessions: %w", err)
		}
		t, err := as.openSession(dbc, user.ID)
		if err != nil {
			return err
		}
		tokens = t
		return nil
	})
	if err != nil {
		as.log.Warn("login failed", "user_id", user.ID.String(), "error", err)
		return nil, err
	}
	return tokens, nil
}

// openSession writes a new user_token row whose id is the access token's sid claim.
func (as *authService) openSession(dbc dbctx.Context, userID uuid.UUID) (*AuthTokens, error) {
	sid := uuid.New()
	access, err := as.generateAccessToken(userID, sid)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refresh := uuid.New().String()
	row := &types.UserToken{
		ID:           sid,
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(as.refreshTTL),
	}
	if err := as.userTokenRepo.Open(dbc, row); err != nil {
		return nil, fmt.Errorf("create user token: %w", err)
	}
	return &AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(as.accessTTL.Seconds()),
	}, nil
}

func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.SessionID == uuid.Nil {
		return nil, fmt.Errorf("no session in context: %w", apperrors.ErrUnauthorized)
	}
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, invalid("refreshToken", "required")
	}

	var tokens *AuthTokens
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := as.userTokenRepo.Get(dbc, rd.SessionID)
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("session gone: %w", apperrors.ErrUnauthorized)
		}
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		if existing.RefreshToken != refreshToken {
			return fmt.Errorf("refresh token does not match session: %w", apperrors.ErrUnauthorized)
		}
		if existing.ExpiresAt.Before(time.Now()) {
			if err := as.userTokenRepo.Revoke(dbc, existing.ID); err != nil {
				return fmt.Errorf("expire session: %w", err)
			}
			return fmt.Errorf("refresh token expired: %w", apperrors.ErrUnauthorized)
		}
		t, err := as.openSession(dbc, existing.UserID)
		if err != nil {
			return err
		}
		if err := as.userTokenRepo.Revoke(dbc, existing.ID); err != nil {
			return fmt.Errorf("remove old session: %w", err)
		}
		tokens = t
		return nil
	})
	if err != nil {
		as.log.Warn("refresh failed", "session_id", rd.SessionID.String(), "error", err)
		return nil, err
	}
	return tokens, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.SessionID == uuid.Nil {
		return fmt.Errorf("no session in context: %w", apperrors.ErrUnauthorized)
	}
	return as.userTokenRepo.Revoke(dbctx.Context{Ctx: ctx}, rd.SessionID)
}

func (as *authService) generateAccessToken(userID, sessionID uuid.UUID) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

// SetContextFromToken validates the JWT and the live session row behind it, then
// attaches RequestData to ctx. Logged-out sessions are rejected even when the
// token itself has not expired.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, fmt.Errorf("missing token: %w", apperrors.ErrUnauthorized)
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return ctx, fmt.Errorf("parse token: %v: %w", err, apperrors.ErrUnauthorized)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, fmt.Errorf("invalid or expired token: %w", apperrors.ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", apperrors.ErrUnauthorized)
	}
	sid, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return ctx, fmt.Errorf("invalid session id in token: %w", apperrors.ErrUnauthorized)
	}
	session, err := as.userTokenRepo.Get(dbctx.Context{Ctx: ctx}, sid)
	if errors.Is(err, apperrors.ErrNotFound) {
		return ctx, fmt.Errorf("session revoked: %w", apperrors.ErrUnauthorized)
	}
	if err != nil {
		return ctx, fmt.Errorf("load session: %w", err)
	}
	if session.UserID != userID || session.AccessToken != tokenString {
		return ctx, fmt.Errorf("session revoked: %w", apperrors.ErrUnauthorized)
	}
	ctx = ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		SessionID:   sid,
	})
	return ctx, nil
}
