package services

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/yungbote/lifepilot-backend/internal/pkg/errors"
	"github.com/yungbote/lifepilot-backend/internal/platform/ctxutil"
)

func newAuth(e *testEnv) AuthService {
	return NewAuthService(e.db, e.log, e.users, e.tokens, "test-secret", 15*time.Minute, 24*time.Hour)
}

func TestRegisterValidation(t *testing.T) {
	e := newTestEnv(t)
	as := newAuth(e)
	cases := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{name: "missing_email", email: "", password: "secret1", want: apperrors.ErrInvalidArgument},
		{name: "bad_email", email: "not-an-email", password: "secret1", want: apperrors.ErrInvalidArgument},
		{name: "short_password", email: "a@example.com", password: "123", want: apperrors.ErrInvalidArgument},
		{name: "duplicate", email: " PILOT@example.com ", password: "secret1", want: apperrors.ErrConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := as.RegisterUser(e.ctx, tc.email, tc.password, "x"); !errors.Is(err, tc.want) {
				t.Fatalf("err=%v want %v", err, tc.want)
			}
		})
	}
}

func TestRegisterLoginLogout(t *testing.T) {
	e := newTestEnv(t)
	as := newAuth(e)

	u, err := as.RegisterUser(e.ctx, "Ada@Example.com", "hunter22", "Ada")
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if u.Email != "ada@example.com" || u.Password == "hunter22" {
		t.Fatalf("stored user %+v", u)
	}

	if _, err := as.LoginUser(e.ctx, "ada@example.com", "wrong-pass"); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("wrong password err=%v", err)
	}
	if _, err := as.LoginUser(e.ctx, "nobody@example.com", "hunter22"); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("unknown user err=%v", err)
	}

	tokens, err := as.LoginUser(e.ctx, "ADA@example.com", "hunter22")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if tokens.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Fatalf("expiresIn=%d", tokens.ExpiresIn)
	}

	ctx, err := as.SetContextFromToken(e.ctx, tokens.AccessToken)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if ctxutil.UserID(ctx) != u.ID {
		t.Fatalf("user id not attached")
	}

	if err := as.LogoutUser(ctx); err != nil {
		t.Fatalf("LogoutUser: %v", err)
	}
	if _, err := as.SetContextFromToken(e.ctx, tokens.AccessToken); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("revoked token accepted: %v", err)
	}
}

func TestSetContextRejectsForeignSignature(t *testing.T) {
	e := newTestEnv(t)
	as := newAuth(e)
	if _, err := as.RegisterUser(e.ctx, "ada@example.com", "hunter22", "Ada"); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	tokens, err := as.LoginUser(e.ctx, "ada@example.com", "hunter22")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	other := NewAuthService(e.db, e.log, e.users, e.tokens, "another-secret", time.Minute, time.Hour)
	if _, err := other.SetContextFromToken(e.ctx, tokens.AccessToken); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("err=%v want ErrUnauthorized", err)
	}
	if _, err := as.SetContextFromToken(e.ctx, "garbage"); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("garbage token err=%v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	e := newTestEnv(t)
	as := newAuth(e)
	if _, err := as.RegisterUser(e.ctx, "ada@example.com", "hunter22", "Ada"); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	first, err := as.LoginUser(e.ctx, "ada@example.com", "hunter22")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	ctx, err := as.SetContextFromToken(e.ctx, first.AccessToken)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}

	if _, err := as.RefreshUser(ctx, "not-the-refresh-token"); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("mismatched refresh err=%v", err)
	}
	if _, err := as.RefreshUser(e.ctx, first.RefreshToken); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("refresh without session err=%v", err)
	}

	second, err := as.RefreshUser(ctx, first.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshUser: %v", err)
	}
	if second.AccessToken == first.AccessToken || second.RefreshToken == first.RefreshToken {
		t.Fatalf("tokens not rotated")
	}
	if _, err := as.SetContextFromToken(e.ctx, first.AccessToken); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("old session still valid: %v", err)
	}
	if _, err := as.SetContextFromToken(e.ctx, second.AccessToken); err != nil {
		t.Fatalf("new session rejected: %v", err)
	}
}
