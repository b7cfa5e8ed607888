package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"viksit_backend/internal/config"
	"viksit_backend/internal/repository"
	"viksit_backend/internal/util"
)

type memoryRevoker struct {
	revoked map[string]time.Time
}

func (m *memoryRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	m.revoked[tokenID] = until
	return nil
}

func (m *memoryRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, ok := m.revoked[tokenID]
	return ok, nil
}

func newAuthService(t *testing.T, revoker TokenRevoker) *AuthService {
	t.Helper()
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret-test-secret-test-secret", ExpireTime: time.Hour}}
	return NewAuthService(repository.NewUserRepository(newTestDB(t)), cfg, revoker)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t, nil)

	user, err := svc.Register(RegisterInput{Username: " asha ", Password: "s3cret-pass", PasswordConfirm: "s3cret-pass"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Username != "asha" || user.Password == "s3cret-pass" {
		t.Fatalf("unexpected stored user %+v", user)
	}

	token, claims, err := svc.Login("asha", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if claims.UserID != user.ID || claims.ID == "" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	parsed, err := svc.Authenticate(context.Background(), token)
	if err != nil || parsed.UserID != user.ID {
		t.Fatalf("authenticate: %+v %v", parsed, err)
	}

	stored, _ := svc.UserRepo.FindByID(user.ID)
	if stored.LastLogin == nil {
		t.Fatalf("last login not recorded")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthService(t, nil)
	if _, err := svc.Register(RegisterInput{Username: "ravi", Password: "password1", PasswordConfirm: "password1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	cases := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"taken", RegisterInput{Username: "ravi", Password: "password2", PasswordConfirm: "password2"}, util.ErrUsernameTaken},
		{"mismatch", RegisterInput{Username: "meera", Password: "password1", PasswordConfirm: "password2"}, util.ErrPasswordMismatch},
	}
	for _, c := range cases {
		_, err := svc.Register(c.in)
		if !errors.Is(err, c.want) {
			t.Fatalf("%s: got %v, want %v", c.name, err, c.want)
		}
		if !errors.Is(err, util.ErrValidation) {
			t.Fatalf("%s: %v should be a validation error", c.name, err)
		}
	}
}

func TestLoginFailures(t *testing.T) {
	svc := newAuthService(t, nil)
	if _, err := svc.Register(RegisterInput{Username: "ravi", Password: "password1", PasswordConfirm: "password1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	for _, c := range []struct{ user, pass string }{
		{"ravi", "wrong-password"},
		{"nobody", "password1"},
	} {
		if _, _, err := svc.Login(c.user, c.pass); !errors.Is(err, util.ErrAuth) {
			t.Fatalf("login(%q): expected auth error, got %v", c.user, err)
		}
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	revoker := &memoryRevoker{revoked: map[string]time.Time{}}
	svc := newAuthService(t, revoker)
	if _, err := svc.Register(RegisterInput{Username: "ravi", Password: "password1", PasswordConfirm: "password1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	token, claims, err := svc.Login("ravi", "password1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(context.Background(), claims); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, util.ErrUnauthorized) {
		t.Fatalf("revoked token accepted: %v", err)
	}
}

func TestAuthenticateRejectsForeignSecret(t *testing.T) {
	svc := newAuthService(t, nil)
	user, err := svc.Register(RegisterInput{Username: "ravi", Password: "password1", PasswordConfirm: "password1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	token, _, err := util.GenerateJWT(user, "another-secret", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, util.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
