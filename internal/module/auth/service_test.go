package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/touradmin/internal/domain"
)

// --- fakes ---

// fakeUserRepo implements domain.UserRepository for testing.
type fakeUserRepo struct {
	user   *domain.User
	getErr error
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, _ string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.user, nil
}
func (f *fakeUserRepo) Create(context.Context, *domain.User) error          { return nil }
func (f *fakeUserRepo) GetByID(context.Context, uint) (*domain.User, error) { return nil, nil }
func (f *fakeUserRepo) List(context.Context, domain.PageRequest) (*domain.PageResult[domain.User], error) {
	return nil, nil
}
func (f *fakeUserRepo) Update(context.Context, *domain.User) error { return nil }
func (f *fakeUserRepo) Delete(context.Context, uint) error         { return nil }
func (f *fakeUserRepo) Count(context.Context) (int64, error)       { return 1, nil }

// --- helpers ---

func hashPassword(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(h)
}

func testUser(t *testing.T, pw string) *domain.User {
	t.Helper()
	u := &domain.User{Name: "Alice", Email: "alice@example.com", PasswordHash: hashPassword(t, pw), Role: domain.RoleEditor}
	u.ID = 42
	return u
}

// --- Login tests ---

func TestLogin_Success(t *testing.T) {
	pw := "secret1234"
	tokens := NewTokens("test-secret", "touradmin", time.Hour)
	svc := NewService(tokens, &fakeUserRepo{user: testUser(t, pw)}, nil)

	resp, err := svc.Login(context.Background(), "  Alice@Example.com ", pw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("token should be set")
	}
	if resp.ExpiresAt <= time.Now().Unix() {
		t.Errorf("ExpiresAt = %d; want in the future", resp.ExpiresAt)
	}

	actor, err := tokens.Verify(resp.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if actor.ID != "42" || actor.Role != domain.RoleEditor || actor.Email != "alice@example.com" {
		t.Errorf("actor = %+v", actor)
	}
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name     string
		repo     *fakeUserRepo
		password string
		check    func(error) bool
	}{
		{"unknown email", &fakeUserRepo{getErr: domain.ErrNotFound}, "secret1234", domain.IsUnauthorized},
		{"wrong password", &fakeUserRepo{user: testUser(t, "secret1234")}, "wrong-pass", domain.IsUnauthorized},
		{"storage error", &fakeUserRepo{getErr: domain.ErrStorageUnavailable}, "secret1234", domain.IsStorageUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(NewTokens("s", "", time.Hour), tt.repo, nil)
			_, err := svc.Login(context.Background(), "alice@example.com", tt.password)
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// --- token tests ---

func TestTokens_Verify(t *testing.T) {
	tokens := NewTokens("secret-a", "touradmin", time.Hour)
	u := &domain.User{Email: "ed@example.com", Role: domain.RoleAdmin}
	u.ID = 7

	good, _, err := tokens.Issue(u)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	otherKey, _, _ := NewTokens("secret-b", "touradmin", time.Hour).Issue(u)
	otherIssuer, _, _ := NewTokens("secret-a", "someone-else", time.Hour).Issue(u)

	expiredTokens := NewTokens("secret-a", "touradmin", time.Minute)
	expiredTokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, _ := expiredTokens.Issue(u)

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"valid", good, false},
		{"wrong key", otherKey, true},
		{"wrong issuer", otherIssuer, true},
		{"expired", expired, true},
		{"garbage", "not.a.jwt", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor, err := tokens.Verify(tt.token)
			if tt.wantErr {
				if !domain.IsUnauthorized(err) {
					t.Errorf("expected unauthorized, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if actor.ID != "7" || actor.Role != domain.RoleAdmin {
				t.Errorf("actor = %+v", actor)
			}
		})
	}
}

func TestNewTokens_PanicsOnEmptySecret(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewTokens() expected panic for empty secret, got none")
		}
	}()
	_ = NewTokens("", "", time.Hour)
}

func TestLogin_ErrorIsAppError(t *testing.T) {
	svc := NewService(NewTokens("s", "", time.Hour), &fakeUserRepo{getErr: domain.ErrNotFound}, nil)
	_, err := svc.Login(context.Background(), "x@example.com", "whatever1")
	var appErr *domain.AppError
	if !errors.As(err, &appErr) || appErr.Code != domain.CodeUnauthorized {
		t.Errorf("expected unauthorized AppError, got %v", err)
	}
}
