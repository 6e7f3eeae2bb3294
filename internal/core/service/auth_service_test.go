package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/openshelf/library-system/internal/core/domain"
)

type stubUserRepo struct {
	users  map[string]*domain.User
	nextID int64
	err    error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User), nextID: 1}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, errors.New("UNIQUE constraint failed: users.username")
		}
	}
	copy := cloneUser(user)
	copy.ID = r.nextID
	r.nextID++
	r.users[copy.Username] = copy
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, r.err
}

func (r *stubUserRepo) Delete(_ context.Context, id int64) error {
	for name, u := range r.users {
		if u.ID == id {
			delete(r.users, name)
		}
	}
	return r.err
}

func seedAdmin(repo *stubUserRepo, password string) {
	repo.users[domain.AdminUsername] = &domain.User{
		ID:       repo.nextID,
		Username: domain.AdminUsername,
		Email:    "admin@example.com",
		Secret:   Digest(password),
		Role:     domain.RoleAdmin,
	}
	repo.nextID++
}

func newAuthSvc(repo *stubUserRepo) *AuthService {
	return NewAuthService(repo, zerolog.Nop())
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo)

	user, err := svc.Register(context.Background(), "  alice ", "alice@example.com", " pass123 ", domain.RoleLender)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("expected trimmed username, got %q", user.Username)
	}
	if user.Secret == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Secret), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match trimmed password: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(user.Secret))
	if err != nil || cost != SaltedHashCost {
		t.Fatalf("expected bcrypt cost %d, got %d (%v)", SaltedHashCost, cost, err)
	}
	if user.Role != domain.RoleLender {
		t.Fatalf("unexpected role: %s", user.Role)
	}
}

func TestAuthService_Register_NonLenderAlwaysForbidden(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo())

	cases := []struct {
		name                            string
		username, email, password, role string
	}{
		{"admin with valid fields", "bob", "bob@example.com", "pw", domain.RoleAdmin},
		{"admin with empty fields", "", "", "", domain.RoleAdmin},
		{"unknown role", "bob", "bob@example.com", "pw", "librarian"},
		{"empty role", "bob", "bob@example.com", "pw", "   "},
		{"case differs", "bob", "bob@example.com", "pw", "Lender"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.username, tc.email, tc.password, tc.role)
			if !errors.Is(err, domain.ErrRegistrationForbidden) {
				t.Fatalf("expected ErrRegistrationForbidden, got %v", err)
			}
		})
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo())

	for _, fields := range [][3]string{
		{"", "a@example.com", "pw"},
		{"alice", " ", "pw"},
		{"alice", "a@example.com", "   "},
	} {
		_, err := svc.Register(context.Background(), fields[0], fields[1], fields[2], domain.RoleLender)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError for %v, got %v", fields, err)
		}
		if ve.Message != "Username, email, and password are required" {
			t.Fatalf("unexpected message: %q", ve.Message)
		}
	}
}

func TestAuthService_Register_RejectsCookieBreakingUsernames(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo)

	for _, name := range []string{"bob; Domain=evil.example", "bob,eve", "bob smith", `bob"`, "bob\\", "bob\x01"} {
		_, err := svc.Register(context.Background(), name, "b@example.com", "pw", domain.RoleLender)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError for %q, got %v", name, err)
		}
	}
	if len(repo.users) != 0 {
		t.Fatalf("rejected usernames were stored: %v", repo.users)
	}

	if _, err := svc.Register(context.Background(), "bob.smith-2", "b@example.com", "pw", domain.RoleLender); err != nil {
		t.Fatalf("expected a plain username to register, got %v", err)
	}
}

func TestAuthService_Register_DuplicateIsStoreFailure(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo())

	if _, err := svc.Register(context.Background(), "bob", "bob@example.com", "pass", domain.RoleLender); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	_, err := svc.Register(context.Background(), "bob", "other@example.com", "pass2", domain.RoleLender)
	if err == nil {
		t.Fatalf("expected duplicate to fail")
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) || errors.Is(err, domain.ErrRegistrationForbidden) {
		t.Fatalf("duplicate must surface as a store failure, got %v", err)
	}
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo())

	if _, err := svc.Register(context.Background(), "carol", "carol@example.com", "s3cret", domain.RoleLender); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, err := svc.Login(context.Background(), "carol", "s3cret", domain.RoleLender)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.Username != "carol" || user.Role != domain.RoleLender || user.ID == 0 {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestAuthService_Login_MissingFields(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo())

	for _, args := range [][3]string{
		{"", "pw", domain.RoleLender},
		{"dave", " ", domain.RoleLender},
		{"dave", "pw", ""},
	} {
		_, err := svc.Login(context.Background(), args[0], args[1], args[2])
		var ve *domain.ValidationError
		if !errors.As(err, &ve) || ve.Message != "Missing credentials" {
			t.Fatalf("expected Missing credentials for %v, got %v", args, err)
		}
	}
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo())

	if _, err := svc.Login(context.Background(), "ghost", "pass", domain.RoleLender); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo())

	_, _ = svc.Register(context.Background(), "dave", "dave@example.com", "goodpass", domain.RoleLender)
	if _, err := svc.Login(context.Background(), "dave", "badpass", domain.RoleLender); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_RoleMismatchIsForbiddenNotUnauthorized(t *testing.T) {
	repo := newStubUserRepo()
	seedAdmin(repo, "admin123")
	svc := newAuthSvc(repo)

	_, _ = svc.Register(context.Background(), "erin", "erin@example.com", "pw", domain.RoleLender)

	// Correct lender password, claimed admin.
	if _, err := svc.Login(context.Background(), "erin", "pw", domain.RoleAdmin); !errors.Is(err, domain.ErrRoleMismatch) {
		t.Fatalf("expected ErrRoleMismatch, got %v", err)
	}
	// Wrong lender password, claimed admin: still a role mismatch.
	if _, err := svc.Login(context.Background(), "erin", "nope", domain.RoleAdmin); !errors.Is(err, domain.ErrRoleMismatch) {
		t.Fatalf("expected ErrRoleMismatch, got %v", err)
	}
	// Admin claiming lender.
	if _, err := svc.Login(context.Background(), domain.AdminUsername, "admin123", domain.RoleLender); !errors.Is(err, domain.ErrRoleMismatch) {
		t.Fatalf("expected ErrRoleMismatch, got %v", err)
	}
}

func TestAuthService_Login_AdminDigest(t *testing.T) {
	repo := newStubUserRepo()
	seedAdmin(repo, "admin123")
	svc := newAuthSvc(repo)

	user, err := svc.Login(context.Background(), domain.AdminUsername, "admin123", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("admin login failed: %v", err)
	}
	if user.Role != domain.RoleAdmin {
		t.Fatalf("unexpected role %s", user.Role)
	}

	for _, pw := range []string{"admin124", "Admin123", "admin12", "admin1234"} {
		if _, err := svc.Login(context.Background(), domain.AdminUsername, pw, domain.RoleAdmin); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("password %q: expected ErrInvalidCredentials, got %v", pw, err)
		}
	}
}

func TestAuthService_Login_AdminNeverUsesBcrypt(t *testing.T) {
	repo := newStubUserRepo()
	hash, err := SaltedHash("admin123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	// An admin row holding a bcrypt string must not verify.
	repo.users[domain.AdminUsername] = &domain.User{ID: 1, Username: domain.AdminUsername, Secret: hash, Role: domain.RoleAdmin}
	svc := newAuthSvc(repo)

	if _, err := svc.Login(context.Background(), domain.AdminUsername, "admin123", domain.RoleAdmin); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_StoreFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.err = errors.New("database is locked")
	svc := newAuthSvc(repo)

	_, err := svc.Login(context.Background(), "frank", "pw", domain.RoleLender)
	if err == nil || errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected raw store error, got %v", err)
	}
}
