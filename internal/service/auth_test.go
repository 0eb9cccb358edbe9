package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/library-backend/internal/apperror"
	"github.com/sakif/library-backend/internal/auth"
	"github.com/sakif/library-backend/internal/model"
)

// mockUserRepo is the in-memory UserRepository. Same pattern as the mocks in
// library_test.go; enforces the unique-username constraint the mongo index
// provides in production.
type mockUserRepo struct {
	users map[string]*model.User // keyed by username
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.Username]; ok {
		return apperror.ValidationFailed("username is already taken", user.Username)
	}
	user.ID = primitive.NewObjectID()
	stored := *user
	m.users[user.Username] = &stored
	return nil
}

func (m *mockUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", id.Hex())
}

func (m *mockUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, apperror.NotFound("user", username)
	}
	copied := *u
	return &copied, nil
}

// newTestAuth builds an AuthService with bcrypt at minimum cost — the hash
// logic is identical, the tests just don't pay ~250ms per hash.
func newTestAuth(t *testing.T) (*AuthService, *mockUserRepo, *auth.TokenService) {
	t.Helper()
	users := newMockUserRepo()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	passwords := auth.NewPasswordServiceWithCost(bcrypt.MinCost)
	svc := NewAuthService(users, tokens, passwords, testLogger())
	return svc, users, tokens
}

// =========================================================================
// CREATE USER TESTS
// =========================================================================

func TestCreateUser_HashesPassword(t *testing.T) {
	svc, users, _ := newTestAuth(t)

	user, err := svc.CreateUser(context.Background(), "reader", "hunter2hunter2", "refactoring")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if user.ID.IsZero() {
		t.Error("CreateUser() did not assign an ID")
	}

	stored, err := users.FindByUsername(context.Background(), "reader")
	if err != nil {
		t.Fatalf("user was not stored: %v", err)
	}
	if stored.Password == "hunter2hunter2" {
		t.Fatal("password stored in plaintext")
	}
	// The stored value must be a working bcrypt hash of the plaintext.
	if err := bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("hunter2hunter2")); err != nil {
		t.Errorf("stored hash does not verify against the plaintext: %v", err)
	}
}

func TestCreateUser_ShortUsername(t *testing.T) {
	svc, _, _ := newTestAuth(t)

	_, err := svc.CreateUser(context.Background(), "bob", "longenoughpassword", "crime")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("CreateUser() error = %v, want ErrValidation", err)
	}
}

func TestCreateUser_ShortPassword(t *testing.T) {
	svc, _, _ := newTestAuth(t)

	_, err := svc.CreateUser(context.Background(), "reader", "short", "crime")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("CreateUser() error = %v, want ErrValidation", err)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	svc, _, _ := newTestAuth(t)

	if _, err := svc.CreateUser(context.Background(), "reader", "hunter2hunter2", "crime"); err != nil {
		t.Fatalf("first CreateUser() error = %v", err)
	}
	_, err := svc.CreateUser(context.Background(), "reader", "hunter2hunter2", "crime")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("second CreateUser() error = %v, want ErrValidation", err)
	}
}

// =========================================================================
// LOGIN TESTS
// =========================================================================

func TestLogin_Success_TokenClaims(t *testing.T) {
	svc, _, tokens := newTestAuth(t)

	user, err := svc.CreateUser(context.Background(), "reader", "hunter2hunter2", "crime")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	tokenStr, loggedIn, err := svc.Login(context.Background(), "reader", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Error("Login() returned a different user")
	}

	// Decode with the signing secret and check the asserted identity.
	claims, err := tokens.Validate(tokenStr)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.Username != "reader" {
		t.Errorf("claims.Username = %q, want %q", claims.Username, "reader")
	}
	if claims.Subject != user.ID.Hex() {
		t.Errorf("claims.Subject = %q, want %q", claims.Subject, user.ID.Hex())
	}

	// 24-hour expiry, with a minute of slack for test execution time.
	expiresIn := time.Until(claims.ExpiresAt.Time)
	if expiresIn > 24*time.Hour || expiresIn < 24*time.Hour-time.Minute {
		t.Errorf("token expires in %v, want ~24h", expiresIn)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	mustCreateUser(t, svc, "reader", "hunter2hunter2")

	_, _, err := svc.Login(context.Background(), "reader", "wrong-password")
	if !errors.Is(err, apperror.ErrBadCredentials) {
		t.Fatalf("Login() error = %v, want ErrBadCredentials", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _, _ := newTestAuth(t)

	_, _, err := svc.Login(context.Background(), "nobody", "whatever-pass")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Login() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// TOKEN → USER RESOLUTION TESTS
// =========================================================================

func TestUserFromToken_RoundTrip(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	created := mustCreateUser(t, svc, "reader", "hunter2hunter2")

	tokenStr, _, err := svc.Login(context.Background(), "reader", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	user, err := svc.UserFromToken(context.Background(), tokenStr)
	if err != nil {
		t.Fatalf("UserFromToken() error = %v", err)
	}
	if user.ID != created.ID || user.Username != "reader" {
		t.Errorf("UserFromToken() = %+v, want the created user", user)
	}
}

func TestUserFromToken_ValidTokenVanishedUser(t *testing.T) {
	svc, _, tokens := newTestAuth(t)

	// A well-signed token whose subject no longer exists — validity of the
	// token does not guarantee the user still does.
	tokenStr, err := tokens.Generate(primitive.NewObjectID().Hex(), "ghost")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	_, err = svc.UserFromToken(context.Background(), tokenStr)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("UserFromToken() error = %v, want ErrNotFound", err)
	}
}

func TestUserFromToken_Garbage(t *testing.T) {
	svc, _, _ := newTestAuth(t)

	if _, err := svc.UserFromToken(context.Background(), "not.a.token"); err == nil {
		t.Fatal("UserFromToken() accepted garbage")
	}
}

func mustCreateUser(t *testing.T, svc *AuthService, username, password string) *model.User {
	t.Helper()
	user, err := svc.CreateUser(context.Background(), username, password, "crime")
	if err != nil {
		t.Fatalf("CreateUser(%q): %v", username, err)
	}
	return user
}
