package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/ajitseee/sweetshop/internal/config"
	"github.com/ajitseee/sweetshop/internal/dto"
	"github.com/ajitseee/sweetshop/internal/model"
	"github.com/ajitseee/sweetshop/internal/repository"
	"github.com/ajitseee/sweetshop/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ── In-memory Repository Stub ─────────────────────────────────────────────────

type stubUserRepo struct {
	users     map[uuid.UUID]*model.User
	createErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	u.ID = uuid.New()
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) FindByEmailOrUsername(_ context.Context, email, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email || u.Username == username {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

const testSecret = "test_jwt_secret_32_chars_minimum!"

func newTestCfg() *config.Config {
	return &config.Config{
		JWTSecret:          testSecret,
		JWTExpirationHours: 1,
		BcryptCost:         bcrypt.MinCost,
	}
}

func register(t *testing.T, svc service.AuthService, username, email, password, role string) *dto.AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: username, Email: email, Password: password, Role: role,
	})
	require.NoError(t, err)
	return resp
}

func parseToken(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	return claims
}

// ── Tests: Register ───────────────────────────────────────────────────────────

func TestRegister_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := service.NewAuthService(repo, newTestCfg())

	resp := register(t, svc, "jane", "jane@example.com", "secret1", "")

	assert.Equal(t, "jane", resp.User.Username)
	assert.Equal(t, model.RoleUser, resp.User.Role)
	assert.NotEmpty(t, resp.User.ID)
	assert.NotEmpty(t, resp.Token)

	claims := parseToken(t, resp.Token)
	assert.Equal(t, resp.User.ID, claims["user_id"])
	assert.Equal(t, model.RoleUser, claims["role"])
}

func TestRegister_StoresHashNotPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := service.NewAuthService(repo, newTestCfg())
	resp := register(t, svc, "jane", "jane@example.com", "secret1", "")

	u, err := repo.FindByID(context.Background(), uuid.MustParse(resp.User.ID))
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))
}

func TestRegister_AdminRole(t *testing.T) {
	svc := service.NewAuthService(newStubUserRepo(), newTestCfg())
	resp := register(t, svc, "boss", "boss@example.com", "secret1", model.RoleAdmin)

	assert.Equal(t, model.RoleAdmin, resp.User.Role)
	assert.Equal(t, model.RoleAdmin, parseToken(t, resp.Token)["role"])
}

func TestRegister_UnknownRole(t *testing.T) {
	svc := service.NewAuthService(newStubUserRepo(), newTestCfg())
	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "jane", Email: "jane@example.com", Password: "secret1", Role: "superuser",
	})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestRegister_UsernameLengthCountsTrimmedValue(t *testing.T) {
	repo := newStubUserRepo()
	svc := service.NewAuthService(repo, newTestCfg())

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "  ab  ", Email: "ab@example.com", Password: "secret1",
	})
	assert.ErrorIs(t, err, service.ErrValidation)
	assert.Empty(t, repo.users)

	resp := register(t, svc, "  abc  ", "abc@example.com", "secret1", "")
	assert.Equal(t, "abc", resp.User.Username)
}

func TestRegister_Duplicate(t *testing.T) {
	svc := service.NewAuthService(newStubUserRepo(), newTestCfg())
	register(t, svc, "jane", "jane@example.com", "secret1", "")

	tests := []struct {
		name     string
		username string
		email    string
	}{
		{"same email", "other", "jane@example.com"},
		{"same email different case", "other", "  JANE@example.com "},
		{"same username", "jane", "other@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), dto.RegisterRequest{
				Username: tt.username, Email: tt.email, Password: "secret1",
			})
			assert.ErrorIs(t, err, service.ErrDuplicateUser)
		})
	}
}

func TestRegister_UniqueViolationIsDuplicate(t *testing.T) {
	repo := newStubUserRepo()
	repo.createErr = gorm.ErrDuplicatedKey
	svc := service.NewAuthService(repo, newTestCfg())

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "jane", Email: "jane@example.com", Password: "secret1",
	})
	assert.ErrorIs(t, err, service.ErrDuplicateUser)
}

// ── Tests: Login ──────────────────────────────────────────────────────────────

func TestLogin_Success(t *testing.T) {
	svc := service.NewAuthService(newStubUserRepo(), newTestCfg())
	reg := register(t, svc, "jane", "jane@example.com", "secret1", "")

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: "Jane@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, resp.User.ID)

	claims := parseToken(t, resp.Token)
	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp.Time, time.Minute)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	svc := service.NewAuthService(newStubUserRepo(), newTestCfg())
	register(t, svc, "jane", "jane@example.com", "secret1", "")

	_, wrongPass := svc.Login(context.Background(), dto.LoginRequest{Email: "jane@example.com", Password: "nope"})
	_, unknown := svc.Login(context.Background(), dto.LoginRequest{Email: "ghost@example.com", Password: "secret1"})

	assert.ErrorIs(t, wrongPass, service.ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, service.ErrInvalidCredentials)
	assert.Equal(t, wrongPass.Error(), unknown.Error())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@example.com", service.NormalizeEmail("  Jane@EXAMPLE.com\t"))
}
