package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pulseai-health/clinic-api/internal/config"
	"github.com/pulseai-health/clinic-api/internal/domain"
	"github.com/pulseai-health/clinic-api/pkg/auth"
)

type mockUserRepo struct {
	CreateFn             func(ctx context.Context, u *domain.User) error
	GetByEmailFn         func(ctx context.Context, email string) (*domain.User, error)
	GetByIDFn            func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateLoginAttemptFn func(ctx context.Context, id uuid.UUID, success bool) error
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	if m.CreateFn == nil {
		return nil
	}
	return m.CreateFn(ctx, u)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn == nil {
		return nil, errMockNotWired
	}
	return m.GetByEmailFn(ctx, email)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn == nil {
		return nil, errMockNotWired
	}
	return m.GetByIDFn(ctx, id)
}

func (m *mockUserRepo) UpdateLoginAttempt(ctx context.Context, id uuid.UUID, success bool) error {
	if m.UpdateLoginAttemptFn == nil {
		return nil
	}
	return m.UpdateLoginAttemptFn(ctx, id, success)
}

func testJWTManager() *auth.JWTManager {
	return auth.NewJWTManager(config.JWTConfig{
		Secret:          "test-secret-test-secret-test-secret!",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
		Issuer:          "clinic-api-test",
	})
}

func activeUser(email, password string) *domain.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         "Test User",
		Role:         domain.RolePatient,
		IsActive:     true,
	}
}

func TestLogin(t *testing.T) {
	u := activeUser("pat@example.com", "correct-horse")
	repo := &mockUserRepo{
		GetByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			if email == u.Email {
				return u, nil
			}
			return nil, errMockNotWired
		},
	}
	svc := NewAuthService(repo, testJWTManager(), nil, zap.NewNop())

	pair, err := svc.Login(context.Background(), "pat@example.com", "correct-horse", "127.0.0.1")
	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	_, err = svc.Login(context.Background(), "pat@example.com", "wrong", "127.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_DemoAlias(t *testing.T) {
	u := activeUser("admin@clinic.example", "admin-pass-1")
	var lookedUp string
	repo := &mockUserRepo{
		GetByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			lookedUp = email
			return u, nil
		},
	}
	aliases := map[string]string{"admin": "admin@clinic.example"}
	svc := NewAuthService(repo, testJWTManager(), aliases, zap.NewNop())

	_, err := svc.Login(context.Background(), "Admin", "admin-pass-1", "127.0.0.1")
	assert.NoError(t, err)
	assert.Equal(t, "admin@clinic.example", lookedUp)
}

func TestLogin_LockedAccount(t *testing.T) {
	u := activeUser("pat@example.com", "pw-longenough")
	until := time.Now().Add(10 * time.Minute)
	u.LockedUntil = &until

	repo := &mockUserRepo{
		GetByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			return u, nil
		},
	}
	svc := NewAuthService(repo, testJWTManager(), nil, zap.NewNop())

	_, err := svc.Login(context.Background(), u.Email, "pw-longenough", "127.0.0.1")
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestLogin_InactiveAccount(t *testing.T) {
	u := activeUser("pat@example.com", "pw-longenough")
	u.IsActive = false

	repo := &mockUserRepo{
		GetByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			return u, nil
		},
	}
	svc := NewAuthService(repo, testJWTManager(), nil, zap.NewNop())

	_, err := svc.Login(context.Background(), u.Email, "pw-longenough", "127.0.0.1")
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestLogin_FailureRecordsAttempt(t *testing.T) {
	u := activeUser("pat@example.com", "pw-longenough")
	var recordedSuccess *bool
	repo := &mockUserRepo{
		GetByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			return u, nil
		},
		UpdateLoginAttemptFn: func(ctx context.Context, id uuid.UUID, success bool) error {
			recordedSuccess = &success
			return nil
		},
	}
	svc := NewAuthService(repo, testJWTManager(), nil, zap.NewNop())

	_, err := svc.Login(context.Background(), u.Email, "nope-nope", "127.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	if assert.NotNil(t, recordedSuccess) {
		assert.False(t, *recordedSuccess)
	}
}

func TestRegisterPatient(t *testing.T) {
	var created *domain.User
	repo := &mockUserRepo{
		CreateFn: func(ctx context.Context, u *domain.User) error {
			u.ID = uuid.New()
			created = u
			return nil
		},
	}
	svc := NewAuthService(repo, testJWTManager(), nil, zap.NewNop())

	u, err := svc.RegisterPatient(context.Background(), &RegisterPatientCommand{
		Name:     "  New Patient ",
		Email:    "NEW@Example.com",
		Mobile:   "+15550002222",
		Password: "long-enough-pw",
	})
	assert.NoError(t, err)
	assert.Equal(t, created, u)
	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, "New Patient", u.Name)
	assert.Equal(t, domain.RolePatient, u.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("long-enough-pw")))
}

func TestRegisterPatient_EmailTaken(t *testing.T) {
	repo := &mockUserRepo{
		CreateFn: func(ctx context.Context, u *domain.User) error {
			return domain.ErrEmailTaken
		},
	}
	svc := NewAuthService(repo, testJWTManager(), nil, zap.NewNop())

	_, err := svc.RegisterPatient(context.Background(), &RegisterPatientCommand{
		Name:     "Existing Patient",
		Email:    "taken@example.com",
		Password: "long-enough-pw",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterPatient_Validation(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, testJWTManager(), nil, zap.NewNop())

	_, err := svc.RegisterPatient(context.Background(), &RegisterPatientCommand{
		Name:     "",
		Email:    "not-an-email",
		Password: "short",
	})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)
}

func TestRefreshToken(t *testing.T) {
	u := activeUser("pat@example.com", "pw-longenough")
	repo := &mockUserRepo{
		GetByEmailFn: func(ctx context.Context, email string) (*domain.User, error) { return u, nil },
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			if id == u.ID {
				return u, nil
			}
			return nil, errMockNotWired
		},
	}
	svc := NewAuthService(repo, testJWTManager(), nil, zap.NewNop())

	pair, err := svc.Login(context.Background(), u.Email, "pw-longenough", "127.0.0.1")
	assert.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), pair.RefreshToken)
	assert.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.RefreshToken(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials, "access tokens must not refresh")
}
