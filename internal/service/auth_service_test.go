package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/madrasati-app/madrasati-api/internal/models"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
)

type mockAuthRepo struct {
	userByEmail      *models.User
	findByEmailErr   error
	userByID         *models.User
	role             models.UserRole
	created          []*models.User
	createdRole      models.UserRole
	refreshTokens    map[string]*models.RefreshToken
	revokedTokens    []string
	lastLoginUpdated bool
	passwordUpdated  string
	allTokensRevoked bool
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	if m.userByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.userByEmail, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.userByID != nil {
		return m.userByID, nil
	}
	if m.userByEmail != nil {
		return m.userByEmail, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User, role models.UserRole) error {
	user.ID = "new-user"
	m.created = append(m.created, user)
	m.createdRole = role
	return nil
}

func (m *mockAuthRepo) Delete(ctx context.Context, userID string) error {
	kept := m.created[:0]
	for _, u := range m.created {
		if u.ID != userID {
			kept = append(kept, u)
		}
	}
	m.created = kept
	return nil
}

func (m *mockAuthRepo) RoleOf(ctx context.Context, userID string) (models.UserRole, error) {
	if m.role == "" {
		return "", sql.ErrNoRows
	}
	return m.role, nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	m.passwordUpdated = passwordHash
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.allTokensRevoked = true
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	m.revokedTokens = append(m.revokedTokens, id)
	for _, rt := range m.refreshTokens {
		if rt.ID == id {
			rt.Revoked = true
		}
	}
	return nil
}

type mockLinker struct {
	linked  [][3]string
	linkErr error
}

func (m *mockLinker) LinkParentToStudent(ctx context.Context, parentID, nationalSchoolID, relationship string) error {
	if m.linkErr != nil {
		return m.linkErr
	}
	m.linked = append(m.linked, [3]string{parentID, nationalSchoolID, relationship})
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "madrasati-api",
	}
}

func TestAuthServiceRegisterParentLinks(t *testing.T) {
	repo := &mockAuthRepo{}
	linker := &mockLinker{}
	svc := NewAuthService(repo, linker, validator.New(), zap.NewNop(), testAuthConfig())

	info, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:            "parent@example.com",
		Password:         "password",
		FullName:         "أم سارة",
		Role:             models.RoleParent,
		NationalSchoolID: "SCH-1001",
		Relationship:     "أم",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleParent, info.Role)
	require.Len(t, repo.created, 1)
	assert.False(t, repo.created[0].Approved)
	require.Len(t, linker.linked, 1)
	assert.Equal(t, [3]string{"new-user", "SCH-1001", "أم"}, linker.linked[0])
}

func TestAuthServiceRegisterUnknownStudentFails(t *testing.T) {
	repo := &mockAuthRepo{}
	linker := &mockLinker{linkErr: appErrors.Clone(appErrors.ErrInvalidStudentID, "")}
	svc := NewAuthService(repo, linker, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:            "parent@example.com",
		Password:         "password",
		FullName:         "أم سارة",
		Role:             models.RoleParent,
		NationalSchoolID: "unknown",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidStudentID.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created, "account must not survive a failed student link")
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{
		userByEmail: &models.User{ID: "u1", Email: "user@example.com", PasswordHash: string(password), Active: true, Approved: true},
		role:        models.RoleTeacher,
	}
	svc := NewAuthService(repo, &mockLinker{}, validator.New(), zap.NewNop(), testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, models.RoleTeacher, res.User.Role)
	assert.True(t, repo.lastLoginUpdated)
}

func TestAuthServiceLoginPendingApproval(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{
		userByEmail: &models.User{ID: "u1", Email: "user@example.com", PasswordHash: string(password), Active: true, Approved: false},
		role:        models.RoleParent,
	}
	svc := NewAuthService(repo, &mockLinker{}, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPendingApproval.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshTokenRotates(t *testing.T) {
	repo := &mockAuthRepo{refreshTokens: make(map[string]*models.RefreshToken), role: models.RoleParent}
	user := &models.User{ID: "u1", Email: "user@example.com", Active: true, Approved: true}
	repo.userByID = user
	repo.refreshTokens["old"] = &models.RefreshToken{ID: "rt1", UserID: "u1", Token: "old", ExpiresAt: time.Now().Add(time.Hour)}

	svc := NewAuthService(repo, &mockLinker{}, validator.New(), zap.NewNop(), testAuthConfig())

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEqual(t, "old", res.RefreshToken)
	assert.True(t, repo.refreshTokens["old"].Revoked)
}

func TestAuthServiceChangePasswordRevokesTokens(t *testing.T) {
	oldHash, _ := bcrypt.GenerateFromPassword([]byte("old-pass"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{userByID: &models.User{ID: "u1", PasswordHash: string(oldHash), Active: true, Approved: true}}
	svc := NewAuthService(repo, &mockLinker{}, validator.New(), zap.NewNop(), testAuthConfig())

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "old-pass", NewPassword: "new-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, repo.passwordUpdated)
	assert.True(t, repo.allTokensRevoked)
}

func TestAuthServiceValidateToken(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := NewAuthService(repo, &mockLinker{}, validator.New(), zap.NewNop(), testAuthConfig())
	user := &models.User{ID: "u1", Email: "user@example.com", FullName: "مشرف"}

	token, _, err := svc.generateAccessToken(user, models.RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceValidateTokenBadSignature(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, &mockLinker{}, validator.New(), zap.NewNop(), testAuthConfig())

	other := NewAuthService(&mockAuthRepo{}, &mockLinker{}, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "other-secret",
		AccessTokenExpiry: time.Hour,
	})
	token, _, err := other.generateAccessToken(&models.User{ID: "u1"}, models.RoleParent)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}
