package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  time.Hour,
		JWTRefreshExpiry: 24 * time.Hour,
	}
}

func TestRegister_CreatesUserProfileAndAdminAlert(t *testing.T) {
	db := dbtest.New(t)
	admins := NewAdminNotificationService(db)
	svc := NewAuthService(db, testConfig(), admins)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &dto.RegisterRequest{Name: "Jane Doe", Email: " Jane@Example.com ", Password: "s3cretpass"})
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully", resp.Message)
	assert.Equal(t, "Jane Doe", resp.User.Name)
	assert.Equal(t, "jane@example.com", resp.User.Email)
	require.NotNil(t, resp.User.Profile)
	assert.Equal(t, models.AgeGroupAdults, resp.User.Profile.AgeGroup)
	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.RefreshToken)

	token, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) { return []byte("test-secret"), nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, resp.User.ID.String(), claims["sub"])

	items, _, err := admins.List(ctx, nil, false, "", 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.AdminNotificationNewUser, items[0].Type)

	_, err = svc.Register(ctx, &dto.RegisterRequest{Name: "Jane Again", Email: "jane@example.com", Password: "anotherpass"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	db := dbtest.New(t)
	svc := NewAuthService(db, testConfig(), nil)
	ctx := context.Background()

	reg, err := svc.Register(ctx, &dto.RegisterRequest{Name: "Sam", Email: "sam@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "SAM@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "Login successful", resp.Message)
	assert.NotNil(t, resp.User.LastLoginAt)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "sam@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.SetActive(ctx, reg.User.ID, false))
	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "sam@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotatesToken(t *testing.T) {
	db := dbtest.New(t)
	svc := NewAuthService(db, testConfig(), nil)
	ctx := context.Background()

	reg, err := svc.Register(ctx, &dto.RegisterRequest{Name: "Kim", Email: "kim@example.com", Password: "password1"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: reg.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, reg.RefreshToken, refreshed.RefreshToken)

	_, err = svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: reg.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, svc.Logout(ctx, &dto.LogoutRequest{RefreshToken: refreshed.RefreshToken}))
	_, err = svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: refreshed.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpdateProfile(t *testing.T) {
	db := dbtest.New(t)
	svc := NewAuthService(db, testConfig(), nil)
	ctx := context.Background()

	reg, err := svc.Register(ctx, &dto.RegisterRequest{Name: "Lee", Email: "lee@example.com", Password: "password1", AgeGroup: models.AgeGroupTeens})
	require.NoError(t, err)

	name, goal := "Lee Park", 30
	resp, err := svc.UpdateProfile(ctx, reg.User.ID, &dto.UpdateProfileRequest{Name: &name, DailyGoalMinutes: &goal})
	require.NoError(t, err)
	assert.Equal(t, "Lee Park", resp.Name)
	require.NotNil(t, resp.Profile)
	assert.Equal(t, 30, resp.Profile.DailyGoalMinutes)
	assert.Equal(t, models.AgeGroupTeens, resp.Profile.AgeGroup)
}

func TestCreateAdminAndResetPassword(t *testing.T) {
	db := dbtest.New(t)
	svc := NewAuthService(db, testConfig(), nil)
	ctx := context.Background()

	admin, err := svc.CreateAdmin(ctx, "Root", "root@example.com", "adminpass")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	again, err := svc.CreateAdmin(ctx, "Root", "root@example.com", "adminpass")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	assert.ErrorIs(t, svc.SetPassword(ctx, "root@example.com", "short"), ErrWeakPassword)
	assert.ErrorIs(t, svc.SetPassword(ctx, "ghost@example.com", "longenough"), ErrUserNotFound)
	require.NoError(t, svc.SetPassword(ctx, "root@example.com", "brand-new-pass"))

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "root@example.com", Password: "brand-new-pass"})
	require.NoError(t, err)

	users, total, err := svc.ListUsers(ctx, "ROOT", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "root@example.com", users[0].Email)
}

func TestRegister_UniqueIndexBacksTheEmailCheck(t *testing.T) {
	db := dbtest.New(t)
	svc := NewAuthService(db, testConfig(), nil)
	ctx := context.Background()

	first, err := svc.Register(ctx, &dto.RegisterRequest{Name: "Jane Doe", Email: "jane@x.com", Password: "pw12345678"})
	require.NoError(t, err)

	// A soft-deleted account is invisible to the existence check but still holds the
	// email in the unique index, the same position a concurrent signup is in.
	require.NoError(t, db.Delete(&models.User{}, "id = ?", first.User.ID).Error)

	_, err = svc.Register(ctx, &dto.RegisterRequest{Name: "Jane Again", Email: "jane@x.com", Password: "pw12345678"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}
