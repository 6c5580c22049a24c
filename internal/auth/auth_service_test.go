package auth_test

import (
	"context"
	"testing"

	"go-absensi/internal/auth"
	autherrors "go-absensi/internal/auth/errors"
	authMock "go-absensi/internal/auth/mock"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func adminUser(t *testing.T, password string) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return &auth.User{
		ID:       uuid.New(),
		Name:     "Admin",
		Email:    "admin@example.com",
		Password: string(hashed),
		Role:     "admin",
		IsActive: true,
	}
}

func TestService_Login(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := authMock.NewMockRepository(ctrl)
	service := auth.NewService(mockRepo)
	ctx := context.Background()

	user := adminUser(t, "s3cret")

	t.Run("Success Login", func(t *testing.T) {
		mockRepo.EXPECT().
			GetByEmail(ctx, user.Email).
			Return(user, nil)

		access, refresh, resp, err := service.Login(ctx, user.Email, "s3cret")

		assert.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
		assert.Equal(t, user.ID.String(), resp.ID)
		assert.Equal(t, "admin", resp.Role)

		// token carries user_id and role claims signed with JWT_SECRET
		parsed, err := jwt.Parse(access, func(token *jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		assert.NoError(t, err)
		claims := parsed.Claims.(jwt.MapClaims)
		assert.Equal(t, user.ID.String(), claims["user_id"])
		assert.Equal(t, "admin", claims["role"])
	})

	t.Run("Wrong Password", func(t *testing.T) {
		mockRepo.EXPECT().
			GetByEmail(ctx, user.Email).
			Return(user, nil)

		_, _, _, err := service.Login(ctx, user.Email, "wrong")
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("Unknown Email", func(t *testing.T) {
		mockRepo.EXPECT().
			GetByEmail(ctx, "nobody@example.com").
			Return(nil, gorm.ErrRecordNotFound)

		_, _, _, err := service.Login(ctx, "nobody@example.com", "s3cret")
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})
}

func TestService_RefreshToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := authMock.NewMockRepository(ctrl)
	service := auth.NewService(mockRepo)
	ctx := context.Background()

	user := adminUser(t, "s3cret")

	t.Run("Round Trip", func(t *testing.T) {
		mockRepo.EXPECT().
			GetByEmail(ctx, user.Email).
			Return(user, nil)
		mockRepo.EXPECT().
			GetByID(ctx, user.ID).
			Return(user, nil)

		_, refresh, _, err := service.Login(ctx, user.Email, "s3cret")
		assert.NoError(t, err)

		access, newRefresh, resp, err := service.RefreshToken(ctx, refresh)
		assert.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, newRefresh)
		assert.Equal(t, user.Email, resp.Email)
	})

	t.Run("Garbage Token", func(t *testing.T) {
		_, _, _, err := service.RefreshToken(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, autherrors.ErrInvalidRefreshToken)
	})
}

func TestService_GetMe_InvalidID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := auth.NewService(authMock.NewMockRepository(ctrl))

	_, err := service.GetMe(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, autherrors.ErrInvalidUserID)
}

func TestService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates When Missing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := authMock.NewMockRepository(ctrl)
		service := auth.NewService(mockRepo)

		var created *auth.User
		mockRepo.EXPECT().
			GetByEmail(ctx, "admin@example.com").
			Return(nil, gorm.ErrRecordNotFound)
		mockRepo.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(ctx context.Context, user *auth.User) error {
				created = user
				return nil
			})

		err := service.EnsureAdmin(ctx, "Admin", "admin@example.com", "s3cret")
		assert.NoError(t, err)

		if assert.NotNil(t, created) {
			assert.Equal(t, "admin", created.Role)
			assert.True(t, created.IsActive)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("s3cret")))
		}
	})

	t.Run("Already Seeded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := authMock.NewMockRepository(ctrl)
		service := auth.NewService(mockRepo)

		mockRepo.EXPECT().
			GetByEmail(ctx, "admin@example.com").
			Return(adminUser(t, "s3cret"), nil)

		assert.NoError(t, service.EnsureAdmin(ctx, "Admin", "admin@example.com", "s3cret"))
	})

	t.Run("Concurrent Seed Is Idempotent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := authMock.NewMockRepository(ctrl)
		service := auth.NewService(mockRepo)

		mockRepo.EXPECT().
			GetByEmail(ctx, "admin@example.com").
			Return(nil, gorm.ErrRecordNotFound)
		mockRepo.EXPECT().
			Create(ctx, gomock.Any()).
			Return(autherrors.ErrEmailAlreadyRegistered)

		assert.NoError(t, service.EnsureAdmin(ctx, "Admin", "admin@example.com", "s3cret"))
	})
}
