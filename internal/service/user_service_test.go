package service

import (
	"context"
	"testing"

	"warehouse/internal/apperr"
	"warehouse/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerUser(t *testing.T, env *testEnv, email, role string) *UserResponse {
	t.Helper()
	user, err := env.userSvc.Register(context.Background(), RegisterUserRequest{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Phone:     "07" + email,
		Password:  "s3cret-pass",
		Role:      role,
	})
	require.NoError(t, err)
	return user
}

func TestUserService_Register(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("creates an active account", func(t *testing.T) {
		user := registerUser(t, env, "alice@warehouse.test", model.RoleSalesperson)
		assert.Equal(t, model.RoleSalesperson, user.Role)
		assert.True(t, user.IsActive)
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		_, err := env.userSvc.Register(ctx, RegisterUserRequest{
			FirstName: "Bob",
			LastName:  "Builder",
			Email:     "bob@warehouse.test",
			Phone:     "0700000001",
			Password:  "s3cret-pass",
			Role:      "Superuser",
		})
		require.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		registerUser(t, env, "carol@warehouse.test", model.RoleCashier)
		_, err := env.userSvc.Register(ctx, RegisterUserRequest{
			FirstName: "Carol",
			LastName:  "Clone",
			Email:     "carol@warehouse.test",
			Phone:     "0700000002",
			Password:  "s3cret-pass",
			Role:      model.RoleCashier,
		})
		require.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestUserService_LoginAndRefresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registerUser(t, env, "dave@warehouse.test", model.RoleWarehouseManager)

	t.Run("login issues a token pair", func(t *testing.T) {
		tokens, user, err := env.userSvc.Login(ctx, LoginRequest{
			Email:    "dave@warehouse.test",
			Password: "s3cret-pass",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.RefreshToken)
		assert.Equal(t, "dave@warehouse.test", user.Email)
	})

	t.Run("wrong password fails", func(t *testing.T) {
		_, _, err := env.userSvc.Login(ctx, LoginRequest{
			Email:    "dave@warehouse.test",
			Password: "wrong",
		})
		require.Error(t, err)
	})

	t.Run("refresh rotates the token", func(t *testing.T) {
		tokens, _, err := env.userSvc.Login(ctx, LoginRequest{
			Email:    "dave@warehouse.test",
			Password: "s3cret-pass",
		})
		require.NoError(t, err)

		rotated, err := env.userSvc.Refresh(ctx, tokens.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

		// The old token is spent
		_, err = env.userSvc.Refresh(ctx, tokens.RefreshToken)
		require.Error(t, err)
	})
}

func TestUserService_ManageUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := registerUser(t, env, "eve@warehouse.test", model.RoleCashier)

	t.Run("role change", func(t *testing.T) {
		updated, err := env.userSvc.ManageUser(ctx, user.ID.String(), ManageUserRequest{Role: model.RoleAdmin})
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, updated.Role)
	})

	t.Run("deactivation blocks login and revokes sessions", func(t *testing.T) {
		tokens, _, err := env.userSvc.Login(ctx, LoginRequest{
			Email:    "eve@warehouse.test",
			Password: "s3cret-pass",
		})
		require.NoError(t, err)

		inactive := false
		_, err = env.userSvc.ManageUser(ctx, user.ID.String(), ManageUserRequest{IsActive: &inactive})
		require.NoError(t, err)

		_, _, err = env.userSvc.Login(ctx, LoginRequest{
			Email:    "eve@warehouse.test",
			Password: "s3cret-pass",
		})
		require.Error(t, err)

		_, err = env.userSvc.Refresh(ctx, tokens.RefreshToken)
		require.Error(t, err)
	})
}

func TestUserService_PasswordReset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := registerUser(t, env, "frank@warehouse.test", model.RoleSalesperson)

	// Unknown emails look the same as known ones
	require.NoError(t, env.userSvc.InitPasswordReset(ctx, "nobody@warehouse.test"))

	require.NoError(t, env.userSvc.InitPasswordReset(ctx, "frank@warehouse.test"))

	var token model.PasswordResetToken
	require.NoError(t, env.db.Where("user_id = ?", user.ID).First(&token).Error)

	valid, err := env.userSvc.ResetTokenValid(ctx, token.Key)
	require.NoError(t, err)
	assert.True(t, valid)

	require.NoError(t, env.userSvc.CompletePasswordReset(ctx, CompleteResetRequest{
		Email:       "frank@warehouse.test",
		Token:       token.Key,
		NewPassword: "n3w-pass-word",
	}))

	// The key is single use
	valid, err = env.userSvc.ResetTokenValid(ctx, token.Key)
	require.NoError(t, err)
	assert.False(t, valid)

	_, _, err = env.userSvc.Login(ctx, LoginRequest{
		Email:    "frank@warehouse.test",
		Password: "n3w-pass-word",
	})
	require.NoError(t, err)
}

func TestUserService_PasswordResetConsumesAllKeys(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := registerUser(t, env, "grace@warehouse.test", model.RoleCashier)

	require.NoError(t, env.userSvc.InitPasswordReset(ctx, "grace@warehouse.test"))
	require.NoError(t, env.userSvc.InitPasswordReset(ctx, "grace@warehouse.test"))

	var tokens []model.PasswordResetToken
	require.NoError(t, env.db.Where("user_id = ?", user.ID).Find(&tokens).Error)
	require.Len(t, tokens, 2)

	require.NoError(t, env.userSvc.CompletePasswordReset(ctx, CompleteResetRequest{
		Email:       "grace@warehouse.test",
		Token:       tokens[0].Key,
		NewPassword: "n3w-pass-word",
	}))

	// Completing with one key retires every outstanding key for the user
	for _, tk := range tokens {
		valid, err := env.userSvc.ResetTokenValid(ctx, tk.Key)
		require.NoError(t, err)
		assert.False(t, valid)
	}
}

func TestUserService_ListRoles(t *testing.T) {
	env := newTestEnv(t)

	roles, err := env.userSvc.ListRoles(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 4)

	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	assert.Contains(t, names, model.RoleAdmin)
	assert.Contains(t, names, model.RoleWarehouseManager)
	assert.Contains(t, names, model.RoleSalesperson)
	assert.Contains(t, names, model.RoleCashier)
}
