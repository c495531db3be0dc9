package auth_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pollwise/pollwise/auth"
)

func newUserApp(repo *stubRepoManager, auther *auth.Auther) *fiber.App {
	app := fiber.New()
	controller := auth.NewUserController(repo)
	auth.RegisterUserRoutes(app, controller, auther)
	return app
}

func bearerRequest(t *testing.T, auther *auth.Auther, user *auth.User, path string) *http.Request {
	t.Helper()

	tokenString, _, err := auther.TokenService().GenerateAccessToken(auth.NewIdentityFromUser(user))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tokenString)
	return req
}

func TestProfileEndpoint(t *testing.T) {
	t.Run("returns the fresh user record", func(t *testing.T) {
		repo := newStubRepoManager()
		user := registeredUser(t, "password")
		user.EmailVerified = true

		repo.users.On("GetByID", mock.Anything, user.ID.String()).
			Return(user, nil)

		auther := newTestAuther(repo, nil)
		app := newUserApp(repo, auther)

		resp, err := app.Test(bearerRequest(t, auther, user, "/user/profile"))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		var dto auth.UserDTO
		require.NoError(t, json.Unmarshal(raw, &dto))
		assert.Equal(t, user.ID, dto.ID)
		assert.Equal(t, "ada@example.com", dto.Email)
		assert.True(t, dto.IsEmailVerified)
	})

	t.Run("no token is rejected", func(t *testing.T) {
		repo := newStubRepoManager()
		auther := newTestAuther(repo, nil)
		app := newUserApp(repo, auther)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/user/profile", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("me mirrors profile", func(t *testing.T) {
		repo := newStubRepoManager()
		user := registeredUser(t, "password")

		repo.users.On("GetByID", mock.Anything, user.ID.String()).
			Return(user, nil)

		auther := newTestAuther(repo, nil)
		app := newUserApp(repo, auther)

		resp, err := app.Test(bearerRequest(t, auther, user, "/user/me"))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestUserListEndpoint(t *testing.T) {
	t.Run("plain user is forbidden", func(t *testing.T) {
		repo := newStubRepoManager()
		user := registeredUser(t, "password")

		repo.users.On("GetByID", mock.Anything, user.ID.String()).
			Return(user, nil)

		auther := newTestAuther(repo, nil)
		app := newUserApp(repo, auther)

		resp, err := app.Test(bearerRequest(t, auther, user, "/user/all"))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("superadmin lists every user", func(t *testing.T) {
		repo := newStubRepoManager()
		admin := registeredUser(t, "password")
		admin.Role = auth.RoleSuperAdmin

		other := registeredUser(t, "password")
		other.Email = "grace@example.com"

		repo.users.On("GetByID", mock.Anything, admin.ID.String()).
			Return(admin, nil)
		repo.users.On("ListAll", mock.Anything).
			Return([]*auth.User{admin, other}, nil)

		auther := newTestAuther(repo, nil)
		app := newUserApp(repo, auther)

		resp, err := app.Test(bearerRequest(t, auther, admin, "/user/all"))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		var dtos []auth.UserDTO
		require.NoError(t, json.Unmarshal(raw, &dtos))
		require.Len(t, dtos, 2)
		assert.Equal(t, "ada@example.com", dtos[0].Email)
		assert.Equal(t, "grace@example.com", dtos[1].Email)
	})
}

func TestProfileEndpointDeletedUser(t *testing.T) {
	repo := newStubRepoManager()
	user := registeredUser(t, "password")

	repo.users.On("GetByID", mock.Anything, user.ID.String()).
		Return(nil, repository.NewRecordNotFound())

	auther := newTestAuther(repo, nil)
	app := newUserApp(repo, auther)

	resp, err := app.Test(bearerRequest(t, auther, user, "/user/profile"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
