package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-repository-bun"
)

// UserController serves the authenticated user endpoints.
type UserController struct {
	Logger Logger
	Repo   RepositoryManager
}

func NewUserController(repo RepositoryManager) *UserController {
	return &UserController{
		Logger: defLogger{},
		Repo:   repo,
	}
}

// RegisterUserRoutes mounts the user endpoints under /user. The
// handlers expect RequireAuth to have populated the request locals.
func RegisterUserRoutes(app fiber.Router, controller *UserController, auther *Auther) {
	group := app.Group("/user", RequireAuth(auther))

	group.Get("/profile", controller.Profile)
	group.Get("/me", controller.Me)
	group.Get("/all", RequireRole(RoleSuperAdmin), controller.All)
}

// Profile returns the authenticated user's profile, reread from the
// store so a stale token never serves stale fields.
func (u *UserController) Profile(c *fiber.Ctx) error {
	return u.currentUser(c)
}

// Me is an alias for Profile kept for API compatibility.
func (u *UserController) Me(c *fiber.Ctx) error {
	return u.currentUser(c)
}

// All lists every registered user. Superadmin only.
func (u *UserController) All(c *fiber.Ctx) error {
	records, err := u.Repo.Users().ListAll(c.Context())
	if err != nil {
		u.Logger.Error("user list error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "An unexpected error occurred",
		})
	}

	dtos := make([]UserDTO, len(records))
	for i, record := range records {
		dtos[i] = NewUserDTO(record)
	}

	return c.Status(fiber.StatusOK).JSON(dtos)
}

func (u *UserController) currentUser(c *fiber.Ctx) error {
	user, ok := UserFromContext(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "User not authenticated",
		})
	}

	fresh, err := u.Repo.Users().GetByID(c.Context(), user.ID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		}

		u.Logger.Error("user lookup error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "An unexpected error occurred",
		})
	}

	return c.Status(fiber.StatusOK).JSON(NewUserDTO(fresh))
}
