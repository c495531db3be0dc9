package polls

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/pollwise/pollwise/auth"
)

// Controller exposes the poll endpoints as JSON.
type Controller struct {
	Logger auth.Logger
	Repo   Repository
}

type ControllerOption func(*Controller) *Controller

func NewController(repo Repository, opts ...ControllerOption) *Controller {
	c := &Controller{
		Logger: auth.DefaultLogger(),
		Repo:   repo,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing repository in polls controller...")
	}

	return c
}

func WithLogger(logger auth.Logger) ControllerOption {
	return func(c *Controller) *Controller {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// RegisterRoutes mounts the poll endpoints under /polls. Reads require
// a valid session; writes are restricted to superadmins.
func RegisterRoutes(app fiber.Router, controller *Controller, auther *auth.Auther) {
	group := app.Group("/polls", auth.RequireAuth(auther))

	group.Post("/", auth.RequireRole(auth.RoleSuperAdmin), controller.Create)
	group.Get("/", controller.List)
	group.Get("/:id", controller.Get)
	group.Delete("/:id", auth.RequireRole(auth.RoleSuperAdmin), controller.Delete)
	group.Post("/:id/vote", controller.Vote)
	group.Get("/:id/results", controller.Results)
}

// CreatePollRequest payload
type CreatePollRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Options     []string `json:"options"`
}

// Validate will run validation rules
func (r CreatePollRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Length(0, 2000)),
		validation.Field(&r.Options, validation.Required, validation.Length(2, 20), validation.By(validateOptionTexts)),
	)
}

func (p *Controller) Create(c *fiber.Ctx) error {
	payload := new(CreatePollRequest)

	if err := c.BodyParser(payload); err != nil {
		return p.badRequest(c, "Error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	poll := &Poll{
		Title:       payload.Title,
		Description: payload.Description,
	}

	for _, text := range payload.Options {
		poll.Options = append(poll.Options, &Option{Text: text})
	}

	created, err := p.Repo.Create(c.Context(), poll)
	if err != nil {
		return p.errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (p *Controller) List(c *fiber.Ctx) error {
	records, err := p.Repo.List(c.Context())
	if err != nil {
		return p.errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(records)
}

func (p *Controller) Get(c *fiber.Ctx) error {
	id, err := p.pollID(c)
	if err != nil {
		return p.badRequest(c, "Invalid poll id")
	}

	poll, err := p.Repo.GetByID(c.Context(), id)
	if err != nil {
		return p.errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(poll)
}

func (p *Controller) Delete(c *fiber.Ctx) error {
	id, err := p.pollID(c)
	if err != nil {
		return p.badRequest(c, "Invalid poll id")
	}

	deleted, err := p.Repo.Delete(c.Context(), id)
	if err != nil {
		return p.errorResponse(c, err)
	}

	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "poll not found",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Poll deleted",
	})
}

// VoteRequest payload
type VoteRequest struct {
	OptionID string `json:"optionId"`
}

// Validate will run validation rules
func (r VoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OptionID, validation.Required, validation.By(validateUUID)),
	)
}

func (p *Controller) Vote(c *fiber.Ctx) error {
	id, err := p.pollID(c)
	if err != nil {
		return p.badRequest(c, "Invalid poll id")
	}

	user, ok := auth.UserFromContext(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "User not authenticated",
		})
	}

	payload := new(VoteRequest)

	if err := c.BodyParser(payload); err != nil {
		return p.badRequest(c, "Error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	optionID, _ := uuid.Parse(payload.OptionID)

	vote, err := p.Repo.CastVote(c.Context(), id, optionID, user.ID)
	if err != nil {
		return p.errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(vote)
}

func (p *Controller) Results(c *fiber.Ctx) error {
	id, err := p.pollID(c)
	if err != nil {
		return p.badRequest(c, "Invalid poll id")
	}

	results, err := p.Repo.Results(c.Context(), id)
	if err != nil {
		return p.errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(results)
}

func (p *Controller) pollID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

func (p *Controller) badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": msg,
	})
}

func (p *Controller) errorResponse(c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		switch richErr.Category {
		case errors.CategoryValidation, errors.CategoryBadInput, errors.CategoryConflict:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": richErr.Message,
			})
		case errors.CategoryNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": richErr.Message,
			})
		}
	}

	p.Logger.Error("Unexpected polls error: %v", err)

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "An unexpected error occurred",
	})
}

func validateOptionTexts(value any) error {
	texts, _ := value.([]string)
	for _, text := range texts {
		if text == "" {
			return errors.New("option text cannot be blank", errors.CategoryValidation)
		}
		if len(text) > 200 {
			return errors.New("option text too long", errors.CategoryValidation)
		}
	}
	return nil
}

func validateUUID(value any) error {
	s, _ := value.(string)
	if _, err := uuid.Parse(s); err != nil {
		return errors.New("must be a valid UUID", errors.CategoryValidation)
	}
	return nil
}
