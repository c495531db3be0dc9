package auth

import (
	"context"
	stderrors "errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// AuthController exposes the auth flows as JSON endpoints.
type AuthController struct {
	Logger Logger
	Auther *Auther
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(auther *Auther, opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Auther: auther,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	return c
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// RegisterAuthRoutes mounts the auth endpoints under /auth.
func RegisterAuthRoutes(app fiber.Router, controller *AuthController) {
	group := app.Group("/auth")

	group.Post("/signup", controller.SignUp)
	group.Post("/login", controller.Login)
	group.Post("/refresh-token", controller.RefreshToken)
	group.Post("/verify-email", controller.VerifyEmail)
	group.Post("/resend-verification", controller.ResendVerification)
	group.Post("/forgot-password", controller.ForgotPassword)
	group.Post("/reset-password", controller.ResetPassword)
	group.Post("/revoke-token", controller.RevokeToken)
}

// SignUpRequest payload
type SignUpRequest struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate will run validation rules
func (r SignUpRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) SignUp(c *fiber.Ctx) error {
	payload := new(SignUpRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.badRequest(c, "Error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	resp, err := a.Auther.SignUp(c.Context(), SignUpMessage{
		FullName:        payload.FullName,
		Email:           payload.Email,
		Password:        payload.Password,
		ConfirmPassword: payload.ConfirmPassword,
	})

	if err != nil {
		return a.errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.badRequest(c, "Error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	resp, err := a.Auther.Login(c.Context(), payload.Email, payload.Password)
	if err != nil {
		return a.errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// RefreshTokenRequest payload
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Validate will run validation rules
func (r RefreshTokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

func (a *AuthController) RefreshToken(c *fiber.Ctx) error {
	payload := new(RefreshTokenRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.badRequest(c, "Error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	resp, err := a.Auther.Refresh(c.Context(), payload.RefreshToken)
	if err != nil {
		return a.errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// VerifyEmailRequest payload
type VerifyEmailRequest struct {
	Email   string `json:"email"`
	OTPCode string `json:"otpCode"`
}

// Validate will run validation rules
func (r VerifyEmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.OTPCode, validation.Required, validation.Length(6, 6), is.Digit),
	)
}

func (a *AuthController) VerifyEmail(c *fiber.Ctx) error {
	payload := new(VerifyEmailRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.badRequest(c, "Error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	ok, err := a.Auther.VerifyEmail(c.Context(), payload.Email, payload.OTPCode)
	if err != nil {
		return a.errorResponse(c, err)
	}

	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid or expired verification code",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Email verified successfully",
	})
}

// EmailRequest payload, shared by resend verification and forgot password
type EmailRequest struct {
	Email string `json:"email"`
}

// Validate will run validation rules
func (r EmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) ResendVerification(c *fiber.Ctx) error {
	return a.emailFlow(c, a.Auther.ResendVerification, "Verification email sent", "Unable to send verification email")
}

func (a *AuthController) ForgotPassword(c *fiber.Ctx) error {
	return a.emailFlow(c, a.Auther.ForgotPassword, "Password reset email sent", "Unable to send password reset email")
}

func (a *AuthController) emailFlow(c *fiber.Ctx, op func(ctx context.Context, email string) (bool, error), okMsg, failMsg string) error {
	payload := new(EmailRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.badRequest(c, "Error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	ok, err := op(c.Context(), payload.Email)
	if err != nil {
		return a.errorResponse(c, err)
	}

	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": failMsg,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": okMsg,
	})
}

// ResetPasswordRequest payload
type ResetPasswordRequest struct {
	Email           string `json:"email"`
	OTPCode         string `json:"otpCode"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate will run validation rules
func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.OTPCode, validation.Required, validation.Length(6, 6), is.Digit),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(6, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.NewPassword)),
		),
	)
}

func (a *AuthController) ResetPassword(c *fiber.Ctx) error {
	payload := new(ResetPasswordRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.badRequest(c, "Error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	ok, err := a.Auther.ResetPassword(c.Context(), ResetPasswordMessage{
		Email:           payload.Email,
		OTPCode:         payload.OTPCode,
		NewPassword:     payload.NewPassword,
		ConfirmPassword: payload.ConfirmPassword,
	})

	if err != nil {
		return a.errorResponse(c, err)
	}

	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Unable to reset password",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Password reset successfully",
	})
}

func (a *AuthController) RevokeToken(c *fiber.Ctx) error {
	payload := new(RefreshTokenRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.badRequest(c, "Error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	ok, err := a.Auther.RevokeToken(c.Context(), payload.RefreshToken)
	if err != nil {
		return a.errorResponse(c, err)
	}

	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid refresh token",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Token revoked",
	})
}

func (a *AuthController) badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": msg,
	})
}

// errorResponse maps rich errors to responses: client correctable
// categories surface their message with a 400; everything else is an
// opaque 500 with no detail leak.
func (a *AuthController) errorResponse(c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		switch richErr.Category {
		case errors.CategoryValidation, errors.CategoryBadInput, errors.CategoryConflict:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": richErr.Message,
			})
		case errors.CategoryAuth:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": richErr.Message,
			})
		case errors.CategoryNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": richErr.Message,
			})
		}
	}

	a.Logger.Error("Unexpected auth error: %v", err)

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "An unexpected error occurred",
	})
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return stderrors.New("values must match")
		}
		return nil
	}
}
