package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if ok, err := ParseBody(c, &req); !ok {
		return err
	}

	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Validation failed",
				Errors:  map[string][]string{"email": {"A user with this email already exists."}},
			})
		}
		if handled, rerr := rejectedContent(c, err); handled {
			return rerr
		}
		return InternalError(c, "registration failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if ok, err := ParseBody(c, &req); !ok {
		return err
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid email or password",
			})
		}
		return InternalError(c, "login failed", err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if ok, err := ParseBody(c, &req); !ok {
		return err
	}

	resp, err := h.authService.Refresh(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return InternalError(c, "token refresh failed", err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if ok, err := ParseBody(c, &req); !ok {
		return err
	}

	if err := h.authService.Logout(c.UserContext(), &req); err != nil {
		return InternalError(c, "logout failed", err)
	}

	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return Unauthorized(c)
	}

	resp, err := h.authService.Me(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return NotFound(c, "User not found")
		}
		return InternalError(c, "failed to load user", err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return Unauthorized(c)
	}

	var req dto.UpdateProfileRequest
	if ok, err := ParseBody(c, &req); !ok {
		return err
	}

	resp, err := h.authService.UpdateProfile(c.UserContext(), userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return NotFound(c, "User not found")
		}
		if handled, rerr := rejectedContent(c, err); handled {
			return rerr
		}
		return InternalError(c, "failed to update profile", err)
	}
	return c.JSON(resp)
}

// SocialLogin is the placeholder for third-party providers.
func (h *AuthHandler) SocialLogin(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{
		Error:   true,
		Message: "Sign in with " + c.Params("provider") + " is not available yet",
	})
}

// rejectedContent writes a 400 validation response when err is a screening failure.
func rejectedContent(c *fiber.Ctx, err error) (bool, error) {
	var rejected *services.RejectedContentError
	if !errors.As(err, &rejected) {
		return false, nil
	}
	return true, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error:   true,
		Message: "Validation failed",
		Errors:  map[string][]string{rejected.Field: {"This field " + rejected.Message() + "."}},
	})
}
