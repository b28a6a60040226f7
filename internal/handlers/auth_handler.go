package handlers

import (
	"errors"
	"log/slog"

	"github.com/damilareoj/student-portal-backend/internal/dto"
	"github.com/damilareoj/student-portal-backend/internal/middleware"
	"github.com/damilareoj/student-portal-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	accounts *services.AccountService
}

func NewAuthHandler(accounts *services.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	created, err := h.accounts.Signup(&req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFieldsRequired),
			errors.Is(err, services.ErrInvalidMatric):
			return badRequest(c, err.Error())
		case errors.Is(err, services.ErrEmailTaken),
			errors.Is(err, services.ErrMatricTaken):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		default:
			return serverError(c, "signup", err)
		}
	}

	if created {
		return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{Message: services.MsgOTPSent})
	}
	return c.JSON(dto.MessageResponse{Message: services.MsgOTPResent})
}

func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req dto.VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.accounts.VerifyOTP(&req); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrFieldsRequired),
			errors.Is(err, services.ErrNoPendingOTP),
			errors.Is(err, services.ErrOTPExpired),
			errors.Is(err, services.ErrInvalidOTP):
			return badRequest(c, err.Error())
		default:
			return serverError(c, "verify-otp", err)
		}
	}

	return c.JSON(dto.MessageResponse{Message: services.MsgAccountVerified})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.accounts.Login(&req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFieldsRequired):
			return badRequest(c, err.Error())
		case errors.Is(err, services.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrNotVerified):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		default:
			return serverError(c, "login", err)
		}
	}

	return c.JSON(resp)
}

// Me echoes the decoded claims of the presented token.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims, err := middleware.TokenClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	resp := dto.MeResponse{Message: "Authenticated"}
	resp.User.ID = claims.UserID
	resp.User.Role = claims.Role
	return c.JSON(resp)
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.accounts.RequestPasswordReset(&req); err != nil {
		return serverError(c, "forgot-password", err)
	}

	return c.JSON(dto.MessageResponse{Message: services.MsgResetLinkSent})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.accounts.CompletePasswordReset(c.Params("token"), req.Password); err != nil {
		switch {
		case errors.Is(err, services.ErrFieldsRequired),
			errors.Is(err, services.ErrInvalidResetToken):
			return badRequest(c, err.Error())
		default:
			return serverError(c, "reset-password", err)
		}
	}

	return c.JSON(dto.MessageResponse{Message: services.MsgPasswordReset})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}

// serverError hides the cause from the client and logs it server-side.
func serverError(c *fiber.Ctx, action string, err error) error {
	slog.Error("request failed", "action", action, "path", c.Path(), "error", err.Error())
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Server error",
	})
}
