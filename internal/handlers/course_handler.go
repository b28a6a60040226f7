package handlers

import (
	"errors"

	"github.com/damilareoj/student-portal-backend/internal/dto"
	"github.com/damilareoj/student-portal-backend/internal/middleware"
	"github.com/damilareoj/student-portal-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CourseHandler struct {
	courses *services.CourseService
}

func NewCourseHandler(courses *services.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

func (h *CourseHandler) ListCatalog(c *fiber.Ctx) error {
	courses, err := h.courses.ListCatalog()
	if err != nil {
		return serverError(c, "list-courses", err)
	}
	return c.JSON(courses)
}

func (h *CourseHandler) ListMine(c *fiber.Ctx) error {
	claims, err := middleware.TokenClaims(c)
	if err != nil {
		return unauthorized(c)
	}

	courses, err := h.courses.ListEnrolled(claims.UserID)
	if err != nil {
		return serverError(c, "list-my-courses", err)
	}
	return c.JSON(courses)
}

func (h *CourseHandler) Enroll(c *fiber.Ctx) error {
	claims, err := middleware.TokenClaims(c)
	if err != nil {
		return unauthorized(c)
	}

	courseID, err := uuid.Parse(c.Params("courseId"))
	if err != nil {
		return badRequest(c, "Invalid course id")
	}

	courses, err := h.courses.Enroll(claims.UserID, courseID)
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return serverError(c, "enroll-course", err)
	}
	return c.JSON(courses)
}

func (h *CourseHandler) Unenroll(c *fiber.Ctx) error {
	claims, err := middleware.TokenClaims(c)
	if err != nil {
		return unauthorized(c)
	}

	courseID, err := uuid.Parse(c.Params("courseId"))
	if err != nil {
		return badRequest(c, "Invalid course id")
	}

	courses, err := h.courses.Unenroll(claims.UserID, courseID)
	if err != nil {
		return serverError(c, "unenroll-course", err)
	}
	return c.JSON(courses)
}

func (h *CourseHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Code == "" || req.Title == "" {
		return badRequest(c, "Code and title are required")
	}

	course, err := h.courses.Create(&req)
	if err != nil {
		if errors.Is(err, services.ErrCourseExists) {
			return badRequest(c, err.Error())
		}
		return serverError(c, "create-course", err)
	}
	return c.JSON(course)
}

func (h *CourseHandler) Delete(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid course id")
	}

	if err := h.courses.Delete(courseID); err != nil {
		return serverError(c, "delete-course", err)
	}
	return c.JSON(dto.MessageResponse{Message: "Course deleted"})
}

func (h *CourseHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.courses.Stats()
	if err != nil {
		return serverError(c, "course-stats", err)
	}
	return c.JSON(stats)
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}
