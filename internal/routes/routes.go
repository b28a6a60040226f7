package routes

import (
	"github.com/damilareoj/student-portal-backend/internal/config"
	"github.com/damilareoj/student-portal-backend/internal/handlers"
	"github.com/damilareoj/student-portal-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	courseHandler *handlers.CourseHandler,
	healthHandler *handlers.HealthHandler,
) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Backend running")
	})
	app.Get("/health", healthHandler.Check)

	// Auth — public
	auth := app.Group("/auth")
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/verify-otp", authHandler.VerifyOTP)
	auth.Post("/login", authHandler.Login)
	auth.Post("/forgot", authHandler.ForgotPassword)
	auth.Post("/reset/:token", authHandler.ResetPassword)

	// Auth — protected
	auth.Get("/me", middleware.JWTProtected(cfg), authHandler.Me)

	// Courses — any authenticated user
	courses := app.Group("/courses", middleware.JWTProtected(cfg))
	courses.Get("/", courseHandler.ListCatalog)
	courses.Get("/my/list", courseHandler.ListMine)

	// Courses — admin (registered before the :courseId wildcards)
	admin := courses.Group("/admin", middleware.AdminRequired())
	admin.Post("/create", courseHandler.Create)
	admin.Get("/stats", courseHandler.Stats)
	admin.Delete("/:id", courseHandler.Delete)

	courses.Post("/:courseId", courseHandler.Enroll)
	courses.Delete("/:courseId", courseHandler.Unenroll)
}
