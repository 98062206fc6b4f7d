package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cmc/certificados-api/internal/application/auth"
	"github.com/cmc/certificados-api/internal/application/certificate"
	"github.com/cmc/certificados-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	UserUC        *usecase.UserUseCase
	RoleUC        *usecase.RoleUseCase
	IssueUC       *certificate.IssueUseCase
	CertificateUC *certificate.UseCase
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	val := NewValidator()
	requireAuth := AuthMiddleware(deps.JWTSecret)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, val)
	app.Post("/registro", authHandler.Register)
	app.Post("/login", authHandler.Login)

	// Roles: lectura con token, escritura solo admin
	roleHandler := NewRoleHandler(deps.RoleUC, val)
	roles := app.Group("/roles", requireAuth)
	roles.Get("/", roleHandler.List)
	roles.Post("/", RequireAdmin(), roleHandler.Create)
	roles.Put("/:id", RequireAdmin(), roleHandler.Rename)

	// Certificados (protegido)
	certHandler := NewCertificateHandler(deps.IssueUC, deps.CertificateUC, val)
	certs := app.Group("/certificados", requireAuth)
	certs.Get("/", certHandler.List)
	certs.Post("/", certHandler.Create)
	certs.Get("/:id", certHandler.GetByID)
	certs.Put("/:id", certHandler.Update)
	certs.Delete("/:id", certHandler.Delete)
	certs.Get("/:id/archivo", certHandler.Download)

	// Usuarios (solo admin)
	userHandler := NewUserHandler(deps.UserUC, deps.AuthUC, val)
	users := app.Group("/usuarios", requireAuth, RequireAdmin())
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)

	// Perfil propio (protegido)
	app.Get("/perfil", requireAuth, userHandler.GetProfile)
	app.Put("/perfil", requireAuth, userHandler.UpdateProfile)
	app.Put("/cambiar-contrasena", requireAuth, userHandler.ChangePassword)
}
