package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/cmc/certificados-api/internal/application/auth"
	"github.com/cmc/certificados-api/internal/application/certificate"
	"github.com/cmc/certificados-api/internal/application/usecase"
	"github.com/cmc/certificados-api/internal/infrastructure/document"
	"github.com/cmc/certificados-api/internal/infrastructure/postgres"
	httpRouter "github.com/cmc/certificados-api/internal/interfaces/http"
	"github.com/cmc/certificados-api/pkg/config"
	"github.com/cmc/certificados-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	for _, name := range applied {
		log.Info().Str("migracion", name).Msg("migración aplicada")
	}

	roleRepo := postgres.NewRoleRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	orderRepo := postgres.NewServiceOrderRepository(pool)
	certRepo := postgres.NewCertificateRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	authUC := auth.NewAuthUseCase(userRepo, roleRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	created, err := authUC.EnsureSuperuser(ctx, auth.SuperuserConfig{
		Name:     cfg.Superuser.Name,
		Password: cfg.Superuser.Password,
		Address:  cfg.Superuser.Address,
		Phone:    cfg.Superuser.Phone,
		RoleName: cfg.Superuser.RoleName,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("crear superusuario")
	}
	if created {
		log.Info().Str("usuario", cfg.Superuser.Name).Msg("superusuario creado")
	}

	// Documentos: plantilla DOCX → Certificado_<id>.docx → PDF bajo demanda
	converter, err := document.NewConverter(cfg.Docs.Converter, cfg.Docs.SofficeBin)
	if err != nil {
		log.Fatal().Err(err).Msg("conversor de documentos")
	}
	if _, err := os.Stat(cfg.Docs.TemplatePath); err != nil {
		log.Warn().Str("plantilla", cfg.Docs.TemplatePath).Msg("plantilla no encontrada; la emisión fallará al generar el documento")
	}
	docs := document.NewService(cfg.Docs.TemplatePath, cfg.Docs.OutputDir, converter)

	issueUC := certificate.NewIssueUseCase(txRunner, userRepo, docs, log)
	certificateUC := certificate.NewUseCase(txRunner, certRepo, orderRepo, userRepo, docs)
	userUC := usecase.NewUserUseCase(userRepo, roleRepo)
	roleUC := usecase.NewRoleUseCase(roleRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 60,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))
	app.Use(httpRouter.Metrics())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.ReplaceAll(cfg.HTTP.CORSOrigins, " ", ""),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.Docs.SwaggerPath); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.Docs.SwaggerPath,
			Path:     "docs",
			Title:    "Certificados API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		UserUC:        userUC,
		RoleUC:        roleUC,
		IssueUC:       issueUC,
		CertificateUC: certificateUC,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
