// @title           Back Office API
// @version         1.0
// @description     Cotizaciones, notas de entrega y recibos de una tienda POS.
// @BasePath        /
// @securityDefinitions.apikey Bearer
// @in              header
// @name            Authorization
// @description     JWT de sesión (también aceptado en la cookie HTTP-only token).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/tienda-pos/backoffice-api/docs"
	"github.com/tienda-pos/backoffice-api/internal/application/auth"
	"github.com/tienda-pos/backoffice-api/internal/application/documents"
	"github.com/tienda-pos/backoffice-api/internal/application/usecase"
	"github.com/tienda-pos/backoffice-api/internal/infrastructure/cache"
	"github.com/tienda-pos/backoffice-api/internal/infrastructure/metrics"
	infrapdf "github.com/tienda-pos/backoffice-api/internal/infrastructure/pdf"
	"github.com/tienda-pos/backoffice-api/internal/infrastructure/postgres"
	"github.com/tienda-pos/backoffice-api/internal/infrastructure/spreadsheet"
	"github.com/tienda-pos/backoffice-api/internal/infrastructure/xmlexport"
	httpRouter "github.com/tienda-pos/backoffice-api/internal/interfaces/http"
	"github.com/tienda-pos/backoffice-api/pkg/config"
	"github.com/tienda-pos/backoffice-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()

	if cfg.DB.AutoMigrate {
		migrator, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
		if err != nil {
			log.Fatal().Err(err).Msg("migrador")
		}
		if err := migrator.Up(); err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
		_ = migrator.Close()
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	docRepo := postgres.NewDocumentRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Resumen del dashboard en Redis solo si está configurado y responde.
	var statsCache documents.StatsCache
	redisClient, err := cache.Connect(ctx, cfg.Redis)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("redis no disponible, resumen sin caché")
	case redisClient != nil:
		defer redisClient.Close()
		statsCache = cache.NewRedisStatsCache(redisClient, time.Duration(cfg.Redis.TTLSeconds)*time.Second, log)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("caché de resumen en redis")
	}

	registry := metrics.New()

	documentUC := documents.NewUseCase(docRepo, customerRepo, productRepo, txRunner, statsCache, registry)
	xmlRenderer := xmlexport.NewDocumentRenderer()
	exportUC := documents.NewExportUseCase(
		docRepo,
		infrapdf.NewDocumentRenderer(cfg.App.ShopName, xmlRenderer),
		xmlRenderer,
		spreadsheet.NewDocumentsRenderer(),
	)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.HTTP.FrontendURL,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    httpRouter.HeaderDocumentFingerprint + ", Content-Disposition",
	}))
	app.Use(httpRouter.RequestLogger(log))
	app.Use(registry.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Back Office API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		UserUC:     usecase.NewUserUseCase(userRepo),
		CustomerUC: usecase.NewCustomerUseCase(customerRepo, cfg.App.PhoneRegion),
		ProductUC:  usecase.NewProductUseCase(productRepo),
		DocumentUC: documentUC,
		ExportUC:   exportUC,
		JWTSecret:  cfg.JWT.Secret,
		Cookie: httpRouter.CookieSettings{
			Name:       cfg.Cookie.Name,
			Secure:     cfg.Cookie.Secure,
			ExpMinutes: cfg.JWT.Expiration,
		},
		Metrics: registry.Handler(),
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
