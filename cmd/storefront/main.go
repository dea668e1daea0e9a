package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/http/handlers"
	"storefront/internal/i18n"
	"storefront/internal/kv"
	applog "storefront/internal/log"
	"storefront/internal/metrics"
)

func main() {
	cfg := config.Load()

	lg, logCloser := applog.Setup(cfg.LogLevel, cfg.LogFile)
	defer logCloser.Close()
	lg = lg.With().Str("tag", "main").Logger()
	lg.Info().
		Str("env", cfg.AppEnv).
		Str("port", cfg.Port).
		Str("storage", cfg.StorageDriver).
		Str("catalog", cfg.CatalogURL).
		Str("env_file", cfg.EnvFile).
		Msg("config loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		lg.Fatal().Err(err).Msg("could not open storage")
	}
	defer closeStorage()

	bundle, err := i18n.Load(cfg.DefaultLocale)
	if err != nil {
		lg.Fatal().Err(err).Msg("could not load locales")
	}

	m := metrics.New()
	client := catalog.NewClient(cfg.CatalogURL,
		catalog.WithTimeout(cfg.CatalogTimeout),
		catalog.WithClientLogger(lg),
		catalog.WithErrorRecorder(m),
	)
	source := catalog.NewCachedSource(client, cacheStore(cfg, storage),
		catalog.WithTTL(cfg.CatalogTTL),
		catalog.WithCacheLogger(lg),
	)

	ack := cart.NewAcknowledger(clock.New(), cfg.AckWindow)
	defer ack.Stop()

	// Templates & app
	engine := html.New(cfg.TemplatesDir, ".html")
	for name, fn := range handlers.TemplateFuncs(bundle) {
		engine.AddFunc(name, fn)
	}
	engine.Reload(!cfg.Production())

	app := fiber.New(fiber.Config{
		Views:                 engine,
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: cfg.Production(),
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	deps := handlers.NewDeps(cfg, source, storage, ack, m, lg)

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{Output: applog.L()}))
	app.Use(helmet.New(helmet.Config{CrossOriginEmbedderPolicy: "unsafe-none"}))
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/static/") || p == "/healthz" || p == "/metrics"
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.Production(),
		ErrorHandler:   handlers.CSRFError,
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})
	app.Use(handlers.Locale(bundle))
	app.Use(handlers.Theme())
	app.Use(handlers.CartBadge(deps.CartService))

	app.Static("/static", cfg.StaticDir)
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	handlers.Register(app, deps)
	app.Use(handlers.NotFound)

	go func() {
		<-ctx.Done()
		lg.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			lg.Error().Err(err).Msg("shutdown failed")
		}
	}()

	lg.Info().Str("addr", ":"+cfg.Port).Msg("listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		lg.Error().Err(err).Msg("server stopped")
	}
}

// openStorage returns the session storage named by STORAGE_DRIVER.
func openStorage(ctx context.Context, cfg config.Config) (kv.Store, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageSQLite:
		s, err := kv.OpenSQLite(cfg.DBDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.StorageRedis:
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		// sessions idle for 30 days are dropped, matching the sid cookie
		s, err := kv.DialRedis(dialCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, 30*24*time.Hour)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.StorageNone:
		return kv.Nop{}, func() {}, nil
	case config.StorageMemory:
		return kv.NewMemory(), func() {}, nil
	}
	return nil, nil, errors.New("unknown storage driver " + cfg.StorageDriver)
}

// cacheStore keeps the catalog cache next to the sessions, except that
// without persistent storage it still gets an in-process map.
func cacheStore(cfg config.Config, storage kv.Store) kv.Store {
	if cfg.StorageDriver == config.StorageNone {
		return kv.NewMemory()
	}
	return storage
}
