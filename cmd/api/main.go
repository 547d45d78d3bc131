package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agritrade-backend/internal/auth"
	"agritrade-backend/internal/blogs"
	"agritrade-backend/internal/cache"
	"agritrade-backend/internal/config"
	"agritrade-backend/internal/db"
	"agritrade-backend/internal/handlers"
	"agritrade-backend/internal/inquiries"
	"agritrade-backend/internal/metrics"
	"agritrade-backend/internal/middleware"
	"agritrade-backend/internal/notifications"
	"agritrade-backend/internal/products"
	"agritrade-backend/internal/telemetry"
	"agritrade-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceName = "agritrade-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownTracing := telemetry.Setup(ctx, serviceName, logger)

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Error("mongo connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("mongo connected", slog.String("db", cfg.MongoDB))
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		logger.Error("index creation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var cacheStore cache.Cache = cache.NewNoop()
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		var err error
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisCache.Close()
		logger.Info("redis connected")
		cacheStore = redisCache
	}

	var sessions *auth.Sessions
	if cfg.JWTSecret != "" {
		jwtManager := &auth.Manager{
			Secret:     []byte(cfg.JWTSecret),
			AccessTTL:  cfg.AccessTTL(),
			RefreshTTL: cfg.RefreshTTL(),
			Issuer:     serviceName,
		}
		sessions = auth.NewSessions(auth.NewUserStore(cols.Users), jwtManager, cfg.AdminAllowlist)
		logger.Info("admin sessions enabled", slog.Int("allowlist", len(cfg.AdminAllowlist)))
	} else {
		logger.Warn("admin sessions disabled: JWT_SECRET not set")
	}

	mailer := notifications.NewBrevoClient(cfg.BrevoAPIKey, cfg.BrevoSenderEmail, cfg.BrevoSenderName, cfg.BrevoSandbox)
	if mailer == nil {
		logger.Info("brevo mailer disabled")
	} else {
		logger.Info("brevo mailer enabled", slog.String("sender", cfg.BrevoSenderEmail), slog.Bool("sandbox", cfg.BrevoSandbox))
	}

	val := validation.New()

	server := &handlers.Server{
		Sessions:     sessions,
		Val:          val,
		Log:          logger,
		CookieSecure: cfg.CookieSecure,
		AccessTTL:    cfg.AccessTTL(),
		RefreshTTL:   cfg.RefreshTTL(),
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
	}

	inquiryService := inquiries.NewService(
		inquiries.NewRepository(cols.Inquiries),
		cfg.Timezone,
		mailer,
		notifications.NewInquiryAlerter(mailer, cfg.NotifyEmail),
		inquiries.ReplyConfig{
			FromName:   cfg.BrevoSenderName,
			ReplyTo:    cfg.ReplyToEmail,
			TemplateID: cfg.ReplyTemplateID,
		},
	)
	inquiryHandler := inquiries.NewHandler(inquiryService, val, logger)

	productService := products.NewService(products.NewRepository(cols.Products), cacheStore, cfg.CacheTTL(), cfg.Timezone)
	productHandler := products.NewHandler(productService, val, logger)

	blogService := blogs.NewService(blogs.NewRepository(cols.Blogs), cacheStore, cfg.CacheTTL(), cfg.Timezone)
	blogHandler := blogs.NewHandler(blogService, val, logger)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(metrics.Middleware)
	r.Use(middleware.CORS(cfg.FrontendOrigins))
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	contactLimiter := middleware.NewRateLimiter(cfg.RateLimitContact, time.Duration(cfg.RateLimitWindowSec)*time.Second)
	adminAuth := middleware.AdminAuth(cfg.AdminAPIKey, sessions, cfg.CookieSecure, logger)

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/healthz", server.Healthz)

		api.Get("/products", productHandler.List)
		api.Get("/products/{id}", productHandler.Get)
		api.Get("/blogs", blogHandler.PublicList)
		api.Get("/blogs/{slug}", blogHandler.PublicGetBySlug)
		api.With(contactLimiter.Middleware).Post("/contact", inquiryHandler.Contact)

		api.Route("/admin", func(admin chi.Router) {
			admin.Post("/login", server.AdminLogin)
			admin.Post("/refresh", server.AdminRefresh)
			admin.Post("/logout", server.AdminLogout)

			admin.Group(func(protected chi.Router) {
				protected.Use(adminAuth)
				protected.Get("/me", server.AdminMe)

				protected.Get("/inquiries", inquiryHandler.AdminList)
				protected.Post("/inquiries", inquiryHandler.AdminCreateLead)
				protected.Get("/inquiries/export", inquiryHandler.AdminExport)
				protected.Get("/inquiries/{id}", inquiryHandler.AdminGet)
				protected.Delete("/inquiries/{id}", inquiryHandler.AdminDelete)
				protected.Patch("/inquiries/{id}/status", inquiryHandler.AdminSetStatus)
				protected.Patch("/inquiries/{id}/notes", inquiryHandler.AdminUpdateNotes)
				protected.Patch("/inquiries/{id}/deal-value", inquiryHandler.AdminUpdateDealValue)
				protected.Post("/inquiries/{id}/labels", inquiryHandler.AdminAddLabel)
				protected.Delete("/inquiries/{id}/labels", inquiryHandler.AdminRemoveLabel)
				protected.Get("/inquiries/{id}/draft", inquiryHandler.AdminDraft)
				protected.Post("/inquiries/{id}/replies", inquiryHandler.AdminReply)
				protected.Get("/reply-templates", inquiryHandler.AdminTemplates)
				protected.Get("/pipeline", inquiryHandler.AdminPipeline)
				protected.Post("/pipeline/move", inquiryHandler.AdminMove)
				protected.Get("/stats", inquiryHandler.AdminStats)

				protected.Get("/products", productHandler.List)
				protected.Post("/products", productHandler.AdminCreate)
				protected.Put("/products/{id}", productHandler.AdminUpdate)
				protected.Delete("/products/{id}", productHandler.AdminDelete)

				protected.Get("/blogs", blogHandler.AdminList)
				protected.Post("/blogs", blogHandler.AdminCreate)
				protected.Put("/blogs/{id}", blogHandler.AdminUpdate)
				protected.Delete("/blogs/{id}", blogHandler.AdminDelete)
			})
		})
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           otelhttp.NewHandler(r, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("otel shutdown error", slog.String("error", err.Error()))
	}
}
