package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"campus-chat/internal/chat"
	"campus-chat/internal/config"
	"campus-chat/internal/db"
	"campus-chat/internal/handlers"
	"campus-chat/internal/hub"
	"campus-chat/internal/presence"
	"campus-chat/internal/services"
	"campus-chat/internal/store"
	"campus-chat/models"
)

func Run() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx := context.Background()
	if err := db.Init(ctx, cfg.ConnString()); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	pg := store.NewPostgres(db.Pool)

	// Presence: Redis when configured, in-process otherwise.
	var tracker presence.Tracker
	if cfg.RedisAddr != "" {
		redisTracker, err := presence.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisTracker.Close()
		tracker = redisTracker
		log.Info().Str("addr", cfg.RedisAddr).Msg("presence tracked in redis")
	} else {
		tracker = presence.NewMemory()
	}

	authService := services.NewAuthService(pg, cfg.JWTSecret)
	groupService := services.NewGroupService(pg)

	connHub := hub.New(cfg.SendBuffer)
	ingest := chat.NewIngest(pg, pg)
	dispatcher := chat.NewDispatcher(connHub)
	history := chat.NewHistory(pg, cfg.HistoryPageSize, cfg.HistoryMaxPageSize)

	validate := validator.New()

	ws := &handlers.WS{
		Hub:        connHub,
		Ingest:     ingest,
		Dispatcher: dispatcher,
		Groups:     groupService,
		Presence:   tracker,
		Validate:   validate,
		Log:        log.With().Str("component", "ws").Logger(),
	}

	app := fiber.New()

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	api := app.Group("/api")

	// Public routes
	api.Post("/register", func(c *fiber.Ctx) error {
		var req models.RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "username and password required"})
		}
		user, err := authService.Register(c.Context(), req)
		if err != nil {
			if errors.Is(err, services.ErrUserExists) {
				return c.Status(400).JSON(fiber.Map{"error": "username already exists"})
			}
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(user)
	})

	api.Post("/login", func(c *fiber.Ctx) error {
		var req models.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
		}
		res, err := authService.Login(c.Context(), req)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(res)
	})

	api.Post("/refresh", func(c *fiber.Ctx) error {
		var req models.RefreshRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "refresh_token required"})
		}
		res, err := authService.Refresh(req.RefreshToken)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(res)
	})

	// Protected routes
	protected := api.Group("/", handlers.AuthMiddleware(authService))

	// User listing with online status from the presence tracker.
	protected.Get("/users", func(c *fiber.Ctx) error {
		authUserID := c.Locals("user_id").(string)

		users, err := pg.ListUsers(c.Context())
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to fetch users"})
		}

		resp := make([]fiber.Map, 0, len(users))
		for _, u := range users {
			if u.ID == authUserID {
				continue
			}
			status := "offline"
			if online, err := tracker.IsOnline(c.Context(), u.ID); err == nil && online {
				status = "online"
			}
			resp = append(resp, fiber.Map{
				"id":         u.ID,
				"username":   u.Username,
				"created_at": u.CreatedAt,
				"status":     status,
			})
		}
		return c.JSON(resp)
	})

	// Group membership collaborator
	protected.Get("/groups", func(c *fiber.Ctx) error {
		groups, err := groupService.List(c.Context())
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to fetch groups"})
		}
		return c.JSON(groups)
	})

	protected.Post("/groups", func(c *fiber.Ctx) error {
		var req struct {
			Name string `json:"name" validate:"required,min=1,max=100"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "name required"})
		}
		group, err := groupService.Create(c.Context(), req.Name, c.Locals("user_id").(string))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(group)
	})

	protected.Post("/groups/:id/members", func(c *fiber.Ctx) error {
		var req struct {
			UserID string `json:"user_id" validate:"required"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "user_id required"})
		}
		if err := groupService.AddMember(c.Context(), c.Params("id"), req.UserID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return c.Status(404).JSON(fiber.Map{"error": "group not found"})
			}
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.SendStatus(204)
	})

	// History
	protected.Get("/history/group/:groupId", handlers.GroupHistoryHandler(history))
	protected.Get("/history/direct/:userA/:userB", handlers.DirectHistoryHandler(history))

	// Health & metrics
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// WebSocket route. Middleware order matters: upgrade check, then auth.
	app.Use("/ws", handlers.WSUpgradeMiddleware)
	app.Use("/ws", handlers.AuthMiddleware(authService))
	app.Get("/ws", ws.Handler())

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic().Err(err).Msg("server stopped")
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	log.Info().Msg("gracefully shutting down")
	_ = app.Shutdown()
	log.Info().Msg("server shutdown complete")
}
