package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"github.com/furukawa1020/furukawalabo1/pkg/messaging"

	handlers "github.com/furukawa1020/furukawalabo1/internal/adapter/handler/http"
	"github.com/furukawa1020/furukawalabo1/internal/config"
	"github.com/furukawa1020/furukawalabo1/internal/infrastructure/database"
	"github.com/furukawa1020/furukawalabo1/internal/middleware/auth"
	"github.com/furukawa1020/furukawalabo1/internal/realtime"
	"github.com/furukawa1020/furukawalabo1/internal/usecase"
)

type Server struct {
	config *config.Config
	logger *zap.Logger
	echo   *echo.Echo
	repos  *database.Repositories
	redis  messaging.RedisClient
	hub    *realtime.Hub
}

func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	repos *database.Repositories,
	redis messaging.RedisClient,
	hub *realtime.Hub,
) *Server {
	e := echo.New()
	e.HideBanner = true

	// Initialize Stripe
	stripe.Key = cfg.Stripe.SecretKey

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.ClientURL},
		AllowMethods: []string{echo.GET, echo.POST, echo.PATCH, echo.DELETE},
	}))

	return &Server{
		config: cfg,
		logger: logger,
		echo:   e,
		repos:  repos,
		redis:  redis,
		hub:    hub,
	}
}

func (s *Server) Start() error {
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	// Donations go through Redis when available so every process in the
	// cluster rebroadcasts them; otherwise straight into the local hub.
	var broadcaster realtime.Broadcaster
	if s.redis != nil {
		broadcaster = realtime.NewRedisBroadcaster(s.redis, realtime.Channel, s.logger)
		s.hub.SetAnnouncer(broadcaster)
	} else {
		broadcaster = realtime.NewHubBroadcaster(s.hub)
	}

	donationService := usecase.NewDonationService(
		s.repos.Donation,
		broadcaster,
		s.logger,
		s.config.Webhook.BMCSecret,
		s.config.Service.Currency,
		s.config.Service.ClientURL,
	)
	questionService := usecase.NewQuestionService(s.repos.Question, s.logger)
	workService := usecase.NewWorkService(s.repos.Work, s.redis, s.logger)
	syncService := usecase.NewWorkSyncService(
		s.repos.Work,
		workService,
		s.logger,
		s.config.Sync.BaseURL,
		s.config.Sync.WorkIDs,
		s.config.Sync.Delay,
		s.config.Sync.FetchTimeout,
	)

	webhookHandler := handlers.NewWebhookHandler(s.logger, donationService)
	stripeWebhookHandler := handlers.NewStripeWebhookHandler(s.logger, s.config.Stripe.WebhookSecret, donationService)
	donationHandler := handlers.NewDonationHandler(s.logger, donationService)
	questionHandler := handlers.NewQuestionHandler(s.logger, questionService)
	workHandler := handlers.NewWorkHandler(s.logger, workService)
	syncHandler := handlers.NewSyncHandler(s.logger, syncService)
	realtimeHandler := handlers.NewRealtimeHandler(s.logger, s.hub)

	// API v1 routes
	v1 := s.echo.Group("/api/v1")

	// Public routes
	v1.GET("/donations", donationHandler.GetDonations)
	v1.POST("/donations", donationHandler.CreateCheckout)
	v1.POST("/questions", questionHandler.SubmitQuestion)
	v1.GET("/questions", questionHandler.ListAnswered)
	v1.GET("/works", workHandler.ListWorks)
	v1.GET("/works/:id", workHandler.GetWork)
	v1.GET("/stream", realtimeHandler.Stream)

	// Webhooks authenticate with signatures, not JWTs
	v1.POST("/webhook/bmc", webhookHandler.HandleBMC)
	v1.POST("/webhook/stripe", stripeWebhookHandler.HandleWebhook)

	// Admin routes (require JWT authentication)
	jwtConfig := auth.JWTConfig{
		Secret: s.config.Admin.JWTSecret,
		Logger: s.logger,
	}
	admin := v1.Group("/admin", auth.JWTMiddleware(jwtConfig))
	admin.GET("/questions", questionHandler.ListByStatus)
	admin.PATCH("/questions/:id", questionHandler.Moderate)
	admin.POST("/sync/protopedia", syncHandler.TriggerSync)
	admin.GET("/sync/protopedia", syncHandler.GetLastResult)
}
