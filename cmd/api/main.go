package main

import (
	"github.com/gin-gonic/gin"

	"hostel/internal/config"
	"hostel/internal/database"
	"hostel/internal/logger"
	"hostel/internal/middleware"
	"hostel/internal/modules/auth"
	"hostel/internal/modules/booking"
	"hostel/internal/modules/catalog"
	"hostel/internal/notification"
	jwtsvc "hostel/internal/pkg/jwt"
	"hostel/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.ErrorLogger.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.ErrorLogger.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	packRepo := repository.NewPackRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	tokens := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	var notifier booking.NotificationSender
	if cfg.SMTP.Enabled() {
		notifier = notification.NewEmailSender(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Username,
			cfg.SMTP.Password,
			cfg.SMTP.From,
		)
	} else {
		logger.InfoLogger.Info("SMTP not configured, booking confirmations will be logged")
		notifier = notification.LogSender{}
	}

	authService := auth.NewService(userRepo, tokens)
	authHandler := auth.NewHandler(authService)

	catalogService := catalog.NewService(roomRepo, serviceRepo, packRepo)
	catalogHandler := catalog.NewHandler(catalogService)

	bookingStore := booking.NewGormStore(bookingRepo)
	codegen := booking.NewCodeGenerator(booking.NewCryptoSource())
	bookingService := booking.NewService(bookingStore, codegen, notifier)
	availability := booking.NewAvailability(bookingStore, roomRepo)
	bookingHandler := booking.NewHandler(bookingService, availability)

	r := gin.New()
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterRoutes(v1)
		catalogHandler.RegisterRoutes(v1)
		bookingHandler.RegisterRoutes(v1)

		// any authenticated staff member
		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(tokens))
		{
			authHandler.RegisterProtectedRoutes(protected)
		}

		// admin only
		admin := v1.Group("/admin")
		admin.Use(middleware.JWTAuth(tokens), middleware.AdminOnly())
		{
			authHandler.RegisterAdminRoutes(admin)
			catalogHandler.RegisterAdminRoutes(admin)
			bookingHandler.RegisterAdminRoutes(admin)
		}
	}

	logger.InfoLogger.Infof("listening on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		logger.ErrorLogger.Fatal(err)
	}
}
