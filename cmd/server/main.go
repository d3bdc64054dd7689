package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/insiderbookings/backoffice/internal/config"
	"github.com/insiderbookings/backoffice/internal/database"
	"github.com/insiderbookings/backoffice/internal/handlers"
	"github.com/insiderbookings/backoffice/internal/middleware"
	"github.com/insiderbookings/backoffice/internal/models"
	"github.com/insiderbookings/backoffice/internal/services"
	"github.com/insiderbookings/backoffice/pkg/jwt"
	"github.com/insiderbookings/backoffice/pkg/mailer"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Insider Bookings back office")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Repositories
	userRepo := database.NewUserRepository(db)
	staffRepo := database.NewStaffRepository(db)
	hotelRepo := database.NewHotelRepository(db)
	addOnRepo := database.NewAddOnRepository(db)
	bookingRepo := database.NewBookingRepository(db)
	outsideRepo := database.NewOutsideBookingRepository(db)
	pivotRepo := database.NewBookingAddOnRepository(db)
	discountRepo := database.NewDiscountCodeRepository(db)
	upsellRepo := database.NewUpsellCodeRepository(db)
	eventRepo := database.NewPaymentEventRepository(db)
	auditRepo := database.NewLoginAuditRepository(db)

	// Services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.MagicLinkExpiry)
	mail := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		FromName: cfg.SMTP.FromName,
	}, logger)
	codeService := services.NewCodeService(discountRepo, upsellRepo, staffRepo, cfg.Codes.Length, cfg.Codes.MaxGenAttempts)
	pricingService := services.NewPricingService(hotelRepo, codeService, logger)
	requestService := services.NewAddOnRequestService(pivotRepo, outsideRepo, addOnRepo, mail, logger)
	upsellService := services.NewUpsellService(codeService, upsellRepo, pivotRepo, outsideRepo, cfg.Codes.UpsellTTL)
	auditService := services.NewAuditService(auditRepo, cfg.Security.EnableLoginAudit, logger)
	paymentService := services.NewPaymentService(
		cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, cfg.Stripe.Currency,
		eventRepo, bookingRepo, outsideRepo, pivotRepo, upsellRepo, logger,
	)

	// Handlers
	authHandler := handlers.NewAuthHandler(
		userRepo, staffRepo, outsideRepo, codeService, auditService,
		jwtService, mail, logger, cfg.Security.BcryptCost, cfg.Server.ClientURL,
	)
	userHandler := handlers.NewUserHandler(userRepo, cfg.Security.BcryptCost)
	hotelHandler := handlers.NewHotelHandler(hotelRepo, staffRepo)
	bookingHandler := handlers.NewBookingHandler(
		bookingRepo, outsideRepo, hotelRepo, staffRepo,
		codeService, pricingService, logger,
	)
	outsideHandler := handlers.NewOutsideBookingHandler(
		outsideRepo, hotelRepo, pricingService, mail, logger,
		cfg.Server.ClientURL, cfg.Policy.TrustChannelPayments,
	)
	addOnHandler := handlers.NewAddOnHandler(addOnRepo, staffRepo, requestService)
	discountHandler := handlers.NewDiscountHandler(discountRepo, staffRepo, codeService)
	upsellHandler := handlers.NewUpsellHandler(upsellRepo, upsellService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, bookingRepo, pivotRepo, upsellRepo, logger)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(middleware.RequestLogger(logger))
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthCheckHandler(db))

	auth := middleware.AuthMiddleware(jwtService)
	staffOnly := middleware.RequireStaff()
	managerOnly := middleware.RequireRole(models.RoleHotelManager)

	v1 := router.Group("/api/v1")
	{
		// Public auth
		v1.POST("/auth/register", authHandler.RegisterUser)
		v1.POST("/auth/login", authHandler.LoginUser)
		v1.POST("/auth/staff/login", authHandler.LoginStaff)
		v1.POST("/auth/auto-signup", authHandler.AutoSignup)
		v1.POST("/auth/set-password", authHandler.SetPassword)
		v1.GET("/auth/validate-token/:token", authHandler.ValidateSetPasswordToken)
		v1.GET("/auth/roles", authHandler.ListRoles)
		v1.GET("/auth/me", auth, authHandler.Me)
		v1.POST("/auth/staff/register", auth, staffOnly, managerOnly, authHandler.RegisterStaff)

		// Guest profile
		v1.PUT("/users/me", auth, userHandler.UpdateProfile)
		v1.PUT("/users/me/password", auth, userHandler.ChangePassword)
		v1.DELETE("/users/me", auth, userHandler.DeleteAccount)
		v1.GET("/users", auth, staffOnly, userHandler.ListUsers)

		// Hotels and rooms
		v1.GET("/hotels", hotelHandler.ListHotels)
		v1.GET("/hotels/:id", hotelHandler.GetHotel)
		v1.POST("/hotels", auth, staffOnly, managerOnly, hotelHandler.CreateHotel)
		v1.PUT("/hotels/:id", auth, staffOnly, managerOnly, hotelHandler.UpdateHotel)
		v1.DELETE("/hotels/:id", auth, staffOnly, managerOnly, hotelHandler.DeleteHotel)
		v1.POST("/hotels/:id/rooms", auth, staffOnly, managerOnly, hotelHandler.CreateRoom)
		v1.PUT("/rooms/:roomId", auth, staffOnly, hotelHandler.UpdateRoom)
		v1.DELETE("/rooms/:roomId", auth, staffOnly, hotelHandler.DeleteRoom)
		v1.GET("/staff/hotels", auth, staffOnly, hotelHandler.MyHotels)

		// Bookings
		v1.GET("/bookings/quote", bookingHandler.Quote)
		v1.POST("/bookings", bookingHandler.CreateBooking)
		v1.GET("/bookings/me", auth, bookingHandler.MyStays)
		v1.GET("/bookings/:id", auth, bookingHandler.GetBooking)
		v1.POST("/bookings/:id/cancel", auth, bookingHandler.CancelBooking)
		v1.GET("/hotels/:id/bookings", auth, staffOnly, bookingHandler.HotelBookings)
		v1.GET("/bookings/staff/me", auth, staffOnly, bookingHandler.StaffBookings)
		v1.GET("/staff/commissions", auth, staffOnly, bookingHandler.MyCommissions)

		// Outside bookings
		v1.POST("/outside-bookings", auth, staffOnly, outsideHandler.Import)
		v1.GET("/outside-bookings/lookup", outsideHandler.Lookup)
		v1.GET("/outside-bookings/:id", auth, outsideHandler.GetByID)
		v1.POST("/outside-bookings/upgrade-quote", outsideHandler.UpgradeQuote)

		// Add-ons
		v1.GET("/addons", addOnHandler.ListCatalog)
		v1.GET("/hotels/:id/addons", addOnHandler.ListHotelCatalog)
		v1.PUT("/hotels/:id/addons", auth, staffOnly, addOnHandler.SetHotelAddOn)
		v1.POST("/outside-bookings/:id/addons", auth, addOnHandler.RequestAddOn)
		v1.PUT("/outside-bookings/:id/addons", auth, addOnHandler.ReplaceAddOns)
		v1.GET("/outside-bookings/:id/addons", auth, addOnHandler.ListBookingAddOns)
		v1.GET("/hotels/:id/addon-requests", auth, staffOnly, addOnHandler.PendingRequests)
		v1.PATCH("/addon-requests/:id", auth, staffOnly, addOnHandler.DecideRequest)

		// Discount codes
		v1.POST("/discount-codes", auth, staffOnly, discountHandler.CreateCode)
		v1.GET("/discount-codes", auth, staffOnly, discountHandler.MyCodes)
		v1.DELETE("/discount-codes/:id", auth, staffOnly, discountHandler.DeactivateCode)
		v1.POST("/discount-codes/validate", discountHandler.ValidateCode)
		v1.POST("/discounts/validate", discountHandler.ValidateStaffCode)

		// Upsell codes
		v1.POST("/upsell-codes", auth, staffOnly, upsellHandler.CreateCode)
		v1.GET("/upsell-codes", auth, staffOnly, upsellHandler.MyCodes)
		v1.GET("/upsell-codes/:id", upsellHandler.GetCode)
		v1.POST("/upsell-codes/redeem", auth, upsellHandler.RedeemCode)

		// Payments
		v1.POST("/payments/checkout", auth, paymentHandler.CreateBookingCheckout)
		v1.POST("/payments/addon-checkout", auth, paymentHandler.CreateAddOnCheckout)
		v1.POST("/payments/upsell-checkout", auth, paymentHandler.CreateUpsellCheckout)
		v1.POST("/payments/apple-pay", auth, paymentHandler.ProcessApplePay)
		v1.POST("/payments/webhook", paymentHandler.Webhook)
	}

	// HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
