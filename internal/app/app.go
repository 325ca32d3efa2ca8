package app

import (
	"database/sql"
	"fmt"
	"log"

	"habeshaexpat/internal/config"
	"habeshaexpat/internal/handlers"
	"habeshaexpat/internal/middleware"
	"habeshaexpat/internal/otp"
	"habeshaexpat/internal/pdf"
	"habeshaexpat/internal/repositories"
	"habeshaexpat/internal/routes"
	"habeshaexpat/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "habeshaexpat/docs"
)

func Run() {
	cfg := config.LoadConfig()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	// bearer-token signing key, read-only after this point
	middleware.JWTKey = []byte(cfg.Auth.JWTSecret)

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	auditRepo := repositories.NewAuditRepository(db)
	settingRepo := repositories.NewSettingRepository(db)

	// === Services ===
	authService := services.NewAuthService()
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
		cfg.OTP.TTL.Std(),
	)
	alertService := services.NewAlertService(
		cfg.Telegram.BotToken,
		cfg.Telegram.ChatID,
		cfg.Telegram.Enabled,
	)

	userService := services.NewUserService(userRepo)
	auditService := services.NewAuditService(auditRepo)
	settingService := services.NewSettingService(settingRepo)

	issuer := otp.NewIssuer(cfg.OTP.Secret, cfg.OTP.TTL.Std())
	resetService := services.NewPasswordResetService(userRepo, issuer, emailService, authService)

	reportGen := pdf.NewReportGenerator(cfg.Files.RootDir)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, authService, auditService, settingService, alertService, cfg.Auth.TokenTTL.Std())
	resetHandler := handlers.NewResetHandler(resetService, auditService, settingService, alertService)
	auditHandler := handlers.NewAuditHandler(auditService, reportGen)
	settingHandler := handlers.NewSettingHandler(settingService, auditService)

	// === Gin ===
	router := gin.Default()
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		authHandler,
		resetHandler,
		auditHandler,
		settingHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
