package api

import (
	"log"

	"github.com/crewple/user_service/config"
	"github.com/crewple/user_service/infra/queue"
	"github.com/crewple/user_service/internal/api/rest/handlers"
	"github.com/crewple/user_service/internal/api/rest/middleware"
	oauthclient "github.com/crewple/user_service/internal/clients/oauth"
	"github.com/crewple/user_service/internal/domain"
	"github.com/crewple/user_service/internal/helper"
	"github.com/crewple/user_service/internal/repository"
	"github.com/crewple/user_service/internal/services"
	"github.com/crewple/user_service/pkg/cloudinary"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func StartServer(cfg config.Config) {
	app := fiber.New()

	// ---------- CORS ----------
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.BaseURL,
		AllowHeaders:     "Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// ---------- DB ----------
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DatabaseDSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("database connection error: %v", err)
	}
	log.Println("database connected")

	// ---------- MIGRATION (guarded by advisory lock) ----------
	const migrateLockID int64 = 20260901

	if err := db.Exec("SELECT pg_advisory_lock(?)", migrateLockID).Error; err != nil {
		log.Fatalf("migration lock error: %v", err)
	}
	defer func() {
		_ = db.Exec("SELECT pg_advisory_unlock(?)", migrateLockID).Error
	}()

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.UserIdentity{},
		&domain.RefreshSession{},
	); err != nil {
		log.Fatalf("migration error: %v", err)
	}
	log.Println("migration successful")

	// ---------- Infra ----------
	kafkaProducer := queue.NewProducer(
		cfg.KafkaBroker,
		cfg.KafkaTopic,
		cfg.KafkaUsername,
		cfg.KafkaPassword,
	)
	cld, err := cloudinary.New()
	if err != nil {
		log.Fatalf("cloudinary init error: %v", err)
	}
	up := cloudinary.NewCloudinaryUploader(cld)

	authHelper := helper.SetupAuth(cfg.AccessSecret)
	crypter, err := helper.NewEncryptor(cfg.EncryptionKey)
	if err != nil {
		log.Fatalf("encryptor init error: %v", err)
	}

	providers := map[string]*oauthclient.Client{
		domain.ProviderGoogle: oauthclient.NewGoogle(cfg.Google),
		domain.ProviderKakao:  oauthclient.NewKakao(cfg.Kakao),
		domain.ProviderNaver:  oauthclient.NewNaver(cfg.Naver),
	}

	// ---------- Repositories ----------
	userRepo := repository.NewUserRepository(db)
	identityRepo := repository.NewIdentityRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	txManager := repository.NewTxManager(db)

	// opportunistic cleanup; expired rows are also filtered at query time
	if n, err := sessionRepo.DeleteExpired(); err != nil {
		log.Printf("expired session cleanup error: %v", err)
	} else if n > 0 {
		log.Printf("removed %d expired refresh sessions", n)
	}

	// ---------- Services ----------
	oauthSvc := services.NewOAuthService(
		userRepo,
		identityRepo,
		sessionRepo,
		txManager,
		authHelper,
		crypter,
		kafkaProducer,
	)
	userSvc := services.NewUserService(
		userRepo,
		sessionRepo,
		authHelper,
		up,
		kafkaProducer,
	)

	// ---------- Handlers ----------
	authHandler := handlers.NewAuthHandler(userSvc, oauthSvc, authHelper)
	oauthHandler := handlers.NewOAuthHandler(
		oauthSvc,
		authHelper,
		providers,
		cfg.OAuthRedirectSuccess,
		cfg.OAuthRedirectFailure,
	)
	userHandler := handlers.NewUserHandler(userSvc, authHelper)

	authMW := middleware.AuthMiddleware(authHelper, userRepo)
	adminMW := middleware.AdminOnly(authHelper)
	handlers.SetupRoutes(app, authHandler, oauthHandler, userHandler, authMW, adminMW)

	// ---------- Health ----------
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// ---------- Listen ----------
	addr := cfg.ServerPort
	log.Println("listening on", addr)
	log.Fatal(app.Listen(addr))
}
