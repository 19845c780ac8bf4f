package main

import (
	"time"

	adminhandler "skillex/internal/admin/handler"
	adminservice "skillex/internal/admin/service"
	authhandler "skillex/internal/auth/handler"
	authservice "skillex/internal/auth/service"
	bookinghandler "skillex/internal/bookings/handler"
	bookingrepo "skillex/internal/bookings/repository"
	bookingservice "skillex/internal/bookings/service"
	bookingvalidator "skillex/internal/bookings/validator"
	"skillex/internal/health"
	listinghandler "skillex/internal/listings/handler"
	listingrepo "skillex/internal/listings/repository"
	listingservice "skillex/internal/listings/service"
	listingvalidator "skillex/internal/listings/validator"
	messagehandler "skillex/internal/messages/handler"
	messagerepo "skillex/internal/messages/repository"
	messageservice "skillex/internal/messages/service"
	reviewhandler "skillex/internal/reviews/handler"
	reviewrepo "skillex/internal/reviews/repository"
	reviewservice "skillex/internal/reviews/service"
	reviewvalidator "skillex/internal/reviews/validator"
	"skillex/internal/router"
	userhandler "skillex/internal/users/handler"
	userrepo "skillex/internal/users/repository"
	userservice "skillex/internal/users/service"
	uservalidator "skillex/internal/users/validator"
	"skillex/pkg/app"
	"skillex/pkg/config"
	"skillex/pkg/kafka"
	"skillex/pkg/media"
	"skillex/pkg/middleware"
	"skillex/pkg/notify"
)

const ServiceName = "api"

const notifyTimeout = 5 * time.Second

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	notifier := initNotifier(cfg)
	defer notifier.Close()

	appRouter := initRouter(cfg, notifier, initMediaStore(cfg))

	cfg.Log.Info("Starting API service")
	app.NewApplication(cfg, appRouter).Run()
}

func initRouter(cfg *config.Config, notifier notify.Notifier, mediaStore media.Store) *router.Router {
	auth := middleware.NewAuthenticator(cfg.JWTSecret, cfg.Log)

	users := userrepo.NewMongoUserRepository(cfg)
	listings := listingrepo.NewMongoListingRepository(cfg)
	favorites := listingrepo.NewMongoFavoriteRepository(cfg)
	bookings := bookingrepo.NewMongoBookingRepository(cfg)
	reviews := reviewrepo.NewMongoReviewRepository(cfg)
	messages := messagerepo.NewMongoMessageRepository(cfg)

	authSvc := authservice.NewAuthService(users, cfg)
	userSvc := userservice.NewUserService(users, uservalidator.NewUserValidator(cfg.Log), mediaStore, cfg)
	listingSvc := listingservice.NewListingService(listings, favorites, users, listingvalidator.NewListingValidator(cfg.Log), mediaStore, cfg)
	bookingSvc := bookingservice.NewBookingService(bookings, listings, users, bookingvalidator.NewBookingValidator(cfg.Log), notifier, cfg)
	reviewSvc := reviewservice.NewReviewService(reviews, bookings, users, reviewvalidator.NewReviewValidator(cfg.Log), notifier, cfg)
	messageSvc := messageservice.NewMessageService(messages, users, notifier, cfg)
	adminSvc := adminservice.NewAdminService(users, listings, bookings, reviews, cfg)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	return router.New(
		authhandler.NewAuthHandler(authSvc, auth, cfg.Log),
		userhandler.NewUserHandler(userSvc, auth, cfg.Log),
		listinghandler.NewListingHandler(listingSvc, auth, cfg.Log),
		bookinghandler.NewBookingHandler(bookingSvc, auth, cfg.Log),
		reviewhandler.NewReviewHandler(reviewSvc, auth, cfg.Log),
		messagehandler.NewMessageHandler(messageSvc, auth, cfg.Log),
		adminhandler.NewAdminHandler(adminSvc, auth, cfg.Log),
		health.NewHandler(cfg.Client.Mongo, cfg.Log),
	)
}

func initNotifier(cfg *config.Config) notify.Notifier {
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.NotificationsTopic, cfg.Log)
	if err != nil {
		cfg.Log.Warn("Kafka producer unavailable, notifications disabled", "error", err)
		return &notify.NoopNotifier{}
	}
	return notify.NewKafkaNotifier(producer, ServiceName, notifyTimeout, cfg.Log)
}

func initMediaStore(cfg *config.Config) media.Store {
	if cfg.CloudinaryURL == "" {
		cfg.Log.Warn("Cloudinary not configured, image uploads disabled")
		return &media.NoopStore{}
	}

	store, err := media.NewCloudinaryStore(cfg.CloudinaryURL, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize media storage", "error", err)
	}
	return store
}
