package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvJWTSecret    = "JWT_SECRET"
	EnvJWTAccessTTL = "JWT_ACCESS_TTL"

	EnvKafkaBrokers       = "KAFKA_BROKERS"
	EnvNotificationsTopic = "NOTIFICATIONS_TOPIC"

	EnvCloudinaryURL    = "CLOUDINARY_URL"
	EnvCloudinaryFolder = "CLOUDINARY_FOLDER"

	EnvEmailAPIURL  = "EMAIL_API_URL"
	EnvEmailAPIKey  = "EMAIL_API_KEY"
	EnvEmailSender  = "EMAIL_SENDER"
	EnvEmailFrom    = "EMAIL_FROM_NAME"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
