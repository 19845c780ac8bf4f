package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "skillex"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultJWTAccessTTL = 24 * time.Hour

	DefaultKafkaBrokers       = "localhost:9092"
	DefaultNotificationsTopic = "skillex.notifications"

	DefaultCloudinaryFolder = "skillex"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 5 * 1024 * 1024 // 5MB, avatar and listing images arrive inline

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)
