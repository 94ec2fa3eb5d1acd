package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all deployment parameters for the notifier.
type Config struct {
	Port      string
	MongoURI  string
	MongoDB   string
	JWTSecret string

	// TimeZone anchors the reminder day boundaries (original deployment ran
	// in Asia/Tokyo).
	TimeZone            string
	EventReminderCron   string
	PaymentReminderCron string

	FCMEndpoint  string
	FCMServerKey string
	FCMTimeout   time.Duration
}

// LoadConfig reads configuration from the environment, loading a .env file
// first if one is present.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, relying on environment")
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		MongoURI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:             getEnv("MONGO_DB", "circle_notifier"),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		TimeZone:            getEnv("TIME_ZONE", "Asia/Tokyo"),
		EventReminderCron:   getEnv("EVENT_REMINDER_CRON", "0 9 * * *"),
		PaymentReminderCron: getEnv("PAYMENT_REMINDER_CRON", "0 * * * *"),
		FCMEndpoint:         getEnv("FCM_ENDPOINT", "https://fcm.googleapis.com/fcm/send"),
		FCMServerKey:        getEnv("FCM_SERVER_KEY", ""),
		FCMTimeout:          getDurationEnv("FCM_TIMEOUT", 10*time.Second),
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logrus.WithField("key", key).Warn("Invalid duration, using default")
		return defaultValue
	}
	return d
}
