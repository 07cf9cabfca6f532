package bus

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvBrokers           = "KAFKA_BROKERS"
	EnvNotificationTopic = "KAFKA_NOTIFICATION_TOPIC"
	EnvEventTopic        = "KAFKA_EVENT_TOPIC"
	EnvDLQTopic          = "KAFKA_DLQ_TOPIC"
	EnvGroupID           = "KAFKA_GROUP_ID"
	EnvMaxRetries        = "KAFKA_MAX_RETRIES"
	EnvCommitInterval    = "KAFKA_COMMIT_INTERVAL"
	EnvBatchTimeout      = "KAFKA_BATCH_TIMEOUT"
)

const (
	DefaultBrokers           = "localhost:9092"
	DefaultNotificationTopic = "calendar.notifications"
	DefaultEventTopic        = "calendar.events"
	DefaultDLQTopic          = "calendar.notifications.dlq"
	DefaultGroupID           = "roomgrid"
	DefaultMaxRetries        = 3
	DefaultCommitInterval    = time.Second
	DefaultBatchTimeout      = 10 * time.Millisecond
)

type Config struct {
	Brokers           []string
	NotificationTopic string
	EventTopic        string
	DLQTopic          string
	GroupID           string
	MaxRetries        int
	CommitInterval    time.Duration
	BatchTimeout      time.Duration
}

func LoadConfig() *Config {
	brokers := strings.Split(getEnvStr(EnvBrokers, DefaultBrokers), ",")
	for i, b := range brokers {
		brokers[i] = strings.TrimSpace(b)
	}

	return &Config{
		Brokers:           brokers,
		NotificationTopic: getEnvStr(EnvNotificationTopic, DefaultNotificationTopic),
		EventTopic:        getEnvStr(EnvEventTopic, DefaultEventTopic),
		DLQTopic:          getEnvStr(EnvDLQTopic, DefaultDLQTopic),
		GroupID:           getEnvStr(EnvGroupID, DefaultGroupID),
		MaxRetries:        getEnvNum(EnvMaxRetries, DefaultMaxRetries),
		CommitInterval:    getEnvDuration(EnvCommitInterval, DefaultCommitInterval),
		BatchTimeout:      getEnvDuration(EnvBatchTimeout, DefaultBatchTimeout),
	}
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
