package config

import (
	"os"
	"strconv"
	"strings"
)

const appName = "agi-gateway"

type App struct {
	Name string
	Env  string
}

type Agi struct {
	Host      string
	Port      int
	RateLimit int
}

type Ari struct {
	Enabled     bool
	Host        string
	Port        int
	User        string
	Password    string
	Original    string
	Application string
	Secure      bool
}

type HTTPService struct {
	Port int
}

type Logger struct {
	Level string
}

type AppConfig struct {
	App          App
	Logger       Logger
	HTTPService  HTTPService
	Agi          Agi
	Ari          Ari
	QueueService QueueConfig
}

type QueueConfig struct {
	Kafka  KafkaBroker
	Topics TopicsList
}

type (
	TopicsList struct {
		Requests ProduceTopicConfig
	}
	KafkaBroker struct {
		Port             int
		BootstrapServers []string
	}
	ProduceTopicConfig struct {
		Name string
	}
)

func Init() (AppConfig, error) {
	var config AppConfig

	// default AppConfig
	config = AppConfig{
		App: App{
			Name: appName,
			Env:  os.Getenv("APP_ENV"),
		},
		Logger: Logger{
			Level: GetEnvAsStr("LOG_LEVEL", "DEBUG"),
		},
		HTTPService: HTTPService{
			Port: GetEnvAsInt("API_PORTHTTP", 8080),
		},
		Agi: Agi{
			Host:      GetEnvAsStr("AGI_HOST", ""),
			Port:      GetEnvAsInt("AGI_PORT", 4573),
			RateLimit: GetEnvAsInt("AGI_RATE_LIMIT", 100),
		},
		Ari: Ari{
			Enabled:     GetEnvAsBool("ARI_ENABLED", false),
			Host:        GetEnvAsStr("ARI_HOST", "asterisk.local"),
			Port:        GetEnvAsInt("ARI_PORT", 8089),
			Secure:      GetEnvAsBool("ARI_SECURE", true),
			User:        GetEnvAsStr("ARI_USER", "agi_gateway"),
			Password:    GetEnvAsStr("ARI_PASS", "agi_gateway"),
			Original:    GetEnvAsStr("ARI_ORIG", "http://agi-gateway.local"),
			Application: GetEnvAsStr("ARI_APP", appName),
		},
		QueueService: QueueConfig{
			Kafka: KafkaBroker{
				Port:             GetEnvAsInt("KAFKA_PORT", 9092),
				BootstrapServers: GetEnvAsStrSlice("KAFKA_BOOTSTRAP_SERVERS", []string{}),
			},
			Topics: TopicsList{
				Requests: ProduceTopicConfig{
					Name: GetEnvAsStr("KAFKA_TOPIC_REQUESTS", "agi_requests"),
				},
			},
		},
	}

	return config, nil
}

func GetEnvAsStr(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

// GetEnvAsStrSlice splits a comma separated value, dropping empty items.
func GetEnvAsStrSlice(key string, defaultVal []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}

	items := make([]string, 0)

	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}

func GetEnvAsInt(key string, defaultVal int) int {
	valueStr := GetEnvAsStr(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}

	return defaultVal
}

func GetEnvAsBool(key string, defaultVal bool) bool {
	valStr := GetEnvAsStr(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultVal
}
