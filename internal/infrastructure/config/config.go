package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Common holds the settings shared by the reader and the writer
type Common struct {
	// App
	AppVersion string
	LogLevel   string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Stream
	NatsURL           string
	NatsMaxReconnects int
	NatsReconnectWait time.Duration
	GroupID           string
	PollTimeout       time.Duration
}

// ReaderConfig holds the configuration of the enrichment process
type ReaderConfig struct {
	Common

	InputTopic   string
	OutputTopic  string
	OutputFormat string
	StrictDecode bool

	// Reference data
	RatesFile string
	GeoFile   string

	// MongoDB reject store, disabled when MongoURI is empty
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string
}

// WriterConfig holds the configuration of the persister process
type WriterConfig struct {
	Common

	Topic string

	// PostgreSQL
	PGHost     string
	PGPort     string
	PGDatabase string
	PGUser     string
	PGPassword string
	PGTable    string
}

// LoadReaderConfig loads the reader configuration from environment variables
func LoadReaderConfig() (*ReaderConfig, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &ReaderConfig{
		Common: loadCommon("8080", "default-group"),

		InputTopic:   getEnv("KAFKA_INPUT_TOPIC", "flight-searches"),
		OutputTopic:  getEnv("KAFKA_OUTPUT_TOPIC", "decorated-recos"),
		OutputFormat: getEnv("OUTPUT_FORMAT", "json"),
		StrictDecode: getEnvAsBool("STRICT_DECODE", false),

		RatesFile: getEnv("RATES_FILE", "etc/eurofxref.csv"),
		GeoFile:   getEnv("GEO_FILE", "etc/optd_por_public.csv"),

		MongoURI:      getEnv("MONGODB_DSN", ""),
		MongoDB:       getEnv("MONGO_DB", "travel"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),
	}

	return config, nil
}

// LoadWriterConfig loads the writer configuration from environment variables
func LoadWriterConfig() (*WriterConfig, error) {
	godotenv.Load()

	config := &WriterConfig{
		Common: loadCommon("8081", "reco-writers"),

		Topic: getEnv("KAFKA_TOPIC", "decorated-recos"),

		PGHost:     getEnv("PG_HOST", "localhost"),
		PGPort:     getEnv("PG_PORT", "5432"),
		PGDatabase: getEnv("PG_DATABASE", "flightdb"),
		PGUser:     getEnv("PG_USER", "postgres"),
		PGPassword: getEnv("PG_PASSWORD", ""),
		PGTable:    getEnv("PG_TABLE", "flight-recos"),
	}

	return config, nil
}

func loadCommon(defaultPort, defaultGroup string) Common {
	return Common{
		AppVersion: getEnv("APP_VERSION", "1.0.0"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		Port:         getEnv("PORT", defaultPort),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		NatsURL:           getEnv("NATS_URL", "nats://127.0.0.1:4222"),
		NatsMaxReconnects: getEnvAsInt("NATS_MAX_RECONNECTS", 60),
		NatsReconnectWait: time.Duration(getEnvAsInt("NATS_RECONNECT_WAIT", 2)) * time.Second,
		GroupID:           getEnv("KAFKA_GROUP_ID", defaultGroup),
		PollTimeout:       time.Duration(getEnvAsInt("POLL_TIMEOUT", 1)) * time.Second,
	}
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
