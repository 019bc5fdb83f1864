package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	NFT      NFTConfig
	Stripe   StripeConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Brokers []string
	Enabled bool
	Topics  TopicConfig
}

type TopicConfig struct {
	TicketPurchased string
	TicketCheckedIn string
	EventUpdated    string
	NFTMinted       string
}

type AuthConfig struct {
	OIDCIssuer string
	QRSecret   string
}

type NFTConfig struct {
	// PinServiceURL is the off-chain content storage endpoint. Empty
	// means uploads always fall back to inline data URIs.
	PinServiceURL string
	// MintServiceURL is the chain mint capability. Empty selects the
	// simulated minter.
	MintServiceURL string
	UploadTimeout  time.Duration
	MintTimeout    time.Duration
	LockTTL        time.Duration
}

type StripeConfig struct {
	SecretKey string
	Currency  string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8086"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:          getEnv("POSTGRES_DSN", ""),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_ADDR", "localhost:9092")},
			Enabled: getEnvBool("KAFKA_ENABLED", true),
			Topics: TopicConfig{
				TicketPurchased: getEnv("KAFKA_TOPIC_PURCHASED", "ticketly.ticket.purchased"),
				TicketCheckedIn: getEnv("KAFKA_TOPIC_CHECKEDIN", "ticketly.ticket.checkedin"),
				EventUpdated:    getEnv("KAFKA_TOPIC_EVENT_UPDATED", "ticketly.event.updated"),
				NFTMinted:       getEnv("KAFKA_TOPIC_NFT_MINTED", "ticketly.nft.minted"),
			},
		},
		Auth: AuthConfig{
			OIDCIssuer: getEnv("OIDC_ISSUER", ""),
			QRSecret:   getEnv("QR_SECRET_KEY", ""),
		},
		NFT: NFTConfig{
			PinServiceURL:  getEnv("PIN_SERVICE_URL", ""),
			MintServiceURL: getEnv("MINT_SERVICE_URL", ""),
			UploadTimeout:  time.Duration(getEnvInt("NFT_UPLOAD_TIMEOUT_SECONDS", 15)) * time.Second,
			MintTimeout:    time.Duration(getEnvInt("NFT_MINT_TIMEOUT_SECONDS", 30)) * time.Second,
			LockTTL:        time.Duration(getEnvInt("MINT_LOCK_TTL_SECONDS", 120)) * time.Second,
		},
		Stripe: StripeConfig{
			SecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			Currency:  getEnv("STRIPE_CURRENCY", "usd"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
