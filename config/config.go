package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
// Values come from the environment (optionally via a .env file) with
// simple defaults suitable for local development.
type Config struct {
	ServerAddr string // HTTP listen address, e.g. ":8080"

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis配置
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// IPFS 存储配置：backend 为 "pinata" 或 "minio"
	StorageBackend string
	PinataAPIURL   string // Pinata pinning endpoint
	PinataJWT      string // Bearer token for the pinning API
	GatewayURL     string // Public IPFS gateway, no trailing slash

	// MinIO 自托管存储配置
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool

	// Story Protocol 链上配置
	StoryAPIURL        string // Story SDK sidecar base URL
	StoryChainID       string // e.g. "aeneid"
	NFTContractAddress string // SPG NFT collection contract
	WIPTokenAddress    string // wrapped IP token used as license currency
	SignerAddress      string // account the sidecar signs with; empty = not connected

	JWTSecret string

	// 日志配置
	LogLevel string
	LogPath  string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// Attempt to load .env file. godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"), // For password, better not to have a hardcoded default
		DBName:     getEnv("DB_NAME", "storyfm"),

		// Redis配置，使用默认值
		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""), // 默认无密码
		RedisDB:       getEnvInt("REDIS_DB", 0),     // 默认使用0号数据库

		StorageBackend: getEnv("STORAGE_BACKEND", "pinata"),
		PinataAPIURL:   getEnv("PINATA_API_URL", "https://api.pinata.cloud/pinning/pinFileToIPFS"),
		PinataJWT:      os.Getenv("PINATA_JWT"),
		GatewayURL:     getEnv("IPFS_GATEWAY_URL", "https://gateway.pinata.cloud/ipfs"),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "storyfm"),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		StoryAPIURL:        getEnv("STORY_API_URL", "http://localhost:3000"),
		StoryChainID:       getEnv("STORY_CHAIN_ID", "aeneid"),
		NFTContractAddress: os.Getenv("NFT_CONTRACT_ADDRESS"),
		WIPTokenAddress:    getEnv("WIP_TOKEN_ADDRESS", "0x1514000000000000000000000000000000000000"),
		SignerAddress:      os.Getenv("STORY_SIGNER_ADDRESS"),

		JWTSecret: getEnv("JWT_SECRET", "storyfm-dev-secret"),

		LogLevel: getEnv("LOG_LEVEL", "debug"),
		LogPath:  getEnv("LOG_PATH", ""),
	}
}
