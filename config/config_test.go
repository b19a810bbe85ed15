package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	envVars := []string{
		"SERVER_ADDR", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB",
		"STORAGE_BACKEND", "PINATA_API_URL", "PINATA_JWT", "IPFS_GATEWAY_URL",
		"MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_BUCKET",
		"MINIO_REGION", "MINIO_USE_SSL",
		"STORY_API_URL", "STORY_CHAIN_ID", "NFT_CONTRACT_ADDRESS",
		"WIP_TOKEN_ADDRESS", "STORY_SIGNER_ADDRESS",
		"JWT_SECRET", "LOG_LEVEL", "LOG_PATH",
	}
	for _, k := range envVars {
		os.Unsetenv(k)
	}

	cfg := Load()

	if cfg.ServerAddr != ":8080" {
		t.Errorf("ServerAddr = %q, want :8080", cfg.ServerAddr)
	}
	if cfg.DBHost != "127.0.0.1" {
		t.Errorf("DBHost = %q, want 127.0.0.1", cfg.DBHost)
	}
	if cfg.DBName != "storyfm" {
		t.Errorf("DBName = %q, want storyfm", cfg.DBName)
	}
	if cfg.RedisDB != 0 {
		t.Errorf("RedisDB = %d, want 0", cfg.RedisDB)
	}
	if cfg.StorageBackend != "pinata" {
		t.Errorf("StorageBackend = %q, want pinata", cfg.StorageBackend)
	}
	if cfg.PinataAPIURL != "https://api.pinata.cloud/pinning/pinFileToIPFS" {
		t.Errorf("PinataAPIURL = %q, want pinning endpoint default", cfg.PinataAPIURL)
	}
	if cfg.GatewayURL != "https://gateway.pinata.cloud/ipfs" {
		t.Errorf("GatewayURL = %q, want gateway default", cfg.GatewayURL)
	}
	if cfg.StoryAPIURL != "http://localhost:3000" {
		t.Errorf("StoryAPIURL = %q, want http://localhost:3000", cfg.StoryAPIURL)
	}
	if cfg.StoryChainID != "aeneid" {
		t.Errorf("StoryChainID = %q, want aeneid", cfg.StoryChainID)
	}
	if cfg.WIPTokenAddress != "0x1514000000000000000000000000000000000000" {
		t.Errorf("WIPTokenAddress = %q, want WIP default", cfg.WIPTokenAddress)
	}
	if cfg.SignerAddress != "" {
		t.Errorf("SignerAddress = %q, want empty default", cfg.SignerAddress)
	}
	if cfg.MinioUseSSL {
		t.Error("MinioUseSSL = true, want false default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	os.Setenv("SERVER_ADDR", ":9090")
	os.Setenv("STORAGE_BACKEND", "minio")
	os.Setenv("REDIS_DB", "5")
	os.Setenv("MINIO_USE_SSL", "true")
	defer func() {
		os.Unsetenv("SERVER_ADDR")
		os.Unsetenv("STORAGE_BACKEND")
		os.Unsetenv("REDIS_DB")
		os.Unsetenv("MINIO_USE_SSL")
	}()

	cfg := Load()

	if cfg.ServerAddr != ":9090" {
		t.Errorf("ServerAddr = %q, want :9090", cfg.ServerAddr)
	}
	if cfg.StorageBackend != "minio" {
		t.Errorf("StorageBackend = %q, want minio", cfg.StorageBackend)
	}
	if cfg.RedisDB != 5 {
		t.Errorf("RedisDB = %d, want 5", cfg.RedisDB)
	}
	if !cfg.MinioUseSSL {
		t.Error("MinioUseSSL = false, want true")
	}
}

func TestGetEnvIntInvalid(t *testing.T) {
	os.Setenv("REDIS_DB", "not-a-number")
	defer os.Unsetenv("REDIS_DB")

	if got := getEnvInt("REDIS_DB", 3); got != 3 {
		t.Errorf("getEnvInt with invalid value = %d, want fallback 3", got)
	}
}
