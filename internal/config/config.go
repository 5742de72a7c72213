package config

import (
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	APIAddr           string
	UploadDir         string
	ChunkSize         int
	ChunkOverlap      int
	FetchTimeoutSecs  int
	TopK              int
	MaxMessages       int
	EmbedDim          int
	SessionCookieName string
	LLMProviders      string
	EmbedProviders    string
}

func Load() Config {
	return Config{
		APIAddr:           getenv("DOCQA_API_ADDR", ":5000"),
		UploadDir:         getenv("DOCQA_UPLOAD_DIR", filepath.Join(os.TempDir(), "docqa-uploads")),
		ChunkSize:         getenvInt("DOCQA_CHUNK_SIZE", 1000),
		ChunkOverlap:      getenvInt("DOCQA_CHUNK_OVERLAP", 200),
		FetchTimeoutSecs:  getenvInt("DOCQA_FETCH_TIMEOUT_SECONDS", 10),
		TopK:              getenvInt("DOCQA_TOP_K", 4),
		MaxMessages:       getenvInt("DOCQA_MAX_MESSAGES", 20),
		EmbedDim:          getenvInt("DOCQA_EMBED_DIM", 1024),
		SessionCookieName: getenv("DOCQA_SESSION_COOKIE", "docqa_session"),
		LLMProviders:      getenv("DOCQA_LLM_PROVIDERS", "cohere"),
		EmbedProviders:    getenv("DOCQA_EMBED_PROVIDERS", "cohere"),
	}
}

func getenv(k, fallback string) string {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
