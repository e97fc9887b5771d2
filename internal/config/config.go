package config

import (
	"os"
	"strconv"
)

// Config holds all minissl CLI configuration.
type Config struct {
	Data   DataConfig
	KNN    KNNConfig
	Output OutputConfig
}

// DataConfig holds input locations.
type DataConfig struct {
	BankPath    string // safetensors feature bank (features + labels)
	QueriesPath string // safetensors query set (features or raw inputs + labels)
	ModelPath   string // ONNX encoder, required when queries carry raw inputs
	BatchSize   int
}

// KNNConfig holds the kNN monitor settings.
type KNNConfig struct {
	K           int     // number of neighbors
	Temperature float64 // vote weight temperature
	Classes     int     // 0 = infer from bank labels
	TopK        int     // ranked labels to include per prediction record
}

// OutputConfig holds output destination settings.
type OutputConfig struct {
	Dest     string // "stdout" or a file path
	LogLevel string // "debug", "info", "warn", "error"
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Data: DataConfig{
			BankPath:    getenv("MINISSL_BANK", "data/bank.safetensors"),
			QueriesPath: getenv("MINISSL_QUERIES", "data/queries.safetensors"),
			ModelPath:   os.Getenv("MINISSL_MODEL"),
			BatchSize:   getenvInt("MINISSL_BATCH_SIZE", 256),
		},
		KNN: KNNConfig{
			K:           getenvInt("MINISSL_KNN_K", 200),
			Temperature: getenvFloat("MINISSL_KNN_T", 0.1),
			Classes:     getenvInt("MINISSL_CLASSES", 0),
			TopK:        getenvInt("MINISSL_TOPK", 5),
		},
		Output: OutputConfig{
			Dest:     getenv("MINISSL_OUTPUT", "stdout"),
			LogLevel: getenv("MINISSL_LOG_LEVEL", "info"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
