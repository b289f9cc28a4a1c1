package bootstrap

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort        string        `mapstructure:"SERVER_PORT"`
	GrpcPort          string        `mapstructure:"GRPC_PORT"`
	RedisUrl          string        `mapstructure:"REDIS_URL"`
	MongoUri          string        `mapstructure:"MONGO_URI"`
	MongoDatabase     string        `mapstructure:"MONGO_DATABASE"`
	IsLocalCors       bool          `mapstructure:"LOCAL_CORS"`
	PageLimitGames    int           `mapstructure:"PAGE_LIMIT_GAMES"`
	DefaultBoardSize  int           `mapstructure:"DEFAULT_BOARD_SIZE"`
	DefaultKomi       float64       `mapstructure:"DEFAULT_KOMI"`
	TranscriptTTL     time.Duration `mapstructure:"TRANSCRIPT_TTL"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	ArchiveImportPath string        `mapstructure:"ARCHIVE_IMPORT_PATH"`
}

var keys = map[string]any{
	"SERVER_PORT":         "8080",
	"GRPC_PORT":           "8082",
	"REDIS_URL":           "localhost:6379",
	"MONGO_URI":           "mongodb://localhost:27017",
	"MONGO_DATABASE":      "goban",
	"LOCAL_CORS":          false,
	"PAGE_LIMIT_GAMES":    20,
	"DEFAULT_BOARD_SIZE":  19,
	"DEFAULT_KOMI":        6.5,
	"TRANSCRIPT_TTL":      24 * time.Hour,
	"LOG_LEVEL":           "info",
	"ARCHIVE_IMPORT_PATH": "",
}

// Setup reads cfgPath when it exists; environment variables override both
// the file and the defaults.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	for key, value := range keys {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	var cfg Config

	err := v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
