package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddress string

	MongoURI      string
	MongoDatabase string

	JWTSecret string
	TokenTTL  time.Duration
	Issuer    string

	MinPasswordLength int
	PasswordPepper    string

	TelegramBotToken string
	TelegramChatID   string

	RedisAddress  string
	RedisPassword string
	RedisDB       int
	GeoCacheTTL   time.Duration

	RateLimitRPS   int
	RateLimitBurst int

	AllowedOrigins []string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	for _, key := range []string{
		"HTTP_ADDRESS",
		"MONGO_URI", "MONGO_DATABASE",
		"JWT_SECRET", "TOKEN_TTL", "ISSUER",
		"MIN_PASSWORD_LENGTH", "PASSWORD_PEPPER",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
		"REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB", "GEO_CACHE_TTL",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
		"ALLOWED_ORIGINS",
	} {
		if err := viper.BindEnv(key); err != nil {
			return nil, err
		}
	}

	viper.SetDefault("HTTP_ADDRESS", ":8000")
	viper.SetDefault("MONGO_DATABASE", "accounts")
	viper.SetDefault("TOKEN_TTL", "168h") // 7 days
	viper.SetDefault("ISSUER", "account-service")
	viper.SetDefault("MIN_PASSWORD_LENGTH", 8)
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("GEO_CACHE_TTL", "24h")
	viper.SetDefault("RATE_LIMIT_RPS", 50)
	viper.SetDefault("RATE_LIMIT_BURST", 100)
	viper.SetDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000"})

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if viper.GetString("MONGO_URI") == "" {
		return nil, fmt.Errorf("MONGO_URI is not set")
	}
	if viper.GetString("JWT_SECRET") == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	return &Config{
		HTTPAddress:       viper.GetString("HTTP_ADDRESS"),
		MongoURI:          viper.GetString("MONGO_URI"),
		MongoDatabase:     viper.GetString("MONGO_DATABASE"),
		JWTSecret:         viper.GetString("JWT_SECRET"),
		TokenTTL:          viper.GetDuration("TOKEN_TTL"),
		Issuer:            viper.GetString("ISSUER"),
		MinPasswordLength: viper.GetInt("MIN_PASSWORD_LENGTH"),
		PasswordPepper:    viper.GetString("PASSWORD_PEPPER"),
		TelegramBotToken:  viper.GetString("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:    viper.GetString("TELEGRAM_CHAT_ID"),
		RedisAddress:      viper.GetString("REDIS_ADDRESS"),
		RedisPassword:     viper.GetString("REDIS_PASSWORD"),
		RedisDB:           viper.GetInt("REDIS_DB"),
		GeoCacheTTL:       viper.GetDuration("GEO_CACHE_TTL"),
		RateLimitRPS:      viper.GetInt("RATE_LIMIT_RPS"),
		RateLimitBurst:    viper.GetInt("RATE_LIMIT_BURST"),
		AllowedOrigins:    viper.GetStringSlice("ALLOWED_ORIGINS"),
	}, nil
}
