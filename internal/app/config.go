package app

import (
	"time"

	"github.com/yomikata/yomikata-backend/internal/platform/envutil"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

type Config struct {
	ServiceName    string
	Environment    string
	Port           string
	JWTSecretKey   string
	AccessTokenTTL time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	serviceName := envutil.GetEnv("SERVICE_NAME", "yomikata", log)
	environment := envutil.GetEnv("APP_ENV", "development", log)
	port := envutil.GetEnv("PORT", "8080", log)
	jwtSecretKey := envutil.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := envutil.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	return Config{
		ServiceName:    serviceName,
		Environment:    environment,
		Port:           port,
		JWTSecretKey:   jwtSecretKey,
		AccessTokenTTL: time.Duration(accessTokenTTLSeconds) * time.Second,
	}
}
