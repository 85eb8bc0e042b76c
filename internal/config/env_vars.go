package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	traktAPIVar   = "TRAKT_API_URL"
	configDirVar  = "TRAKT_CONFIG_DIR"
	defaultAPIURL = "https://api.trakt.tv"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "32458")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Go Trakt Server")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
