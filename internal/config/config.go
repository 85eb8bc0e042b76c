package config

type Config interface {
	EnvConfig
	TraktConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

type TraktConfig interface {
	GetTraktAPIURL() string
	GetConfigDir() string
	GetCredentialsPath() string
	GetTokenPath() string
}

type mainConfig struct {
	EnvVars
	Trakt
}

func New() Config {
	return mainConfig{}
}
