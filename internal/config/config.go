package config

import "time"

type Config interface {
	EnvConfig
	StorageConfig
	SessionConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetAPIBaseURL() string
	GetDeepLinkScheme() string
}

type StorageConfig interface {
	GetDataFolder() string
	GetDatabaseFile() string
	GetSecureStoreFolder() string
	GetSecureKeyFile() string
}

type SessionConfig interface {
	GetRequestTimeout() time.Duration
	GetPersistTimeout() time.Duration
	GetMagicLinkPollInterval() time.Duration
	GetQueryCacheStaleTime() time.Duration
	GetFilterDebounce() time.Duration
}

type mainConfig struct {
	EnvVars
	Storage
	Session
}

// New returns the configuration backed by environment variables and built in defaults.
func New() Config {
	return NewWithFile(FileConfig{})
}

// NewWithFile returns the configuration with file values layered beneath environment variables.
func NewWithFile(file FileConfig) Config {
	return mainConfig{
		EnvVars: EnvVars{file: file},
		Storage: Storage{file: file},
		Session: Session{file: file},
	}
}
