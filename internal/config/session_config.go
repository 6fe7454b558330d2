package config

import "time"

const (
	requestTimeoutEnvVar  = "SIGNALS_REQUEST_TIMEOUT"
	magicLinkPollEnvVar   = "SIGNALS_MAGIC_LINK_POLL_INTERVAL"
	defaultRequestTimeout = 15 * time.Second
)

type Session struct {
	file FileConfig
}

var _ SessionConfig = Session{}

func (s Session) GetRequestTimeout() time.Duration {
	return durationEnv(requestTimeoutEnvVar, s.file.RequestTimeout, defaultRequestTimeout)
}

func (Session) GetPersistTimeout() time.Duration {
	return 5 * time.Second
}

func (s Session) GetMagicLinkPollInterval() time.Duration {
	return durationEnv(magicLinkPollEnvVar, s.file.MagicLinkPollInterval, 2*time.Second)
}

func (Session) GetQueryCacheStaleTime() time.Duration {
	return 5 * time.Minute
}

func (Session) GetFilterDebounce() time.Duration {
	return 500 * time.Millisecond
}

func durationEnv(envVar, fileValue string, defaultValue time.Duration) time.Duration {
	raw := GetEnv(envVar, fileValue)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
