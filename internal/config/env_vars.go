package config

import (
	"os"
	"strings"
)

const (
	appNameVar        = "APP_NAME"
	envVar            = "ENV"
	apiBaseURLVar     = "SIGNALS_API_BASE_URL"
	deepLinkSchemeVar = "SIGNALS_DEEP_LINK_SCHEME"

	devAPIBaseURL  = "http://localhost:8001/api/v1/"
	prodAPIBaseURL = "https://ox-universe.bamtoly.com/api/v1/"
)

type EnvVars struct {
	file FileConfig
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return GetEnv(appNameVar, firstNonEmpty(e.file.AppName, "Signals"))
}

func (e EnvVars) GetEnv() string {
	return strings.ToUpper(GetEnv(envVar, firstNonEmpty(e.file.Env, "DEV")))
}

// GetAPIBaseURL returns the base URL of the signals API (always ending in "/").
// Development builds default to a local server.
func (e EnvVars) GetAPIBaseURL() string {
	def := prodAPIBaseURL
	if e.GetEnv() == "DEV" {
		def = devAPIBaseURL
	}
	url := GetEnv(apiBaseURLVar, firstNonEmpty(e.file.APIBaseURL, def))
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	return url
}

func (e EnvVars) GetDeepLinkScheme() string {
	return GetEnv(deepLinkSchemeVar, firstNonEmpty(e.file.DeepLinkScheme, "bamtoly"))
}

func GetEnv(envVar, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(envVar))
	if value == "" {
		return defaultValue
	}
	return value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
