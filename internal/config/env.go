package config

import "strings"

// envKeys maps the supported environment variables onto koanf paths.
// ARCHIVE_API_BASE_URL keeps the name earlier deployments already set.
var envKeys = map[string]string{
	"APP_ADDR":             "server.addr",
	"ENABLE_HSTS":          "server.enable_hsts",
	"ARCHIVE_API_BASE_URL": "archive.search_url",
	"ARCHIVE_METADATA_URL": "archive.metadata_url",
	"ARCHIVE_IMAGE_URL":    "archive.image_url",
	"ARCHIVE_DOWNLOAD_URL": "archive.download_url",
	"ARCHIVE_USER_AGENT":   "archive.user_agent",
	"ARCHIVE_TIMEOUT":      "archive.timeout",
	"ARCHIVE_RPS":          "archive.rps",
	"ARCHIVE_BURST":        "archive.burst",
	"BREAKER_FAILURES":     "breaker.failures",
	"BREAKER_TIMEOUT":      "breaker.timeout",
	"RATE_LIMIT_DISABLED":  "rate_limit.disabled",
	"RATE_LIMIT_RPS":       "rate_limit.rps",
	"RATE_LIMIT_BURST":     "rate_limit.burst",
	"CORS_ORIGINS":         "cors.origins",
	"LOG_LEVEL":            "log.level",
	"LOG_FORMAT":           "log.format",
}

// envTransform returns an empty key for variables we do not know about so
// koanf skips them.
func envTransform(key, value string) (string, interface{}) {
	path, ok := envKeys[key]
	if !ok {
		return "", nil
	}
	if path == "cors.origins" {
		var origins []string
		for _, o := range strings.Split(value, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		return path, origins
	}
	return path, value
}
