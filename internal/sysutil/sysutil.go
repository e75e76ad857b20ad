// Package sysutil holds small process-level helpers shared by the entrypoint
// and configuration loading.
package sysutil

import (
	"strings"

	"github.com/rs/zerolog"
)

// SetLogLevel sets the global zerolog level from its string name. Unknown or
// empty values fall back to info. "warning" is accepted as an alias for warn.
func SetLogLevel(lvl string) {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// IsTruthy reports whether an environment value spells "true". Accepted,
// case-insensitively: 1, true, yes, y, on.
func IsTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

// FirstNonEmpty returns the first value that is not blank after trimming, or
// "" when every value is blank. The winner is returned untrimmed.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
