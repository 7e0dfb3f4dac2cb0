package statsload

import (
	"os"
	"strings"
)

// ------------------ env helpers ------------------

func envStr(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}

// envRaw keeps surrounding whitespace; the placeholder could be any rune.
func envRaw(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func pick(ev, env string) string {
	if strings.TrimSpace(ev) != "" {
		return ev
	}
	return env
}
