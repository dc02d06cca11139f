package daemonservice

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const (
	notifyBacklogEnv     = "JETLUMEN_NOTIFY_BACKLOG"
	defaultNotifyBacklog = 256
	minNotifyBacklog     = 16
	maxNotifyBacklog     = 4096
)

// tuning holds the process-level knobs read from the environment.
type tuning struct {
	NotifyBacklog int
}

func loadTuning(logger *slog.Logger) tuning {
	backlog, clamped := boundedEnvInt(notifyBacklogEnv, defaultNotifyBacklog, minNotifyBacklog, maxNotifyBacklog)
	if clamped {
		logger.Warn("notify backlog out of range",
			"component", componentName,
			"env", notifyBacklogEnv,
			"effective", backlog,
		)
	}
	return tuning{NotifyBacklog: backlog}
}

// boundedEnvInt falls back on unset or malformed values and clamps the rest.
// clamped reports whether a parsed value was moved into [lo, hi].
func boundedEnvInt(key string, fallback, lo, hi int) (value int, clamped bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, false
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, false
	}
	switch {
	case parsed < lo:
		return lo, true
	case parsed > hi:
		return hi, true
	default:
		return parsed, false
	}
}
