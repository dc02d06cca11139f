package daemonservice

import (
	"log/slog"
	"strings"
)

const componentName = "daemonservice"

// opLog tags records with the component, the operation and a reference that
// ties them to a request, such as a transaction hash. A blank ref logs as "n/a".
func (s *Service) opLog(operation, ref string) *slog.Logger {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		ref = "n/a"
	}
	return s.logger.With("component", componentName, "operation", operation, "correlation_id", ref)
}

// fail counts err under category, logs it once and hands it back.
func (s *Service) fail(category, operation, ref string, err error, attrs ...any) error {
	if err == nil {
		return nil
	}
	s.metrics.RecordError(category)
	s.opLog(operation, ref).Error("service error", append([]any{"category", category, "error", err.Error()}, attrs...)...)
	return err
}
