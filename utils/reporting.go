package utils

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"mailprobe/verifier"
)

// LogError logs errors with structured context to both console and Sentry
func LogError(errorType string, err error, context map[string]interface{}) {
	log := logrus.WithFields(logrus.Fields{
		"error_type": errorType,
		"error":      err.Error(),
	})
	for k, v := range context {
		log = log.WithField(k, v)
	}
	log.Error("Error occurred")

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("error_type", errorType)
		for k, v := range context {
			scope.SetExtra(k, v)
		}
		sentry.CaptureException(err)
	})
}

// LogEvent logs events with structured context
func LogEvent(eventType string, data map[string]interface{}) {
	log := logrus.WithFields(logrus.Fields{
		"event_type": eventType,
	})
	for k, v := range data {
		log = log.WithField(k, v)
	}
	log.Info("Event occurred")

	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Type:      "info",
		Category:  eventType,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// ReportUnknownVerdict sends an unknown-verdict result to Sentry, tagged
// for aggregation by provider and domain. Unknowns are the cases worth
// investigating: they usually mean a blocked egress, an unmodeled reply
// or a provider flow change.
func ReportUnknownVerdict(result *verifier.Result) {
	logrus.WithFields(logrus.Fields{
		"email":      result.Input,
		"provider":   result.Debug.Provider,
		"strategy":   result.Debug.Strategy,
		"connection": result.Debug.Connection,
		"reason":     result.Reason,
	}).Warn("Verification returned unknown")

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("provider", result.Debug.Provider)
		scope.SetTag("strategy", result.Debug.Strategy)
		scope.SetTag("domain", result.Syntax.Domain)
		scope.SetExtra("connection", result.Debug.Connection)
		scope.SetExtra("trace", result.Debug.Trace)
		scope.SetLevel(sentry.LevelWarning)
		sentry.CaptureMessage(result.Reason)
	})
}
