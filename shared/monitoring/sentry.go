package monitoring

import (
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryConfig holds Sentry configuration options
type SentryConfig struct {
	DSN         string
	Environment string
	Release     string
	Debug       bool
	SampleRate  float64
	ServiceName string
}

// InitSentry initializes Sentry with the provided configuration. A missing
// DSN disables crash reporting without failing startup.
func InitSentry(config *SentryConfig) error {
	dsn := config.DSN
	if dsn == "" {
		dsn = os.Getenv("SENTRY_DSN")
	}
	if dsn == "" {
		return nil
	}

	environment := config.Environment
	if environment == "" {
		environment = "development"
	}

	sampleRate := config.SampleRate
	if sampleRate == 0 {
		if environment == "production" {
			sampleRate = 1.0
		} else {
			sampleRate = 0.25
		}
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          config.Release,
		Debug:            config.Debug,
		SampleRate:       sampleRate,
		AttachStacktrace: true,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			if config.ServiceName != "" {
				event.Tags["service"] = config.ServiceName
			}
			return event
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Sentry: %w", err)
	}

	return nil
}

// CaptureError captures an error and sends it to Sentry
func CaptureError(err error, tags map[string]string) {
	hub := sentry.CurrentHub()
	hub.WithScope(func(scope *sentry.Scope) {
		for key, value := range tags {
			scope.SetTag(key, value)
		}
		hub.CaptureException(err)
	})
}

// FlushSentry flushes buffered events
func FlushSentry(timeout time.Duration) {
	sentry.Flush(timeout)
}
