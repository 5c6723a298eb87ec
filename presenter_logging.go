package reactive

import "time"

// PresentLogEvent describes one presenter invocation for logging.
type PresentLogEvent struct {
	Engine   string
	Expr     string
	WidgetID string
	Duration time.Duration
	Err      error
}

// PresentLogger records presenter invocations.
type PresentLogger interface {
	LogPresentation(PresentLogEvent)
}

// PresentLoggerFunc adapts a function to PresentLogger.
type PresentLoggerFunc func(PresentLogEvent)

// LogPresentation implements PresentLogger.
func (f PresentLoggerFunc) LogPresentation(event PresentLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopPresentLogger struct{}

func (noopPresentLogger) LogPresentation(PresentLogEvent) {}
