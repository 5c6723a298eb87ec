package reactive

// DispatchLogEvent describes a dispatch bookkeeping decision. Malformed
// payloads and codec failures are reported here and nowhere else: they are
// debug material, not user-visible errors.
type DispatchLogEvent struct {
	WidgetID string
	Category ValueCategory
	SubKey   string
	Reason   string
	Err      error
}

// DispatchLogger records dispatch bookkeeping events.
type DispatchLogger interface {
	LogDispatch(DispatchLogEvent)
}

// DispatchLoggerFunc adapts a function to DispatchLogger.
type DispatchLoggerFunc func(DispatchLogEvent)

// LogDispatch implements DispatchLogger.
func (f DispatchLoggerFunc) LogDispatch(event DispatchLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopDispatchLogger struct{}

func (noopDispatchLogger) LogDispatch(DispatchLogEvent) {}
