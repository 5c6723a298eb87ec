package reactive

import "time"

// PresentContext carries the inputs a presenter may read: the stored value
// being presented and a read-only snapshot of the surrounding session
// state. Presenters must be side-effect free.
type PresentContext struct {
	// Value is the raw stored value for the widget being read.
	Value any
	// State is a filtered snapshot of the session's committed state,
	// keyed by user key. Internal ids are resolvable through Lookup
	// only, never listed here.
	State map[string]any
	// Lookup reads any widget id's committed value, including internal
	// aggregator ids; nil outside a live session.
	Lookup func(id string) (any, bool)

	WidgetID string
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
}

func (ctx PresentContext) withDefaultNow() PresentContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx PresentContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx PresentContext) withDefaultMaps() PresentContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	if ctx.State == nil {
		ctx.State = map[string]any{}
	}
	return ctx
}

// Presenter transforms a stored value into its user-visible form at read
// time, without mutating storage. Implementations must never be load
// bearing for correctness: any error (or panic) degrades to the raw value.
type Presenter interface {
	Present(ctx PresentContext) (any, error)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(ctx PresentContext) (any, error)

// Present implements Presenter.
func (f PresenterFunc) Present(ctx PresentContext) (any, error) {
	if f == nil {
		return ctx.Value, nil
	}
	return f(ctx)
}

// presenterEngineName labels the engine for log events.
func presenterEngineName(p Presenter) string {
	switch p.(type) {
	case *exprPresenter:
		return "expr"
	case *celPresenter:
		return "cel"
	case PresenterFunc:
		return "func"
	default:
		if name, ok := p.(interface{ engineName() string }); ok {
			return name.engineName()
		}
		return "custom"
	}
}
