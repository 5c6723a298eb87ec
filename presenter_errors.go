package reactive

import (
	"errors"
	"fmt"
)

// PresentationError captures presenter engine metadata alongside the
// originating error. The filtered view recovers these locally; they only
// become visible through the present logger.
type PresentationError struct {
	Engine   string
	Expr     string
	WidgetID string
	Err      error
}

func (e *PresentationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("reactive: %s presenter %s widget=%s: %v", e.Engine, describeExpression(e.Expr), e.WidgetID, e.Err)
}

func (e *PresentationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapPresenterError(engine string, err error) error {
	if err == nil {
		return nil
	}
	var presErr *PresentationError
	if errors.As(err, &presErr) {
		return err
	}
	return fmt.Errorf("reactive: %s presenter: %w", engine, err)
}

func wrapPresentationError(engine, expr, widgetID string, err error) error {
	if err == nil {
		return nil
	}

	var presErr *PresentationError
	if errors.As(err, &presErr) {
		if presErr.Engine == "" {
			presErr.Engine = engine
		}
		if presErr.Expr == "" {
			presErr.Expr = expr
		}
		if presErr.WidgetID == "" {
			presErr.WidgetID = widgetID
		}
		return presErr
	}

	return &PresentationError{
		Engine:   engine,
		Expr:     expr,
		WidgetID: widgetID,
		Err:      err,
	}
}
