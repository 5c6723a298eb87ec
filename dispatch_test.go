package reactive

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// runOnce declares the given widgets in order and finishes the rerun.
func runOnce(t *testing.T, session *Session, widgets ...Metadata) error {
	t.Helper()
	rerun, err := session.BeginRerun(context.Background())
	if err != nil {
		t.Fatalf("begin rerun: %v", err)
	}
	for _, meta := range widgets {
		if _, _, err := rerun.RegisterWidget(meta); err != nil {
			rerun.Abort()
			t.Fatalf("register %q: %v", meta.ID, err)
		}
	}
	return rerun.Finish()
}

func TestDispatchBasicDiff(t *testing.T) {
	session := NewSession()
	calls := 0
	meta := Metadata{
		ID:       "w1",
		Category: CategoryPlain,
		Default:  false,
		Callbacks: map[string]Callback{
			WholeValueKey: {Fn: func([]any, map[string]any) error {
				calls++
				return nil
			}},
		},
	}

	if err := session.ApplyClientUpdate([]WidgetUpdate{{ID: "w1", Value: false}}); err != nil {
		t.Fatalf("apply update: %v", err)
	}
	if err := runOnce(t, session, meta); err != nil {
		t.Fatalf("first rerun: %v", err)
	}
	calls = 0

	if err := session.ApplyClientUpdate([]WidgetUpdate{{ID: "w1", Value: true}}); err != nil {
		t.Fatalf("apply update: %v", err)
	}
	if err := runOnce(t, session, meta); err != nil {
		t.Fatalf("second rerun: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one invocation, got %d", calls)
	}

	value, trace := session.ReadWithTrace("w1")
	if value != true {
		t.Fatalf("expected committed true, got %v", value)
	}
	if trace.Source != SourceCommitted {
		t.Fatalf("expected committed source, got %s", trace.Source)
	}
}

func TestDispatchUnchangedValueDoesNotFire(t *testing.T) {
	session := NewSession()
	calls := 0
	meta := Metadata{
		ID:       "w1",
		Category: CategoryPlain,
		Callbacks: map[string]Callback{
			WholeValueKey: {Fn: func([]any, map[string]any) error {
				calls++
				return nil
			}},
		},
	}

	if err := session.ApplyClientUpdate([]WidgetUpdate{{ID: "w1", Value: "same"}}); err != nil {
		t.Fatalf("apply update: %v", err)
	}
	if err := runOnce(t, session, meta); err != nil {
		t.Fatalf("first rerun: %v", err)
	}
	calls = 0

	if err := session.ApplyClientUpdate([]WidgetUpdate{{ID: "w1", Value: "same"}}); err != nil {
		t.Fatalf("apply update: %v", err)
	}
	if err := runOnce(t, session, meta); err != nil {
		t.Fatalf("second rerun: %v", err)
	}
	if calls != 0 {
		t.Fatalf("unchanged value must not fire, got %d calls", calls)
	}
}

func TestDispatchPerKeyIsolation(t *testing.T) {
	session := NewSession()
	var fired []string
	meta := Metadata{
		ID:       "json-widget",
		Category: CategoryJSONValue,
		Callbacks: map[string]Callback{
			"a": {Fn: func([]any, map[string]any) error {
				fired = append(fired, "a")
				return nil
			}},
			"b": {Fn: func([]any, map[string]any) error {
				fired = append(fired, "b")
				return nil
			}},
		},
	}

	if err := session.ApplyClientUpdate([]WidgetUpdate{
		{ID: "json-widget", Value: map[string]any{"a": 1.0, "b": 2.0}},
	}); err != nil {
		t.Fatalf("apply update: %v", err)
	}
	if err := runOnce(t, session, meta); err != nil {
		t.Fatalf("first rerun: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, fired); diff != "" {
		t.Fatalf("initial population mismatch (-want +got):\n%s", diff)
	}

	fired = nil
	if err := session.ApplyClientUpdate([]WidgetUpdate{
		{ID: "json-widget", Value: map[string]any{"a": 5.0, "b": 2.0}},
	}); err != nil {
		t.Fatalf("apply update: %v", err)
	}
	if err := runOnce(t, session, meta); err != nil {
		t.Fatalf("second rerun: %v", err)
	}
	if diff := cmp.Diff([]string{"a"}, fired); diff != "" {
		t.Fatalf("changing only a must fire only a (-want +got):\n%s", diff)
	}
}

func TestDispatchJSONValueUnregisteredKeysIgnored(t *testing.T) {
	session := NewSession()
	calls := 0
	meta := Metadata{
		ID:       "json-widget",
		Category: CategoryJSONValue,
		Callbacks: map[string]Callback{
			"watched": {Fn: func([]any, map[string]any) error {
				calls++
				return nil
			}},
		},
	}

	if err := session.ApplyClientUpdate([]WidgetUpdate{
		{ID: "json-widget", Value: map[string]any{"unwatched": 1.0}},
	}); err != nil {
		t.Fatalf("apply update: %v", err)
	}
	if err := runOnce(t, session, meta); err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if calls != 0 {
		t.Fatalf("keys without callbacks must be silently ignored, got %d calls", calls)
	}
}

func TestDispatchJSONTriggerBatch(t *testing.T) {
	session := NewSession()
	var fired []string
	meta := Metadata{
		ID:       "component-events",
		Category: CategoryJSONTrigger,
		Callbacks: map[string]Callback{
			"foo": {Fn: func([]any, map[string]any) error {
				fired = append(fired, "foo")
				return nil
			}},
			"bar": {Fn: func([]any, map[string]any) error {
				fired = append(fired, "bar")
				return nil
			}},
		},
	}

	if err := session.ApplyClientUpdate([]WidgetUpdate{
		{ID: "component-events", Value: []any{
			map[string]any{"event": "foo", "value": true},
			map[string]any{"event": "bar", "value": 123.0},
			map[string]any{"event": "unregistered", "value": nil},
		}},
	}); err != nil {
		t.Fatalf("apply update: %v", err)
	}
	if err := runOnce(t, session, meta); err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if diff := cmp.Diff([]string{"foo", "bar"}, fired); diff != "" {
		t.Fatalf("batched events mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatchMalformedTriggerPayloadNoOps(t *testing.T) {
	var logged []DispatchLogEvent
	session := NewSession(WithDispatchLogger(DispatchLoggerFunc(func(event DispatchLogEvent) {
		logged = append(logged, event)
	})))
	calls := 0
	meta := Metadata{
		ID:       "component-events",
		Category: CategoryJSONTrigger,
		Callbacks: map[string]Callback{
			"foo": {Fn: func([]any, map[string]any) error {
				calls++
				return nil
			}},
		},
	}

	if err := session.ApplyClientUpdate([]WidgetUpdate{
		{ID: "component-events", Value: 42.0},
	}); err != nil {
		t.Fatalf("apply update: %v", err)
	}
	if err := runOnce(t, session, meta); err != nil {
		t.Fatalf("malformed payload must not error the rerun: %v", err)
	}
	if calls != 0 {
		t.Fatalf("malformed payload must not fire callbacks")
	}
	if len(logged) == 0 {
		t.Fatalf("malformed payload must reach the dispatch logger")
	}
}

func TestDispatchCallbackErrorsPropagate(t *testing.T) {
	session := NewSession()
	boom := errors.New("user callback failed")
	meta := Metadata{
		ID:       "w1",
		Category: CategoryPlain,
		Callbacks: map[string]Callback{
			WholeValueKey: {Fn: func([]any, map[string]any) error {
				return boom
			}},
		},
	}

	if err := session.ApplyClientUpdate([]WidgetUpdate{{ID: "w1", Value: 1.0}}); err != nil {
		t.Fatalf("apply update: %v", err)
	}
	err := runOnce(t, session, meta)
	if !errors.Is(err, boom) {
		t.Fatalf("callback error must surface from Finish, got %v", err)
	}

	// The failed rerun still committed: state must not re-fire later.
	value, trace := session.ReadWithTrace("w1")
	if value != 1.0 || trace.Source != SourceCommitted {
		t.Fatalf("state must commit despite callback error, got %v from %s", value, trace.Source)
	}
}

func TestDispatchDeclarationOrder(t *testing.T) {
	session := NewSession()
	var fired []string
	callback := func(name string) Callback {
		return Callback{Fn: func([]any, map[string]any) error {
			fired = append(fired, name)
			return nil
		}}
	}
	first := Metadata{ID: "zz-widget", Category: CategoryPlain,
		Callbacks: map[string]Callback{WholeValueKey: callback("zz-widget")}}
	second := Metadata{ID: "aa-widget", Category: CategoryPlain,
		Callbacks: map[string]Callback{WholeValueKey: callback("aa-widget")}}

	if err := session.ApplyClientUpdate([]WidgetUpdate{
		{ID: "aa-widget", Value: 1.0},
		{ID: "zz-widget", Value: 2.0},
	}); err != nil {
		t.Fatalf("apply update: %v", err)
	}
	// Declared zz first: dispatch must follow declaration order, not
	// lexical or map order.
	if err := runOnce(t, session, first, second); err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if diff := cmp.Diff([]string{"zz-widget", "aa-widget"}, fired); diff != "" {
		t.Fatalf("declaration order mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatchBoundArguments(t *testing.T) {
	session := NewSession()
	var gotArgs []any
	var gotKwargs map[string]any
	meta := Metadata{
		ID:       "w1",
		Category: CategoryPlain,
		Callbacks: map[string]Callback{
			WholeValueKey: {
				Fn: func(args []any, kwargs map[string]any) error {
					gotArgs = args
					gotKwargs = kwargs
					return nil
				},
				Args:   []any{"positional", 7},
				Kwargs: map[string]any{"mode": "fast"},
			},
		},
	}

	if err := session.ApplyClientUpdate([]WidgetUpdate{{ID: "w1", Value: "x"}}); err != nil {
		t.Fatalf("apply update: %v", err)
	}
	if err := runOnce(t, session, meta); err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if diff := cmp.Diff([]any{"positional", 7}, gotArgs); diff != "" {
		t.Fatalf("bound args mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"mode": "fast"}, gotKwargs); diff != "" {
		t.Fatalf("bound kwargs mismatch (-want +got):\n%s", diff)
	}
}
