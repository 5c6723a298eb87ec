package reactive

import "testing"

func TestReadWithTraceSourcePriority(t *testing.T) {
	session := NewSession()
	meta := Metadata{ID: "w1", Key: "speed", Category: CategoryPlain, Default: 10.0}

	// Nothing stored yet: the declared default wins once registered.
	if err := runOnce(t, session, meta); err != nil {
		t.Fatalf("first rerun: %v", err)
	}
	value, trace := session.ReadWithTrace("speed")
	if value != 10.0 || trace.Source != SourceDefault || !trace.Found {
		t.Fatalf("expected default 10, got %v from %s (found=%v)", value, trace.Source, trace.Found)
	}

	// A pending client value shadows committed state.
	if err := session.ApplyClientUpdate([]WidgetUpdate{{ID: "w1", Value: 25.0}}); err != nil {
		t.Fatalf("apply update: %v", err)
	}
	value, trace = session.ReadWithTrace("speed")
	if value != 25.0 || trace.Source != SourceNew {
		t.Fatalf("expected incoming 25, got %v from %s", value, trace.Source)
	}

	// After the rerun commits, the same value reads as committed.
	if err := runOnce(t, session, meta); err != nil {
		t.Fatalf("second rerun: %v", err)
	}
	value, trace = session.ReadWithTrace("speed")
	if value != 25.0 || trace.Source != SourceCommitted {
		t.Fatalf("expected committed 25, got %v from %s", value, trace.Source)
	}
}

func TestReadWithTraceUnknownID(t *testing.T) {
	session := NewSession()
	value, trace := session.ReadWithTrace("never-registered")
	if value != nil || trace.Found {
		t.Fatalf("unknown id must report not found, got %v (found=%v)", value, trace.Found)
	}
	if trace.Source != SourceDefault {
		t.Fatalf("unknown id resolves at the default tier, got %s", trace.Source)
	}
}

func TestTraceJSONRoundTrip(t *testing.T) {
	original := Trace{
		ID:     "w1",
		Key:    "speed",
		Source: SourceCommitted,
		Found:  true,
		Value:  25.0,
	}
	payload, err := original.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	restored, err := TraceFromJSON(payload)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if restored != original {
		t.Fatalf("round trip mismatch: %+v vs %+v", restored, original)
	}
}
