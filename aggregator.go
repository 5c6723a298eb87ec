package reactive

import (
	"github.com/goliatone/go-reactive/internal/hydrate"
)

// componentValueField is the envelope field a bidirectional component keeps
// its persistent state under; merged trigger payloads land inside it.
const componentValueField = "value"

// MergedComponentPresenter reconstructs a bidirectional component's merged
// state+events object at read time. The component stores its persistent
// value under this widget's own id and accumulates trigger payloads under
// a separate internal aggregator id; neither entry is duplicated in
// storage — the merge happens lazily on every read.
type MergedComponentPresenter struct {
	// AggregatorID is the internal id (usually from MakeTriggerID)
	// holding pending {event, value} records.
	AggregatorID string
}

// NewMergedComponentPresenter builds the presenter for a component whose
// trigger aggregator lives at MakeTriggerID(baseID, event).
func NewMergedComponentPresenter(baseID, event string) (*MergedComponentPresenter, error) {
	aggregatorID, err := MakeTriggerID(baseID, event)
	if err != nil {
		return nil, err
	}
	return &MergedComponentPresenter{AggregatorID: aggregatorID}, nil
}

// Present implements Presenter. The base stored value is expected to be a
// JSON object with a "value" sub-object; each aggregator record's event
// name becomes a key inside it. Unmergeable shapes degrade to the base
// value untouched.
func (p *MergedComponentPresenter) Present(ctx PresentContext) (any, error) {
	base, ok := ctx.Value.(map[string]any)
	if !ok {
		return ctx.Value, nil
	}
	if ctx.Lookup == nil || p.AggregatorID == "" {
		return ctx.Value, nil
	}
	payload, ok := ctx.Lookup(p.AggregatorID)
	if !ok || payload == nil {
		return ctx.Value, nil
	}

	overlay := map[string]any{}
	decoder := hydrate.NewDecoder[struct {
		Event string `json:"event"`
		Value any    `json:"value"`
	}]()
	records, ok := payload.([]any)
	if !ok {
		if single, isMap := payload.(map[string]any); isMap {
			records = []any{single}
		} else {
			return ctx.Value, nil
		}
	}
	for _, entry := range records {
		entryMap, isMap := entry.(map[string]any)
		if !isMap {
			continue
		}
		record, err := decoder.Decode(hydrate.Context{WidgetID: ctx.WidgetID}, entryMap)
		if err != nil || record.Event == "" {
			continue
		}
		overlay[record.Event] = record.Value
	}
	if len(overlay) == 0 {
		return ctx.Value, nil
	}

	merged := mergeWire(map[string]any{componentValueField: overlay}, base)
	return merged, nil
}

func (p *MergedComponentPresenter) engineName() string { return "component" }
