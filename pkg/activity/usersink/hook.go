// Package usersink forwards widget lifecycle events to a go-users
// ActivitySink, so state changes land in the same audit feed as the rest
// of an application's user activity.
package usersink

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-reactive/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Metadata keys consulted when mapping events onto activity records.
const (
	// ActorIDKey carries the acting user's uuid, when the host knows it.
	ActorIDKey = "actor_id"
	// TenantIDKey carries the tenant uuid.
	TenantIDKey = "tenant_id"
)

// Hook adapts widget lifecycle events to a go-users ActivitySink.
type Hook struct {
	Sink usertypes.ActivitySink
}

// Notify maps the event into an ActivityRecord and forwards it to the
// sink.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}

	normalized := activity.NormalizeEvent(event)
	if normalized.Verb == "" || normalized.SessionID == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	data := cloneMap(normalized.Metadata)
	if data == nil {
		data = map[string]any{}
	}
	data["session_id"] = normalized.SessionID
	if normalized.Key != "" {
		data["key"] = normalized.Key
	}
	if normalized.Category != "" {
		data["category"] = normalized.Category
	}
	if normalized.SubKey != "" {
		data["sub_key"] = normalized.SubKey
	}

	record := usertypes.ActivityRecord{
		ActorID:    metadataUUID(normalized.Metadata, ActorIDKey),
		TenantID:   metadataUUID(normalized.Metadata, TenantIDKey),
		Verb:       normalized.Verb,
		ObjectType: "widget",
		ObjectID:   normalized.WidgetID,
		Channel:    normalized.Channel,
		Data:       data,
		OccurredAt: normalized.OccurredAt,
	}
	if record.ObjectID == "" {
		record.ObjectType = "session"
		record.ObjectID = normalized.SessionID
	}
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now()
	}

	return h.Sink.Log(ctx, record)
}

func metadataUUID(metadata map[string]any, key string) uuid.UUID {
	raw, ok := metadata[key]
	if !ok {
		return uuid.Nil
	}
	value, ok := raw.(string)
	if !ok {
		return uuid.Nil
	}
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
