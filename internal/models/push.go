package models

import (
	"encoding/json"
	"fmt"
)

// PushType enumerates the push-channel message types emitted by the server
// for history changes.
type PushType string

const (
	PushCreated PushType = "history_created"
	PushUpdated PushType = "history_updated"
	PushDeleted PushType = "history_deleted"
	PushCleared PushType = "history_cleared"
)

// PushEvent is one decoded push-channel message. Exactly one of the payload
// fields is set, according to Type:
//
//   - PushCreated: Record
//   - PushUpdated: Patch
//   - PushDeleted: ID
//   - PushCleared: nothing (signal only; forces a full refetch)
//
// Messages carry no sequence numbers; delivery order is trusted to match
// server emission order.
type PushEvent struct {
	Type   PushType
	Record *HistoryRecord
	Patch  *RecordPatch
	ID     string
}

// pushEnvelope is the wire framing of a push message.
type pushEnvelope struct {
	Type PushType        `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// DecodePushEvent parses one raw push-channel frame into a PushEvent.
func DecodePushEvent(raw []byte) (PushEvent, error) {
	var env pushEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return PushEvent{}, fmt.Errorf("failed to decode push envelope: %w", err)
	}

	ev := PushEvent{Type: env.Type}

	switch env.Type {
	case PushCreated:
		var rec HistoryRecord
		if err := json.Unmarshal(env.Data, &rec); err != nil {
			return PushEvent{}, fmt.Errorf("failed to decode created record: %w", err)
		}
		ev.Record = &rec

	case PushUpdated:
		var patch RecordPatch
		if err := json.Unmarshal(env.Data, &patch); err != nil {
			return PushEvent{}, fmt.Errorf("failed to decode update patch: %w", err)
		}
		ev.Patch = &patch

	case PushDeleted:
		var payload struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return PushEvent{}, fmt.Errorf("failed to decode deleted id: %w", err)
		}
		ev.ID = payload.ID

	case PushCleared:
		// signal only, no payload

	default:
		return PushEvent{}, fmt.Errorf("unknown push message type %q", env.Type)
	}

	return ev, nil
}
