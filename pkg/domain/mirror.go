package domain

import (
	"context"
	"encoding/json"
	"fmt"
)

// Mirror receives the committed state after every successful mutation. Mirrors
// are write-only sinks; the core never reads state back from them.
type Mirror interface {
	Record(ctx context.Context, state State) error
	Close() error
}

// MirrorBuckets lists the bucket names written by SQL mirrors, in write order.
var MirrorBuckets = []string{"contacts", "history", "activities"}

// MirrorBucket is one encoded slice of the state.
type MirrorBucket struct {
	Name    string
	Payload []byte
}

type historyFlags struct {
	CanUndo bool `json:"can_undo"`
	CanRedo bool `json:"can_redo"`
}

// EncodeMirrorBuckets splits state into JSON payloads keyed by MirrorBuckets.
func EncodeMirrorBuckets(state State) ([]MirrorBucket, error) {
	out := make([]MirrorBucket, 0, len(MirrorBuckets))
	for _, name := range MirrorBuckets {
		var v any
		switch name {
		case "contacts":
			contacts := state.Contacts
			if contacts == nil {
				contacts = []Contact{}
			}
			v = contacts
		case "history":
			v = historyFlags{CanUndo: state.CanUndo, CanRedo: state.CanRedo}
		case "activities":
			activities := state.Activities
			if activities == nil {
				activities = []Activity{}
			}
			v = activities
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		out = append(out, MirrorBucket{Name: name, Payload: data})
	}
	return out, nil
}
