package workers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"clubvote/contexts/club-elections/ballot-engine/ports"
)

const defaultDedupTTL = 7 * 24 * time.Hour

func hashPayload(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// decodeEvent checks the envelope contract and unmarshals its data. Handlers
// decode before reserving so a bad delivery never burns the event id.
func decodeEvent(event ports.EventEnvelope, target any) error {
	if err := event.Validate(); err != nil {
		return err
	}
	return json.Unmarshal(event.Data, target)
}

// reserve claims an event id for processing and reports whether it was seen
// before.
func reserve(
	ctx context.Context,
	dedup ports.EventDedupStore,
	clock ports.Clock,
	ttl time.Duration,
	event ports.EventEnvelope,
) (bool, error) {
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	now := time.Now().UTC()
	if clock != nil {
		now = clock.Now().UTC()
	}
	return dedup.ReserveEvent(ctx, event.EventID, hashPayload(event.Data), now.Add(ttl))
}
