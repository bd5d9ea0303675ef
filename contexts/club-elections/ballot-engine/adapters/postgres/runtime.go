package postgresadapter

import (
	"context"
	"time"

	"clubvote/contexts/club-elections/ballot-engine/ports"

	"github.com/google/uuid"
)

// SystemClock reports UTC time truncated to the microsecond precision of a
// postgres timestamp, so values echoed to callers match what a later read returns.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// UUIDGenerator issues time-ordered UUIDv7 identifiers, which keep vote and
// outbox primary keys roughly append-only in their indexes.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

var (
	_ ports.Clock       = SystemClock{}
	_ ports.IDGenerator = UUIDGenerator{}
)
