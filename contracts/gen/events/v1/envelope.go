package v1

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// SchemaVersion is the envelope revision written by ballot services.
const SchemaVersion = 1

var ErrMalformedEnvelope = errors.New("malformed event envelope")

// Envelope wraps every ballot event on the bus. Field names are part of the
// wire contract shared with the notification and review services.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

// Validate rejects envelopes a consumer cannot deduplicate or decode.
func (e Envelope) Validate() error {
	switch {
	case strings.TrimSpace(e.EventID) == "":
		return errors.Join(ErrMalformedEnvelope, errors.New("event_id is required"))
	case strings.TrimSpace(e.EventType) == "":
		return errors.Join(ErrMalformedEnvelope, errors.New("event_type is required"))
	case e.SchemaVersion > SchemaVersion:
		return errors.Join(ErrMalformedEnvelope, errors.New("schema_version is newer than supported"))
	case len(e.Data) == 0 || !json.Valid(e.Data):
		return errors.Join(ErrMalformedEnvelope, errors.New("data must be a JSON document"))
	}
	return nil
}
