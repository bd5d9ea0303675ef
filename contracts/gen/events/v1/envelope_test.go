package v1

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvelopeValidate(t *testing.T) {
	valid := Envelope{
		EventID:       "evt-1",
		EventType:     "vote.cast",
		SchemaVersion: SchemaVersion,
		Data:          json.RawMessage(`{"receipt":"VR-1"}`),
	}
	require.NoError(t, valid.Validate())

	broken := []func(*Envelope){
		func(e *Envelope) { e.EventID = " " },
		func(e *Envelope) { e.EventType = "" },
		func(e *Envelope) { e.SchemaVersion = SchemaVersion + 1 },
		func(e *Envelope) { e.Data = nil },
		func(e *Envelope) { e.Data = json.RawMessage(`{"receipt":`) },
	}
	for _, mutate := range broken {
		envelope := valid
		mutate(&envelope)
		require.ErrorIs(t, envelope.Validate(), ErrMalformedEnvelope)
	}
}
