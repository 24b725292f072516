package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisitorCountEnvelope_SerializesZeroCount(t *testing.T) {
	data, err := json.Marshal(VisitorCount(0))
	assert.NoError(t, err)

	// The last visitor leaving must push count 0, not an envelope
	// with the field missing.
	var decoded map[string]interface{}
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TypeVisitorCount, decoded["type"])
	assert.Contains(t, decoded, "count")
	assert.Equal(t, float64(0), decoded["count"])
}
