package mock

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendDispatch(t *testing.T) {
	b := NewBackend("planning-mock")
	assert.Equal(t, "planning-mock", b.Name())

	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{"epic plan", "Generate 6-8 epics covering ALL project areas", epicsResponse},
		{"story expansion", "Generate 3 DETAILED USER STORIES for this epic", storiesResponse},
		{"epic regeneration", "You are an expert Agile Product Owner revising a project epic.", epicRegenResponse},
		{"story regeneration", "You are an expert Agile Product Owner revising a user story.", storyRegenResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Complete(context.Background(), tt.prompt, 8192, 0.5)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// The canned payloads carry markdown fencing on purpose; the JSON inside
// must still be well formed.
func TestCannedResponsesAreValidJSON(t *testing.T) {
	strip := func(s string) string {
		s = strings.TrimPrefix(s, "```json\n")
		s = strings.TrimSuffix(s, "\n```")
		return s
	}

	for name, payload := range map[string]string{
		"epics":       epicsResponse,
		"stories":     storiesResponse,
		"epic regen":  epicRegenResponse,
		"story regen": storyRegenResponse,
	} {
		var v any
		require.NoError(t, json.Unmarshal([]byte(strip(payload)), &v), name)
	}
}
