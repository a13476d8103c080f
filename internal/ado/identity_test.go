package ado

import (
	"encoding/json"
	"testing"

	"github.com/h0rv/azboards/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityRef_Unmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		shape IdentityShape
		want  string
	}{
		{name: "object", input: `{"displayName":"Jane Doe","id":"abc"}`, shape: IdentityStructured, want: "Jane Doe"},
		{name: "object with empty display name", input: `{"displayName":""}`, shape: IdentityStructured, want: ""},
		{name: "object without display name", input: `{"id":"abc"}`, shape: IdentityStructured, want: domain.Unassigned},
		{name: "string", input: `"Jane Doe <jane@acme.com>"`, shape: IdentityPlain, want: "Jane Doe <jane@acme.com>"},
		{name: "null", input: `null`, shape: IdentityAbsent, want: domain.Unassigned},
		{name: "bool", input: `true`, shape: IdentityAbsent, want: domain.Unassigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ref IdentityRef
			require.NoError(t, json.Unmarshal([]byte(tt.input), &ref))
			assert.Equal(t, tt.shape, ref.Shape)
			assert.Equal(t, tt.want, ref.Name())
		})
	}
}

func TestIdentityRef_EmbeddedInStruct(t *testing.T) {
	var payload struct {
		AssignedTo IdentityRef `json:"assignedTo"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"assignedTo":{"displayName":"Sam"}}`), &payload))
	assert.Equal(t, "Sam", payload.AssignedTo.Name())

	var missing struct {
		AssignedTo IdentityRef `json:"assignedTo"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &missing))
	assert.Equal(t, domain.Unassigned, missing.AssignedTo.Name())
}
