package ado

import (
	"bytes"
	"encoding/json"

	"github.com/h0rv/azboards/internal/domain"
)

// IdentityShape tells how an identity field was represented in the raw record.
type IdentityShape int

const (
	// IdentityAbsent: field missing, null, or of an unexpected shape.
	IdentityAbsent IdentityShape = iota
	// IdentityStructured: an identity object ({"displayName": ..., "uniqueName": ...}).
	IdentityStructured
	// IdentityPlain: a bare string such as "Jane Doe <jane@acme.com>".
	IdentityPlain
)

// IdentityRef is the decoded form of an identity field such as System.AssignedTo.
type IdentityRef struct {
	Shape       IdentityShape
	DisplayName string // set for structured identities that carry a display name
	Plain       string // set for plain identities
	hasName     bool
}

// UnmarshalJSON decodes any JSON value; shapes other than object or string become IdentityAbsent.
func (r *IdentityRef) UnmarshalJSON(data []byte) error {
	*r = decodeIdentity(data)
	return nil
}

func decodeIdentity(raw json.RawMessage) IdentityRef {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return IdentityRef{}
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return IdentityRef{}
		}
		return IdentityRef{Shape: IdentityPlain, Plain: s}
	case '{':
		var obj struct {
			DisplayName *string `json:"displayName"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return IdentityRef{}
		}
		ref := IdentityRef{Shape: IdentityStructured}
		if obj.DisplayName != nil {
			ref.DisplayName = *obj.DisplayName
			ref.hasName = true
		}
		return ref
	default:
		return IdentityRef{}
	}
}

// Name resolves the identity to a single display string.
func (r IdentityRef) Name() string {
	switch r.Shape {
	case IdentityStructured:
		if r.hasName {
			return r.DisplayName
		}
		return domain.Unassigned
	case IdentityPlain:
		return r.Plain
	default:
		return domain.Unassigned
	}
}
