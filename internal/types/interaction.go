package types

import (
	"fmt"
	"time"
)

// InteractionType is a closed set of ways a user can engage with an article.
// Each type carries a fixed weight used when building interest profiles.
type InteractionType int

// Interaction types. InteractionUnknown is what unrecognized labels decode to.
const (
	InteractionUnknown InteractionType = iota
	InteractionClick
	InteractionView
	InteractionLike
	InteractionShare
)

// InteractionTypes lists the known interaction types.
var InteractionTypes = []InteractionType{InteractionClick, InteractionView, InteractionLike, InteractionShare}

// Weight returns the profile weight for the interaction type.
// Unknown types weigh the same as a click.
func (t InteractionType) Weight() float64 {
	switch t {
	case InteractionClick:
		return 1.0
	case InteractionView:
		return 2.0
	case InteractionLike:
		return 2.5
	case InteractionShare:
		return 3.0
	default:
		return 1.0
	}
}

func (t InteractionType) String() string {
	switch t {
	case InteractionClick:
		return "click"
	case InteractionView:
		return "view"
	case InteractionLike:
		return "like"
	case InteractionShare:
		return "share"
	default:
		return "unknown"
	}
}

// Known reports whether t is one of the recognized interaction types.
func (t InteractionType) Known() bool {
	return t != InteractionUnknown
}

// ParseInteractionType maps a label to its InteractionType.
// An unrecognized label yields InteractionUnknown and an error.
func ParseInteractionType(s string) (InteractionType, error) {
	for _, t := range InteractionTypes {
		if t.String() == s {
			return t, nil
		}
	}
	return InteractionUnknown, fmt.Errorf("unknown interaction type %q", s)
}

// MarshalText encodes the type as its label.
func (t InteractionType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a label. Unrecognized labels are kept as InteractionUnknown
// so that historical events with retired types still load.
func (t *InteractionType) UnmarshalText(text []byte) error {
	parsed, _ := ParseInteractionType(string(text))
	*t = parsed
	return nil
}

// InteractionEvent is one entry of the append-only interaction log. Category and
// PoliticalBias are copied from the article when the event is recorded.
type InteractionEvent struct {
	ID              int64           `json:"id,omitempty"`
	UserID          int64           `json:"userId" validate:"gt=0"`
	ArticleID       int64           `json:"articleId" validate:"gt=0"`
	InteractionType InteractionType `json:"interactionType" validate:"gt=0"`
	Timestamp       time.Time       `json:"timestamp" validate:"required"`
	SessionDuration *int            `json:"sessionDuration,omitempty" validate:"omitempty,gte=0"`
	Category        Category        `json:"category" validate:"required"`
	PoliticalBias   PoliticalBias   `json:"politicalBias" validate:"required"`
}

// Validate checks the event against its field constraints.
func (e *InteractionEvent) Validate() error {
	return validate.Struct(e)
}
