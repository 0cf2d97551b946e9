// Package wardrobe defines the wardrobe domain entities: items, outfit suggestions
// and the display-ready view-models produced when outfits are resolved.
package wardrobe

import (
	"strings"
	"time"
)

// ItemProjection identifies how much of an item record was loaded.
type ItemProjection int

const (
	// ProjectionMinimal carries identity, name and image keys only.
	ProjectionMinimal ItemProjection = iota
	// ProjectionDetailed additionally carries the detected type and colours.
	ProjectionDetailed
)

func (p ItemProjection) String() string {
	switch p {
	case ProjectionDetailed:
		return "detailed"
	default:
		return "minimal"
	}
}

// Item is a cacheable wardrobe record. Detail is nil for the minimal projection.
type Item struct {
	ID          string      `json:"id"`
	OwnerID     string      `json:"ownerId"`
	Name        *string     `json:"name,omitempty"`
	ThumbKey    *string     `json:"thumbKey,omitempty"`
	CleanKey    *string     `json:"cleanKey,omitempty"`
	OriginalKey *string     `json:"originalKey,omitempty"`
	Detail      *ItemDetail `json:"detail,omitempty"`
	Created     time.Time   `json:"created"`
	Changed     *time.Time  `json:"changed,omitempty"`
}

// ItemDetail holds the fields only present on the detailed projection.
type ItemDetail struct {
	Type   *string  `json:"type"`
	Colour []string `json:"colour"`
}

// Projection reports which projection the record was loaded with.
func (i *Item) Projection() ItemProjection {
	if i.HasDetail() {
		return ProjectionDetailed
	}
	return ProjectionMinimal
}

// HasDetail reports whether the record exposes the type/colour fields.
func (i *Item) HasDetail() bool {
	return i != nil && i.Detail != nil
}

// TrimmedName returns the user-provided name with surrounding whitespace removed.
func (i *Item) TrimmedName() string {
	if i == nil || i.Name == nil {
		return ""
	}
	return strings.TrimSpace(*i.Name)
}

// DetectedType returns the trimmed detected type, or "" when unavailable.
func (i *Item) DetectedType() string {
	if !i.HasDetail() || i.Detail.Type == nil {
		return ""
	}
	return strings.TrimSpace(*i.Detail.Type)
}

// Minimal returns a copy of the item reduced to the minimal projection.
func (i *Item) Minimal() *Item {
	if i == nil {
		return nil
	}
	cp := *i
	cp.Detail = nil
	return &cp
}
