// Package domain provides type-safe identifiers and primitives parsed at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "pincheck/pkg/domain-errors"
)

// WidgetID identifies one widget instance for the duration of an interaction.
type WidgetID uuid.UUID

// NewWidgetID generates a random widget identifier.
func NewWidgetID() WidgetID {
	return WidgetID(uuid.New())
}

// ParseWidgetID parses a widget identifier received from a cookie or URL.
func ParseWidgetID(s string) (WidgetID, error) {
	if s == "" {
		return WidgetID{}, dErrors.New(dErrors.CodeInvalidInput, "widget ID cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return WidgetID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid widget ID format")
	}
	if id == uuid.Nil {
		return WidgetID{}, dErrors.New(dErrors.CodeInvalidInput, "widget ID cannot be nil")
	}
	return WidgetID(id), nil
}

func (id WidgetID) String() string { return uuid.UUID(id).String() }

func (id WidgetID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
