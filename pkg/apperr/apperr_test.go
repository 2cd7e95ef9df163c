package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    error
		message string
	}{
		{"not found", NotFound("group"), ErrNotFound, "group not found"},
		{"conflict", Conflict("phone number"), ErrConflict, "phone number already in use"},
		{"required", Required("name"), ErrValidation, "name: is required"},
		{"invalid", Invalid("role", "must be one of member, treasurer, secretary"), ErrValidation,
			"role: must be one of member, treasurer, secretary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.kind)
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}

func TestValidationErrorSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("create group: %w", Invalid("cycle_start_date", "must be a date in YYYY-MM-DD format"))

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, "cycle_start_date", verr.Field)
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrNotFound)
}
