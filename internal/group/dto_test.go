package group

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/chama/pkg/apperr"
	"github.com/fkhayef/chama/pkg/calendar"
)

func TestGroupRequest_Validate(t *testing.T) {
	tests := []struct {
		name  string
		req   GroupRequest
		field string
	}{
		{"valid", GroupRequest{Name: "Umoja", CycleStartDate: "2024-01-01"}, ""},
		{"trims name", GroupRequest{Name: "  Umoja  ", CycleStartDate: "2024-01-01"}, ""},
		{"missing name", GroupRequest{CycleStartDate: "2024-01-01"}, "name"},
		{"blank name", GroupRequest{Name: "   ", CycleStartDate: "2024-01-01"}, "name"},
		{"long name", GroupRequest{Name: strings.Repeat("a", 256), CycleStartDate: "2024-01-01"}, "name"},
		{"missing date", GroupRequest{Name: "Umoja"}, "cycle_start_date"},
		{"malformed date", GroupRequest{Name: "Umoja", CycleStartDate: "01/01/2024"}, "cycle_start_date"},
		{"impossible date", GroupRequest{Name: "Umoja", CycleStartDate: "2024-02-30"}, "cycle_start_date"},
		{"zero date", GroupRequest{Name: "Umoja", CycleStartDate: "0001-01-01"}, "cycle_start_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := tt.req.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				assert.Equal(t, "Umoja", in.Name)
				assert.True(t, in.CycleStartDate.Equal(calendar.New(2024, time.January, 1)))
				return
			}

			var verr *apperr.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Nil(t, in)
		})
	}
}

func TestGroup_ToResponse(t *testing.T) {
	g := &Group{
		ID:             3,
		Name:           "Umoja",
		CycleStartDate: calendar.New(2024, time.January, 1),
		CreatedAt:      time.Date(2024, time.January, 2, 9, 30, 0, 0, time.UTC),
	}

	resp := g.ToResponse()
	assert.Equal(t, "2024-01-01", resp.CycleStartDate)
	assert.Equal(t, "2024-01-02T09:30:00Z", resp.CreatedAt)
}
