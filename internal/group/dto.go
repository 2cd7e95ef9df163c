package group

import (
	"strings"
	"unicode/utf8"

	"github.com/fkhayef/chama/pkg/apperr"
	"github.com/fkhayef/chama/pkg/calendar"
)

const maxNameLength = 255

// GroupRequest is the body of both create and update; update replaces every field
type GroupRequest struct {
	Name           string `json:"name" example:"Umoja"`
	CycleStartDate string `json:"cycle_start_date" example:"2024-01-01"`
}

// Input is a validated group command
type Input struct {
	Name           string
	CycleStartDate calendar.Date
}

// Validate checks the request and converts it to an Input
func (r *GroupRequest) Validate() (*Input, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return nil, apperr.Required("name")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, apperr.Invalid("name", "must be at most 255 characters")
	}

	if strings.TrimSpace(r.CycleStartDate) == "" {
		return nil, apperr.Required("cycle_start_date")
	}
	date, err := calendar.Parse(strings.TrimSpace(r.CycleStartDate))
	if err != nil {
		return nil, apperr.Invalid("cycle_start_date", "must be a date in YYYY-MM-DD format")
	}

	return &Input{Name: name, CycleStartDate: date}, nil
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	CycleStartDate string `json:"cycle_start_date"`
	CreatedAt      string `json:"created_at"`
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:             g.ID,
		Name:           g.Name,
		CycleStartDate: g.CycleStartDate.String(),
		CreatedAt:      g.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
