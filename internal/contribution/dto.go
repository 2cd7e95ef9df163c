package contribution

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/chama/pkg/apperr"
	"github.com/fkhayef/chama/pkg/calendar"
)

// ContributionRequest is the body of both create and update. Amount accepts
// a JSON number or a numeric string.
type ContributionRequest struct {
	GroupID     int64       `json:"group_id" example:"1"`
	MemberID    int64       `json:"member_id" example:"1"`
	Amount      json.Number `json:"amount" swaggertype:"string" example:"500.00"`
	Date        string      `json:"date" example:"2024-02-01"`
	Type        Type        `json:"contribution_type,omitempty" example:"savings"`
	RecordedVia Channel     `json:"recorded_via,omitempty" example:"app"`
	Notes       string      `json:"notes,omitempty"`
}

// Input is a validated contribution command
type Input struct {
	GroupID     int64
	MemberID    int64
	Amount      decimal.Decimal
	Date        calendar.Date
	Type        Type
	RecordedVia Channel
	Notes       string
}

// Validate checks the request and converts it to an Input. Type defaults to
// savings and RecordedVia to app.
func (r *ContributionRequest) Validate() (*Input, error) {
	if r.GroupID <= 0 {
		return nil, apperr.Required("group_id")
	}
	if r.MemberID <= 0 {
		return nil, apperr.Required("member_id")
	}

	amount, err := ParseAmount(r.Amount.String())
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(r.Date) == "" {
		return nil, apperr.Required("date")
	}
	date, err := calendar.Parse(strings.TrimSpace(r.Date))
	if err != nil {
		return nil, apperr.Invalid("date", "must be a date in YYYY-MM-DD format")
	}

	typ := Type(strings.ToLower(strings.TrimSpace(string(r.Type))))
	switch typ {
	case "":
		typ = TypeSavings
	case TypeSavings, TypeLoan:
	default:
		return nil, apperr.Invalid("contribution_type", "must be one of savings, loan")
	}

	channel := Channel(strings.ToLower(strings.TrimSpace(string(r.RecordedVia))))
	switch channel {
	case "":
		channel = ChannelApp
	case ChannelApp, ChannelUSSD:
	default:
		return nil, apperr.Invalid("recorded_via", "must be one of app, ussd")
	}

	return &Input{
		GroupID:     r.GroupID,
		MemberID:    r.MemberID,
		Amount:      amount,
		Date:        date,
		Type:        typ,
		RecordedVia: channel,
		Notes:       strings.TrimSpace(r.Notes),
	}, nil
}

// ContributionResponse represents the response for a contribution
type ContributionResponse struct {
	ID          int64   `json:"id"`
	GroupID     int64   `json:"group_id"`
	MemberID    int64   `json:"member_id"`
	MemberName  string  `json:"member_name,omitempty"`
	Amount      string  `json:"amount" example:"500.00"`
	Date        string  `json:"date"`
	Type        Type    `json:"contribution_type"`
	RecordedVia Channel `json:"recorded_via"`
	Notes       string  `json:"notes,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// ToResponse converts a Contribution model to a ContributionResponse DTO
func (c *Contribution) ToResponse() *ContributionResponse {
	return &ContributionResponse{
		ID:          c.ID,
		GroupID:     c.GroupID,
		MemberID:    c.MemberID,
		MemberName:  c.MemberName,
		Amount:      c.Amount.StringFixed(2),
		Date:        c.Date.String(),
		Type:        c.Type,
		RecordedVia: c.RecordedVia,
		Notes:       c.Notes,
		CreatedAt:   c.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// TotalsResponse is the JSON form of Totals
type TotalsResponse struct {
	Total     string            `json:"total" example:"500.00"`
	ByType    map[string]string `json:"by_type"`
	ByChannel map[string]string `json:"by_channel"`
}

// ToResponse converts Totals to a TotalsResponse DTO
func (t Totals) ToResponse() *TotalsResponse {
	resp := &TotalsResponse{
		Total:     t.Total.StringFixed(2),
		ByType:    make(map[string]string, len(t.ByType)),
		ByChannel: make(map[string]string, len(t.ByChannel)),
	}
	for k, v := range t.ByType {
		resp.ByType[string(k)] = v.StringFixed(2)
	}
	for k, v := range t.ByChannel {
		resp.ByChannel[string(k)] = v.StringFixed(2)
	}
	return resp
}

func toResponses(contributions []*Contribution) []*ContributionResponse {
	out := make([]*ContributionResponse, len(contributions))
	for i, c := range contributions {
		out[i] = c.ToResponse()
	}
	return out
}

// MemberContributionsResponse represents a member's contribution history
type MemberContributionsResponse struct {
	MemberID      int64                   `json:"member_id"`
	MemberName    string                  `json:"member_name"`
	GroupID       int64                   `json:"group_id"`
	Contributions []*ContributionResponse `json:"contributions"`
	Totals        *TotalsResponse         `json:"totals"`
}

// ToResponse converts MemberContributions to its DTO
func (mc *MemberContributions) ToResponse() *MemberContributionsResponse {
	return &MemberContributionsResponse{
		MemberID:      mc.Member.ID,
		MemberName:    mc.Member.Name,
		GroupID:       mc.Member.GroupID,
		Contributions: toResponses(mc.Contributions),
		Totals:        mc.Totals.ToResponse(),
	}
}

// GroupContributionsResponse represents a group's contribution history
type GroupContributionsResponse struct {
	GroupID       int64                   `json:"group_id"`
	GroupName     string                  `json:"group_name"`
	Contributions []*ContributionResponse `json:"contributions"`
	Totals        *TotalsResponse         `json:"totals"`
}

// ToResponse converts GroupContributions to its DTO
func (gc *GroupContributions) ToResponse() *GroupContributionsResponse {
	return &GroupContributionsResponse{
		GroupID:       gc.Group.ID,
		GroupName:     gc.Group.Name,
		Contributions: toResponses(gc.Contributions),
		Totals:        gc.Totals.ToResponse(),
	}
}
