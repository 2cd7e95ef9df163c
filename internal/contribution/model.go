package contribution

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/chama/internal/group"
	"github.com/fkhayef/chama/internal/member"
	"github.com/fkhayef/chama/pkg/calendar"
)

// Type is the purpose of a contribution
type Type string

const (
	TypeSavings Type = "savings"
	TypeLoan    Type = "loan"
)

// Types lists every contribution type
var Types = []Type{TypeSavings, TypeLoan}

// Channel is how a contribution was entered
type Channel string

const (
	ChannelApp  Channel = "app"
	ChannelUSSD Channel = "ussd"
)

// Channels lists every recording channel
var Channels = []Channel{ChannelApp, ChannelUSSD}

// Contribution is a single recorded payment by a member
type Contribution struct {
	ID          int64           `json:"id"`
	GroupID     int64           `json:"group_id"`
	MemberID    int64           `json:"member_id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        calendar.Date   `json:"date"`
	Type        Type            `json:"contribution_type"`
	RecordedVia Channel         `json:"recorded_via"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`

	// Populated from JOIN
	MemberName string `json:"member_name,omitempty"`
}

// Totals splits a set of contributions by type and by channel. Every known
// key is present even when its sum is zero.
type Totals struct {
	Total     decimal.Decimal
	ByType    map[Type]decimal.Decimal
	ByChannel map[Channel]decimal.Decimal
}

// Summarize computes the totals of contributions
func Summarize(contributions []*Contribution) Totals {
	t := Totals{
		Total:     decimal.Zero,
		ByType:    make(map[Type]decimal.Decimal, len(Types)),
		ByChannel: make(map[Channel]decimal.Decimal, len(Channels)),
	}
	for _, typ := range Types {
		t.ByType[typ] = decimal.Zero
	}
	for _, ch := range Channels {
		t.ByChannel[ch] = decimal.Zero
	}

	for _, c := range contributions {
		t.Total = t.Total.Add(c.Amount)
		t.ByType[c.Type] = t.ByType[c.Type].Add(c.Amount)
		t.ByChannel[c.RecordedVia] = t.ByChannel[c.RecordedVia].Add(c.Amount)
	}
	return t
}

// MemberContributions is the contribution history of one member
type MemberContributions struct {
	Member        *member.Member
	Contributions []*Contribution
	Totals        Totals
}

// GroupContributions is the contribution history of every member of a group
type GroupContributions struct {
	Group         *group.Group
	Contributions []*Contribution
	Totals        Totals
}
