package group

import (
	"time"

	"github.com/fkhayef/chama/pkg/calendar"
)

// Group is a savings collective with a defined contribution cycle
type Group struct {
	ID             int64         `json:"id"`
	Name           string        `json:"name"`
	CycleStartDate calendar.Date `json:"cycle_start_date"`
	CreatedAt      time.Time     `json:"created_at"`
}
