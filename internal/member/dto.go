package member

import (
	"strings"
	"unicode/utf8"

	"github.com/fkhayef/chama/pkg/apperr"
)

const (
	maxNameLength  = 255
	maxPhoneLength = 20
)

// MemberRequest is the body of both create and update
type MemberRequest struct {
	GroupID     int64  `json:"group_id" example:"1"`
	Name        string `json:"name" example:"Asha"`
	PhoneNumber string `json:"phone_number" example:"+254700000001"`
	Role        Role   `json:"role,omitempty" example:"treasurer"`
}

// Input is a validated member command
type Input struct {
	GroupID     int64
	Name        string
	PhoneNumber string
	Role        Role
}

// Validate checks the request and converts it to an Input. An empty role
// becomes RoleMember; unknown roles are rejected.
func (r *MemberRequest) Validate() (*Input, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return nil, apperr.Required("name")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, apperr.Invalid("name", "must be at most 255 characters")
	}

	phone := strings.TrimSpace(r.PhoneNumber)
	if phone == "" {
		return nil, apperr.Required("phone_number")
	}
	if utf8.RuneCountInString(phone) > maxPhoneLength {
		return nil, apperr.Invalid("phone_number", "must be at most 20 characters")
	}

	if r.GroupID <= 0 {
		return nil, apperr.Required("group_id")
	}

	role := Role(strings.ToLower(strings.TrimSpace(string(r.Role))))
	if role == "" {
		role = RoleMember
	}
	if !role.Valid() {
		return nil, apperr.Invalid("role", "must be one of member, treasurer, secretary")
	}

	return &Input{
		GroupID:     r.GroupID,
		Name:        name,
		PhoneNumber: phone,
		Role:        role,
	}, nil
}

// MemberResponse represents the response for a member
type MemberResponse struct {
	ID          int64  `json:"id"`
	GroupID     int64  `json:"group_id"`
	GroupName   string `json:"group_name,omitempty"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Role        Role   `json:"role"`
	JoinedAt    string `json:"joined_at"`
}

// ToResponse converts a Member model to a MemberResponse DTO
func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:          m.ID,
		GroupID:     m.GroupID,
		GroupName:   m.GroupName,
		Name:        m.Name,
		PhoneNumber: m.PhoneNumber,
		Role:        m.Role,
		JoinedAt:    m.JoinedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
