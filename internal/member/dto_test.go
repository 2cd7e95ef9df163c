package member

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/chama/pkg/apperr"
)

func TestMemberRequest_Validate(t *testing.T) {
	valid := MemberRequest{GroupID: 1, Name: "Asha", PhoneNumber: "+254700000001", Role: RoleTreasurer}

	tests := []struct {
		name   string
		mutate func(r *MemberRequest)
		field  string
		role   Role
	}{
		{"valid", func(r *MemberRequest) {}, "", RoleTreasurer},
		{"empty role defaults to member", func(r *MemberRequest) { r.Role = "" }, "", RoleMember},
		{"role is case insensitive", func(r *MemberRequest) { r.Role = "Secretary" }, "", RoleSecretary},
		{"upper case role", func(r *MemberRequest) { r.Role = " TREASURER " }, "", RoleTreasurer},
		{"unknown role", func(r *MemberRequest) { r.Role = "chairperson" }, "role", ""},
		{"unknown upper case role", func(r *MemberRequest) { r.Role = "CHAIRPERSON" }, "role", ""},
		{"missing name", func(r *MemberRequest) { r.Name = " " }, "name", ""},
		{"missing phone", func(r *MemberRequest) { r.PhoneNumber = "" }, "phone_number", ""},
		{"long phone", func(r *MemberRequest) { r.PhoneNumber = strings.Repeat("7", 21) }, "phone_number", ""},
		{"missing group", func(r *MemberRequest) { r.GroupID = 0 }, "group_id", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)

			in, err := req.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.role, in.Role)
				assert.Equal(t, "+254700000001", in.PhoneNumber)
				return
			}

			var verr *apperr.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
