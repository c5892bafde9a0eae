package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civiclink/internal/access"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
)

func TestNewUser(t *testing.T) {
	now := time.Now()

	u, err := NewUser(id.UserID(uuid.New()), "  Nimal@Example.LK ", "0771234567", "hash", "Nimal Perera", now)
	require.NoError(t, err)
	assert.Equal(t, "nimal@example.lk", u.Email)
	assert.Equal(t, access.RoleCitizen, u.Role)
	assert.Equal(t, access.StatusActive, u.Status)

	cases := map[string]struct {
		email, phone, name string
	}{
		"bad email":    {"nimal", "", "Nimal"},
		"display name": {"Nimal <nimal@example.lk>", "", "Nimal"},
		"bad phone":    {"n@example.lk", "+94771234567", "Nimal"},
		"missing name": {"n@example.lk", "", " "},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewUser(id.UserID(uuid.New()), tc.email, tc.phone, "hash", tc.name, now)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Passw0rd"))
	for _, p := range []string{"Pa0", "password1", "PASSWORD1", "Password"} {
		assert.True(t, dErrors.HasCode(ValidatePassword(p), dErrors.CodeValidation), p)
	}
}

func TestAffiliations(t *testing.T) {
	u, err := NewUser(id.UserID(uuid.New()), "a@b.lk", "", "hash", "A", time.Now())
	require.NoError(t, err)

	ngo := id.NGOID(uuid.New())
	u.AssignNGO(ngo)
	ident := u.Identity()
	assert.Equal(t, access.RoleNGO, ident.Role)
	assert.Equal(t, ngo, *ident.NGOID)

	u.ClearNGO()
	assert.Equal(t, access.RoleCitizen, u.Role)
	assert.Nil(t, u.NGOID)

	m := id.MinistryID(uuid.New())
	u.AssignMinistry(m)
	assert.True(t, u.Identity().OfficerOf(m))
}
