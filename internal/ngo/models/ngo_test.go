package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
)

var now = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

func newNGO(t *testing.T) *NGO {
	t.Helper()
	n, err := NewNGO(id.NGOID(uuid.New()), "Clean Lanka", "REG-001", id.UserID(uuid.New()), Profile{
		ContactEmail: "hello@cleanlanka.org",
		Website:      "https://cleanlanka.org",
		AreasOfWork:  []string{"Waste", "water", "waste"},
	}, now)
	require.NoError(t, err)
	return n
}

func TestNewNGO(t *testing.T) {
	n := newNGO(t)
	assert.False(t, n.Verified)
	assert.Equal(t, []string{"waste", "water"}, n.AreasOfWork)
	assert.Len(t, n.Admins, 1)

	t.Run("contact email required", func(t *testing.T) {
		_, err := NewNGO(id.NGOID(uuid.New()), "X", "REG", id.UserID(uuid.New()), Profile{}, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("website must be http", func(t *testing.T) {
		_, err := NewNGO(id.NGOID(uuid.New()), "X", "REG", id.UserID(uuid.New()), Profile{
			ContactEmail: "a@b.org",
			Website:      "ftp://b.org",
		}, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("areas must be issue categories", func(t *testing.T) {
		_, err := NewNGO(id.NGOID(uuid.New()), "X", "REG", id.UserID(uuid.New()), Profile{
			ContactEmail: "a@b.org",
			AreasOfWork:  []string{"health"},
		}, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestApproval(t *testing.T) {
	n := newNGO(t)
	admin := id.UserID(uuid.New())

	require.NoError(t, n.CanApprove())
	n.ApplyApproval(admin, now)
	assert.True(t, n.Verified)
	assert.Equal(t, admin, *n.ApprovedBy)

	err := n.CanApprove()
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestUpdateProfileKeepsUnsetFields(t *testing.T) {
	n := newNGO(t)
	later := now.Add(time.Hour)

	require.NoError(t, n.UpdateProfile(Profile{Description: "We clean beaches"}, later))
	assert.Equal(t, "We clean beaches", n.Description)
	assert.Equal(t, "hello@cleanlanka.org", n.ContactEmail)
	assert.Equal(t, []string{"waste", "water"}, n.AreasOfWork)
	assert.Equal(t, later, n.UpdatedAt)

	require.NoError(t, n.UpdateProfile(Profile{AreasOfWork: []string{"flood"}}, later))
	assert.Equal(t, []string{"flood"}, n.AreasOfWork)
}
