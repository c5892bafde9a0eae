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

var now = time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

func TestNewMinistry(t *testing.T) {
	t.Run("normalizes categories", func(t *testing.T) {
		m, err := NewMinistry(id.MinistryID(uuid.New()), Name{EN: " Ministry of Water Supply "},
			[]string{"Water", "water ", "flood", "health"}, "info@water.gov.lk", "0112345678", now)
		require.NoError(t, err)
		assert.Equal(t, "Ministry of Water Supply", m.Name.EN)
		assert.Equal(t, []string{"water", "flood", "health"}, m.Categories)
		assert.True(t, m.HandlesCategory("flood"))
		assert.NotNil(t, m.Officers)
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		_, err := NewMinistry(id.MinistryID(uuid.New()), Name{EN: "Ministry of Magic"}, []string{"wizardry"}, "", "", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("requires english name and a category", func(t *testing.T) {
		_, err := NewMinistry(id.MinistryID(uuid.New()), Name{SI: "ජල"}, []string{"water"}, "", "", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

		_, err = NewMinistry(id.MinistryID(uuid.New()), Name{EN: "Water"}, nil, "", "", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects malformed contact email", func(t *testing.T) {
		_, err := NewMinistry(id.MinistryID(uuid.New()), Name{EN: "Water"}, []string{"water"}, "not-an-email", "", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestAddOfficer(t *testing.T) {
	m, err := NewMinistry(id.MinistryID(uuid.New()), Name{EN: "Roads"}, []string{"road"}, "", "", now)
	require.NoError(t, err)
	u := id.UserID(uuid.New())

	assert.True(t, m.AddOfficer(u, now))
	assert.False(t, m.AddOfficer(u, now))
	assert.Equal(t, []id.UserID{u}, m.Officers)
}

func TestAllowedCategory(t *testing.T) {
	assert.True(t, AllowedCategory("waste"))
	assert.True(t, AllowedCategory("law_enforcement"))
	assert.False(t, AllowedCategory("police"))
}
