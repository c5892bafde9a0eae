package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "civiclink/pkg/domain-errors"
)

// TestParseUUID_Invariants validates that IDs crossing a trust boundary are
// valid, non-empty, non-nil UUIDs.
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseIssueID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseMinistryID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseUserID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseNGOID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, NGOID(valid), id)
	})
}

func TestTypedIDsMarshalAsStrings(t *testing.T) {
	raw := uuid.New()
	payload := struct {
		Issue   IssueID  `json:"issue_id"`
		Reports []UserID `json:"reports"`
	}{Issue: IssueID(raw), Reports: []UserID{UserID(raw)}}

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"issue_id":"`+raw.String()+`","reports":["`+raw.String()+`"]}`, string(body))

	var decoded struct {
		Issue IssueID `json:"issue_id"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, IssueID(raw), decoded.Issue)
}
