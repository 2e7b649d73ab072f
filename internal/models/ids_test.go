package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserIDEmbedsCreationTime(t *testing.T) {
	before := time.Now().Add(-time.Second)
	id := NewUserID()
	after := time.Now().Add(time.Second)

	created := id.Time()
	assert.True(t, created.After(before), "creation time %v not after %v", created, before)
	assert.True(t, created.Before(after), "creation time %v not before %v", created, after)
}

func TestIDEqualityByValue(t *testing.T) {
	raw := uuid.Must(uuid.NewV7())

	a := NewIssueIDFromUUID(raw)
	b := NewIssueIDFromUUID(raw)
	assert.Equal(t, a, b)
	assert.True(t, a == b)
	assert.NotEqual(t, a, NewIssueID())
}

func TestParseWorkplaceID(t *testing.T) {
	id := NewWorkplaceID()

	parsed, err := ParseWorkplaceID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseWorkplaceID("not-a-uuid")
	assert.Error(t, err)
}

func TestMembershipIDJSON(t *testing.T) {
	id := NewMembershipID()

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.JSONEq(t, `"`+id.String()+`"`, string(data))

	var decoded MembershipID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id, decoded)
}

func TestSprintIDCBORRoundTrip(t *testing.T) {
	id := NewSprintID()

	data, err := cbor.Marshal(id)
	require.NoError(t, err)

	var decoded SprintID
	require.NoError(t, cbor.Unmarshal(data, &decoded))
	assert.Equal(t, id, decoded)

	var wrongTable IssueID
	assert.Error(t, cbor.Unmarshal(data, &wrongTable), "record from another table must be rejected")
}

func TestCommentIDRecordID(t *testing.T) {
	id := NewCommentID()

	rid := id.RecordID()
	assert.Equal(t, "comment", rid.Table)
	assert.Equal(t, id.String(), rid.ID)
}

func TestIDIsZero(t *testing.T) {
	var zero UserID
	assert.True(t, zero.IsZero())
	assert.False(t, NewUserID().IsZero())
}
