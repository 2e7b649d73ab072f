package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	surrealdb_models "github.com/surrealdb/surrealdb.go/pkg/models"
)

// recordIDTag is the CBOR tag SurrealDB assigns to record IDs.
const recordIDTag = 8

func newV7() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// idTime extracts the creation timestamp embedded in a v7 UUID.
func idTime(id uuid.UUID) time.Time {
	sec, nsec := id.Time().UnixTime()
	return time.Unix(sec, nsec).UTC()
}

// UserID is a typed ID for users
type UserID struct {
	uuid uuid.UUID
}

func NewUserID() UserID {
	return UserID{uuid: newV7()}
}

func NewUserIDFromUUID(id uuid.UUID) UserID {
	return UserID{uuid: id}
}

func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, fmt.Errorf("invalid user ID: %w", err)
	}
	return UserID{uuid: id}, nil
}

func (u UserID) UUID() uuid.UUID { return u.uuid }
func (u UserID) String() string  { return u.uuid.String() }
func (u UserID) IsZero() bool    { return u.uuid == uuid.Nil }
func (u UserID) Time() time.Time { return idTime(u.uuid) }

func (u UserID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: "user",
		ID:    u.uuid.String(),
	}
}

func (u UserID) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.uuid.String())
}

func (u *UserID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	u.uuid = id
	return nil
}

func (u UserID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  recordIDTag,
		Content: []any{"user", u.uuid.String()},
	})
}

func (u *UserID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "user", &u.uuid)
}

// WorkplaceID is a typed ID for workplaces
type WorkplaceID struct {
	uuid uuid.UUID
}

func NewWorkplaceID() WorkplaceID {
	return WorkplaceID{uuid: newV7()}
}

func NewWorkplaceIDFromUUID(id uuid.UUID) WorkplaceID {
	return WorkplaceID{uuid: id}
}

func ParseWorkplaceID(s string) (WorkplaceID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return WorkplaceID{}, fmt.Errorf("invalid workplace ID: %w", err)
	}
	return WorkplaceID{uuid: id}, nil
}

func (w WorkplaceID) UUID() uuid.UUID { return w.uuid }
func (w WorkplaceID) String() string  { return w.uuid.String() }
func (w WorkplaceID) IsZero() bool    { return w.uuid == uuid.Nil }

func (w WorkplaceID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: "workplace",
		ID:    w.uuid.String(),
	}
}

func (w WorkplaceID) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.uuid.String())
}

func (w *WorkplaceID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	w.uuid = id
	return nil
}

func (w WorkplaceID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  recordIDTag,
		Content: []any{"workplace", w.uuid.String()},
	})
}

func (w *WorkplaceID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "workplace", &w.uuid)
}

// MembershipID is a typed ID for workplace memberships
type MembershipID struct {
	uuid uuid.UUID
}

func NewMembershipID() MembershipID {
	return MembershipID{uuid: newV7()}
}

func NewMembershipIDFromUUID(id uuid.UUID) MembershipID {
	return MembershipID{uuid: id}
}

func ParseMembershipID(s string) (MembershipID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return MembershipID{}, fmt.Errorf("invalid membership ID: %w", err)
	}
	return MembershipID{uuid: id}, nil
}

func (m MembershipID) UUID() uuid.UUID { return m.uuid }
func (m MembershipID) String() string  { return m.uuid.String() }
func (m MembershipID) IsZero() bool    { return m.uuid == uuid.Nil }

func (m MembershipID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: "membership",
		ID:    m.uuid.String(),
	}
}

func (m MembershipID) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.uuid.String())
}

func (m *MembershipID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	m.uuid = id
	return nil
}

func (m MembershipID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  recordIDTag,
		Content: []any{"membership", m.uuid.String()},
	})
}

func (m *MembershipID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "membership", &m.uuid)
}

// SprintID is a typed ID for sprints
type SprintID struct {
	uuid uuid.UUID
}

func NewSprintID() SprintID {
	return SprintID{uuid: newV7()}
}

func NewSprintIDFromUUID(id uuid.UUID) SprintID {
	return SprintID{uuid: id}
}

func ParseSprintID(s string) (SprintID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return SprintID{}, fmt.Errorf("invalid sprint ID: %w", err)
	}
	return SprintID{uuid: id}, nil
}

func (s SprintID) UUID() uuid.UUID { return s.uuid }
func (s SprintID) String() string  { return s.uuid.String() }
func (s SprintID) IsZero() bool    { return s.uuid == uuid.Nil }

func (s SprintID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: "sprint",
		ID:    s.uuid.String(),
	}
}

func (s SprintID) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.uuid.String())
}

func (s *SprintID) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	id, err := uuid.Parse(str)
	if err != nil {
		return err
	}
	s.uuid = id
	return nil
}

func (s SprintID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  recordIDTag,
		Content: []any{"sprint", s.uuid.String()},
	})
}

func (s *SprintID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "sprint", &s.uuid)
}

// IssueID is a typed ID for issues
type IssueID struct {
	uuid uuid.UUID
}

func NewIssueID() IssueID {
	return IssueID{uuid: newV7()}
}

func NewIssueIDFromUUID(id uuid.UUID) IssueID {
	return IssueID{uuid: id}
}

func ParseIssueID(s string) (IssueID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return IssueID{}, fmt.Errorf("invalid issue ID: %w", err)
	}
	return IssueID{uuid: id}, nil
}

func (i IssueID) UUID() uuid.UUID { return i.uuid }
func (i IssueID) String() string  { return i.uuid.String() }
func (i IssueID) IsZero() bool    { return i.uuid == uuid.Nil }

func (i IssueID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: "issue",
		ID:    i.uuid.String(),
	}
}

func (i IssueID) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.uuid.String())
}

func (i *IssueID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	i.uuid = id
	return nil
}

func (i IssueID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  recordIDTag,
		Content: []any{"issue", i.uuid.String()},
	})
}

func (i *IssueID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "issue", &i.uuid)
}

// CommentID is a typed ID for comments
type CommentID struct {
	uuid uuid.UUID
}

func NewCommentID() CommentID {
	return CommentID{uuid: newV7()}
}

func NewCommentIDFromUUID(id uuid.UUID) CommentID {
	return CommentID{uuid: id}
}

func ParseCommentID(s string) (CommentID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return CommentID{}, fmt.Errorf("invalid comment ID: %w", err)
	}
	return CommentID{uuid: id}, nil
}

func (c CommentID) UUID() uuid.UUID { return c.uuid }
func (c CommentID) String() string  { return c.uuid.String() }
func (c CommentID) IsZero() bool    { return c.uuid == uuid.Nil }
func (c CommentID) Time() time.Time { return idTime(c.uuid) }

func (c CommentID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: "comment",
		ID:    c.uuid.String(),
	}
}

func (c CommentID) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.uuid.String())
}

func (c *CommentID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	c.uuid = id
	return nil
}

func (c CommentID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  recordIDTag,
		Content: []any{"comment", c.uuid.String()},
	})
}

func (c *CommentID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "comment", &c.uuid)
}

// unmarshalCBORID decodes a SurrealDB record ID tag into target, verifying
// that the record belongs to the expected table.
func unmarshalCBORID(data []byte, expectedTable string, target *uuid.UUID) error {
	if len(data) == 0 {
		return fmt.Errorf("empty CBOR data")
	}

	// Record IDs arrive as a CBOR tag (major type 6).
	majorType := data[0] >> 5
	if majorType != 6 {
		return fmt.Errorf("expected CBOR tag for RecordID, got major type %d", majorType)
	}

	var tag cbor.Tag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("failed to unmarshal CBOR tag: %w", err)
	}

	if tag.Number != recordIDTag {
		return fmt.Errorf("expected RecordID tag (%d), got %d", recordIDTag, tag.Number)
	}

	arr, ok := tag.Content.([]any)
	if !ok || len(arr) != 2 {
		return fmt.Errorf("invalid RecordID format: expected [table, id] array")
	}

	table, ok := arr[0].(string)
	if !ok {
		return fmt.Errorf("invalid RecordID format: table name must be string")
	}

	if table != expectedTable {
		return fmt.Errorf("expected table %s, got %s", expectedTable, table)
	}

	idStr, ok := arr[1].(string)
	if !ok {
		return fmt.Errorf("invalid RecordID format: ID must be string")
	}

	parsedUUID, err := uuid.Parse(idStr)
	if err != nil {
		return fmt.Errorf("invalid UUID in RecordID: %w", err)
	}

	*target = parsedUUID
	return nil
}
