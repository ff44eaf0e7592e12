package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TimeLayout is the fixed ISO-8601 rendering used for every timestamp,
// both in JSON and in the SQL store.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

type Timestamp struct {
	time.Time
}

// Now returns the current UTC time at microsecond precision so that values
// survive a round trip through TimeLayout unchanged.
func Now() Timestamp {
	return Timestamp{time.Now().UTC().Truncate(time.Microsecond)}
}

func (t Timestamp) String() string {
	return t.UTC().Format(TimeLayout)
}

func ParseTimestamp(s string) (Timestamp, error) {
	tm, err := time.Parse(TimeLayout, s)
	if err != nil {
		return Timestamp{}, err
	}
	return Timestamp{tm.UTC()}, nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Metadata is embedded by every entity.
type Metadata struct {
	ID        string    `json:"id"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

func NewMetadata() Metadata {
	now := Now()
	return Metadata{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
}

// Touch refreshes the last-modified timestamp.
func (m *Metadata) Touch() {
	m.UpdatedAt = Now()
}

// Entity is the capability set the stores rely on. T is the concrete pointer
// type, so Clone can return it without a type assertion.
type Entity[T any] interface {
	Meta() *Metadata
	// Attribute returns the value of a named scalar attribute. Unknown names
	// report false and never match a lookup.
	Attribute(name string) (any, bool)
	Clone() T
}

// PasswordHasher is the one-way hashing primitive consumed by the models.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}
