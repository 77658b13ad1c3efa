package identity

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// labelPrefix marks every display token.
const labelPrefix = "RID"

// maxRegenerate bounds how often NextDistinct retries on a collision.
const maxRegenerate = 8

// Token identifies one wizard session. ID keys journal records; Label is the
// opaque reference shown to the user.
type Token struct {
	ID    string
	Label string
}

// String returns the display label.
func (t Token) String() string {
	return t.Label
}

// IsZero reports whether the token was never generated.
func (t Token) IsZero() bool {
	return t.ID == "" && t.Label == ""
}

// Generator produces session tokens.
type Generator interface {
	Next() Token
}

// Source generates tokens of the form RID-XXXX-NNNNNN: four random base-36
// characters followed by the last six digits of the millisecond clock.
type Source struct {
	now   func() time.Time
	newID func() uuid.UUID
}

// NewSource creates a Source backed by random UUIDs and the wall clock.
func NewSource() *Source {
	return &Source{
		now:   time.Now,
		newID: uuid.New,
	}
}

// Next returns a fresh token.
func (s *Source) Next() Token {
	id := s.newID()
	return Token{
		ID:    id.String(),
		Label: formatLabel(id, s.now()),
	}
}

func formatLabel(id uuid.UUID, now time.Time) string {
	n := binary.BigEndian.Uint64(id[:8])
	rnd := strings.ToUpper(strconv.FormatUint(n, 36))
	if len(rnd) < 4 {
		rnd = strings.Repeat("0", 4-len(rnd)) + rnd
	}

	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}

	return fmt.Sprintf("%s-%s-%s", labelPrefix, rnd[:4], ms)
}

// NextDistinct returns a token whose ID and Label both differ from prev.
func NextDistinct(g Generator, prev Token) Token {
	var t Token
	for i := 0; i < maxRegenerate; i++ {
		t = g.Next()
		if t.ID != prev.ID && t.Label != prev.Label {
			return t
		}
	}
	// Label space exhausted by a stuck generator; force uniqueness on the ID.
	if t.ID == prev.ID {
		t.ID = uuid.NewString()
	}
	if t.Label == prev.Label {
		t.Label += "-" + t.ID[:4]
	}
	return t
}
