// Package ids generates entity identifiers for imported rows.
//
// Identifiers are opaque strings that sort lexically in creation order, so rows
// inserted by one run can be listed back in the order they were produced.
package ids

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

type Generator interface {
	New() string
}

type uuidV7 struct{}

// UUIDv7 returns a generator of time-ordered UUIDs. Within one process the
// values are strictly increasing even when issued in the same millisecond.
func UUIDv7() Generator {
	return uuidV7{}
}

func (uuidV7) New() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does.
		panic(fmt.Errorf("ids: generate uuidv7: %w", err))
	}
	return id.String()
}

// Sequence issues prefix000001, prefix000002, ... It is used for reproducible
// dry runs and tests.
type Sequence struct {
	prefix string
	mu     sync.Mutex
	n      int
}

func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

func (s *Sequence) New() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s%06d", s.prefix, s.n)
}
