package arbiter

import (
	"fmt"

	"github.com/Garsondee/Flag-Sense/internal/grid"
)

// Entry is one behavior change in the journal.
type Entry struct {
	Update   uint64 // team belief-map update count when recorded
	Slot     int
	Role     Role
	Behavior Behavior
	Action   grid.Action
	Dir      grid.Direction
}

func (e Entry) String() string {
	return fmt.Sprintf("#%d slot%d %s: %s (%s %s)", e.Update, e.Slot, e.Role, e.Behavior, e.Action, e.Dir)
}

// Journal is a ring buffer of behavior changes. A new entry is written only
// when an agent's chosen behavior differs from its previous one.
type Journal struct {
	entries []Entry
	head    int
	count   int
	current [TeamSize]Behavior
	seen    [TeamSize]bool
}

// NewJournal creates a journal holding at most size entries.
func NewJournal(size int) *Journal {
	if size < 1 {
		size = 1
	}
	return &Journal{entries: make([]Entry, size)}
}

func (j *Journal) record(e Entry) bool {
	if e.Slot < 0 || e.Slot >= TeamSize {
		return false
	}
	if j.seen[e.Slot] && j.current[e.Slot] == e.Behavior {
		return false
	}
	j.current[e.Slot], j.seen[e.Slot] = e.Behavior, true
	j.entries[j.head] = e
	j.head = (j.head + 1) % len(j.entries)
	if j.count < len(j.entries) {
		j.count++
	}
	return true
}

// Current returns the last behavior recorded for slot.
func (j *Journal) Current(slot int) (Behavior, bool) {
	if slot < 0 || slot >= TeamSize {
		return BehaviorIdle, false
	}
	return j.current[slot], j.seen[slot]
}

// Len returns the number of entries held.
func (j *Journal) Len() int { return j.count }

// Recent returns entries in chronological order (oldest first).
func (j *Journal) Recent() []Entry {
	n := len(j.entries)
	result := make([]Entry, j.count)
	for i := 0; i < j.count; i++ {
		result[i] = j.entries[(j.head-j.count+i+n)%n]
	}
	return result
}
