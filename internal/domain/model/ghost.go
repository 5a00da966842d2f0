package model

// GhostSet is an immutable, id-unique collection of death records shown as
// ghosts for one round. Build a new set instead of mutating one.
type GhostSet struct {
	records []DeathRecord
}

// EmptyGhostSet is the set a round uses when no ghosts were loaded.
var EmptyGhostSet = &GhostSet{}

// NewGhostSet unions the given record lists by id, keeping the first
// occurrence and the input order.
func NewGhostSet(lists ...[]DeathRecord) *GhostSet {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	seen := make(map[string]struct{}, n)
	out := make([]DeathRecord, 0, n)
	for _, l := range lists {
		for _, r := range l {
			if _, dup := seen[r.ID]; dup {
				continue
			}
			seen[r.ID] = struct{}{}
			out = append(out, r)
		}
	}
	return &GhostSet{records: out}
}

// Len returns the number of ghosts.
func (s *GhostSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Records returns a copy of the ghosts in set order.
func (s *GhostSet) Records() []DeathRecord {
	if s == nil {
		return nil
	}
	out := make([]DeathRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Each calls fn for every ghost without copying the set.
func (s *GhostSet) Each(fn func(DeathRecord)) {
	if s == nil {
		return
	}
	for _, r := range s.records {
		fn(r)
	}
}
