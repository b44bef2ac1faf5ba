package personalization

// TallyEntry is one interest category and its visit count.
type TallyEntry struct {
	CategoryID string `json:"category_id"`
	Count      int    `json:"count"`
}

// Tally counts product page visits per interest category. Iteration order is
// the order in which ids were first configured.
type Tally struct {
	order  []string
	counts map[string]int
}

// NewTally returns a tally with one zero entry per distinct id, in order.
// Repeated ids keep their first position and blank ids are skipped.
func NewTally(ids []string) *Tally {
	t := &Tally{
		order:  make([]string, 0, len(ids)),
		counts: make(map[string]int, len(ids)),
	}
	for _, id := range ids {
		if _, seen := t.counts[id]; seen || id == "" {
			continue
		}
		t.order = append(t.order, id)
		t.counts[id] = 0
	}
	return t
}

// Len returns the number of entries.
func (t *Tally) Len() int {
	return len(t.order)
}

// IDs returns the entry ids in iteration order.
func (t *Tally) IDs() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Count returns the count for id, or zero if id is not tracked.
func (t *Tally) Count(id string) int {
	return t.counts[id]
}

// Increment adds one visit to id. Ids outside the tally are ignored so the
// entry set never changes after construction.
func (t *Tally) Increment(id string) bool {
	if _, ok := t.counts[id]; !ok {
		return false
	}
	t.counts[id]++
	return true
}

// Entries returns a snapshot of the tally in iteration order.
func (t *Tally) Entries() []TallyEntry {
	entries := make([]TallyEntry, 0, len(t.order))
	for _, id := range t.order {
		entries = append(entries, TallyEntry{CategoryID: id, Count: t.counts[id]})
	}
	return entries
}
