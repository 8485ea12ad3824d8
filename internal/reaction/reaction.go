// Package reaction holds the pure reaction-state transition applied inside
// the dream repository's compare-and-swap loop. A viewer holds at most one
// symbol per dream and counts always mirror the viewer map.
package reaction

// State is the reaction portion of a dream document.
type State struct {
	Reactions map[string]string // viewer UID -> symbol
	Counts    map[string]int    // symbol -> count
}

// Change describes the outcome of one Apply.
type Change struct {
	Changed        bool   `json:"changed"`
	PreviousSymbol string `json:"previous_symbol,omitempty"`
	NewSymbol      string `json:"new_symbol,omitempty"`
}

// Clone returns a deep copy so Apply never aliases the document it read
func (s State) Clone() State {
	c := State{
		Reactions: make(map[string]string, len(s.Reactions)),
		Counts:    make(map[string]int, len(s.Counts)),
	}
	for k, v := range s.Reactions {
		c.Reactions[k] = v
	}
	for k, v := range s.Counts {
		c.Counts[k] = v
	}
	return c
}

// Apply computes the state after viewerUID selects symbol (empty = clear).
// It never mutates prev. Decrements clamp at zero so a count can never go
// negative even if the stored maps were already inconsistent.
func Apply(prev State, viewerUID, symbol string) (State, Change) {
	previous := prev.Reactions[viewerUID]
	if previous == symbol {
		// Covers clear-of-nothing and re-selecting the held symbol.
		return prev, Change{Changed: false, PreviousSymbol: previous, NewSymbol: previous}
	}

	next := prev.Clone()
	if previous != "" {
		delete(next.Reactions, viewerUID)
		if next.Counts[previous] > 1 {
			next.Counts[previous]--
		} else {
			delete(next.Counts, previous)
		}
	}
	if symbol != "" {
		next.Reactions[viewerUID] = symbol
		next.Counts[symbol]++
	}

	return next, Change{Changed: true, PreviousSymbol: previous, NewSymbol: symbol}
}

// Consistent reports whether counts exactly mirror the viewer map
func Consistent(s State) bool {
	derived := make(map[string]int, len(s.Counts))
	for _, sym := range s.Reactions {
		derived[sym]++
	}
	if len(derived) != len(s.Counts) {
		return false
	}
	for sym, n := range derived {
		if s.Counts[sym] != n {
			return false
		}
	}
	return true
}
