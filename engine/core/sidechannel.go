package deeprag

import (
	"fmt"
	"sync"
)

// Well-known side-channel keys shared by cooperating tool calls.
const (
	// SideChannelReservations holds the final merged []Reservation.
	SideChannelReservations = "reservations"
	// SideChannelGrouping holds the grouping summary: one GroupingDocument,
	// or a list of them when several groups were processed.
	SideChannelGrouping = "grouping"
)

// SideChannel passes large intermediate artifacts between cooperating tool
// calls in the same session without putting them in the response stream.
// Group results live in slots pre-sized before fan-out; each group's
// pipeline writes its own slot exactly once.
type SideChannel struct {
	mu           sync.RWMutex
	values       map[string]any
	groupResults []*GroupingResult
}

// NewSideChannel creates an empty side channel.
func NewSideChannel() *SideChannel {
	return &SideChannel{values: make(map[string]any)}
}

// Set stores a named artifact.
func (sc *SideChannel) Set(key string, value any) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.values[key] = value
}

// Get returns a named artifact, or nil when absent.
func (sc *SideChannel) Get(key string) any {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.values[key]
}

// InitGroupResults pre-sizes the group result slots. Must be called before
// fan-out begins; concurrent writers then never touch each other's slot.
func (sc *SideChannel) InitGroupResults(numGroups int) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.groupResults = make([]*GroupingResult, numGroups)
}

// SetGroupResult writes one group's slot. Writing a slot twice or writing
// out of range is a contract violation.
func (sc *SideChannel) SetGroupResult(groupNumber int, result *GroupingResult) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if groupNumber < 0 || groupNumber >= len(sc.groupResults) {
		return fmt.Errorf("group result slot %d out of range (have %d slots)", groupNumber, len(sc.groupResults))
	}
	if sc.groupResults[groupNumber] != nil {
		return fmt.Errorf("group result slot %d written twice", groupNumber)
	}
	sc.groupResults[groupNumber] = result
	return nil
}

// GroupResult reads one group's slot, or nil when unset.
func (sc *SideChannel) GroupResult(groupNumber int) *GroupingResult {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	if groupNumber < 0 || groupNumber >= len(sc.groupResults) {
		return nil
	}
	return sc.groupResults[groupNumber]
}

// GroupResults returns all slots. Call only after the fan-out join barrier.
func (sc *SideChannel) GroupResults() []*GroupingResult {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	results := make([]*GroupingResult, len(sc.groupResults))
	copy(results, sc.groupResults)
	return results
}
