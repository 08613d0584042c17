// Package costs estimates X API spend per action for the lifetime of a process.
package costs

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Estimated USD price per call (or per returned result, where noted) on pay-per-use credits.
const (
	Post             = 0.01
	SearchPerResult  = 0.005
	Like             = 0.005
	Unlike           = 0.005
	UserLookup       = 0.001
	MentionPerResult = 0.005
	Follow           = 0.001
	DMSend           = 0.01
	DMReadPerResult  = 0.005
	GetTweet         = 0.005
	Delete           = 0.01
)

// Entry is the accumulated spend for one action.
type Entry struct {
	Calls     int     `json:"calls"`
	TotalCost float64 `json:"totalCost"`
}

// Summary is a rounded snapshot of the ledger.
type Summary struct {
	TotalCost float64          `json:"totalCost"`
	Breakdown map[string]Entry `json:"breakdown"`
}

// Actions returns the breakdown keys in sorted order.
func (s Summary) Actions() []string {
	keys := make([]string, 0, len(s.Breakdown))
	for k := range s.Breakdown {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Ledger accumulates spend per action at full precision and rounds only on read.
// It is safe for concurrent use.
type Ledger struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[string]*Entry)}
}

// Track records one call of action costing cost.
func (l *Ledger) Track(action string, cost float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.entries == nil {
		l.entries = make(map[string]*Entry)
	}
	e, ok := l.entries[action]
	if !ok {
		e = &Entry{}
		l.entries[action] = e
	}
	e.Calls++
	e.TotalCost += cost
}

// Total returns the sum over all actions, rounded to 4 decimals.
func (l *Ledger) Total() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Round(l.sumLocked())
}

// Summary returns the total and a per-action breakdown, each independently rounded.
func (l *Ledger) Summary() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()
	breakdown := make(map[string]Entry, len(l.entries))
	for action, e := range l.entries {
		breakdown[action] = Entry{Calls: e.Calls, TotalCost: Round(e.TotalCost)}
	}
	return Summary{TotalCost: Round(l.sumLocked()), Breakdown: breakdown}
}

// Reset clears all entries.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.entries)
}

func (l *Ledger) sumLocked() float64 {
	var sum float64
	for _, e := range l.entries {
		sum += e.TotalCost
	}
	return sum
}

// Round rounds v to 4 decimal places.
func Round(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// FormatUSD renders v as "$0.0000".
func FormatUSD(v float64) string {
	return fmt.Sprintf("$%.4f", v)
}

// Price is one row of the price table, keyed by the action name the tools track.
type Price struct {
	Action string
	Price  float64
	Unit   string
}

// PriceTable lists the estimated prices in the order the tools are usually listed.
func PriceTable() []Price {
	return []Price{
		{"post", Post, "per tweet"},
		{"delete", Delete, "per call"},
		{"like", Like, "per call"},
		{"unlike", Unlike, "per call"},
		{"follow", Follow, "per call"},
		{"search", SearchPerResult, "per result"},
		{"mentions", MentionPerResult, "per result"},
		{"user_lookup", UserLookup, "per call"},
		{"get_tweet", GetTweet, "per call"},
		{"dm_send", DMSend, "per message"},
		{"dm_read", DMReadPerResult, "per result"},
	}
}
