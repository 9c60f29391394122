package wos

import (
	"sort"

	"github.com/segmentio/encoding/json"
)

// LabelCount is a single entry of a Counter.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Counter counts labels and remembers the order in which labels were first
// seen. The zero value is ready to use; a nil Counter reads as empty.
type Counter struct {
	index   map[string]int
	entries []LabelCount
}

// Add increments the count for label.
func (c *Counter) Add(label string) {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	i, ok := c.index[label]
	if !ok {
		i = len(c.entries)
		c.index[label] = i
		c.entries = append(c.entries, LabelCount{Label: label})
	}
	c.entries[i].Count++
}

// Count returns the count for label, zero if unseen.
func (c *Counter) Count(label string) int {
	if c == nil {
		return 0
	}
	if i, ok := c.index[label]; ok {
		return c.entries[i].Count
	}
	return 0
}

// Len returns the number of distinct labels.
func (c *Counter) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Sum returns the sum of all counts.
func (c *Counter) Sum() int {
	var s int
	for _, e := range c.Entries() {
		s += e.Count
	}
	return s
}

// Entries returns labels and counts in first-seen order.
func (c *Counter) Entries() []LabelCount {
	if c == nil {
		return nil
	}
	return append([]LabelCount(nil), c.entries...)
}

// MostCommon returns entries ordered by count, descending. Ties keep
// first-seen order.
func (c *Counter) MostCommon() []LabelCount {
	result := c.Entries()
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	return result
}

// MarshalJSON renders the counter as a list, most common first.
func (c *Counter) MarshalJSON() ([]byte, error) {
	entries := c.MostCommon()
	if entries == nil {
		entries = []LabelCount{}
	}
	return json.Marshal(entries)
}
