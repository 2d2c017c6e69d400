package nbt

import (
	"sort"
)

// Entry is one name/value pair of a Compound.
type Entry struct {
	Name string
	Tag  *Tag
}

// Compound is the string-keyed dictionary carried by a Compound tag.
//
// Keys are unique. Iteration follows insertion order; replacing the value of
// an existing key keeps its original position. Ordering never affects
// equality (see Equal).
type Compound struct {
	entries []Entry
	index   map[string]int
}

// NewCompound creates a compound from entries. Later entries with a
// repeated name replace earlier ones.
func NewCompound(entries ...Entry) *Compound {
	c := &Compound{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		c.Set(e.Name, e.Tag)
	}
	return c
}

// Len returns the number of entries.
func (c *Compound) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Set stores t under name.
func (c *Compound) Set(name string, t *Tag) {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if i, ok := c.index[name]; ok {
		c.entries[i].Tag = t
		return
	}
	c.index[name] = len(c.entries)
	c.entries = append(c.entries, Entry{Name: name, Tag: t})
}

// Get returns the tag stored under name.
func (c *Compound) Get(name string) (*Tag, bool) {
	if c == nil {
		return nil, false
	}
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return c.entries[i].Tag, true
}

// Has reports whether name is present.
func (c *Compound) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Delete removes name and reports whether it was present.
func (c *Compound) Delete(name string) bool {
	if c == nil {
		return false
	}
	i, ok := c.index[name]
	if !ok {
		return false
	}
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	delete(c.index, name)
	for j := i; j < len(c.entries); j++ {
		c.index[c.entries[j].Name] = j
	}
	return true
}

// Keys returns the names in insertion order.
func (c *Compound) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, len(c.entries))
	for i, e := range c.entries {
		keys[i] = e.Name
	}
	return keys
}

// SortedKeys returns the names in byte-wise lexical order.
func (c *Compound) SortedKeys() []string {
	keys := c.Keys()
	sort.Strings(keys)
	return keys
}

// Entries returns a copy of the entries in insertion order.
func (c *Compound) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Range calls fn for each entry in insertion order until fn returns false.
func (c *Compound) Range(fn func(name string, t *Tag) bool) {
	if c == nil {
		return
	}
	for _, e := range c.entries {
		if !fn(e.Name, e.Tag) {
			return
		}
	}
}

// sortedEntries returns the entries ordered by name.
func (c *Compound) sortedEntries() []Entry {
	out := c.Entries()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
