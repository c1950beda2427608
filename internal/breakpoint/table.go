package breakpoint

import (
	"fmt"
	"io"

	"github.com/inodb/igcall/internal/align"
)

// Table holds one merged observation per query name, in first-seen order.
// It is built once and shared read-only by later stages.
type Table struct {
	order  []string
	byName map[string]*Classified
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{byName: make(map[string]*Classified)}
}

// Add merges c into the table.
//
// The first record of a query name is stored. A later split record replaces
// a stored bare insert-size record, inheriting its insert slot. A later
// insert-size record only fills insert slots still unset.
func (t *Table) Add(c *Classified) {
	stored, ok := t.byName[c.Name]
	if !ok {
		t.order = append(t.order, c.Name)
		t.byName[c.Name] = c
		return
	}

	if c.Evidence.HasSplit() && stored.Evidence == InsertSize {
		if stored.Insert[0] != 0 {
			c.Insert[0] = stored.Insert[0]
		} else {
			c.Insert[1] = stored.Insert[1]
		}
		t.byName[c.Name] = c
		return
	}

	if c.Evidence == InsertSize && stored.Evidence.HasInsert() {
		for i, p := range c.Insert {
			if p != 0 && stored.Insert[i] == 0 {
				stored.Insert[i] = p
			}
		}
	}
}

// Len returns the number of query names.
func (t *Table) Len() int {
	return len(t.order)
}

// Get returns the observation for a query name.
func (t *Table) Get(name string) (*Classified, bool) {
	c, ok := t.byName[name]
	return c, ok
}

// Records returns the observations in first-seen order.
func (t *Table) Records() []*Classified {
	out := make([]*Classified, len(t.order))
	for i, name := range t.order {
		out[i] = t.byName[name]
	}
	return out
}

// Build classifies every record of src into a table.
func (c *Classifier) Build(src align.Source) (*Table, error) {
	t := NewTable()
	for {
		r, err := src.Read()
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return nil, fmt.Errorf("classify alignments: %w", err)
		}
		if cr := c.Classify(r); cr != nil {
			t.Add(cr)
		}
	}
}

// BuildFrom classifies an in-memory record list.
func (c *Classifier) BuildFrom(records []*align.Record) *Table {
	t := NewTable()
	for _, r := range records {
		if cr := c.Classify(r); cr != nil {
			t.Add(cr)
		}
	}
	return t
}
