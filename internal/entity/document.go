package entity

import (
	"fmt"
	"sort"
)

// Document is an identifier-indexed set of nodes loaded together. Ids are
// unique within a document; references between its nodes may form cycles.
type Document struct {
	nodes map[string]Node
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{nodes: make(map[string]Node)}
}

// Add inserts n. Adding a second node with the same id is an error.
func (d *Document) Add(n Node) error {
	if n == nil || n.ID() == "" {
		return fmt.Errorf("node without identifier")
	}
	if existing, ok := d.nodes[n.ID()]; ok {
		return fmt.Errorf("duplicate identifier '%s' (%s and %s)", n.ID(), existing.Variant(), n.Variant())
	}
	d.nodes[n.ID()] = n
	return nil
}

// Get returns the node with the given id.
func (d *Document) Get(id string) (Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Len returns the number of nodes.
func (d *Document) Len() int {
	return len(d.nodes)
}

// All returns every node sorted by id.
func (d *Document) All() []Node {
	ids := make([]string, 0, len(d.nodes))
	for id := range d.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, d.nodes[id])
	}
	return out
}

// Merge copies all nodes of other into d.
func (d *Document) Merge(other *Document) error {
	if other == nil {
		return nil
	}
	for _, n := range other.All() {
		if err := d.Add(n); err != nil {
			return err
		}
	}
	return nil
}
