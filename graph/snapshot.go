package graph

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot is a plain copy of the graph's categories and vertices in sweep
// order. Two graphs built by the same sequence of calls encode to the same
// bytes.
type Snapshot struct {
	Categories []CategoryRecord `msgpack:"categories"`
	Nodes      []NodeRecord     `msgpack:"nodes"`
}

// CategoryRecord describes one category.
type CategoryRecord struct {
	Identity    `msgpack:",inline"`
	Cardinality string `msgpack:"cardinality,omitempty"`
	Role        string `msgpack:"role,omitempty"`
	Polarity    string `msgpack:"polarity,omitempty"`
}

// NodeRecord describes one vertex.
type NodeRecord struct {
	Category string   `msgpack:"category"`
	Local    Identity `msgpack:"local"`
	Global   Identity `msgpack:"global"`
	Parent   string   `msgpack:"parent,omitempty"`
	Phase    string   `msgpack:"phase"`
}

// Snapshot copies the graph into a Snapshot.
func (g *Graph) Snapshot() *Snapshot {
	s := &Snapshot{}
	for _, c := range g.Categories() {
		rec := CategoryRecord{Identity: c.Identity}
		if c.rel != nil {
			rec.Cardinality = c.rel.card.String()
			rec.Role = c.rel.role.String()
			rec.Polarity = c.rel.polarity.String()
		}
		s.Categories = append(s.Categories, rec)
		for _, id := range c.Nodes() {
			n := g.Node(id)
			nr := NodeRecord{
				Category: c.Name,
				Local:    n.local,
				Global:   n.global,
				Phase:    n.phase.String(),
			}
			if p := g.Node(n.parent); p != nil {
				nr.Parent = p.cat.Name + ":" + p.global.Name
			}
			s.Nodes = append(s.Nodes, nr)
		}
	}
	return s
}

// MarshalSnapshot encodes the graph's snapshot with msgpack.
func (g *Graph) MarshalSnapshot() ([]byte, error) {
	b, err := msgpack.Marshal(g.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("graph: encode snapshot: %w", err)
	}
	return b, nil
}

// UnmarshalSnapshot decodes a snapshot produced by MarshalSnapshot.
func UnmarshalSnapshot(b []byte) (*Snapshot, error) {
	s := &Snapshot{}
	if err := msgpack.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("graph: decode snapshot: %w", err)
	}
	return s, nil
}
