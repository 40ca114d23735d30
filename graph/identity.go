package graph

import "fmt"

// NodeID is the arena index of a vertex. The zero value is NoNode.
type NodeID int

// NoNode is the absent vertex. It is used as the parent of root vertices.
const NoNode NodeID = 0

// Identity is an immutable (id, name) pair. Identities are ordered by id.
type Identity struct {
	ID   int    `msgpack:"id"`
	Name string `msgpack:"name"`
}

// Less reports whether i orders before o.
func (i Identity) Less(o Identity) bool { return i.ID < o.ID }

// IsZero reports whether i is the zero identity.
func (i Identity) IsZero() bool { return i.ID == 0 && i.Name == "" }

func (i Identity) String() string { return fmt.Sprintf("%s#%d", i.Name, i.ID) }
