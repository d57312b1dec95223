package scene

import (
	"errors"
	"fmt"
	"slices"

	"github.com/taigrr/softrast/pkg/math3d"
)

var (
	// ErrInvalidNode is returned for ids whose slot was freed or never
	// existed.
	ErrInvalidNode = errors.New("scene: invalid node")
	// ErrCycle is returned when an attach would make a node its own
	// ancestor.
	ErrCycle = errors.New("scene: node would become its own ancestor")
)

// NodeID addresses a node in a Scene. An id stays valid until its node is
// removed; the slot may be reused afterwards but with a new generation, so
// stale ids never alias the new node. The zero NodeID is never valid.
type NodeID struct {
	index uint32
	gen   uint32
}

// NoNode is the zero id, used for "no parent".
var NoNode NodeID

func (id NodeID) String() string {
	if id == NoNode {
		return "node(none)"
	}
	return fmt.Sprintf("node(%d#%d)", id.index, id.gen)
}

// Node is one entry of the scene graph.
type Node struct {
	Name     string
	Local    math3d.Mat4
	World    math3d.Mat4
	Parent   NodeID
	Children []NodeID
	Mesh     *MeshAsset
}

type slot struct {
	node Node
	gen  uint32
	live bool
}

// Scene is an arena of nodes linked by index. World transforms are cached
// and recomputed top-down by Refresh.
type Scene struct {
	slots []slot
	free  []uint32
	names map[string]NodeID
	dirty bool
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{names: make(map[string]NodeID)}
}

// AddNode inserts a parentless node. Named nodes can be found with Lookup.
func (s *Scene) AddNode(name string, local math3d.Mat4, mesh *MeshAsset) NodeID {
	n := Node{Name: name, Local: local, World: local, Mesh: mesh}

	var id NodeID
	if k := len(s.free); k > 0 {
		idx := s.free[k-1]
		s.free = s.free[:k-1]
		sl := &s.slots[idx]
		sl.gen++
		sl.live = true
		sl.node = n
		id = NodeID{index: idx, gen: sl.gen}
	} else {
		s.slots = append(s.slots, slot{node: n, gen: 1, live: true})
		id = NodeID{index: uint32(len(s.slots) - 1), gen: 1}
	}

	if name != "" {
		s.names[name] = id
	}
	s.dirty = true
	return id
}

// Valid reports whether id denotes a live node.
func (s *Scene) Valid(id NodeID) bool {
	if id.gen == 0 || int(id.index) >= len(s.slots) {
		return false
	}
	sl := &s.slots[id.index]
	return sl.live && sl.gen == id.gen
}

func (s *Scene) get(id NodeID) (*Node, error) {
	if !s.Valid(id) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNode, id)
	}
	return &s.slots[id.index].node, nil
}

// Node returns a copy of the node behind id.
func (s *Scene) Node(id NodeID) (Node, bool) {
	n, err := s.get(id)
	if err != nil {
		return Node{}, false
	}
	return *n, true
}

// Lookup finds a live node by name.
func (s *Scene) Lookup(name string) (NodeID, bool) {
	id, ok := s.names[name]
	if !ok || !s.Valid(id) {
		return NoNode, false
	}
	return id, true
}

// Len returns the number of live nodes.
func (s *Scene) Len() int {
	return len(s.slots) - len(s.free)
}

// Attach makes child a child of parent, detaching it from any previous
// parent first.
func (s *Scene) Attach(parent, child NodeID) error {
	p, err := s.get(parent)
	if err != nil {
		return fmt.Errorf("attach parent: %w", err)
	}
	c, err := s.get(child)
	if err != nil {
		return fmt.Errorf("attach child: %w", err)
	}

	for a := parent; a != NoNode; {
		if a == child {
			return fmt.Errorf("attach %v under %v: %w", child, parent, ErrCycle)
		}
		a = s.slots[a.index].node.Parent
	}

	if c.Parent != NoNode {
		s.unlink(c.Parent, child)
	}
	c.Parent = parent
	p.Children = append(p.Children, child)
	s.dirty = true
	return nil
}

// Detach turns child into a root.
func (s *Scene) Detach(child NodeID) error {
	c, err := s.get(child)
	if err != nil {
		return fmt.Errorf("detach: %w", err)
	}
	if c.Parent != NoNode {
		s.unlink(c.Parent, child)
		c.Parent = NoNode
		s.dirty = true
	}
	return nil
}

func (s *Scene) unlink(parent, child NodeID) {
	if !s.Valid(parent) {
		return
	}
	p := &s.slots[parent.index].node
	p.Children = slices.DeleteFunc(p.Children, func(c NodeID) bool { return c == child })
}

// Remove deletes id and its whole subtree. Ids of removed nodes become
// invalid.
func (s *Scene) Remove(id NodeID) error {
	n, err := s.get(id)
	if err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	if n.Parent != NoNode {
		s.unlink(n.Parent, id)
	}
	s.release(id)
	s.dirty = true
	return nil
}

func (s *Scene) release(id NodeID) {
	sl := &s.slots[id.index]
	for _, c := range sl.node.Children {
		if s.Valid(c) {
			s.release(c)
		}
	}
	if named, ok := s.names[sl.node.Name]; ok && named == id {
		delete(s.names, sl.node.Name)
	}
	sl.live = false
	sl.node = Node{}
	s.free = append(s.free, id.index)
}

// SetLocal replaces the local transform of id. World transforms are stale
// until the next Refresh.
func (s *Scene) SetLocal(id NodeID, local math3d.Mat4) error {
	n, err := s.get(id)
	if err != nil {
		return fmt.Errorf("set local: %w", err)
	}
	n.Local = local
	s.dirty = true
	return nil
}

// Roots returns the live parentless nodes in slot order.
func (s *Scene) Roots() []NodeID {
	var roots []NodeID
	for i := range s.slots {
		sl := &s.slots[i]
		if sl.live && sl.node.Parent == NoNode {
			roots = append(roots, NodeID{index: uint32(i), gen: sl.gen})
		}
	}
	return roots
}

// Dirty reports whether a structural or transform change happened since
// the last Refresh.
func (s *Scene) Dirty() bool {
	return s.dirty
}

// Refresh recomputes every world transform top-down:
// world = parent.world * local, with roots under the identity.
func (s *Scene) Refresh() {
	for _, r := range s.Roots() {
		s.refresh(r, math3d.Identity())
	}
	s.dirty = false
}

func (s *Scene) refresh(id NodeID, parentWorld math3d.Mat4) {
	n := &s.slots[id.index].node
	n.World = parentWorld.Mul(n.Local)
	world := n.World
	for _, c := range n.Children {
		if s.Valid(c) {
			s.refresh(c, world)
		}
	}
}

// Walk visits every live node depth-first from the roots, parents before
// children.
func (s *Scene) Walk(fn func(id NodeID, n *Node)) {
	var visit func(id NodeID)
	visit = func(id NodeID) {
		n := &s.slots[id.index].node
		fn(id, n)
		for _, c := range n.Children {
			if s.Valid(c) {
				visit(c)
			}
		}
	}
	for _, r := range s.Roots() {
		visit(r)
	}
}
