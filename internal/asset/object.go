package asset

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Object is an instance of a registry type. Field values are addressed by
// name; the registry decides which names exist and in what order they are
// persisted.
type Object struct {
	Type   string
	ID     ObjectID
	values map[string]Value
}

// NewObject creates an empty object of the given type.
func NewObject(typeName string, id ObjectID) *Object {
	return &Object{
		Type:   typeName,
		ID:     id,
		values: make(map[string]Value),
	}
}

// Get returns the value stored for name.
func (o *Object) Get(name string) (Value, bool) {
	v, ok := o.values[name]
	return v, ok
}

// Set stores a field value.
func (o *Object) Set(name string, v Value) {
	o.values[name] = v
}

// Delete removes a field value.
func (o *Object) Delete(name string) {
	delete(o.values, name)
}

// FieldNames returns the names of all set fields in sorted order.
func (o *Object) FieldNames() []string {
	names := make([]string, 0, len(o.values))
	for name := range o.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Graph is the arena holding every object of one file. Objects are
// registered first (as shells) and filled afterwards, so an internal pointer
// can name an object that has not been decoded yet.
type Graph struct {
	FileID uuid.UUID

	objects []*Object
	index   map[ObjectID]int
	roots   []int
	deps    map[uuid.UUID]struct{}
}

// NewGraph creates an empty graph for the given file.
func NewGraph(fileID uuid.UUID) *Graph {
	return &Graph{
		FileID: fileID,
		index:  make(map[ObjectID]int),
		deps:   make(map[uuid.UUID]struct{}),
	}
}

// Add registers an object slot and returns its handle.
func (g *Graph) Add(obj *Object, root bool) (int, error) {
	if _, exists := g.index[obj.ID]; exists {
		return -1, fmt.Errorf("duplicate object id %s", obj.ID)
	}
	handle := len(g.objects)
	g.objects = append(g.objects, obj)
	g.index[obj.ID] = handle
	if root {
		g.roots = append(g.roots, handle)
	}
	return handle, nil
}

// Handle returns the arena index of id.
func (g *Graph) Handle(id ObjectID) (int, bool) {
	h, ok := g.index[id]
	return h, ok
}

// At returns the object stored at handle.
func (g *Graph) At(handle int) *Object {
	return g.objects[handle]
}

// Lookup finds an object by identity.
func (g *Graph) Lookup(id ObjectID) (*Object, bool) {
	h, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.objects[h], true
}

// Resolve follows an internal pointer. External and null pointers resolve to
// nil.
func (g *Graph) Resolve(p PointerRef) *Object {
	if p.Kind != PointerInternal {
		return nil
	}
	obj, _ := g.Lookup(p.Internal)
	return obj
}

// Objects returns the objects in registration order.
func (g *Graph) Objects() []*Object {
	return g.objects
}

// Len returns the number of objects.
func (g *Graph) Len() int { return len(g.objects) }

// Roots returns the root objects in registration order.
func (g *Graph) Roots() []*Object {
	out := make([]*Object, len(g.roots))
	for i, h := range g.roots {
		out[i] = g.objects[h]
	}
	return out
}

// Root returns the first root object, or nil for an empty graph.
func (g *Graph) Root() *Object {
	if len(g.roots) == 0 {
		return nil
	}
	return g.objects[g.roots[0]]
}

// IsRoot reports whether the object at id is a root.
func (g *Graph) IsRoot(id ObjectID) bool {
	h, ok := g.index[id]
	if !ok {
		return false
	}
	for _, r := range g.roots {
		if r == h {
			return true
		}
	}
	return false
}

// AddDependency records that this file references fileID.
func (g *Graph) AddDependency(fileID uuid.UUID) {
	if fileID == uuid.Nil || fileID == g.FileID {
		return
	}
	g.deps[fileID] = struct{}{}
}

// RemoveDependency forgets fileID.
func (g *Graph) RemoveDependency(fileID uuid.UUID) {
	delete(g.deps, fileID)
}

// Dependencies returns the recorded dependency ids in sorted order.
func (g *Graph) Dependencies() []uuid.UUID {
	return SortedGuids(g.deps)
}

// SortedGuids returns the keys of set ordered by their string form.
func SortedGuids(set map[uuid.UUID]struct{}) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
