package binary

import (
	"errors"
	"fmt"

	"github.com/vbxproj/vbxproj/internal/asset"
)

// maxLinkDepth bounds recursion when decoding linked-asset trees.
const maxLinkDepth = 64

// ErrUnsupportedKind is returned for a sidecar node that is neither a
// resource nor a chunk.
var ErrUnsupportedKind = errors.New("unsupported linked asset kind")

// LinkNode is a linked reference together with the references it owns.
type LinkNode struct {
	Ref      asset.LinkRef
	Children []LinkNode
}

// Refs returns the references of the top level nodes.
func Refs(nodes []LinkNode) []asset.LinkRef {
	if len(nodes) == 0 {
		return nil
	}
	refs := make([]asset.LinkRef, len(nodes))
	for i, n := range nodes {
		refs[i] = n.Ref
	}
	return refs
}

func writeLinkNodes(w *Writer, nodes []LinkNode) error {
	w.Int32(int32(len(nodes)))
	for _, n := range nodes {
		if n.Ref.Kind == "" {
			return fmt.Errorf("link %q: %w", n.Ref.Name, ErrUnsupportedKind)
		}
		w.CString(string(n.Ref.Kind))
		if n.Ref.Kind == asset.LinkChunk {
			w.Guid(n.Ref.ID)
		} else {
			w.CString(n.Ref.Name)
		}
		if err := writeLinkNodes(w, n.Children); err != nil {
			return err
		}
	}
	return nil
}

func readLinkNodes(r *Reader, depth int) []LinkNode {
	n := r.Len()
	if r.Err() != nil || n == 0 {
		return nil
	}
	if depth >= maxLinkDepth {
		r.fail(fmt.Errorf("linked assets nested deeper than %d", maxLinkDepth))
		return nil
	}

	nodes := make([]LinkNode, 0, min(n, r.Remaining()))
	for i := 0; i < n && r.Err() == nil; i++ {
		var node LinkNode
		node.Ref.Kind = asset.LinkKind(r.CString())
		if node.Ref.Kind == asset.LinkChunk {
			node.Ref.ID = r.Guid()
		} else {
			node.Ref.Name = r.CString()
		}
		node.Children = readLinkNodes(r, depth+1)
		nodes = append(nodes, node)
	}
	return nodes
}

// SidecarNode is one record of a linked-asset sidecar. Exactly one of
// Resource and Chunk is set.
type SidecarNode struct {
	Resource *ResourceRecord
	Chunk    *ChunkRecord
	Children []SidecarNode
}

// Kind returns the link kind of the node.
func (n SidecarNode) Kind() asset.LinkKind {
	if n.Chunk != nil {
		return asset.LinkChunk
	}
	return asset.LinkResource
}

// MarshalSidecar encodes the linked-asset tree of one asset file.
func MarshalSidecar(nodes []SidecarNode) ([]byte, error) {
	w := &Writer{}
	if err := writeSidecarNodes(w, nodes); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// UnmarshalSidecar decodes a sidecar produced by MarshalSidecar. A record
// flagged as added takes its name from the node identity.
func UnmarshalSidecar(data []byte) ([]SidecarNode, error) {
	r := NewReader(data)
	nodes := readSidecarNodes(r, 0)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("linked assets: %w", err)
	}
	return nodes, nil
}

func writeSidecarNodes(w *Writer, nodes []SidecarNode) error {
	w.Int32(int32(len(nodes)))
	for _, n := range nodes {
		switch {
		case n.Resource != nil:
			w.CString(string(asset.LinkResource))
			w.CString(n.Resource.Name)
			if err := writeResource(w, n.Resource); err != nil {
				return err
			}
		case n.Chunk != nil:
			w.CString(string(asset.LinkChunk))
			w.Guid(n.Chunk.ID)
			writeChunk(w, n.Chunk)
		default:
			return ErrUnsupportedKind
		}
		if err := writeSidecarNodes(w, n.Children); err != nil {
			return err
		}
	}
	return nil
}

func readSidecarNodes(r *Reader, depth int) []SidecarNode {
	n := r.Len()
	if r.Err() != nil || n == 0 {
		return nil
	}
	if depth >= maxLinkDepth {
		r.fail(fmt.Errorf("linked assets nested deeper than %d", maxLinkDepth))
		return nil
	}

	nodes := make([]SidecarNode, 0, min(n, r.Remaining()))
	for i := 0; i < n && r.Err() == nil; i++ {
		var node SidecarNode
		switch kind := asset.LinkKind(r.CString()); kind {
		case asset.LinkResource:
			name := r.CString()
			node.Resource = readResource(r)
			if node.Resource.IsAdded {
				node.Resource.Name = name
			}
		case asset.LinkChunk:
			id := r.Guid()
			node.Chunk = readChunk(r)
			node.Chunk.ID = id
		default:
			if r.Err() == nil {
				r.fail(fmt.Errorf("%w %q", ErrUnsupportedKind, kind))
			}
			return nodes
		}
		node.Children = readSidecarNodes(r, depth+1)
		nodes = append(nodes, node)
	}
	return nodes
}

// MarshalPayload encodes an opaque handler payload.
func MarshalPayload(data []byte) []byte {
	w := &Writer{}
	w.LenBytes(data)
	return w.Bytes()
}

// UnmarshalPayload decodes a payload produced by MarshalPayload.
func UnmarshalPayload(data []byte) ([]byte, error) {
	r := NewReader(data)
	payload := r.LenBytes()
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("handler payload: %w", err)
	}
	return payload, nil
}
