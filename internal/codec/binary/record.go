package binary

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/vbxproj/vbxproj/internal/asset"
)

// ResourceRecord is the persisted form of a resource. Bundles are stored by
// name so that bundle ids reassigned between sessions cannot desynchronize
// the reference.
type ResourceRecord struct {
	IsAdded  bool
	Name     string
	RID      uint64
	ResType  uint32
	Meta     [16]byte
	Linked   []LinkNode
	Bundles  []string
	Modified *asset.ModifiedResource
}

// ChunkRecord is the persisted form of a chunk.
type ChunkRecord struct {
	IsAdded  bool
	ID       uuid.UUID
	H32      int32
	Bundles  []string
	FirstMip int32
	Modified *asset.ModifiedChunk
}

// MarshalResource encodes rec. Equal records encode to identical bytes.
func MarshalResource(rec *ResourceRecord) ([]byte, error) {
	w := &Writer{}
	if err := writeResource(w, rec); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// UnmarshalResource decodes a record produced by MarshalResource.
func UnmarshalResource(data []byte) (*ResourceRecord, error) {
	r := NewReader(data)
	rec := readResource(r)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("resource record: %w", err)
	}
	return rec, nil
}

// MarshalChunk encodes rec. Equal records encode to identical bytes.
func MarshalChunk(rec *ChunkRecord) []byte {
	w := &Writer{}
	writeChunk(w, rec)
	return w.Bytes()
}

// UnmarshalChunk decodes a record produced by MarshalChunk.
func UnmarshalChunk(data []byte) (*ChunkRecord, error) {
	r := NewReader(data)
	rec := readChunk(r)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("chunk record: %w", err)
	}
	return rec, nil
}

func writeResource(w *Writer, rec *ResourceRecord) error {
	w.Bool(rec.IsAdded)
	w.CString(rec.Name)
	w.Uint64(rec.RID)
	w.Uint32(rec.ResType)
	w.Raw(rec.Meta[:])
	if err := writeLinkNodes(w, rec.Linked); err != nil {
		return fmt.Errorf("resource %s: %w", rec.Name, err)
	}
	w.CStrings(rec.Bundles)

	w.Bool(rec.Modified != nil)
	if m := rec.Modified; m != nil {
		w.Sha1(m.Sha1)
		w.Int64(m.OriginalSize)
		w.LenBytes(m.ResMeta)
		w.CString(m.UserData)
		w.LenBytes(m.Data)
	}
	return nil
}

func readResource(r *Reader) *ResourceRecord {
	rec := &ResourceRecord{
		IsAdded: r.Bool(),
		Name:    r.CString(),
		RID:     r.Uint64(),
		ResType: r.Uint32(),
	}
	copy(rec.Meta[:], r.Raw(len(rec.Meta)))
	rec.Linked = readLinkNodes(r, 0)
	rec.Bundles = r.CStrings()

	if r.Bool() {
		m := &asset.ModifiedResource{
			Sha1:         r.Sha1(),
			OriginalSize: r.Int64(),
		}
		if meta := r.LenBytes(); len(meta) > 0 {
			m.ResMeta = meta
		}
		m.UserData = r.CString()
		m.Data = r.LenBytes()
		rec.Modified = m
	}
	return rec
}

func writeChunk(w *Writer, rec *ChunkRecord) {
	w.Bool(rec.IsAdded)
	w.Guid(rec.ID)
	w.Int32(rec.H32)
	w.CStrings(rec.Bundles)
	w.Int32(rec.FirstMip)

	w.Bool(rec.Modified != nil)
	if m := rec.Modified; m != nil {
		w.Sha1(m.Sha1)
		w.Uint32(m.LogicalOffset)
		w.Uint32(m.LogicalSize)
		w.Uint32(m.RangeStart)
		w.Uint32(m.RangeEnd)
		w.Bool(m.AddToChunkBundle)
		w.CString(m.UserData)
		w.LenBytes(m.Data)
	}
}

func readChunk(r *Reader) *ChunkRecord {
	rec := &ChunkRecord{
		IsAdded:  r.Bool(),
		ID:       r.Guid(),
		H32:      r.Int32(),
		Bundles:  r.CStrings(),
		FirstMip: r.Int32(),
	}

	if r.Bool() {
		rec.Modified = &asset.ModifiedChunk{
			Sha1:             r.Sha1(),
			LogicalOffset:    r.Uint32(),
			LogicalSize:      r.Uint32(),
			RangeStart:       r.Uint32(),
			RangeEnd:         r.Uint32(),
			AddToChunkBundle: r.Bool(),
			UserData:         r.CString(),
			Data:             r.LenBytes(),
		}
	}
	return rec
}
