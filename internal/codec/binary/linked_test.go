package binary

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbxproj/vbxproj/internal/asset"
)

func TestSidecar_RoundTrip(t *testing.T) {
	nodes := []SidecarNode{
		{
			Resource: &ResourceRecord{Name: "textures/rock_d", RID: 7, Linked: []LinkNode{{Ref: asset.ChunkLink(chunkID)}}},
			Children: []SidecarNode{
				{Chunk: &ChunkRecord{ID: chunkID, FirstMip: 1, Bundles: []string{"win32/shared"}}},
			},
		},
		{Chunk: &ChunkRecord{ID: chunkID, H32: 99}},
	}

	first, err := MarshalSidecar(nodes)
	require.NoError(t, err)

	got, err := UnmarshalSidecar(first)
	require.NoError(t, err)
	assert.Equal(t, nodes, got)
	assert.Equal(t, asset.LinkResource, got[0].Kind())
	assert.Equal(t, asset.LinkChunk, got[1].Kind())

	second, err := MarshalSidecar(got)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSidecar_AddedResourceTakesIdentity(t *testing.T) {
	w := &Writer{}
	w.Int32(1)
	w.CString("res")
	w.CString("textures/renamed")
	require.NoError(t, writeResource(w, &ResourceRecord{IsAdded: true, Name: "textures/original"}))
	w.Int32(0)

	got, err := UnmarshalSidecar(w.Bytes())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "textures/renamed", got[0].Resource.Name)
}

func TestSidecar_UnsupportedKind(t *testing.T) {
	_, err := MarshalSidecar([]SidecarNode{{}})
	assert.True(t, errors.Is(err, ErrUnsupportedKind))

	w := &Writer{}
	w.Int32(1)
	w.CString("ebx")
	_, err = UnmarshalSidecar(w.Bytes())
	assert.True(t, errors.Is(err, ErrUnsupportedKind))
}

func TestRefs(t *testing.T) {
	assert.Nil(t, Refs(nil))
	refs := Refs([]LinkNode{{Ref: asset.ResourceLink("a"), Children: []LinkNode{{Ref: asset.ResourceLink("b")}}}})
	assert.Equal(t, []asset.LinkRef{asset.ResourceLink("a")}, refs)
}

func TestPayload_RoundTrip(t *testing.T) {
	data := MarshalPayload([]byte("opaque"))
	assert.Equal(t, []byte{6, 0, 0, 0, 'o', 'p', 'a', 'q', 'u', 'e'}, data)

	got, err := UnmarshalPayload(data)
	require.NoError(t, err)
	assert.Equal(t, []byte("opaque"), got)

	_, err = UnmarshalPayload([]byte{9, 0, 0, 0, 1})
	assert.True(t, errors.Is(err, ErrTruncated))
}
