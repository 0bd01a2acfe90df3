package binary

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbxproj/vbxproj/internal/asset"
)

var chunkID = uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff")

func sha(b byte) asset.Sha1 {
	var s asset.Sha1
	for i := range s {
		s[i] = b
	}
	return s
}

func TestWriter_GuidLayout(t *testing.T) {
	w := &Writer{}
	w.Guid(chunkID)

	want := []byte{0x33, 0x22, 0x11, 0x00, 0x55, 0x44, 0x77, 0x66, 0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	assert.Equal(t, want, w.Bytes())
	assert.Equal(t, chunkID, NewReader(w.Bytes()).Guid())
}

func TestReader_Truncated(t *testing.T) {
	r := NewReader([]byte{1, 2})
	assert.Equal(t, uint32(0), r.Uint32())
	require.Error(t, r.Err())
	assert.True(t, errors.Is(r.Err(), ErrTruncated))

	// Errors are sticky.
	assert.False(t, r.Bool())

	r = NewReader([]byte{'a', 'b'})
	assert.Equal(t, "", r.CString())
	assert.True(t, errors.Is(r.Err(), ErrTruncated))

	r = NewReader([]byte{0xff, 0xff, 0xff, 0xff})
	assert.Nil(t, r.LenBytes())
	assert.Error(t, r.Err())
}

func TestMarshalResource_Layout(t *testing.T) {
	data, err := MarshalResource(&ResourceRecord{Name: "a", RID: 1, ResType: 2})
	require.NoError(t, err)

	want := []byte{0x00, 'a', 0x00}
	want = append(want, 1, 0, 0, 0, 0, 0, 0, 0)
	want = append(want, 2, 0, 0, 0)
	want = append(want, make([]byte, 16)...)
	want = append(want, 0, 0, 0, 0)
	want = append(want, 0, 0, 0, 0)
	want = append(want, 0)
	assert.Equal(t, want, data)
}

func TestResource_RoundTrip(t *testing.T) {
	rec := &ResourceRecord{
		IsAdded: true,
		Name:    "textures/rock_d",
		RID:     0xDEADBEEFCAFE,
		ResType: 0x5C4954A6,
		Meta:    [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		Linked: []LinkNode{
			{Ref: asset.ChunkLink(chunkID)},
			{Ref: asset.ResourceLink("textures/rock_n"), Children: []LinkNode{
				{Ref: asset.LinkRef{Kind: asset.LinkAsset, Name: "textures/rock"}},
			}},
		},
		Bundles: []string{"win32/levels/quarry", "win32/shared"},
		Modified: &asset.ModifiedResource{
			Sha1:         sha(0xAB),
			OriginalSize: 4096,
			ResMeta:      []byte{9, 9},
			UserData:     "imported from rock.png",
			Data:         []byte("compressed bytes"),
		},
	}

	first, err := MarshalResource(rec)
	require.NoError(t, err)

	got, err := UnmarshalResource(first)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	second, err := MarshalResource(got)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(first, second), "re-marshal must be byte identical")
}

func TestResource_HandlerOwnedPayload(t *testing.T) {
	rec := &ResourceRecord{
		Name: "meshes/rock",
		Modified: &asset.ModifiedResource{
			Data: []byte{0x01, 0x02, 0x03},
		},
	}

	data, err := MarshalResource(rec)
	require.NoError(t, err)
	got, err := UnmarshalResource(data)
	require.NoError(t, err)

	require.NotNil(t, got.Modified)
	assert.True(t, got.Modified.IsHandlerOwned())
	assert.Nil(t, got.Modified.ResMeta)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, got.Modified.Data)
}

func TestUnmarshalResource_Truncated(t *testing.T) {
	data, err := MarshalResource(&ResourceRecord{Name: "a", Bundles: []string{"b"}})
	require.NoError(t, err)

	_, err = UnmarshalResource(data[:len(data)-3])
	assert.True(t, errors.Is(err, ErrTruncated))
}

func TestMarshalResource_RejectsEmptyLinkKind(t *testing.T) {
	_, err := MarshalResource(&ResourceRecord{Name: "a", Linked: []LinkNode{{Ref: asset.LinkRef{Name: "x"}}}})
	assert.True(t, errors.Is(err, ErrUnsupportedKind))
}

func TestChunk_RoundTrip(t *testing.T) {
	rec := &ChunkRecord{
		IsAdded:  true,
		ID:       chunkID,
		H32:      -12345,
		Bundles:  []string{"win32/levels/quarry"},
		FirstMip: 2,
		Modified: &asset.ModifiedChunk{
			Sha1:             sha(0x11),
			LogicalOffset:    16,
			LogicalSize:      1024,
			RangeStart:       0,
			RangeEnd:         1040,
			AddToChunkBundle: true,
			UserData:         "mip chain",
			Data:             bytes.Repeat([]byte{7}, 64),
		},
	}

	first := MarshalChunk(rec)
	got, err := UnmarshalChunk(first)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
	assert.Equal(t, first, MarshalChunk(got))

	plain := &ChunkRecord{ID: chunkID, FirstMip: -1}
	got, err = UnmarshalChunk(MarshalChunk(plain))
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}
