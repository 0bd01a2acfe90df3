package text

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbxproj/vbxproj/internal/asset"
	verrors "github.com/vbxproj/vbxproj/internal/errors"
)

var (
	fileGuid  = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	classGuid = uuid.MustParse("44444444-4444-4444-4444-444444444444")
)

func TestDecodeValue(t *testing.T) {
	tests := []struct {
		tag  string
		raw  string
		want asset.Value
	}{
		{asset.TagByte, "200", uint8(200)},
		{asset.TagByte, "0x1F", uint8(31)},
		{asset.TagSByte, "-5", int8(-5)},
		{asset.TagInt16, "-300", int16(-300)},
		{asset.TagUInt16, "0xFFFF", uint16(65535)},
		{asset.TagInt32, "42", int32(42)},
		{asset.TagInt, "0xFF", int32(255)},
		{asset.TagInt32, "0xFFFFFFFF", int32(-1)},
		{asset.TagUInt32, "7", uint32(7)},
		{asset.TagInt64, "-9000000000", int64(-9000000000)},
		{asset.TagUInt64, "0x10", uint64(16)},
		{asset.TagFloat, "12.5", float32(12.5)},
		{asset.TagSingle, "-0.25", float32(-0.25)},
		{asset.TagDouble, "0.1", 0.1},
		{asset.TagBoolean, "True", true},
		{asset.TagBoolean, "FALSE", false},
		{asset.TagBoolean, "2", true},
		{asset.TagBoolean, "0", false},
		{asset.TagVec2, "1,2", asset.Vec2{X: 1, Y: 2}},
		{asset.TagVec3, "1, 2.5, -3", asset.Vec3{X: 1, Y: 2.5, Z: -3}},
		{asset.TagVec4, "0,0,0,1", asset.Vec4{W: 1}},
		{asset.TagGuid, fileGuid.String(), fileGuid},
		{asset.TagAssetClassGuid, classGuid.String() + ",3", asset.AssetClassGuid{Guid: classGuid, InternalID: 3}},
		{asset.TagResourceRef, "00000000DEADBEEF", asset.ResourceRef(0xDEADBEEF)},
		{asset.TagResourceRef, "0x10", asset.ResourceRef(16)},
		{asset.TagCString, "hello world", asset.CString("hello world")},
		{asset.TagPointerRef, "null", asset.NullPointer()},
		{asset.TagPointerRef, "external : " + fileGuid.String() + "," + classGuid.String(), asset.ExternalPointer(fileGuid, classGuid)},
		{asset.TagPointerRef, "internal : " + classGuid.String() + ",7", asset.InternalPointer(asset.ObjectID{ExportedGuid: classGuid, InternalID: 7})},
	}

	for _, tt := range tests {
		t.Run(tt.tag+"/"+tt.raw, func(t *testing.T) {
			got, err := DecodeValue(tt.tag, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeValue_Errors(t *testing.T) {
	tests := []struct {
		tag  string
		raw  string
		code string
	}{
		{asset.TagFloat, "fast", verrors.ErrInvalidNumber},
		{asset.TagByte, "256", verrors.ErrInvalidNumber},
		{asset.TagBoolean, "yes", verrors.ErrInvalidBool},
		{asset.TagVec2, "1,2,3", verrors.ErrInvalidVector},
		{asset.TagGuid, "not-a-guid", verrors.ErrInvalidGuid},
		{asset.TagPointerRef, "weird : x", verrors.ErrInvalidPointer},
		{asset.TagPointerRef, "internal : nope", verrors.ErrInvalidPointer},
		{"Mystery", "1", verrors.ErrUnknownType},
	}

	for _, tt := range tests {
		t.Run(tt.tag+"/"+tt.raw, func(t *testing.T) {
			_, err := DecodeValue(tt.tag, tt.raw)
			require.Error(t, err)
			var de *DecodeError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.code, de.Code)
			assert.Equal(t, tt.tag, de.Tag)
		})
	}
}

func TestEncodeValue(t *testing.T) {
	tests := []struct {
		in   asset.Value
		want string
	}{
		{float32(12.5), "12.5"},
		{float32(0.1), "0.1"},
		{0.1, "0.1"},
		{true, "True"},
		{false, "False"},
		{int32(-1), "-1"},
		{uint8(255), "255"},
		{asset.Vec3{X: 1, Y: 2, Z: 3}, "1,2,3"},
		{asset.AssetClassGuid{Guid: classGuid, InternalID: 3}, classGuid.String() + ",3"},
		{asset.ResourceRef(0xDEADBEEF), "00000000DEADBEEF"},
		{asset.CString("x y"), "x y"},
		{asset.EnumValue{Type: "Quality", Member: "High"}, "High"},
		{asset.NullPointer(), "null"},
		{asset.ExternalPointer(fileGuid, classGuid), "external : " + fileGuid.String() + "," + classGuid.String()},
	}

	for _, tt := range tests {
		got, err := EncodeValue(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := EncodeValue(asset.List{})
	assert.Error(t, err)
}

func TestEncodeDecode_FloatRoundTrip(t *testing.T) {
	for _, f := range []float32{0, 1, -1, 0.1, 12.5, 3.4028235e38, 1e-7} {
		s, err := EncodeValue(f)
		require.NoError(t, err)
		got, err := DecodeValue(asset.TagFloat, s)
		require.NoError(t, err)
		assert.Equal(t, f, got, s)
	}
}

func TestTagOf(t *testing.T) {
	assert.Equal(t, asset.TagFloat, TagOf(float32(1)))
	assert.Equal(t, asset.TagCString, TagOf("plain"))
	assert.Equal(t, "Quality", TagOf(asset.EnumValue{Type: "Quality"}))
	assert.Equal(t, asset.TagList, TagOf(asset.List{}))
	assert.Equal(t, "Transform", TagOf(asset.NewObject("Transform", asset.ObjectID{})))
	assert.Equal(t, "", TagOf(struct{}{}))
}
