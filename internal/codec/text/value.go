package text

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/vbxproj/vbxproj/internal/asset"
	verrors "github.com/vbxproj/vbxproj/internal/errors"
)

// DecodeError reports a raw value that does not parse under its tag.
type DecodeError struct {
	Tag  string
	Raw  string
	Code string
	Err  error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("value %q is not a valid %s: %v", e.Raw, e.Tag, e.Err)
	}
	return fmt.Sprintf("value %q is not a valid %s", e.Raw, e.Tag)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func decodeErr(tag, raw, code string, err error) *DecodeError {
	return &DecodeError{Tag: tag, Raw: raw, Code: code, Err: err}
}

// DecodeValue parses the raw text of a scalar tag. Integers accept decimal
// or 0x-prefixed hex; booleans accept True/False in any case and integers.
func DecodeValue(tag, raw string) (asset.Value, error) {
	s := strings.TrimSpace(raw)

	switch tag {
	case asset.TagByte:
		u, err := parseUint(s, 8)
		if err != nil {
			return nil, decodeErr(tag, raw, verrors.ErrInvalidNumber, err)
		}
		return uint8(u), nil
	case asset.TagSByte:
		i, err := parseInt(s, 8)
		if err != nil {
			return nil, decodeErr(tag, raw, verrors.ErrInvalidNumber, err)
		}
		return int8(i), nil
	case asset.TagInt16:
		i, err := parseInt(s, 16)
		if err != nil {
			return nil, decodeErr(tag, raw, verrors.ErrInvalidNumber, err)
		}
		return int16(i), nil
	case asset.TagUInt16:
		u, err := parseUint(s, 16)
		if err != nil {
			return nil, decodeErr(tag, raw, verrors.ErrInvalidNumber, err)
		}
		return uint16(u), nil
	case asset.TagInt32, asset.TagInt:
		i, err := parseInt(s, 32)
		if err != nil {
			return nil, decodeErr(tag, raw, verrors.ErrInvalidNumber, err)
		}
		return int32(i), nil
	case asset.TagUInt32, asset.TagUInt:
		u, err := parseUint(s, 32)
		if err != nil {
			return nil, decodeErr(tag, raw, verrors.ErrInvalidNumber, err)
		}
		return uint32(u), nil
	case asset.TagInt64:
		i, err := parseInt(s, 64)
		if err != nil {
			return nil, decodeErr(tag, raw, verrors.ErrInvalidNumber, err)
		}
		return i, nil
	case asset.TagUInt64:
		u, err := parseUint(s, 64)
		if err != nil {
			return nil, decodeErr(tag, raw, verrors.ErrInvalidNumber, err)
		}
		return u, nil
	case asset.TagFloat, asset.TagSingle:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, decodeErr(tag, raw, verrors.ErrInvalidNumber, err)
		}
		return float32(f), nil
	case asset.TagDouble:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, decodeErr(tag, raw, verrors.ErrInvalidNumber, err)
		}
		return f, nil
	case asset.TagBoolean:
		b, err := ParseBool(s)
		if err != nil {
			return nil, decodeErr(tag, raw, verrors.ErrInvalidBool, err)
		}
		return b, nil
	case asset.TagVec2:
		f, err := parseFloats(s, 2)
		if err != nil {
			return nil, decodeErr(tag, raw, verrors.ErrInvalidVector, err)
		}
		return asset.Vec2{X: f[0], Y: f[1]}, nil
	case asset.TagVec3:
		f, err := parseFloats(s, 3)
		if err != nil {
			return nil, decodeErr(tag, raw, verrors.ErrInvalidVector, err)
		}
		return asset.Vec3{X: f[0], Y: f[1], Z: f[2]}, nil
	case asset.TagVec4:
		f, err := parseFloats(s, 4)
		if err != nil {
			return nil, decodeErr(tag, raw, verrors.ErrInvalidVector, err)
		}
		return asset.Vec4{X: f[0], Y: f[1], Z: f[2], W: f[3]}, nil
	case asset.TagGuid:
		g, err := uuid.Parse(s)
		if err != nil {
			return nil, decodeErr(tag, raw, verrors.ErrInvalidGuid, err)
		}
		return g, nil
	case asset.TagAssetClassGuid:
		id, err := asset.ParseObjectID(s)
		if err != nil {
			return nil, decodeErr(tag, raw, verrors.ErrInvalidGuid, err)
		}
		return asset.AssetClassGuid{Guid: id.ExportedGuid, InternalID: id.InternalID}, nil
	case asset.TagResourceRef:
		h := s
		if rest, ok := cutHexPrefix(s); ok {
			h = rest
		}
		u, err := strconv.ParseUint(h, 16, 64)
		if err != nil {
			return nil, decodeErr(tag, raw, verrors.ErrInvalidNumber, err)
		}
		return asset.ResourceRef(u), nil
	case asset.TagCString:
		return asset.CString(raw), nil
	case asset.TagPointerRef:
		p, err := ParsePointer(s)
		if err != nil {
			return nil, decodeErr(tag, raw, verrors.ErrInvalidPointer, err)
		}
		return p, nil
	}
	return nil, decodeErr(tag, raw, verrors.ErrUnknownType, fmt.Errorf("unknown tag"))
}

// EncodeValue renders an inline value. Composite objects and lists are
// written as blocks and are rejected here.
func EncodeValue(v asset.Value) (string, error) {
	switch val := v.(type) {
	case uint8:
		return strconv.FormatUint(uint64(val), 10), nil
	case int8:
		return strconv.FormatInt(int64(val), 10), nil
	case int16:
		return strconv.FormatInt(int64(val), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(val), 10), nil
	case int32:
		return strconv.FormatInt(int64(val), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(val), 10), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float32:
		return formatFloat32(val), nil
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	case bool:
		return FormatBool(val), nil
	case asset.Vec2:
		return joinFloats(val.X, val.Y), nil
	case asset.Vec3:
		return joinFloats(val.X, val.Y, val.Z), nil
	case asset.Vec4:
		return joinFloats(val.X, val.Y, val.Z, val.W), nil
	case uuid.UUID:
		return val.String(), nil
	case asset.AssetClassGuid:
		return asset.ObjectID{ExportedGuid: val.Guid, InternalID: val.InternalID}.String(), nil
	case asset.ResourceRef:
		return fmt.Sprintf("%016X", uint64(val)), nil
	case asset.CString:
		return string(val), nil
	case string:
		return val, nil
	case asset.PointerRef:
		return FormatPointer(val), nil
	case asset.EnumValue:
		return val.Member, nil
	}
	return "", fmt.Errorf("value of type %T has no inline form", v)
}

// TagOf returns the tag that describes a runtime value.
func TagOf(v asset.Value) string {
	switch val := v.(type) {
	case uint8:
		return asset.TagByte
	case int8:
		return asset.TagSByte
	case int16:
		return asset.TagInt16
	case uint16:
		return asset.TagUInt16
	case int32:
		return asset.TagInt32
	case uint32:
		return asset.TagUInt32
	case int64:
		return asset.TagInt64
	case uint64:
		return asset.TagUInt64
	case float32:
		return asset.TagFloat
	case float64:
		return asset.TagDouble
	case bool:
		return asset.TagBoolean
	case asset.Vec2:
		return asset.TagVec2
	case asset.Vec3:
		return asset.TagVec3
	case asset.Vec4:
		return asset.TagVec4
	case uuid.UUID:
		return asset.TagGuid
	case asset.AssetClassGuid:
		return asset.TagAssetClassGuid
	case asset.ResourceRef:
		return asset.TagResourceRef
	case asset.CString, string:
		return asset.TagCString
	case asset.PointerRef:
		return asset.TagPointerRef
	case asset.EnumValue:
		return val.Type
	case asset.List:
		return asset.TagList
	case *asset.Object:
		return val.Type
	}
	return ""
}

// ParsePointer parses "null", "internal : guid,id" and
// "external : fileGuid,classGuid".
func ParsePointer(s string) (asset.PointerRef, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return asset.NullPointer(), nil
	}

	kind, rest, ok := strings.Cut(s, ":")
	if !ok {
		return asset.PointerRef{}, fmt.Errorf("pointer %q: missing kind", s)
	}
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "internal":
		id, err := asset.ParseObjectID(rest)
		if err != nil {
			return asset.PointerRef{}, err
		}
		return asset.InternalPointer(id), nil
	case "external":
		fileStr, classStr, ok := strings.Cut(rest, ",")
		if !ok {
			return asset.PointerRef{}, fmt.Errorf("pointer %q: expected fileGuid,classGuid", s)
		}
		fileGuid, err := uuid.Parse(strings.TrimSpace(fileStr))
		if err != nil {
			return asset.PointerRef{}, fmt.Errorf("pointer %q: %w", s, err)
		}
		classGuid, err := uuid.Parse(strings.TrimSpace(classStr))
		if err != nil {
			return asset.PointerRef{}, fmt.Errorf("pointer %q: %w", s, err)
		}
		return asset.ExternalPointer(fileGuid, classGuid), nil
	}
	return asset.PointerRef{}, fmt.Errorf("pointer %q: unknown kind %q", s, kind)
}

// FormatPointer renders a pointer in the form accepted by ParsePointer.
func FormatPointer(p asset.PointerRef) string {
	switch p.Kind {
	case asset.PointerInternal:
		return "internal : " + p.Internal.String()
	case asset.PointerExternal:
		return "external : " + p.External.FileGuid.String() + "," + p.External.ClassGuid.String()
	}
	return "null"
}

// ParseBool accepts True/False in any case, and integers where any value of
// 1 or more is true.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return false, fmt.Errorf("%q is not a boolean", s)
	}
	return i >= 1, nil
}

// FormatBool renders b as True or False.
func FormatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func cutHexPrefix(s string) (string, bool) {
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:], true
	}
	return s, false
}

func parseInt(s string, bits int) (int64, error) {
	if h, ok := cutHexPrefix(s); ok {
		u, err := strconv.ParseUint(h, 16, bits)
		if err != nil {
			return 0, err
		}
		// Hex literals carry the two's complement bit pattern.
		shift := 64 - uint(bits)
		return int64(u<<shift) >> shift, nil
	}
	return strconv.ParseInt(s, 10, bits)
}

func parseUint(s string, bits int) (uint64, error) {
	if h, ok := cutHexPrefix(s); ok {
		return strconv.ParseUint(h, 16, bits)
	}
	return strconv.ParseUint(s, 10, bits)
}

func parseFloats(s string, n int) ([]float32, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d components, got %d", n, len(parts))
	}
	out := make([]float32, n)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

func formatFloat32(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

func joinFloats(fs ...float32) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = formatFloat32(f)
	}
	return strings.Join(parts, ",")
}
