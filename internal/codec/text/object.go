package text

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vbxproj/vbxproj/internal/asset"
	verrors "github.com/vbxproj/vbxproj/internal/errors"
)

type blockState int

const (
	awaitingOpenBrace blockState = iota
	readingFields
	closed
)

// decoder reads object bodies. Problems are reported and the offending
// field is dropped; decoding always continues with the next line.
type decoder struct {
	lr    *LineReader
	reg   asset.Registry
	log   *zap.Logger
	graph *asset.Graph
}

func (d *decoder) report(cat verrors.Category, code, format string, args ...any) {
	loc := verrors.Location{File: d.lr.File(), Line: d.lr.Line()}
	verrors.Report(d.log, verrors.New(cat, code, loc, format, args...))
}

// readBlock consumes a { ... } block and hands every inner line to visit.
// A nested block that visit does not consume is skipped. It returns false
// when the block is missing or not closed before end of file.
func (d *decoder) readBlock(what string, visit func(line string)) bool {
	state := awaitingOpenBrace
	for state != closed {
		line, ok := d.lr.Next()
		if !ok {
			d.report(verrors.Parse, verrors.ErrUnexpectedEOF, "unexpected end of file in %s", what)
			return false
		}
		if line == "" {
			continue
		}

		switch state {
		case awaitingOpenBrace:
			if line != "{" {
				d.lr.Unread(line)
				d.report(verrors.Parse, verrors.ErrMissingBrace, "expected { after %s, got %q", what, line)
				return false
			}
			state = readingFields
		case readingFields:
			switch line {
			case "}":
				state = closed
			case "{":
				d.lr.Unread(line)
				if visit != nil {
					d.report(verrors.Parse, verrors.ErrMalformedLine, "unexpected block in %s", what)
				}
				d.skipBlock()
			default:
				if visit != nil {
					visit(line)
				}
			}
		}
	}
	return true
}

func (d *decoder) skipBlock() {
	d.readBlock("skipped block", nil)
}

// readObject fills the shell named by an object header line.
func (d *decoder) readObject(header string) {
	parts := strings.Fields(header)
	if len(parts) != 3 {
		d.report(verrors.Parse, verrors.ErrInvalidHeader, "malformed object header %q", header)
		d.skipBlock()
		return
	}
	id, err := parseIdentity(parts[1], parts[2])
	if err != nil {
		d.report(verrors.Parse, verrors.ErrInvalidHeader, "malformed object header %q: %v", header, err)
		d.skipBlock()
		return
	}

	obj, ok := d.graph.Lookup(id)
	if !ok {
		d.report(verrors.Resolution, verrors.ErrUnknownObject, "object %s is not listed in the object table", id)
		d.skipBlock()
		return
	}
	if obj.Type != parts[0] {
		d.report(verrors.Resolution, verrors.ErrTagMismatch, "object %s is a %s, header says %s", id, obj.Type, parts[0])
	}
	d.readFields(obj)
}

func (d *decoder) readFields(obj *asset.Object) bool {
	return d.readBlock(obj.Type, func(line string) {
		d.readField(obj, line)
	})
}

func (d *decoder) readField(obj *asset.Object, line string) {
	toks, err := Tokens(line)
	if err != nil || len(toks) < 2 || len(toks) > 3 {
		d.report(verrors.Parse, verrors.ErrMalformedLine, "malformed field line %q", line)
		return
	}
	tag, name := toks[0], toks[1]
	hasBlock := len(toks) == 2
	raw := ""
	if !hasBlock {
		raw = toks[2]
	}

	field, ok := asset.FieldByName(d.reg, obj.Type, name)
	if !ok {
		d.report(verrors.Resolution, verrors.ErrUnknownField, "type %s has no field %s", obj.Type, name)
		if hasBlock {
			d.skipBlock()
		}
		return
	}
	if !tagsAgree(tag, field.Type) {
		d.report(verrors.Resolution, verrors.ErrTagMismatch, "field %s.%s is declared %s, written as %s", obj.Type, name, field.Type, tag)
	}

	if v, ok := d.value(tag, raw, hasBlock, field.Elem); ok {
		obj.Set(name, v)
	}
}

// value decodes one value. Tags outside the scalar set are decoded
// structurally: as an enum member, a list or a nested object block.
func (d *decoder) value(tag, raw string, hasBlock bool, elem string) (asset.Value, bool) {
	switch {
	case tag == asset.TagList:
		if !hasBlock {
			d.report(verrors.Parse, verrors.ErrMalformedLine, "list value must be a block")
			return nil, false
		}
		return d.readList(elem)

	case asset.IsScalarTag(tag):
		if hasBlock {
			d.report(verrors.Parse, verrors.ErrMalformedLine, "%s value is missing", tag)
			return nil, false
		}
		v, err := DecodeValue(tag, raw)
		if err != nil {
			code := verrors.ErrMalformedLine
			var de *DecodeError
			if errors.As(err, &de) {
				code = de.Code
			}
			d.report(verrors.Parse, code, "%v", err)
			return nil, false
		}
		if p, ok := v.(asset.PointerRef); ok {
			return d.pointer(p), true
		}
		return v, true

	case d.reg.IsEnum(tag):
		if hasBlock {
			d.report(verrors.Parse, verrors.ErrMalformedLine, "enum %s cannot be a block", tag)
			d.skipBlock()
			return nil, false
		}
		if !slices.Contains(d.reg.Members(tag), raw) {
			d.report(verrors.Parse, verrors.ErrInvalidEnum, "%q is not a member of %s", raw, tag)
			return nil, false
		}
		return asset.EnumValue{Type: tag, Member: raw}, true
	}

	obj, err := d.reg.Create(tag)
	if err != nil {
		d.report(verrors.Resolution, verrors.ErrUnknownType, "unknown type %s", tag)
		if hasBlock {
			d.skipBlock()
		}
		return nil, false
	}
	if !hasBlock {
		d.report(verrors.Parse, verrors.ErrMalformedLine, "%s value must be a block", tag)
		return nil, false
	}
	if !d.readFields(obj) {
		return nil, false
	}
	return obj, true
}

// readList reads list items. Inline items are written "tag" "value",
// block items as "tag" followed by a block.
func (d *decoder) readList(elem string) (asset.Value, bool) {
	list := asset.List{Elem: elem}
	ok := d.readBlock(asset.TagList, func(line string) {
		toks, err := Tokens(line)
		if err != nil || len(toks) == 0 || len(toks) > 2 {
			d.report(verrors.Parse, verrors.ErrMalformedLine, "malformed list item %q", line)
			return
		}

		var (
			v  asset.Value
			ok bool
		)
		if len(toks) == 1 {
			v, ok = d.value(toks[0], "", true, "")
		} else {
			v, ok = d.value(toks[0], toks[1], false, "")
		}
		if ok {
			list.Items = append(list.Items, v)
		}
	})
	if !ok {
		return nil, false
	}
	if list.Elem == "" && len(list.Items) > 0 {
		list.Elem = TagOf(list.Items[0])
	}
	return list, true
}

// pointer records external pointers as dependencies and nulls internal
// pointers whose target is not in the graph.
func (d *decoder) pointer(p asset.PointerRef) asset.PointerRef {
	if d.graph == nil {
		return p
	}
	switch p.Kind {
	case asset.PointerExternal:
		d.graph.AddDependency(p.External.FileGuid)
	case asset.PointerInternal:
		if _, ok := d.graph.Lookup(p.Internal); !ok {
			d.report(verrors.Resolution, verrors.ErrDanglingPointer, "pointer target %s does not exist", p.Internal)
			return asset.NullPointer()
		}
	}
	return p
}

var tagAliases = map[string]string{
	asset.TagInt:    asset.TagInt32,
	asset.TagUInt:   asset.TagUInt32,
	asset.TagSingle: asset.TagFloat,
}

func tagsAgree(a, b string) bool {
	if alias, ok := tagAliases[a]; ok {
		a = alias
	}
	if alias, ok := tagAliases[b]; ok {
		b = alias
	}
	return a == b
}

func parseIdentity(guidStr, idStr string) (asset.ObjectID, error) {
	guid, err := uuid.Parse(guidStr)
	if err != nil {
		return asset.ObjectID{}, err
	}
	id, err := strconv.ParseInt(idStr, 10, 32)
	if err != nil {
		return asset.ObjectID{}, err
	}
	return asset.ObjectID{ExportedGuid: guid, InternalID: int32(id)}, nil
}

// encoder writes object bodies in registry field order.
type encoder struct {
	w   *Writer
	reg asset.Registry
}

func (e *encoder) writeObject(obj *asset.Object) error {
	e.w.Line(fmt.Sprintf("%s %s %d", obj.Type, obj.ID.ExportedGuid, obj.ID.InternalID))
	return e.writeBlock(obj)
}

func (e *encoder) writeBlock(obj *asset.Object) error {
	fields, ok := e.reg.Fields(obj.Type)
	if !ok {
		return fmt.Errorf("unknown type %s", obj.Type)
	}

	e.w.Open()
	defer e.w.Close()

	for _, f := range fields {
		if f.Transient {
			continue
		}
		v, ok := obj.Get(f.Name)
		if !ok || v == nil {
			continue
		}
		if err := e.writeField(f, v); err != nil {
			return fmt.Errorf("%s.%s: %w", obj.Type, f.Name, err)
		}
	}
	return nil
}

func (e *encoder) writeField(f asset.Field, v asset.Value) error {
	switch val := v.(type) {
	case *asset.Object:
		e.w.Line(QuoteAll(val.Type, f.Name))
		return e.writeBlock(val)
	case asset.List:
		e.w.Line(QuoteAll(asset.TagList, f.Name))
		if val.Elem == "" {
			val.Elem = f.Elem
		}
		return e.writeList(val)
	}

	s, err := EncodeValue(v)
	if err != nil {
		return err
	}
	e.w.Line(QuoteAll(e.inlineTag(f.Type, v), f.Name, s))
	return nil
}

func (e *encoder) writeList(list asset.List) error {
	e.w.Open()
	defer e.w.Close()

	for _, item := range list.Items {
		switch val := item.(type) {
		case *asset.Object:
			e.w.Line(Quote(val.Type))
			if err := e.writeBlock(val); err != nil {
				return err
			}
		case asset.List:
			e.w.Line(Quote(asset.TagList))
			if err := e.writeList(val); err != nil {
				return err
			}
		default:
			s, err := EncodeValue(item)
			if err != nil {
				return err
			}
			e.w.Line(QuoteAll(e.inlineTag(list.Elem, item), s))
		}
	}
	return nil
}

// inlineTag keeps the declared tag when it describes an inline value and
// falls back to the runtime tag otherwise.
func (e *encoder) inlineTag(declared string, v asset.Value) string {
	if declared != "" && (asset.IsScalarTag(declared) || e.reg.IsEnum(declared)) {
		return declared
	}
	return TagOf(v)
}
