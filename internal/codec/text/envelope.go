package text

import (
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vbxproj/vbxproj/internal/asset"
	verrors "github.com/vbxproj/vbxproj/internal/errors"
)

const (
	headerKeyword = "FILEDATA"

	keyName             = "name"
	keyProjDir          = "projdir"
	keyType             = "type"
	keyFileID           = "fid"
	keyTransient        = "transient"
	keyModifiedResource = "modified_resource"

	sectionObjects      = "Objects"
	sectionBundles      = "Bundles"
	sectionDependencies = "Dependencies"
	sectionLinked       = "Linked"
)

// Shell is one row of the object table: an object registered before any
// body is decoded.
type Shell struct {
	Type string
	ID   asset.ObjectID
	Root bool
}

// Envelope is the header block of an asset file.
type Envelope struct {
	Name    string
	ProjDir string
	Type    string
	FileID  uuid.UUID

	Transient bool
	// ModifiedResource marks an asset whose content lives in a handler
	// payload. Such files carry no object bodies.
	ModifiedResource bool

	Shells       []Shell
	Bundles      []string
	Dependencies []uuid.UUID
	// Linked lists the records the asset owns. The block is omitted when
	// empty.
	Linked []asset.LinkRef

	// Legacy is set when the object table has no root column; the first
	// object is then the root.
	Legacy bool
}

// NewEnvelope describes a store asset. bundles are the names of the
// bundles the asset belongs to.
func NewEnvelope(a *asset.AssetEntry, bundles []string) *Envelope {
	projDir := path.Dir(a.Name)
	if projDir == "." {
		projDir = ""
	}
	return &Envelope{
		Name:             a.Name,
		ProjDir:          projDir,
		Type:             a.Type,
		FileID:           a.FileID,
		Transient:        a.Transient,
		ModifiedResource: a.HasHandlerData(),
		Bundles:          bundles,
		Dependencies:     a.Dependencies,
		Linked:           a.Linked,
	}
}

// ShellsOf lists the objects of g in registration order.
func ShellsOf(g *asset.Graph) []Shell {
	shells := make([]Shell, 0, g.Len())
	for _, obj := range g.Objects() {
		shells = append(shells, Shell{Type: obj.Type, ID: obj.ID, Root: g.IsRoot(obj.ID)})
	}
	return shells
}

// collectImports adds the file of every external pointer under v to deps.
func collectImports(v asset.Value, deps map[uuid.UUID]struct{}) {
	switch v := v.(type) {
	case asset.PointerRef:
		if v.Kind == asset.PointerExternal {
			deps[v.External.FileGuid] = struct{}{}
		}
	case *asset.Object:
		if v == nil {
			return
		}
		for _, name := range v.FieldNames() {
			f, _ := v.Get(name)
			collectImports(f, deps)
		}
	case asset.List:
		for _, item := range v.Items {
			collectImports(item, deps)
		}
	}
}

// WriteAsset writes an asset file. When g is set its objects define the
// object table and bodies, and its dependencies, together with the file of
// every external pointer in its fields, are merged with env.Dependencies.
func WriteAsset(w io.Writer, env *Envelope, g *asset.Graph, reg asset.Registry) error {
	shells := env.Shells
	deps := make(map[uuid.UUID]struct{}, len(env.Dependencies))
	for _, dep := range env.Dependencies {
		deps[dep] = struct{}{}
	}
	if g != nil {
		shells = ShellsOf(g)
		for _, dep := range g.Dependencies() {
			deps[dep] = struct{}{}
		}
		for _, obj := range g.Objects() {
			collectImports(obj, deps)
		}
	}

	tw := NewWriter(w)
	tw.Banner("Asset: " + env.Name)

	tw.Line(headerKeyword)
	tw.Open()
	tw.Line(QuoteAll(keyName, env.Name))
	tw.Line(QuoteAll(keyProjDir, env.ProjDir))
	tw.Line(QuoteAll(keyType, env.Type))
	tw.Line(QuoteAll(keyFileID, env.FileID.String()))
	tw.Line(QuoteAll(keyTransient, FormatBool(env.Transient)))
	if env.ModifiedResource {
		tw.Line(QuoteAll(keyModifiedResource, FormatBool(true)))
	}
	tw.Line("")

	tw.Line(sectionObjects)
	tw.Open()
	for _, s := range shells {
		tw.Line(QuoteAll(s.Type, s.ID.ExportedGuid.String(), strconv.FormatInt(int64(s.ID.InternalID), 10), FormatBool(s.Root)))
	}
	tw.Close()

	tw.Line(sectionBundles)
	tw.Open()
	for _, b := range env.Bundles {
		tw.Line(Quote(b))
	}
	tw.Close()

	tw.Line(sectionDependencies)
	tw.Open()
	for _, dep := range asset.SortedGuids(deps) {
		tw.Line(Quote(dep.String()))
	}
	tw.Close()

	if len(env.Linked) > 0 {
		tw.Line(sectionLinked)
		tw.Open()
		for _, ref := range env.Linked {
			tw.Line(QuoteAll(string(ref.Kind), linkIdentity(ref)))
		}
		tw.Close()
	}
	tw.Close()

	if g != nil && !env.ModifiedResource {
		enc := &encoder{w: tw, reg: reg}
		for _, obj := range g.Objects() {
			tw.Line("")
			if err := enc.writeObject(obj); err != nil {
				return fmt.Errorf("writing %s: %w", env.Name, err)
			}
		}
	}
	return tw.Flush()
}

// ReadAsset reads an asset file. Objects are registered from the object
// table first and filled afterwards, so pointers may reference objects that
// appear later in the file. The returned graph is nil for modified-resource
// assets.
//
// Only read failures and a missing header are returned as errors; all
// other problems are reported to log and skipped.
func ReadAsset(r io.Reader, file string, reg asset.Registry, log *zap.Logger) (*Envelope, *asset.Graph, error) {
	d := &decoder{lr: NewLineReader(r, file), reg: reg, log: log}

	var env *Envelope
	for {
		line, ok := d.lr.Next()
		if !ok {
			break
		}
		if line == "" {
			continue
		}

		if env == nil {
			if line != headerKeyword {
				d.report(verrors.Parse, verrors.ErrInvalidHeader, "expected %s, got %q", headerKeyword, line)
				continue
			}
			env = d.readEnvelope()
			if env.ModifiedResource {
				break
			}
			d.graph = d.buildGraph(env)
			continue
		}

		if line == headerKeyword {
			d.report(verrors.Parse, verrors.ErrInvalidHeader, "duplicate %s block", headerKeyword)
			d.skipBlock()
			continue
		}
		d.readObject(line)
	}

	if err := d.lr.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", file, err)
	}
	if env == nil {
		return nil, nil, fmt.Errorf("%s: missing %s header", file, headerKeyword)
	}
	return env, d.graph, nil
}

func (d *decoder) readEnvelope() *Envelope {
	env := &Envelope{}
	d.readBlock(headerKeyword, func(line string) {
		switch strings.Trim(line, `"`) {
		case sectionObjects:
			d.readBlock(sectionObjects, func(row string) { d.readShell(env, row) })
			return
		case sectionBundles:
			d.readBlock(sectionBundles, func(row string) {
				if toks, err := Tokens(row); err == nil && len(toks) == 1 {
					env.Bundles = append(env.Bundles, toks[0])
					return
				}
				d.report(verrors.Parse, verrors.ErrMalformedLine, "malformed bundle row %q", row)
			})
			return
		case sectionDependencies:
			d.readBlock(sectionDependencies, func(row string) {
				toks, err := Tokens(row)
				if err != nil || len(toks) != 1 {
					d.report(verrors.Parse, verrors.ErrMalformedLine, "malformed dependency row %q", row)
					return
				}
				id, err := uuid.Parse(toks[0])
				if err != nil {
					d.report(verrors.Parse, verrors.ErrInvalidGuid, "dependency %q is not a guid", toks[0])
					return
				}
				env.Dependencies = append(env.Dependencies, id)
			})
			return
		case sectionLinked:
			d.readBlock(sectionLinked, func(row string) {
				if ref, ok := d.readLink(row); ok {
					env.Linked = append(env.Linked, ref)
				}
			})
			return
		}

		toks, err := Tokens(line)
		if err != nil || len(toks) != 2 {
			d.report(verrors.Parse, verrors.ErrMalformedLine, "malformed header line %q", line)
			return
		}
		key, value := toks[0], toks[1]
		switch key {
		case keyName:
			env.Name = value
		case keyProjDir:
			env.ProjDir = value
		case keyType:
			env.Type = value
		case keyFileID:
			id, err := uuid.Parse(value)
			if err != nil {
				d.report(verrors.Parse, verrors.ErrInvalidGuid, "file id %q is not a guid", value)
				return
			}
			env.FileID = id
		case keyTransient, keyModifiedResource:
			b, err := ParseBool(value)
			if err != nil {
				d.report(verrors.Parse, verrors.ErrInvalidBool, "%s: %v", key, err)
				return
			}
			if key == keyTransient {
				env.Transient = b
			} else {
				env.ModifiedResource = b
			}
		default:
			d.report(verrors.Parse, verrors.ErrMalformedLine, "unknown header keyword %q", key)
		}
	})
	return env
}

func (d *decoder) readShell(env *Envelope, row string) {
	toks, err := Tokens(row)
	if err != nil || len(toks) < 3 || len(toks) > 4 {
		d.report(verrors.Parse, verrors.ErrMalformedLine, "malformed object row %q", row)
		return
	}
	id, err := parseIdentity(toks[1], toks[2])
	if err != nil {
		d.report(verrors.Parse, verrors.ErrInvalidHeader, "malformed object row %q: %v", row, err)
		return
	}

	shell := Shell{Type: toks[0], ID: id}
	if len(toks) == 3 {
		env.Legacy = true
	} else {
		root, err := ParseBool(toks[3])
		if err != nil {
			d.report(verrors.Parse, verrors.ErrInvalidBool, "object %s root flag: %v", id, err)
		}
		shell.Root = root
	}
	env.Shells = append(env.Shells, shell)
}

// buildGraph registers every shell with default field values.
func (d *decoder) buildGraph(env *Envelope) *asset.Graph {
	if env.Legacy {
		d.report(verrors.Compatibility, verrors.ErrLegacyFormat, "object table has no root column, using the first object as root")
	}

	g := asset.NewGraph(env.FileID)
	roots := 0
	for i, s := range env.Shells {
		root := s.Root
		if env.Legacy {
			root = i == 0
		}

		obj, err := d.reg.Create(s.Type)
		if err != nil {
			d.report(verrors.Resolution, verrors.ErrUnknownType, "object %s: %v", s.ID, err)
			continue
		}
		obj.ID = s.ID
		if _, err := g.Add(obj, root); err != nil {
			d.report(verrors.Parse, verrors.ErrDuplicateObject, "%v", err)
			continue
		}
		if root {
			roots++
		}
	}
	if !env.Legacy && g.Len() > 0 && roots != 1 {
		d.report(verrors.Parse, verrors.ErrRootCount, "found %d root objects, expected 1", roots)
	}

	for _, dep := range env.Dependencies {
		g.AddDependency(dep)
	}
	return g
}

func linkIdentity(ref asset.LinkRef) string {
	if ref.Kind == asset.LinkChunk {
		return ref.ID.String()
	}
	return ref.Name
}

// readLink parses a Linked row: "kind" "name", or "chunk" "guid".
func (d *decoder) readLink(row string) (asset.LinkRef, bool) {
	toks, err := Tokens(row)
	if err != nil || len(toks) != 2 || toks[0] == "" {
		d.report(verrors.Parse, verrors.ErrMalformedLine, "malformed linked row %q", row)
		return asset.LinkRef{}, false
	}

	kind := asset.LinkKind(toks[0])
	if kind != asset.LinkChunk {
		return asset.LinkRef{Kind: kind, Name: toks[1]}, true
	}
	id, err := uuid.Parse(toks[1])
	if err != nil {
		d.report(verrors.Parse, verrors.ErrInvalidGuid, "linked chunk %q is not a guid", toks[1])
		return asset.LinkRef{}, false
	}
	return asset.ChunkLink(id), true
}
