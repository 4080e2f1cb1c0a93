package templates

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/ashrindy/dvscenetool/internal/scene"
)

//go:embed builtin/*.cue
var builtinFS embed.FS

// LoadError is a definition that could not be read, with its CUE position
// when one is known.
type LoadError struct {
	Path    string // e.g. node.Camera.fields.fov
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Path, e.Message)
	}
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// LoadCUE reads a database from a .cue file or from a directory holding
// one CUE package. The database is named after the file or directory.
func LoadCUE(p string) (*Database, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(p), ".cue")

	ctx := cuecontext.New()
	var v cue.Value
	if info.IsDir() {
		insts := load.Instances([]string{"."}, &load.Config{Dir: p})
		if len(insts) == 0 {
			return nil, fmt.Errorf("templates: no CUE instances in %s", p)
		}
		if insts[0].Err != nil {
			return nil, fmt.Errorf("templates: loading %s: %w", p, insts[0].Err)
		}
		v = ctx.BuildInstance(insts[0])
	} else {
		src, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("templates: %w", err)
		}
		v = ctx.CompileBytes(src, cue.Filename(p))
	}
	return Parse(name, v)
}

// LoadString reads a database from CUE source.
func LoadString(name, src string) (*Database, error) {
	v := cuecontext.New().CompileString(src, cue.Filename(name+".cue"))
	return Parse(name, v)
}

// Builtin loads one of the databases shipped with the tool.
func Builtin(name string) (*Database, error) {
	src, err := builtinFS.ReadFile(path.Join("builtin", name+".cue"))
	if err != nil {
		return nil, fmt.Errorf("templates: no builtin database %q", name)
	}
	return LoadString(name, string(src))
}

// BuiltinNames lists the shipped databases.
func BuiltinNames() []string {
	entries, _ := builtinFS.ReadDir("builtin")
	var out []string
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), ".cue"))
	}
	sort.Strings(out)
	return out
}

// Open resolves a database by name: a builtin database, else a file or
// directory at dir/name(.cue).
func Open(dir, name string) (*Database, error) {
	for _, candidate := range []string{filepath.Join(dir, name+".cue"), filepath.Join(dir, name)} {
		if dir == "" {
			break
		}
		if _, err := os.Stat(candidate); err == nil {
			return LoadCUE(candidate)
		}
	}
	return Builtin(name)
}

// Parse builds a database from a CUE value. Every broken definition is
// reported; a database is returned only when all of them parse.
func Parse(name string, v cue.Value) (*Database, error) {
	if err := v.Err(); err != nil {
		return nil, cueError("", err)
	}
	db := &Database{Name: name}
	var errs Errors

	db.Nodes = parseDefinitions(v, "node", false, &errs)
	db.Elements = parseDefinitions(v, "element", true, &errs)

	if len(db.Nodes) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Message: "no node definitions found", Pos: v.Pos()})
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return db, nil
}

func parseDefinitions(v cue.Value, section string, element bool, errs *Errors) []*Definition {
	sec := v.LookupPath(cue.ParsePath(section))
	if !sec.Exists() {
		return nil
	}
	iter, err := sec.Fields()
	if err != nil {
		*errs = append(*errs, cueError(section, err))
		return nil
	}
	var defs []*Definition
	for iter.Next() {
		def, err := parseDefinition(section+"."+iter.Label(), iter.Label(), iter.Value())
		if err != nil {
			*errs = append(*errs, cueError(section+"."+iter.Label(), err))
			continue
		}
		def.Element = element
		defs = append(defs, def)
	}
	return defs
}

func parseDefinition(at, fullName string, v cue.Value) (*Definition, error) {
	def := &Definition{
		Name:         fullName,
		FullName:     fullName,
		Descriptions: map[string]string{},
		Fields:       scene.Fields{},
	}

	if nv := v.LookupPath(cue.ParsePath("name")); nv.Exists() {
		s, err := nv.String()
		if err != nil {
			return nil, cueError(at+".name", err)
		}
		def.Name = s
	}

	descs, err := parseDescriptions(at, v)
	if err != nil {
		return nil, err
	}
	def.Descriptions = descs

	fv := v.LookupPath(cue.ParsePath("fields"))
	if fv.Exists() {
		fields, err := parseFields(at+".fields", fv)
		if err != nil {
			return nil, err
		}
		def.Fields = fields
	}
	return def, nil
}

func parseDescriptions(at string, v cue.Value) (map[string]string, error) {
	out := map[string]string{}
	dv := v.LookupPath(cue.ParsePath("descriptions"))
	if !dv.Exists() {
		return out, nil
	}
	iter, err := dv.Fields()
	if err != nil {
		return nil, cueError(at+".descriptions", err)
	}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, cueError(at+".descriptions."+iter.Label(), err)
		}
		out[iter.Label()] = s
	}
	return out, nil
}

// Errors is every LoadError of one Parse call.
type Errors []*LoadError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, le := range e {
		msgs[i] = le.Error()
	}
	return strings.Join(msgs, "\n")
}

// cueError extracts the first positioned error from a CUE error.
func cueError(at string, err error) *LoadError {
	var le *LoadError
	if errors.As(err, &le) {
		return le
	}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Path: at, Message: err.Error()}
	}
	first := errs[0]
	out := &LoadError{Path: at, Message: first.Error()}
	if pos := cueerrors.Positions(first); len(pos) > 0 {
		out.Pos = pos[0]
	}
	return out
}
