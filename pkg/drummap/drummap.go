// Package drummap loads drum mapping tables from YAML documents.
//
// A drum map lists categories (one per kit piece) in precedence order, each
// holding from/to note name pairs:
//
//	name: ezd3-pv
//	categories:
//	  - name: kick
//	    mappings:
//	      - {from: "C1", to: "C0", label: kick}
//
// Documents are checked against an embedded JSON schema before being turned
// into a core.MappingTable. The package ships the EZdrummer 3 to PV edition
// map as its default.
package drummap

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/drumconv/pkg/core"
)

// DefaultName is the built-in map used when none is selected.
const DefaultName = "ezd3-pv"

var (
	//go:embed maps/*.yaml
	builtin embed.FS

	//go:embed schema.json
	schemaJSON []byte

	compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
		return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	})
)

var (
	// ErrInvalid is wrapped by every error caused by a malformed drum map.
	ErrInvalid = errors.New("invalid drum map")
	// ErrUnknownMap is returned by Builtin for names it does not ship.
	ErrUnknownMap = errors.New("unknown built-in drum map")
)

// File is the YAML form of a drum map.
type File struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Categories  []Category `yaml:"categories"`
}

// Category is one kit piece of a File.
type Category struct {
	Name     string    `yaml:"name"`
	Mappings []Mapping `yaml:"mappings"`
}

// Mapping is a single from/to pair of a Category.
type Mapping struct {
	From  string `yaml:"from"`
	To    string `yaml:"to"`
	Label string `yaml:"label,omitempty"`
}

// ValidationError lists the schema violations of a drum map.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("drum map does not match schema: %s", strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Validate checks a YAML drum map against the schema. It does not check
// that note names are in range; Parse does.
func Validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile drum map schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{}
	for _, re := range result.Errors() {
		verr.Problems = append(verr.Problems, re.String())
	}
	return verr
}

// Decode validates data and decodes it into a File.
func Decode(data []byte) (*File, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return &f, nil
}

// Table builds the mapping table described by f.
func (f *File) Table() (*core.MappingTable, error) {
	cats := make([]core.Category, 0, len(f.Categories))
	for _, c := range f.Categories {
		cat := core.Category{Name: c.Name, Mappings: make([]core.Mapping, 0, len(c.Mappings))}
		for _, m := range c.Mappings {
			cat.Mappings = append(cat.Mappings, core.Mapping{
				From:  core.NoteName(m.From),
				To:    core.NoteName(m.To),
				Label: m.Label,
			})
		}
		cats = append(cats, cat)
	}

	table, err := core.NewMappingTable(f.Name, cats...)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalid, f.Name, err)
	}
	return table, nil
}

// Parse validates a YAML drum map and builds its table.
func Parse(data []byte) (*core.MappingTable, error) {
	f, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return f.Table()
}

// LoadFile parses the drum map stored in filename.
func LoadFile(filename string) (*core.MappingTable, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read drum map: %w", err)
	}
	table, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return table, nil
}

// Builtin returns one of the maps shipped with the package.
func Builtin(name string) (*core.MappingTable, error) {
	data, err := BuiltinSource(name)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// BuiltinSource returns the YAML source of a shipped map.
func BuiltinSource(name string) ([]byte, error) {
	data, err := builtin.ReadFile(path.Join("maps", name+".yaml"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMap, name)
	}
	return data, err
}

// Names lists the shipped maps.
func Names() []string {
	entries, _ := fs.Glob(builtin, "maps/*.yaml")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(path.Base(e), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Default returns the table of DefaultName.
func Default() (*core.MappingTable, error) {
	return Builtin(DefaultName)
}

// Load resolves ref to a table: the default map when ref is empty, a shipped
// map when ref names one, a file path otherwise.
func Load(ref string) (*core.MappingTable, error) {
	if ref == "" {
		return Default()
	}
	for _, n := range Names() {
		if n == ref {
			return Builtin(ref)
		}
	}
	return LoadFile(ref)
}
