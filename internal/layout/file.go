package layout

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/vvka-141/flrload/pkg/flrload"
	"gopkg.in/yaml.v3"
)

// Definition is a complete file format plus where each record type is stored.
type Definition struct {
	Format  flrload.Format
	Tables  map[flrload.RecordType]string
	Indexes map[flrload.RecordType][]string
}

// CensusDefinition returns the built-in IPUMS USA definition.
func CensusDefinition() Definition {
	return Definition{
		Format:  Census(),
		Tables:  CensusTables(),
		Indexes: CensusIndexes(),
	}
}

type fileDefinition struct {
	Offset      int                 `yaml:"offset"`
	Markers     map[string]string   `yaml:"markers"`
	Synthetic   map[string][]string `yaml:"synthetic"`
	RecordTypes []fileRecordType    `yaml:"record_types"`
}

type fileRecordType struct {
	Name      string      `yaml:"name"`
	Table     string      `yaml:"table"`
	Index     []string    `yaml:"index"`
	MaxLength int         `yaml:"max_length"`
	Fields    []fileField `yaml:"fields"`
}

type fileField struct {
	Name  string `yaml:"name"`
	Start int    `yaml:"start"`
	End   int    `yaml:"end"`
	Type  string `yaml:"type"`
}

// LoadFile reads a layout definition from a YAML file.
func LoadFile(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("failed to read layout file %s: %w", path, err)
	}
	def, err := Parse(data)
	if err != nil {
		return Definition{}, fmt.Errorf("layout file %s: %w", path, err)
	}
	return def, nil
}

// Parse decodes and validates a YAML layout definition. All problems are
// reported together and wrap flrload.ErrInvalidConfig.
func Parse(data []byte) (Definition, error) {
	var fd fileDefinition
	if err := yaml.Unmarshal(data, &fd); err != nil {
		return Definition{}, fmt.Errorf("invalid YAML: %v: %w", err, flrload.ErrInvalidConfig)
	}

	def := Definition{
		Format: flrload.Format{
			Markers:   make(map[string]flrload.RecordType, len(fd.Markers)),
			Offset:    fd.Offset,
			Synthetic: make(map[flrload.RecordType][]string, len(fd.Synthetic)),
		},
		Tables:  make(map[flrload.RecordType]string, len(fd.RecordTypes)),
		Indexes: make(map[flrload.RecordType][]string, len(fd.RecordTypes)),
	}

	var errs []error
	if len(fd.RecordTypes) == 0 {
		errs = append(errs, fmt.Errorf("no record_types defined: %w", flrload.ErrInvalidConfig))
	}
	if fd.Offset < 0 {
		errs = append(errs, fmt.Errorf("offset cannot be negative: %w", flrload.ErrInvalidConfig))
	}

	defined := make(map[flrload.RecordType]bool, len(fd.RecordTypes))
	for _, frt := range fd.RecordTypes {
		rt := flrload.RecordType(strings.TrimSpace(frt.Name))
		l, err := frt.layout(rt)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		defined[rt] = true
		def.Format.Layouts = append(def.Format.Layouts, l)

		table := frt.Table
		if table == "" {
			table = string(rt)
		}
		def.Tables[rt] = table
		if len(frt.Index) > 0 {
			def.Indexes[rt] = frt.Index
		}
	}

	for marker, name := range fd.Markers {
		rt := flrload.RecordType(name)
		if !defined[rt] {
			errs = append(errs, fmt.Errorf("marker %q refers to undefined record type %q: %w",
				marker, name, flrload.ErrInvalidConfig))
			continue
		}
		def.Format.Markers[marker] = rt
	}
	if len(fd.Markers) == 0 {
		errs = append(errs, fmt.Errorf("no markers defined: %w", flrload.ErrInvalidConfig))
	}

	for name, fields := range fd.Synthetic {
		rt := flrload.RecordType(name)
		if !defined[rt] {
			errs = append(errs, fmt.Errorf("synthetic fields for undefined record type %q: %w",
				name, flrload.ErrInvalidConfig))
			continue
		}
		def.Format.Synthetic[rt] = fields
	}

	if err := errors.Join(errs...); err != nil {
		return Definition{}, err
	}
	return def, nil
}

func (frt fileRecordType) layout(rt flrload.RecordType) (*flrload.Layout, error) {
	fields := make([]flrload.Field, 0, len(frt.Fields))
	for _, ff := range frt.Fields {
		kind, err := flrload.ParseFieldKind(ff.Type)
		if err != nil {
			return nil, fmt.Errorf("record type %q field %s: %w", rt, ff.Name, err)
		}
		fields = append(fields, flrload.Field{
			Name:  ff.Name,
			Range: flrload.Range{Start: ff.Start, End: ff.End},
			Kind:  kind,
		})
	}
	return flrload.NewLayout(rt, frt.MaxLength, fields...)
}
