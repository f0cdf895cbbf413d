package schema

import (
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/bitrec"
	"github.com/wippyai/bitrec/errors"
)

// Declaration format:
//
//	name: parrot
//	fields:
//	  - name: status
//	    type: uint                # uint | sint | fixed | decimal | utf8
//	    size: 2                   # bits (bytes for utf8)
//	    enum: [dead, pining, resting]
//
//	  - name: plumage_rgb
//	    type: uint
//	    size: 5
//	    dim: 3                    # repeat as an array, index 0 most significant
//
//	  - name: price
//	    type: decimal
//	    size: 16
//	    precision: 2              # fixed additionally takes base:
//
//	  - name: motto
//	    type: utf8
//	    size: 10
//	    raw: true                 # keep zero bytes when decoding
//
//	  - name: header              # nested struct: fields instead of type
//	    fields:
//	      - {name: version, type: uint, size: 4}
//	      - {name: flags, type: uint, size: 4}

// FieldDecl is one field of a YAML record declaration.
type FieldDecl struct {
	Name      string      `yaml:"name"`
	Type      string      `yaml:"type"`
	Size      int         `yaml:"size"`
	Dim       int         `yaml:"dim"`
	Precision int         `yaml:"precision"`
	Base      int         `yaml:"base"`
	Enum      []string    `yaml:"enum"`
	Raw       bool        `yaml:"raw"`
	Fields    []FieldDecl `yaml:"fields"`
}

// TypeDecl is a top-level YAML record declaration.
type TypeDecl struct {
	Name   string      `yaml:"name"`
	Fields []FieldDecl `yaml:"fields"`
}

// Parse reads one YAML record declaration and builds its descriptor.
// Unknown keys are rejected.
func Parse(r io.Reader) (*bitrec.Type, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var decl TypeDecl
	if err := dec.Decode(&decl); err != nil {
		return nil, errors.New(errors.PhaseDefine, errors.KindFormat).
			Cause(err).
			Detail("invalid record declaration").
			Build()
	}
	return Build(decl)
}

// ParseBytes is Parse over a byte slice.
func ParseBytes(b []byte) (*bitrec.Type, error) {
	return Parse(strings.NewReader(string(b)))
}

// Load parses a record declaration file.
func Load(path string) (*bitrec.Type, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(errors.PhaseDefine, errors.KindConfiguration).
			Cause(err).
			Detail("cannot open declaration %s", path).
			Build()
	}
	defer f.Close()
	return Parse(f)
}

// Build converts a parsed declaration into a descriptor.
func Build(decl TypeDecl) (*bitrec.Type, error) {
	if decl.Name == "" {
		return nil, errors.Configuration("record declaration has no name")
	}
	if len(decl.Fields) == 0 {
		return nil, errors.Configuration("record %q declares no fields", decl.Name)
	}
	return buildStruct(decl.Name, decl.Name, decl.Fields)
}

func buildStruct(path, name string, decls []FieldDecl) (*bitrec.Type, error) {
	fields := make([]bitrec.FieldDef, 0, len(decls))
	for _, d := range decls {
		t, err := buildField(path+"."+d.Name, d)
		if err != nil {
			return nil, err
		}
		fields = append(fields, bitrec.F(d.Name, t))
	}
	return bitrec.NewStruct(name, fields...)
}

func buildField(path string, d FieldDecl) (*bitrec.Type, error) {
	if d.Name == "" {
		return nil, errors.Configuration("%s: field has no name", path)
	}
	if len(d.Fields) > 0 && d.Type != "" && d.Type != "struct" {
		return nil, errors.Configuration("%s: cannot declare both type %q and fields", path, d.Type)
	}

	var t *bitrec.Type
	var err error
	switch {
	case len(d.Fields) > 0:
		t, err = buildStruct(path, d.Name, d.Fields)
	default:
		t, err = buildLeaf(path, d)
	}
	if err != nil {
		return nil, err
	}

	if d.Dim > 0 {
		t = bitrec.ArrayOf(t, d.Dim)
	}
	return t, nil
}

func buildLeaf(path string, d FieldDecl) (*bitrec.Type, error) {
	switch d.Type {
	case "uint", "sint":
		if d.Size <= 0 {
			return nil, errors.Configuration("%s: %s needs a positive size", path, d.Type)
		}
		var e *bitrec.Enum
		if len(d.Enum) > 0 {
			e = bitrec.NewEnum(d.Enum...)
		}
		if d.Type == "uint" {
			return bitrec.UIntEnum(d.Size, e), nil
		}
		return bitrec.SIntEnum(d.Size, e), nil

	case "decimal":
		if d.Size <= 0 || d.Precision <= 0 {
			return nil, errors.Configuration("%s: decimal needs size and precision", path)
		}
		return bitrec.Decimal(d.Size, d.Precision), nil

	case "fixed":
		if d.Size <= 0 || d.Precision <= 0 || d.Base <= 1 {
			return nil, errors.Configuration("%s: fixed needs size, precision, and base", path)
		}
		return bitrec.Fixed(d.Size, d.Precision, d.Base), nil

	case "utf8":
		if d.Size <= 0 {
			return nil, errors.Configuration("%s: utf8 needs a positive byte size", path)
		}
		return bitrec.UTF8Raw(d.Size, !d.Raw), nil

	case "":
		return nil, errors.Configuration("%s: field has no type", path)

	default:
		return nil, errors.Configuration("%s: unknown type %q", path, d.Type)
	}
}
