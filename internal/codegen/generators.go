package codegen

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/golangsnmp/mibc/internal/module"
	"github.com/golangsnmp/mibc/internal/resolver"
	"github.com/golangsnmp/mibc/internal/symtab"
)

// JSON renders documents and indexes as indented JSON.
type JSON struct{}

func (JSON) Generate(mod *module.Module, tables symtab.Tables, opts Options) (*resolver.MibInfo, []byte, error) {
	doc, err := Build(mod, tables, opts)
	if err != nil {
		return nil, nil, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encoding %s: %w", mod.Name, err)
	}
	return doc.Meta.Info, append(data, '\n'), nil
}

func (JSON) Extension() string { return ".json" }

func (JSON) GenerateIndex(infos []*resolver.MibInfo, previous []byte, comments []string) ([]byte, error) {
	idx := NewIndex()
	if len(previous) > 0 {
		if err := json.Unmarshal(previous, idx); err != nil {
			return nil, fmt.Errorf("reading previous index: %w", err)
		}
	}
	idx.Merge(infos, comments)
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// YAML renders documents and indexes as YAML.
type YAML struct{}

func (YAML) Generate(mod *module.Module, tables symtab.Tables, opts Options) (*resolver.MibInfo, []byte, error) {
	doc, err := Build(mod, tables, opts)
	if err != nil {
		return nil, nil, err
	}
	data, err := encodeYAML(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding %s: %w", mod.Name, err)
	}
	return doc.Meta.Info, data, nil
}

func (YAML) Extension() string { return ".yaml" }

func (YAML) GenerateIndex(infos []*resolver.MibInfo, previous []byte, comments []string) ([]byte, error) {
	idx := NewIndex()
	if len(previous) > 0 {
		if err := yaml.Unmarshal(previous, idx); err != nil {
			return nil, fmt.Errorf("reading previous index: %w", err)
		}
	}
	idx.Merge(infos, comments)
	return encodeYAML(idx)
}

func encodeYAML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Null resolves modules and reports their MibInfo without producing a
// payload. It is useful for checking a set of modules.
type Null struct{}

func (Null) Generate(mod *module.Module, tables symtab.Tables, opts Options) (*resolver.MibInfo, []byte, error) {
	info, err := opts.resolver(tables).Describe(mod.Name)
	if err != nil {
		return nil, nil, err
	}
	return info, nil, nil
}

func (Null) Extension() string { return "" }

func (Null) GenerateIndex([]*resolver.MibInfo, []byte, []string) ([]byte, error) {
	return nil, nil
}
