package codegen

import (
	"gopkg.in/yaml.v3"

	"github.com/golangsnmp/mibc/internal/module"
)

// Number is a range bound written as a bare integer. Bounds span the
// union of int64 and uint64, so they are encoded from their decimal text.
type Number module.Bound

func (n Number) String() string { return module.Bound(n).String() }

func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	b, err := module.ParseBound(string(data))
	if err != nil {
		return err
	}
	*n = Number(b)
	return nil
}

func (n Number) MarshalYAML() (any, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: n.String()}, nil
}

func (n *Number) UnmarshalYAML(node *yaml.Node) error {
	b, err := module.ParseBound(node.Value)
	if err != nil {
		return err
	}
	*n = Number(b)
	return nil
}
