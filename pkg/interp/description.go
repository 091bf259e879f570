package interp

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Description is the raw, uncompiled form of an interpretation. It is the
// data contract between the engine and whatever reads or prints models.
//
// A description stream is a YAML multi-document stream; JSON documents are
// accepted as well since they are valid YAML.
type Description struct {
	Size       int             `yaml:"size" json:"size" validate:"gte=1"`
	Label      string          `yaml:"label,omitempty" json:"label,omitempty"`
	Operations []OperationDesc `yaml:"operations" json:"operations" validate:"dive"`
}

// OperationDesc describes one operation table.
type OperationDesc struct {
	Name   string `yaml:"name" json:"name" validate:"required"`
	Kind   string `yaml:"kind" json:"kind" validate:"required,oneof=function relation"`
	Arity  int    `yaml:"arity" json:"arity" validate:"gte=0"`
	Values Values `yaml:"values" json:"values"`
}

// Value is a single table entry. In YAML the undefined entry is written "-".
type Value int

// Values is a flat table, written in YAML flow style.
type Values []Value

// UnmarshalYAML accepts integers and the "-" undefined marker.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: table value must be a scalar", node.Line)
	}
	if node.Value == "-" {
		*v = Value(Undefined)
		return nil
	}
	i, err := strconv.Atoi(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: table value %q is not an integer", node.Line, node.Value)
	}
	*v = Value(i)
	return nil
}

// MarshalYAML writes undefined entries as "-".
func (v Value) MarshalYAML() (interface{}, error) {
	if v == Undefined {
		return "-", nil
	}
	return int(v), nil
}

// MarshalYAML emits the table on a single line.
func (vs Values) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle, Tag: "!!seq"}
	for _, v := range vs {
		s := "-"
		if v != Undefined {
			s = strconv.Itoa(int(v))
		}
		tag := "!!int"
		if v == Undefined {
			tag = "!!str"
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: s})
	}
	return node, nil
}

var (
	describeValidate     *validator.Validate
	describeValidateOnce sync.Once
)

func descriptionValidator() *validator.Validate {
	describeValidateOnce.Do(func() {
		describeValidate = validator.New(validator.WithRequiredStructEnabled())
	})
	return describeValidate
}

// Validate checks the structural shape of the description: size in
// [1, MaxDomainSize], named operations, known kinds, non-negative arities.
// Table contents are checked by Compile.
func (d *Description) Validate() error {
	if d.Size < 1 || d.Size > MaxDomainSize {
		return fmt.Errorf("%w: got %d", ErrDomainSize, d.Size)
	}
	if err := descriptionValidator().Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q", ErrInvalidDescription, fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidDescription, err)
	}
	return nil
}

// ReadDescriptions decodes every document of a YAML/JSON stream. Empty
// documents are skipped.
func ReadDescriptions(r io.Reader) ([]Description, error) {
	dec := yaml.NewDecoder(r)
	var out []Description
	for n := 1; ; n++ {
		var d Description
		err := dec.Decode(&d)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("%w: document %d: %v", ErrInvalidDescription, n, err)
		}
		if d.Size == 0 && len(d.Operations) == 0 && d.Label == "" {
			continue
		}
		out = append(out, d)
	}
}

// WriteDescriptions encodes descriptions as a YAML multi-document stream.
// No descriptions write nothing.
func WriteDescriptions(w io.Writer, descs ...Description) error {
	if len(descs) == 0 {
		return nil
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for i := range descs {
		if err := enc.Encode(&descs[i]); err != nil {
			return fmt.Errorf("encode description %d: %w", i+1, err)
		}
	}
	return enc.Close()
}
