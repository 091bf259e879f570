package interp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoModels = `
size: 2
label: xor
operations:
  - name: f
    kind: function
    arity: 2
    values: [0, 1, 1, 0]
---
# a partial successor
size: 3
operations:
  - {name: s, kind: function, arity: 1, values: [1, 2, "-"]}
  - {name: p, kind: relation, arity: 1, values: [1, 0, 0]}
---
{"size": 1, "operations": [{"name": "c", "kind": "function", "arity": 0, "values": [0]}]}
`

func TestReadDescriptions(t *testing.T) {
	descs, err := ReadDescriptions(strings.NewReader(twoModels))
	require.NoError(t, err)
	require.Len(t, descs, 3)

	assert.Equal(t, "xor", descs[0].Label)
	assert.Equal(t, vals(0, 1, 1, 0), descs[0].Operations[0].Values)
	assert.Equal(t, vals(1, 2, Undefined), descs[1].Operations[0].Values)
	assert.Equal(t, 1, descs[2].Size)

	_, err = Compile(descs[1])
	assert.ErrorIs(t, err, ErrValueRange)
	in, err := Compile(descs[1], AllowIncomplete())
	require.NoError(t, err)
	assert.True(t, in.Incomplete())
}

func TestReadDescriptionsErrors(t *testing.T) {
	_, err := ReadDescriptions(strings.NewReader("size: 2\noperations:\n  - {name: f, values: [a]}\n"))
	assert.ErrorIs(t, err, ErrInvalidDescription)

	descs, err := ReadDescriptions(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, descs)
}

func TestWriteDescriptionsRoundTrip(t *testing.T) {
	descs, err := ReadDescriptions(strings.NewReader(twoModels))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteDescriptions(&buf, descs...))
	assert.Contains(t, buf.String(), "values: [0, 1, 1, 0]")

	again, err := ReadDescriptions(&buf)
	require.NoError(t, err)
	assert.Equal(t, descs, again)
}

func TestWriteDescriptionsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDescriptions(&buf))
	assert.Empty(t, buf.String())

	again, err := ReadDescriptions(&buf)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestDescriptionValidate(t *testing.T) {
	d := Description{Size: 2, Operations: []OperationDesc{fnOp("f", 1, 0, 1)}}
	assert.NoError(t, d.Validate())

	d.Operations[0].Kind = "table"
	assert.ErrorIs(t, d.Validate(), ErrInvalidDescription)

	d = Description{Size: -1}
	assert.ErrorIs(t, d.Validate(), ErrDomainSize)

	d = Description{Size: MaxDomainSize + 1}
	assert.ErrorIs(t, d.Validate(), ErrDomainSize)
}
