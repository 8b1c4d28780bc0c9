package cli_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/pushdown"
	"github.com/aretw0/pushdown/internal/cli"
	"github.com/aretw0/pushdown/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	def := testutils.BalancedParens()
	def.States = append(def.States, "orphan")
	a, err := pushdown.New(def)
	require.NoError(t, err)

	var out bytes.Buffer
	cli.Describe(&out, a)

	got := out.String()
	assert.Contains(t, got, "name:            parens\n")
	assert.Contains(t, got, "states:          {q0, q1, orphan}\n")
	assert.Contains(t, got, "acceptance mode: final_state\n")
	assert.Contains(t, got, "FROM")
	assert.Regexp(t, `q1\s+ε\s+Z\s+q0\s+Z`, got)
	assert.Regexp(t, `q1\s+\)\s+P\s+q1\s+ε`, got)
	assert.Contains(t, got, "warning: unreachable states: {orphan}")
}
