package pushdown_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/aretw0/pushdown"
	"github.com/aretw0/pushdown/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_Run(t *testing.T) {
	a, err := pushdown.New(testutils.BalancedParens())
	require.NoError(t, err)

	var out bytes.Buffer
	r := pushdown.NewRunner(strings.NewReader("()\r\n(()\n\n"), &out)
	r.Headless = true

	sum, err := r.Run(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, pushdown.Summary{Total: 3, Accepted: 2, Rejected: 1}, sum)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "\"()\"\taccepted", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "\"(()\"\trejected: "))
	assert.Equal(t, "\"\"\taccepted", lines[2])
}

func TestRunner_Renderer(t *testing.T) {
	a, err := pushdown.New(testutils.BalancedParens())
	require.NoError(t, err)

	var out bytes.Buffer
	r := pushdown.NewRunner(strings.NewReader("()\n"), &out)
	r.Renderer = func(res pushdown.Result) (string, error) {
		return "OK " + res.Input, nil
	}

	_, err = r.Run(context.Background(), a)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "--- parens")
	assert.Contains(t, out.String(), "OK ()")
}

func TestRunner_RequiresStreams(t *testing.T) {
	a, err := pushdown.New(testutils.BalancedParens())
	require.NoError(t, err)

	_, err = (&pushdown.Runner{}).Run(context.Background(), a)
	assert.Error(t, err)
}

func TestRunner_LongLines(t *testing.T) {
	a, err := pushdown.New(testutils.BalancedParens())
	require.NoError(t, err)

	long := strings.Repeat("(", 40000) + strings.Repeat(")", 40000)
	var out bytes.Buffer
	r := pushdown.NewRunner(strings.NewReader(long+"\n)(\n"), &out)
	r.Headless = true
	r.Renderer = func(res pushdown.Result) (string, error) {
		return fmt.Sprintf("%d %v", len(res.Input), res.Accepted), nil
	}

	sum, err := r.Run(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, pushdown.Summary{Total: 2, Accepted: 1, Rejected: 1}, sum)
	assert.Equal(t, "80000 true\n2 false\n", out.String())
}
