package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilter(t *testing.T) {
	t.Parallel()

	t.Run("empty expression matches everything", func(t *testing.T) {
		t.Parallel()
		node, err := parseFilter("")
		require.NoError(t, err)
		assert.Nil(t, node)
	})

	t.Run("single comparison", func(t *testing.T) {
		t.Parallel()
		node, err := parseFilter("difficulty = {:p0}")
		require.NoError(t, err)
		assert.Equal(t, cmpNode{field: "difficulty", op: "=", param: "p0"}, node)
	})

	t.Run("and combination", func(t *testing.T) {
		t.Parallel()
		node, err := parseFilter("difficulty = {:p0} && (done = {:p1})")
		require.NoError(t, err)

		b, ok := node.(boolNode)
		require.True(t, ok)
		assert.Equal(t, "&&", b.op)
		assert.Equal(t, cmpNode{field: "difficulty", op: "=", param: "p0"}, b.left)
		assert.Equal(t, cmpNode{field: "done", op: "=", param: "p1"}, b.right)
	})

	t.Run("or binds looser than and", func(t *testing.T) {
		t.Parallel()
		node, err := parseFilter("a = {:p0} && b = {:p1} || c = {:p2}")
		require.NoError(t, err)

		b, ok := node.(boolNode)
		require.True(t, ok)
		assert.Equal(t, "||", b.op)
		left, ok := b.left.(boolNode)
		require.True(t, ok)
		assert.Equal(t, "&&", left.op)
	})

	t.Run("all comparison operators", func(t *testing.T) {
		t.Parallel()
		for _, op := range []string{"=", "!=", ">", ">=", "<", "<=", "~", "!~"} {
			node, err := parseFilter("score " + op + " {:v}")
			require.NoError(t, err, "operator %s", op)
			assert.Equal(t, cmpNode{field: "score", op: op, param: "v"}, node)
		}
	})

	t.Run("rejects raw values", func(t *testing.T) {
		t.Parallel()
		_, err := parseFilter("difficulty = 'hard'")
		require.ErrorIs(t, err, ErrBadFilter)
	})

	t.Run("rejects unclosed parenthesis", func(t *testing.T) {
		t.Parallel()
		_, err := parseFilter("(a = {:p0}")
		require.ErrorIs(t, err, ErrBadFilter)
	})

	t.Run("rejects trailing garbage", func(t *testing.T) {
		t.Parallel()
		_, err := parseFilter("a = {:p0} garbage")
		require.ErrorIs(t, err, ErrBadFilter)
	})
}

func TestValidateParams(t *testing.T) {
	t.Parallel()

	node, err := parseFilter("a = {:p0} && b = {:p1}")
	require.NoError(t, err)

	require.NoError(t, validateParams(node, map[string]any{"p0": 1, "p1": 2}))

	err = validateParams(node, map[string]any{"p0": 1})
	require.ErrorIs(t, err, ErrBadFilter)
	assert.Contains(t, err.Error(), "{:p1}")
}
