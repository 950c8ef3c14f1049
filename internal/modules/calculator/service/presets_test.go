package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePresets(t *testing.T) {
	presets, err := ParsePresets([]byte(`
presets:
  - name: Halves
    description: half and half
    weights: [1, 1]
    multiples: ["1", "1.5"]
  - name: scalp
    weights: [3, 1]
    multiples: [0.5, 1]
`))
	require.NoError(t, err)
	require.Len(t, presets, 2)

	assert.Equal(t, "halves", presets[0].Name)
	assert.Equal(t, []int64{1, 1}, presets[0].Weights)
	assert.Equal(t, "1.5", presets[0].Multiples[1].String())
	assert.Equal(t, "0.5", presets[1].Multiples[0].String())
}

func TestParsePresets_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty name":    "presets:\n  - weights: [1]\n    multiples: [\"1\"]\n",
		"duplicate":     "presets:\n  - {name: a, weights: [1], multiples: [\"1\"]}\n  - {name: A, weights: [1], multiples: [\"1\"]}\n",
		"length":        "presets:\n  - {name: a, weights: [1, 1], multiples: [\"1\"]}\n",
		"zero weights":  "presets:\n  - {name: a, weights: [0], multiples: [\"1\"]}\n",
		"bad multiple":  "presets:\n  - {name: a, weights: [1], multiples: [\"x\"]}\n",
		"zero multiple": "presets:\n  - {name: a, weights: [1], multiples: [\"0\"]}\n",
		"not yaml":      "presets: {",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePresets([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)
	names := func(c *Catalog) []string {
		var out []string
		for _, p := range c.List() {
			out = append(out, p.Name)
		}
		return out
	}
	assert.Equal(t, []string{"thirds", "front", "runner", "inside"}, names(c))

	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
presets:
  - {name: front, weights: [6, 3, 1], multiples: ["1", "2", "3"]}
  - {name: halves, weights: [1, 1], multiples: ["1", "2"]}
`), 0o600))

	c, err = LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"thirds", "front", "runner", "inside", "halves"}, names(c))

	front, ok := c.Get(" FRONT ")
	require.True(t, ok)
	assert.Equal(t, []int64{6, 3, 1}, front.Weights)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadCatalog_RepoFile(t *testing.T) {
	c, err := LoadCatalog(filepath.Join("..", "..", "..", "..", "configs", "presets.yaml"))
	require.NoError(t, err)
	_, ok := c.Get("halves")
	assert.True(t, ok)
}
