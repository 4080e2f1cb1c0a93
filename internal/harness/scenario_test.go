package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario("testdata/scenarios/edit_curve_zoom.yaml")
	require.NoError(t, err)

	assert.Equal(t, "edit_curve_zoom", sc.Name)
	assert.Equal(t, "rangers", sc.Templates)
	assert.Equal(t, float32(100), sc.Length)
	assert.Equal(t, "Effect", sc.Node)
	assert.Equal(t, []float32{100, 50}, sc.Origin)
	require.Len(t, sc.Frames, 4)
	assert.Equal(t, PointerPress, sc.Frames[0].Pointer)
	assert.True(t, sc.Frames[3].Ctrl)
	assert.Equal(t, float32(1), sc.Frames[3].Wheel)

	require.NotNil(t, sc.Expect)
	assert.Equal(t, map[int]float32{16: 0.75}, sc.Expect.Curve)
	require.NotNil(t, sc.Expect.History)
	assert.Equal(t, 2, *sc.Expect.History)
	assert.Equal(t, "testdata/scenarios", sc.dir)
}

func TestParseScenarioDefaultsTemplates(t *testing.T) {
	sc, err := ParseScenario([]byte(`
name: x
description: y
length: 10
frames: [{}]
`))
	require.NoError(t, err)
	assert.Equal(t, DefaultTemplates, sc.Templates)
	assert.Nil(t, sc.Expect)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseScenarioRejectsUnknownFields(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: x
description: y
length: 10
frame: [{}]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenarioValidation(t *testing.T) {
	base := "name: x\ndescription: y\n"
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing name", "description: y\nlength: 1\nframes: [{}]", "name is required"},
		{"missing description", "name: x\nlength: 1\nframes: [{}]", "description is required"},
		{"zero length", base + "length: 0\nframes: [{}]", "length must be positive"},
		{"no frames", base + "length: 1", "frames list is required"},
		{"clip without node", base + "length: 1\nclip: [0, 1]\nframes: [{}]", "clip needs a node"},
		{"inverted clip", base + "length: 1\nnode: Folder\nclip: [2, 1]\nframes: [{}]", "start < end"},
		{"bad origin", base + "length: 1\norigin: [1]\nframes: [{}]", "origin must be"},
		{"bad pointer", base + "length: 1\nframes: [{pointer: drag}]", `frames[0]: unknown pointer "drag"`},
		{"press without at", base + "length: 1\nframes: [{pointer: press}]", "frames[0]: press needs at"},
		{"bad at", base + "length: 1\nframes: [{}, {at: [1, 2, 3]}]", "frames[1]: at must be"},
		{"bad keys", base + "length: 1\nframes: [{keys: ctrl+s}]", `unknown keys "ctrl+s"`},
		{"negative repeat", base + "length: 1\nframes: [{repeat: -1}]", "repeat must be non-negative"},
		{"expect clip without node", base + "length: 1\nframes: [{}]\nexpect: {clip: [0, 1]}", "expect.clip needs a node"},
		{"negative history", base + "length: 1\nframes: [{}]\nexpect: {history: -1}", "expect.history"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestScenarioFilesParse(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, p := range paths {
		t.Run(filepath.Base(p), func(t *testing.T) {
			_, err := LoadScenario(p)
			assert.NoError(t, err)
		})
	}
}

func TestLoadScenarioResolvesTemplatesNextToFile(t *testing.T) {
	dir := t.TempDir()
	defs := `package mini

node: Root: descriptions: rootNode: "true"
node: Clip: fields: {
	frameStart: {type: "float", value: 5}
	frameEnd: {type: "float", value: 15}
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mini.cue"), []byte(defs), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "s.yaml"), []byte(`
name: mini
description: local templates
templates: mini
length: 50
node: Clip
frames: [{}]
expect: {clip: [5, 15], history: 0}
`), 0o644))

	sc, err := LoadScenario(filepath.Join(dir, "s.yaml"))
	require.NoError(t, err)
	result, err := Run(sc)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}
