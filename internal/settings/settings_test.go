package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashrindy/dvscenetool/internal/curve"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "dvscene.toml")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), s)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Regexp(t, `template = ['"]rangers['"]`, string(data))
	assert.Contains(t, string(data), `[curve]`)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dvscene.toml")

	s := Default()
	s.Theme = "light"
	s.TemplatesDir = "defs"
	s.SetCurve(curve.Settings{Type: curve.Sine, Decreasing: true, Falloff: 1.5})
	require.NoError(t, s.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	c, err := got.CurveSettings()
	require.NoError(t, err)
	assert.Equal(t, curve.Settings{Type: curve.Sine, Decreasing: true, Falloff: 1.5}, c)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dvscene.toml")
	require.NoError(t, os.WriteFile(path, []byte("theme = \"classic\"\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "classic", s.Theme)
	assert.Equal(t, "rangers", s.Template)
	assert.Equal(t, float32(3), s.Curve.Falloff)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", "theme = "},
		{"unknown theme", "theme = \"neon\""},
		{"empty template", "template = \"\""},
		{"unknown curve", "[curve]\ntype = \"Bezier\""},
		{"zero falloff", "[curve]\nfalloff = 0.0"},
		{"nan falloff", "[curve]\nfalloff = nan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "dvscene.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dvscene.toml")
	s := Default()
	s.Theme = "neon"

	assert.Error(t, s.Save(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "invalid settings are not written")
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv(EnvPath, "")
	assert.Equal(t, DefaultFile, Path())

	t.Setenv(EnvPath, "/etc/dvscene.toml")
	assert.Equal(t, "/etc/dvscene.toml", Path())
}

func TestDatabaseUsesBuiltin(t *testing.T) {
	db, err := Default().Database()
	require.NoError(t, err)
	_, ok := db.Root()
	assert.True(t, ok)
}
