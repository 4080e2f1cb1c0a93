// Package settings persists the editor preferences in a TOML file.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/pelletier/go-toml/v2"

	"github.com/ashrindy/dvscenetool/internal/curve"
	"github.com/ashrindy/dvscenetool/internal/templates"
)

// EnvPath names the environment variable that overrides the settings file
// location.
const EnvPath = "DVSCENE_SETTINGS"

// DefaultFile is the settings file used when EnvPath is unset.
const DefaultFile = "dvscene.toml"

// Themes lists the accepted theme names.
var Themes = []string{"dark", "light", "classic"}

// CurveConfig is the [curve] table: defaults for generated curves.
type CurveConfig struct {
	Type       string  `toml:"type"`
	Decreasing bool    `toml:"decreasing"`
	Falloff    float32 `toml:"falloff"`
}

// Settings are the user preferences kept in the TOML settings file.
type Settings struct {
	Template     string      `toml:"template"`
	TemplatesDir string      `toml:"templates_dir"`
	Theme        string      `toml:"theme"`
	Store        string      `toml:"store"`
	Curve        CurveConfig `toml:"curve"`
}

// Default returns the settings written on first start.
func Default() *Settings {
	c := curve.DefaultSettings()
	return &Settings{
		Template: "rangers",
		Theme:    "dark",
		Store:    "scenes.db",
		Curve: CurveConfig{
			Type:       c.Type.String(),
			Decreasing: c.Decreasing,
			Falloff:    c.Falloff,
		},
	}
}

// Path returns the settings file location: $DVSCENE_SETTINGS, else
// DefaultFile in the working directory.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultFile
}

// Load reads the settings at path. A missing file is created with the
// defaults. Keys absent from the file keep their default values.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		s := Default()
		if err := s.Save(path); err != nil {
			return nil, err
		}
		slog.Info("created settings file", "path", path)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file '%s': %w", path, err)
	}

	s := Default()
	if err := toml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings '%s': %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("settings '%s': %w", path, err)
	}
	return s, nil
}

// Save writes s to path, replacing the file atomically.
func (s *Settings) Save(path string) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*")
	if err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// Validate reports the first invalid value.
func (s *Settings) Validate() error {
	if s.Template == "" {
		return errors.New("template must not be empty")
	}
	if !slices.Contains(Themes, s.Theme) {
		return fmt.Errorf("unknown theme %q", s.Theme)
	}
	if _, err := s.CurveSettings(); err != nil {
		return err
	}
	return nil
}

// CurveSettings converts the stored curve defaults.
func (s *Settings) CurveSettings() (curve.Settings, error) {
	typ, err := curve.ParseType(s.Curve.Type)
	if err != nil {
		return curve.Settings{}, err
	}
	if !(s.Curve.Falloff > 0) {
		return curve.Settings{}, fmt.Errorf("curve falloff must be positive, got %v", s.Curve.Falloff)
	}
	return curve.Settings{Type: typ, Decreasing: s.Curve.Decreasing, Falloff: s.Curve.Falloff}, nil
}

// SetCurve stores c as the curve defaults.
func (s *Settings) SetCurve(c curve.Settings) {
	s.Curve = CurveConfig{Type: c.Type.String(), Decreasing: c.Decreasing, Falloff: c.Falloff}
}

// Database opens the selected definition database.
func (s *Settings) Database() (*templates.Database, error) {
	return templates.Open(s.TemplatesDir, s.Template)
}
