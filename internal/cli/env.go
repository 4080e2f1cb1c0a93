package cli

import (
	"errors"

	"github.com/ashrindy/dvscenetool/internal/editor"
	"github.com/ashrindy/dvscenetool/internal/settings"
	"github.com/ashrindy/dvscenetool/internal/store"
	"github.com/ashrindy/dvscenetool/internal/templates"
)

// env is what a scene command works against.
type env struct {
	settings *settings.Settings
	db       *templates.Database
	store    *store.Store
}

// loadSettings reads the settings file and applies the flag overrides.
func loadSettings(opts *RootOptions, f *OutputFormatter) (*settings.Settings, error) {
	s, err := settings.Load(opts.Settings)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeSettings, err)
	}
	if opts.Templates != "" {
		s.Template = opts.Templates
	}
	if opts.Store != "" {
		s.Store = opts.Store
	}
	f.VerboseLog("settings: %s (templates %s, store %s)", opts.Settings, s.Template, s.Store)
	return s, nil
}

// openEnv loads the settings, the template database and the store. The
// caller closes the env.
func openEnv(opts *RootOptions, f *OutputFormatter) (*env, error) {
	s, err := loadSettings(opts, f)
	if err != nil {
		return nil, err
	}
	db, err := s.Database()
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeTemplates, err)
	}
	st, err := store.Open(s.Store)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeStore, err)
	}
	return &env{settings: s, db: db, store: st}, nil
}

func (e *env) Close() error {
	return e.store.Close()
}

// session starts an editing session over the env.
func (e *env) session() (*editor.Session, error) {
	cs, err := e.settings.CurveSettings()
	if err != nil {
		return nil, err
	}
	return editor.New(e.db, editor.WithStorage(e.store), editor.WithCurveSettings(cs)), nil
}

// loadFailure maps a store read error to a command failure.
func loadFailure(f *OutputFormatter, err error) error {
	var unknown *store.UnknownDefinitionsError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return f.Fail(ExitCommandError, ErrCodeNotFound, err)
	case errors.As(err, &unknown):
		if werr := f.Error(ErrCodeTemplates, err.Error(), unknown.Names); werr != nil {
			return werr
		}
		return WrapExitError(ExitCommandError, ErrCodeTemplates, err)
	default:
		return f.Fail(ExitCommandError, ErrCodeGeneric, err)
	}
}
