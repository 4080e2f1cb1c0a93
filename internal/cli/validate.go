package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ashrindy/dvscenetool/internal/templates"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Database string                       `json:"database"`
	Valid    bool                         `json:"valid"`
	Nodes    int                          `json:"nodes"`
	Elements int                          `json:"elements"`
	Errors   []templates.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [database]",
		Short: "Check a template database",
		Long: `Load a template database and check the definitions the editor relies
on: exactly one rootNode, at most one isNodeElement base, and unique
display names per category.

The database is a .cue file, a directory holding a CUE package, or the
name of a builtin or settings-relative database. Without an argument the
database from the settings is checked.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, rootOpts, args)
		},
	}

	return cmd
}

func runValidate(cmd *cobra.Command, opts *RootOptions, args []string) error {
	f := opts.formatter(cmd)

	db, err := openDatabase(opts, f, args)
	if err != nil {
		return err
	}
	f.VerboseLog("loaded %s: %d node and %d element definitions", db.Name, len(db.Nodes), len(db.Elements))

	result := ValidationResult{
		Database: db.Name,
		Nodes:    len(db.Nodes),
		Elements: len(db.Elements),
		Errors:   db.Validate(),
	}
	result.Valid = len(result.Errors) == 0

	if !result.Valid {
		message := fmt.Sprintf("database %s: %d problem(s)", db.Name, len(result.Errors))
		if f.JSON() {
			if err := f.Error(ErrCodeInvalid, message, result.Errors); err != nil {
				return err
			}
		} else {
			for _, ve := range result.Errors {
				fmt.Fprintf(f.Writer, "✗ %s\n", ve)
			}
			fmt.Fprintln(f.Writer, message)
		}
		return NewExitError(ExitFailure, message)
	}

	if f.JSON() {
		return f.Success(result)
	}
	fmt.Fprintf(f.Writer, "✓ database %s valid (%d nodes, %d elements)\n", db.Name, result.Nodes, result.Elements)
	return nil
}

// openDatabase loads the database named by args, or the settings one.
func openDatabase(opts *RootOptions, f *OutputFormatter, args []string) (*templates.Database, error) {
	var db *templates.Database
	var err error
	if len(args) == 1 && exists(args[0]) {
		db, err = templates.LoadCUE(args[0])
	} else {
		s, serr := loadSettings(opts, f)
		if serr != nil {
			return nil, serr
		}
		if len(args) == 1 {
			db, err = templates.Open(s.TemplatesDir, args[0])
		} else {
			db, err = s.Database()
		}
	}
	if err != nil {
		return nil, loadDatabaseFailure(f, err)
	}
	return db, nil
}

func loadDatabaseFailure(f *OutputFormatter, err error) error {
	var details []string
	var errs templates.Errors
	var le *templates.LoadError
	switch {
	case errors.As(err, &errs):
		for _, e := range errs {
			details = append(details, e.Error())
		}
	case errors.As(err, &le):
		details = []string{le.Error()}
	}

	if f.JSON() {
		if werr := f.Error(ErrCodeTemplates, "template database failed to load", details); werr != nil {
			return werr
		}
	} else if len(details) > 0 {
		fmt.Fprintf(f.Writer, "✗ [%s] template database failed to load\n", ErrCodeTemplates)
		for _, d := range details {
			fmt.Fprintf(f.Writer, "  %s\n", d)
		}
	} else {
		fmt.Fprintf(f.Writer, "✗ [%s] %v\n", ErrCodeTemplates, err)
	}
	return WrapExitError(ExitCommandError, ErrCodeTemplates, err)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
