package templates

import "fmt"

// Validation error codes (E200-E209).
const (
	ErrNoRoot           = "E201" // no node definition marked rootNode
	ErrManyRoots        = "E202" // more than one rootNode definition
	ErrNoElementBase    = "E203" // elements defined without an isNodeElement base
	ErrManyElementBases = "E204" // more than one isNodeElement definition
	ErrDuplicateName    = "E205" // two definitions share a display name in one category
	ErrRootIsElement    = "E206" // the root definition is also the element base
)

// ValidationError is one structural problem of a database.
type ValidationError struct {
	Definition string `json:"definition,omitempty"`
	Message    string `json:"message"`
	Code       string `json:"code"`
}

func (e ValidationError) Error() string {
	if e.Definition == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Definition, e.Message)
}

// Validate checks the database for the definitions the editor relies on.
// It returns every problem found.
func (db *Database) Validate() []ValidationError {
	var errs []ValidationError

	var roots, bases []*Definition
	for _, d := range db.Nodes {
		if d.Flag(DescRootNode) {
			roots = append(roots, d)
		}
		if d.Flag(DescIsNodeElement) {
			bases = append(bases, d)
		}
	}

	switch {
	case len(roots) == 0:
		errs = append(errs, ValidationError{Message: "no node definition is marked rootNode", Code: ErrNoRoot})
	case len(roots) > 1:
		for _, d := range roots[1:] {
			errs = append(errs, ValidationError{
				Definition: d.FullName,
				Message:    fmt.Sprintf("rootNode already set by %s", roots[0].FullName),
				Code:       ErrManyRoots,
			})
		}
	}

	switch {
	case len(bases) == 0 && len(db.Elements) > 0:
		errs = append(errs, ValidationError{
			Message: fmt.Sprintf("%d element definitions but no node is marked isNodeElement", len(db.Elements)),
			Code:    ErrNoElementBase,
		})
	case len(bases) > 1:
		for _, d := range bases[1:] {
			errs = append(errs, ValidationError{
				Definition: d.FullName,
				Message:    fmt.Sprintf("isNodeElement already set by %s", bases[0].FullName),
				Code:       ErrManyElementBases,
			})
		}
	}

	for _, d := range roots {
		if d.Flag(DescIsNodeElement) {
			errs = append(errs, ValidationError{
				Definition: d.FullName,
				Message:    "root definition cannot be the element base",
				Code:       ErrRootIsElement,
			})
		}
	}

	for _, c := range db.Categorize() {
		seen := map[string]string{}
		for _, d := range c.Definitions {
			if prev, ok := seen[d.Name]; ok {
				errs = append(errs, ValidationError{
					Definition: d.FullName,
					Message:    fmt.Sprintf("display name %q already used by %s", d.Name, prev),
					Code:       ErrDuplicateName,
				})
				continue
			}
			seen[d.Name] = d.FullName
		}
	}
	return errs
}
