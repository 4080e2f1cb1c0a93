package editor

import "github.com/ashrindy/dvscenetool/internal/templates"

// MenuItem is one entry of the create menu.
type MenuItem struct {
	Definition *templates.Definition
	Enabled    bool // definitions marked Unknown are listed but disabled
	Tooltip    []string
}

// MenuCategory is a submenu of the create menu. The category with an
// empty name holds the top-level entries.
type MenuCategory struct {
	Name  string
	Items []MenuItem
}

// CreateMenu lists the definitions a user can create, grouped by
// category in database order. The element base definition is left out
// because elements are created from their element definitions.
func (s *Session) CreateMenu() []MenuCategory {
	var out []MenuCategory
	for _, c := range s.DB.Categorize() {
		mc := MenuCategory{Name: c.Name}
		for _, d := range c.Definitions {
			if d.Flag(templates.DescIsNodeElement) {
				continue
			}
			mc.Items = append(mc.Items, MenuItem{
				Definition: d,
				Enabled:    !d.Flag(templates.DescUnknown),
				Tooltip:    d.Tooltip(),
			})
		}
		if len(mc.Items) > 0 {
			out = append(out, mc)
		}
	}
	return out
}
