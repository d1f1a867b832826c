package types

import (
	"database/sql/driver"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// MenuOption is an optional add-on a guest can pick for a menu item.
type MenuOption struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// MenuOptions is the JSONB array stored on menu item rows.
type MenuOptions []MenuOption

// Value marshals the options into JSON.
func (m MenuOptions) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	return jsonValue(m)
}

// Scan decodes the JSONB array.
func (m *MenuOptions) Scan(value interface{}) error {
	if value == nil {
		*m = MenuOptions{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var opts MenuOptions
	if err := json.Unmarshal(raw, &opts); err != nil {
		return err
	}
	*m = opts
	return nil
}

// Find looks an option up by name, ignoring case and surrounding spaces.
func (m MenuOptions) Find(name string) (MenuOption, bool) {
	needle := strings.TrimSpace(name)
	for _, opt := range m {
		if strings.EqualFold(strings.TrimSpace(opt.Name), needle) {
			return opt, true
		}
	}
	return MenuOption{}, false
}
