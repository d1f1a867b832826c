// Package models holds the gorm row types for every persisted aggregate.
package models

// All lists every model, used for AutoMigrate in local sqlite runs and tests.
func All() []any {
	return []any{
		&RestaurantTable{},
		&MenuItem{},
		&Order{},
		&TableSession{},
		&Feedback{},
	}
}
