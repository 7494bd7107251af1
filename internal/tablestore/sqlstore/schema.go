package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/zhmu-100/RationService/internal/tablestore"
)

// lookup columns that reads and deletes filter on
var indexed = map[string][]string{
	tablestore.TableFoodVitamins: {"food_id"},
	tablestore.TableFoodMinerals: {"food_id"},
	tablestore.TableMeals:        {"userid"},
	tablestore.TableMealFoods:    {"meal_id"},
}

// SchemaStatements returns the DDL for every table in tablestore.Schema.
func SchemaStatements(d Dialect) []string {
	var stmts []string
	for _, t := range tablestore.Schema {
		cols := make([]string, 0, len(t.Columns))
		for _, c := range t.Columns {
			typ := "TEXT"
			if t.IsNumeric(c) {
				typ = d.numericType()
			}
			def := c + " " + typ
			if c == t.Key {
				def += " PRIMARY KEY"
			}
			cols = append(cols, def)
		}
		stmts = append(stmts, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", t.Name, strings.Join(cols, ", ")))
		for _, c := range indexed[t.Name] {
			stmts = append(stmts, fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s (%s)", t.Name, c, t.Name, c))
		}
	}
	return stmts
}

// EnsureSchema creates any missing table or index.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range SchemaStatements(s.dialect) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
