package tablestore

// Table names of the diet schema.
const (
	TableFoods        = "foods"
	TableVitamins     = "vitamins"
	TableMinerals     = "minerals"
	TableFoodVitamins = "food_vitamins"
	TableFoodMinerals = "food_minerals"
	TableMeals        = "meals"
	TableMealFoods    = "meal_foods"
)

// TableSpec describes a physical table for backends that have to create one.
type TableSpec struct {
	Name    string
	Columns []string
	// Key is the unique column, if any.
	Key string
	// IgnoreDuplicates makes a create on an existing key a successful no-op.
	IgnoreDuplicates bool
	// Numeric columns are stored as floating point by SQL backends.
	Numeric []string
}

// HasColumn reports whether column is part of the table.
func (t TableSpec) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// IsNumeric reports whether column is declared numeric.
func (t TableSpec) IsNumeric(column string) bool {
	for _, c := range t.Numeric {
		if c == column {
			return true
		}
	}
	return false
}

// Schema lists every table the diet service reads or writes.
var Schema = []TableSpec{
	{
		Name:    TableFoods,
		Key:     "id",
		Columns: []string{"id", "name", "description", "calories", "protein", "carbs", "saturated_fats", "trans_fats", "fiber", "sugar"},
		Numeric: []string{"calories", "protein", "carbs", "saturated_fats", "trans_fats", "fiber", "sugar"},
	},
	{Name: TableVitamins, Key: "id", IgnoreDuplicates: true, Columns: []string{"id", "name", "unit"}},
	{Name: TableMinerals, Key: "id", IgnoreDuplicates: true, Columns: []string{"id", "name", "unit"}},
	{Name: TableFoodVitamins, Columns: []string{"food_id", "vitamin_id", "amount"}, Numeric: []string{"amount"}},
	{Name: TableFoodMinerals, Columns: []string{"food_id", "mineral_id", "amount"}, Numeric: []string{"amount"}},
	{Name: TableMeals, Key: "id", Columns: []string{"id", "userid", "name", "meal_type", "date"}},
	{Name: TableMealFoods, Columns: []string{"meal_id", "food_id"}},
}

// LookupTable returns the spec for name.
func LookupTable(name string) (TableSpec, bool) {
	for _, t := range Schema {
		if t.Name == name {
			return t, true
		}
	}
	return TableSpec{}, false
}
