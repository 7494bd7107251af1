package tablestoretest

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/zhmu-100/RationService/internal/tablestore"
)

// Run exercises a minimal compliance suite against a tablestore.Client.
// Implementations should provide a clean, isolated store from makeClient.
func Run(t *testing.T, makeClient func(t *testing.T) tablestore.Client) {
	t.Helper()

	c := makeClient(t)
	ctx := context.Background()

	foodID := "f-" + uuid.New().String()
	food := map[string]string{
		"id": foodID, "name": "Rice", "description": "white", "calories": "130",
		"protein": "2.7", "carbs": "28", "saturated_fats": "0.1", "trans_fats": "0",
		"fiber": "0.4", "sugar": "0.1",
	}
	if err := c.Create(ctx, tablestore.TableFoods, food); err != nil {
		t.Fatalf("Create food: %v", err)
	}

	rows, err := c.Read(ctx, tablestore.ReadRequest{Table: tablestore.TableFoods, Filters: map[string]string{"id": foodID}})
	if err != nil || len(rows) != 1 {
		t.Fatalf("Read food by id: n=%d err=%v", len(rows), err)
	}
	if rows[0].String("name") != "Rice" {
		t.Fatalf("Read food: unexpected name %q", rows[0].String("name"))
	}
	if cal, err := rows[0].Float("calories"); err != nil || cal != 130 {
		t.Fatalf("Read food: calories=%v err=%v", cal, err)
	}
	if sf, err := rows[0].Float("saturated_fats"); err != nil || sf != 0.1 {
		t.Fatalf("Read food: saturated_fats=%v err=%v", sf, err)
	}

	// Projection
	rows, err = c.Read(ctx, tablestore.ReadRequest{Table: tablestore.TableFoods, Columns: []string{"id"}, Filters: map[string]string{"id": foodID}})
	if err != nil || len(rows) != 1 || rows[0].String("id") != foodID {
		t.Fatalf("Read projected: rows=%v err=%v", rows, err)
	}
	if _, ok := rows[0]["name"]; ok {
		t.Fatalf("Read projected: unexpected column name in %v", rows[0])
	}

	// Unfiltered read returns the whole table
	all, err := c.Read(ctx, tablestore.ReadRequest{Table: tablestore.TableFoods})
	if err != nil || !containsID(all, foodID) {
		t.Fatalf("Read all: n=%d err=%v", len(all), err)
	}

	// No match is an empty result, not an error
	none, err := c.Read(ctx, tablestore.ReadRequest{Table: tablestore.TableFoods, Filters: map[string]string{"id": "missing-" + foodID}})
	if err != nil || len(none) != 0 {
		t.Fatalf("Read missing: n=%d err=%v", len(none), err)
	}

	// Duplicate parent key is a store failure
	if err := c.Create(ctx, tablestore.TableFoods, food); err == nil || !tablestore.IsStoreError(err) {
		t.Fatalf("Create duplicate food: expected store error, got %v", err)
	}

	// Dictionary rows are upsert-or-ignore
	vitID := "v-" + uuid.New().String()
	for i := 0; i < 2; i++ {
		if err := c.Create(ctx, tablestore.TableVitamins, map[string]string{"id": vitID, "name": "B1", "unit": "mg"}); err != nil {
			t.Fatalf("Create vitamin #%d: %v", i+1, err)
		}
	}
	vits, err := c.Read(ctx, tablestore.ReadRequest{Table: tablestore.TableVitamins, Filters: map[string]string{"id": vitID}})
	if err != nil || len(vits) != 1 {
		t.Fatalf("Read vitamin: n=%d err=%v", len(vits), err)
	}

	// Junction rows carry their own amount and allow repeats of the dictionary id
	for _, amt := range []string{"0.1", "0.3"} {
		if err := c.Create(ctx, tablestore.TableFoodVitamins, map[string]string{"food_id": foodID, "vitamin_id": vitID, "amount": amt}); err != nil {
			t.Fatalf("Create food_vitamins %s: %v", amt, err)
		}
	}
	links, err := c.Read(ctx, tablestore.ReadRequest{Table: tablestore.TableFoodVitamins, Filters: map[string]string{"food_id": foodID, "vitamin_id": vitID}})
	if err != nil || len(links) != 2 {
		t.Fatalf("Read food_vitamins: n=%d err=%v", len(links), err)
	}

	// Delete by condition
	ok, err := c.Delete(ctx, tablestore.TableFoods, "id = ?", []string{foodID})
	if err != nil || !ok {
		t.Fatalf("Delete food: ok=%v err=%v", ok, err)
	}
	rows, err = c.Read(ctx, tablestore.ReadRequest{Table: tablestore.TableFoods, Filters: map[string]string{"id": foodID}})
	if err != nil || len(rows) != 0 {
		t.Fatalf("Read after delete: n=%d err=%v", len(rows), err)
	}
	// Junction rows are untouched by a parent delete
	links, err = c.Read(ctx, tablestore.ReadRequest{Table: tablestore.TableFoodVitamins, Filters: map[string]string{"food_id": foodID}})
	if err != nil || len(links) != 2 {
		t.Fatalf("Read orphaned food_vitamins: n=%d err=%v", len(links), err)
	}

	// Deleting nothing is not an error
	if _, err := c.Delete(ctx, tablestore.TableFoods, "id = ?", []string{foodID}); err != nil {
		t.Fatalf("Delete missing food: %v", err)
	}

	// Range conditions on delete
	mealID := "m-" + uuid.New().String()
	if err := c.Create(ctx, tablestore.TableMeals, map[string]string{"id": mealID, "userid": "u1", "name": "Lunch", "meal_type": "MEAL_TYPE_LUNCH", "date": "2024-05-01T12:00:00"}); err != nil {
		t.Fatalf("Create meal: %v", err)
	}
	ok, err = c.Delete(ctx, tablestore.TableMeals, "id = ? AND date >= ?", []string{mealID, "2024-01-01T00:00:00"})
	if err != nil || !ok {
		t.Fatalf("Delete meal by range: ok=%v err=%v", ok, err)
	}
}

func containsID(rows []tablestore.Row, id string) bool {
	for _, r := range rows {
		if r.String("id") == id {
			return true
		}
	}
	return false
}
