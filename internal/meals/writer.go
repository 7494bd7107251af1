package meals

import (
	"context"
	"fmt"

	"github.com/zhmu-100/RationService/internal/model"
	"github.com/zhmu-100/RationService/internal/tablestore"
)

// Writer inserts meals and their food links without rollback.
type Writer struct {
	store tablestore.Client
}

// NewWriter returns a Writer over store.
func NewWriter(store tablestore.Client) *Writer {
	return &Writer{store: store}
}

// CreateMeal writes the meals row, then one meal_foods row per food in order,
// stopping at the first failure. It returns a copy of meal.
func (w *Writer) CreateMeal(ctx context.Context, meal model.Meal) (*model.Meal, error) {
	mt := meal.MealType
	if mt == "" {
		mt = model.MealTypeUnspecified
	}
	if err := w.store.Create(ctx, tablestore.TableMeals, map[string]string{
		"id":        meal.ID,
		"userid":    meal.UserID,
		"name":      meal.Name,
		"meal_type": string(mt),
		"date":      model.FormatTimestamp(meal.Date),
	}); err != nil {
		return nil, fmt.Errorf("create meal %s: %w", meal.ID, err)
	}

	for _, f := range meal.Foods {
		if err := w.store.Create(ctx, tablestore.TableMealFoods, map[string]string{
			"meal_id": meal.ID,
			"food_id": f.ID,
		}); err != nil {
			return nil, fmt.Errorf("link food %s to meal %s: %w", f.ID, meal.ID, err)
		}
	}

	out := meal
	return &out, nil
}

// DeleteMeal removes the meals row only; meal_foods rows stay behind.
func (w *Writer) DeleteMeal(ctx context.Context, id string) (bool, error) {
	ok, err := w.store.Delete(ctx, tablestore.TableMeals, "id = ?", []string{id})
	if err != nil {
		return false, fmt.Errorf("delete meal %s: %w", id, err)
	}
	return ok, nil
}
