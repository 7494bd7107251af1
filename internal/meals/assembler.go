// Package meals builds Meal aggregates on top of the food assembler and
// writes meals as a parent row followed by one link row per food.
package meals

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/zhmu-100/RationService/internal/model"
	"github.com/zhmu-100/RationService/internal/tablestore"
)

// FoodGetter resolves a single food; nil means it does not exist.
type FoodGetter interface {
	GetFood(ctx context.Context, id string) (*model.Food, error)
}

// Assembler resolves meal foods one id at a time through FoodGetter.
type Assembler struct {
	store tablestore.Client
	foods FoodGetter
	log   zerolog.Logger
}

// NewAssembler returns an Assembler that resolves meal foods through foods.
func NewAssembler(store tablestore.Client, foods FoodGetter, log zerolog.Logger) *Assembler {
	return &Assembler{store: store, foods: foods, log: log.With().Str("component", "meals.assembler").Logger()}
}

// GetMeal returns the meal with id, or nil when there is no such row.
func (a *Assembler) GetMeal(ctx context.Context, id string) (*model.Meal, error) {
	rows, err := a.store.Read(ctx, tablestore.ReadRequest{
		Table:   tablestore.TableMeals,
		Filters: map[string]string{"id": id},
	})
	if err != nil {
		return nil, fmt.Errorf("read meal %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	meal, err := a.mealFromRow(rows[0])
	if err != nil {
		return nil, err
	}
	if meal.Foods, err = a.resolveFoods(ctx, meal.ID); err != nil {
		return nil, err
	}
	return &meal, nil
}

// ListMeals returns the meals of userID dated within [start, end]. Every
// meal is fully resolved before the date bounds are applied.
func (a *Assembler) ListMeals(ctx context.Context, userID string, start, end time.Time) ([]model.Meal, error) {
	rows, err := a.store.Read(ctx, tablestore.ReadRequest{
		Table:   tablestore.TableMeals,
		Filters: map[string]string{"userid": userID},
	})
	if err != nil {
		return nil, fmt.Errorf("list meals of user %s: %w", userID, err)
	}

	resolved := make([]model.Meal, 0, len(rows))
	for _, row := range rows {
		meal, err := a.mealFromRow(row)
		if err != nil {
			return nil, err
		}
		if meal.Foods, err = a.resolveFoods(ctx, meal.ID); err != nil {
			return nil, err
		}
		resolved = append(resolved, meal)
	}

	out := resolved[:0]
	for _, m := range resolved {
		if m.Date.Before(start) || m.Date.After(end) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// resolveFoods follows meal_foods links; links to missing foods are skipped.
func (a *Assembler) resolveFoods(ctx context.Context, mealID string) ([]model.Food, error) {
	links, err := a.store.Read(ctx, tablestore.ReadRequest{
		Table:   tablestore.TableMealFoods,
		Columns: []string{"food_id"},
		Filters: map[string]string{"meal_id": mealID},
	})
	if err != nil {
		return nil, fmt.Errorf("read foods of meal %s: %w", mealID, err)
	}
	foods := make([]model.Food, 0, len(links))
	for _, l := range links {
		f, err := a.foods.GetFood(ctx, l.String("food_id"))
		if err != nil {
			return nil, err
		}
		if f == nil {
			continue
		}
		foods = append(foods, *f)
	}
	return foods, nil
}

func (a *Assembler) mealFromRow(row tablestore.Row) (model.Meal, error) {
	id := row.String("id")
	date, err := model.ParseTimestamp(row.String("date"))
	if err != nil {
		return model.Meal{}, fmt.Errorf("%s row %q: column date: %w", tablestore.TableMeals, id, err)
	}
	mt, err := model.ParseMealType(row.String("meal_type"))
	if err != nil {
		a.log.Warn().Str("meal_id", id).Str("meal_type", row.String("meal_type")).Msg("unknown meal type, reading as unspecified")
	}
	return model.Meal{
		ID:       id,
		UserID:   row.String("userid"),
		Name:     row.String("name"),
		MealType: mt,
		Date:     date,
		Foods:    []model.Food{},
	}, nil
}
