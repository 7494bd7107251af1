package foods

import (
	"fmt"

	"github.com/zhmu-100/RationService/internal/dictionary"
	"github.com/zhmu-100/RationService/internal/model"
	"github.com/zhmu-100/RationService/internal/tablestore"
)

// foodFromRow converts a foods row; vitamins and minerals are left empty.
func foodFromRow(row tablestore.Row) (model.Food, error) {
	f := model.Food{
		ID:          row.String("id"),
		Name:        row.String("name"),
		Description: row.String("description"),
		Vitamins:    []model.Vitamin{},
		Minerals:    []model.Mineral{},
	}
	for col, dst := range map[string]*float64{
		"calories":       &f.Calories,
		"protein":        &f.Protein,
		"carbs":          &f.Carbs,
		"saturated_fats": &f.SaturatedFats,
		"trans_fats":     &f.TransFats,
		"fiber":          &f.Fiber,
		"sugar":          &f.Sugar,
	} {
		v, err := row.Float(col)
		if err != nil {
			return model.Food{}, fmt.Errorf("%s row %q: %w", tablestore.TableFoods, f.ID, err)
		}
		*dst = v
	}
	return f, nil
}

func foodRow(f model.Food) map[string]string {
	return map[string]string{
		"id":             f.ID,
		"name":           f.Name,
		"description":    f.Description,
		"calories":       tablestore.FormatFloat(f.Calories),
		"protein":        tablestore.FormatFloat(f.Protein),
		"carbs":          tablestore.FormatFloat(f.Carbs),
		"saturated_fats": tablestore.FormatFloat(f.SaturatedFats),
		"trans_fats":     tablestore.FormatFloat(f.TransFats),
		"fiber":          tablestore.FormatFloat(f.Fiber),
		"sugar":          tablestore.FormatFloat(f.Sugar),
	}
}

// vitaminsFrom joins food_vitamins rows against the dictionary in arrival
// order. Rows whose vitamin id is not in the dictionary are dropped.
func vitaminsFrom(links []tablestore.Row, dict dictionary.Index) ([]model.Vitamin, error) {
	out := make([]model.Vitamin, 0, len(links))
	for _, l := range links {
		id := l.String("vitamin_id")
		e, ok := dict[id]
		if !ok {
			continue
		}
		amount, err := l.Float("amount")
		if err != nil {
			return nil, fmt.Errorf("%s row %q: %w", tablestore.TableFoodVitamins, id, err)
		}
		out = append(out, model.Vitamin{ID: id, Name: e.Name, Unit: e.Unit, Amount: amount})
	}
	return out, nil
}

func mineralsFrom(links []tablestore.Row, dict dictionary.Index) ([]model.Mineral, error) {
	out := make([]model.Mineral, 0, len(links))
	for _, l := range links {
		id := l.String("mineral_id")
		e, ok := dict[id]
		if !ok {
			continue
		}
		amount, err := l.Float("amount")
		if err != nil {
			return nil, fmt.Errorf("%s row %q: %w", tablestore.TableFoodMinerals, id, err)
		}
		out = append(out, model.Mineral{ID: id, Name: e.Name, Unit: e.Unit, Amount: amount})
	}
	return out, nil
}

func groupBy(rows []tablestore.Row, column string) map[string][]tablestore.Row {
	out := make(map[string][]tablestore.Row)
	for _, r := range rows {
		k := r.String(column)
		out[k] = append(out[k], r)
	}
	return out
}
