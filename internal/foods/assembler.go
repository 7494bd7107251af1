// Package foods builds Food aggregates from the flat foods, junction and
// dictionary tables, and writes them back as a sequence of independent rows.
package foods

import (
	"context"
	"fmt"
	"strings"

	"github.com/zhmu-100/RationService/internal/dictionary"
	"github.com/zhmu-100/RationService/internal/model"
	"github.com/zhmu-100/RationService/internal/tablestore"
)

// Assembler is read-only and holds no request state.
type Assembler struct {
	store tablestore.Client
	dict  *dictionary.Resolver
}

// NewAssembler returns an Assembler reading from store and enriching
// vitamins and minerals through dict.
func NewAssembler(store tablestore.Client, dict *dictionary.Resolver) *Assembler {
	return &Assembler{store: store, dict: dict}
}

// GetFood returns the food with id, or nil when there is no such row.
func (a *Assembler) GetFood(ctx context.Context, id string) (*model.Food, error) {
	rows, err := a.store.Read(ctx, tablestore.ReadRequest{
		Table:   tablestore.TableFoods,
		Filters: map[string]string{"id": id},
	})
	if err != nil {
		return nil, fmt.Errorf("read food %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	food, err := foodFromRow(rows[0])
	if err != nil {
		return nil, err
	}

	vitLinks, err := a.store.Read(ctx, tablestore.ReadRequest{
		Table:   tablestore.TableFoodVitamins,
		Filters: map[string]string{"food_id": id},
	})
	if err != nil {
		return nil, fmt.Errorf("read vitamins of food %s: %w", id, err)
	}
	minLinks, err := a.store.Read(ctx, tablestore.ReadRequest{
		Table:   tablestore.TableFoodMinerals,
		Filters: map[string]string{"food_id": id},
	})
	if err != nil {
		return nil, fmt.Errorf("read minerals of food %s: %w", id, err)
	}
	dicts, err := a.dict.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	if food.Vitamins, err = vitaminsFrom(vitLinks, dicts.Vitamins); err != nil {
		return nil, err
	}
	if food.Minerals, err = mineralsFrom(minLinks, dicts.Minerals); err != nil {
		return nil, err
	}
	return &food, nil
}

// ListFoods reads every table whole and joins in memory. A non-empty
// nameFilter keeps foods whose name contains it, ignoring case.
func (a *Assembler) ListFoods(ctx context.Context, nameFilter string) ([]model.Food, error) {
	foodRows, err := a.store.Read(ctx, tablestore.ReadRequest{Table: tablestore.TableFoods})
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	vitLinks, err := a.store.Read(ctx, tablestore.ReadRequest{Table: tablestore.TableFoodVitamins})
	if err != nil {
		return nil, fmt.Errorf("list food vitamins: %w", err)
	}
	minLinks, err := a.store.Read(ctx, tablestore.ReadRequest{Table: tablestore.TableFoodMinerals})
	if err != nil {
		return nil, fmt.Errorf("list food minerals: %w", err)
	}
	dicts, err := a.dict.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	vitByFood := groupBy(vitLinks, "food_id")
	minByFood := groupBy(minLinks, "food_id")
	needle := strings.ToLower(nameFilter)

	out := make([]model.Food, 0, len(foodRows))
	for _, row := range foodRows {
		food, err := foodFromRow(row)
		if err != nil {
			return nil, err
		}
		if food.Vitamins, err = vitaminsFrom(vitByFood[food.ID], dicts.Vitamins); err != nil {
			return nil, err
		}
		if food.Minerals, err = mineralsFrom(minByFood[food.ID], dicts.Minerals); err != nil {
			return nil, err
		}
		out = append(out, food)
	}

	if needle == "" {
		return out, nil
	}
	filtered := out[:0]
	for _, f := range out {
		if strings.Contains(strings.ToLower(f.Name), needle) {
			filtered = append(filtered, f)
		}
	}
	return filtered, nil
}
