package foods

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/zhmu-100/RationService/internal/model"
	"github.com/zhmu-100/RationService/internal/tablestore"
)

// Writer persists a Food as independent row inserts. Nothing is rolled back:
// a failure part way leaves the rows written so far in place.
type Writer struct {
	store tablestore.Client
	log   zerolog.Logger
}

// NewWriter returns a Writer over store.
func NewWriter(store tablestore.Client, log zerolog.Logger) *Writer {
	return &Writer{store: store, log: log.With().Str("component", "foods.writer").Logger()}
}

// CreateFood inserts the foods row, then for each vitamin and mineral the
// dictionary row followed by the junction row. It returns a copy of food.
//
// A dictionary insert the store refuses is skipped only when an entry with
// that id already exists. Any other refusal, and every transport error, aborts.
func (w *Writer) CreateFood(ctx context.Context, food model.Food) (*model.Food, error) {
	if err := w.store.Create(ctx, tablestore.TableFoods, foodRow(food)); err != nil {
		return nil, fmt.Errorf("create food %s: %w", food.ID, err)
	}

	for _, v := range food.Vitamins {
		if err := w.ensureEntry(ctx, tablestore.TableVitamins, v.ID, v.Name, v.Unit); err != nil {
			return nil, err
		}
		if err := w.store.Create(ctx, tablestore.TableFoodVitamins, map[string]string{
			"food_id":    food.ID,
			"vitamin_id": v.ID,
			"amount":     tablestore.FormatFloat(v.Amount),
		}); err != nil {
			return nil, fmt.Errorf("link vitamin %s to food %s: %w", v.ID, food.ID, err)
		}
	}

	for _, m := range food.Minerals {
		if err := w.ensureEntry(ctx, tablestore.TableMinerals, m.ID, m.Name, m.Unit); err != nil {
			return nil, err
		}
		if err := w.store.Create(ctx, tablestore.TableFoodMinerals, map[string]string{
			"food_id":    food.ID,
			"mineral_id": m.ID,
			"amount":     tablestore.FormatFloat(m.Amount),
		}); err != nil {
			return nil, fmt.Errorf("link mineral %s to food %s: %w", m.ID, food.ID, err)
		}
	}

	out := food
	return &out, nil
}

func (w *Writer) ensureEntry(ctx context.Context, table, id, name, unit string) error {
	err := w.store.Create(ctx, table, map[string]string{"id": id, "name": name, "unit": unit})
	if err == nil {
		return nil
	}
	if !tablestore.IsStoreError(err) {
		return fmt.Errorf("create %s entry %s: %w", table, id, err)
	}
	rows, rerr := w.store.Read(ctx, tablestore.ReadRequest{
		Table:   table,
		Columns: []string{"id"},
		Filters: map[string]string{"id": id},
	})
	if rerr != nil || len(rows) == 0 {
		w.log.Warn().Err(err).Str("table", table).Str("id", id).Msg("dictionary entry refused")
		return fmt.Errorf("create %s entry %s: %w", table, id, err)
	}
	w.log.Debug().Err(err).Str("table", table).Str("id", id).Msg("dictionary entry already present")
	return nil
}

// DeleteFood removes the foods row only and reports whether the store
// confirmed it. Junction rows stay behind.
func (w *Writer) DeleteFood(ctx context.Context, id string) (bool, error) {
	ok, err := w.store.Delete(ctx, tablestore.TableFoods, "id = ?", []string{id})
	if err != nil {
		return false, fmt.Errorf("delete food %s: %w", id, err)
	}
	return ok, nil
}
