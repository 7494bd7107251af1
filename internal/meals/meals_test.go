package meals

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhmu-100/RationService/internal/dictionary"
	"github.com/zhmu-100/RationService/internal/foods"
	"github.com/zhmu-100/RationService/internal/model"
	"github.com/zhmu-100/RationService/internal/tablestore"
	"github.com/zhmu-100/RationService/internal/tablestore/tablestoretest"
)

type fixture struct {
	store     *tablestoretest.Memory
	foodW     *foods.Writer
	assembler *Assembler
	writer    *Writer
}

func setup(t *testing.T) fixture {
	t.Helper()
	m := tablestoretest.NewMemory()
	fa := foods.NewAssembler(m, dictionary.NewResolver(m))
	return fixture{
		store:     m,
		foodW:     foods.NewWriter(m, zerolog.Nop()),
		assembler: NewAssembler(m, fa, zerolog.Nop()),
		writer:    NewWriter(m),
	}
}

func (fx fixture) food(t *testing.T, id, name string) model.Food {
	t.Helper()
	f, err := fx.foodW.CreateFood(context.Background(), model.Food{
		ID: id, Name: name, Calories: 100,
		Vitamins: []model.Vitamin{{ID: "v-" + id, Name: "C", Amount: 1, Unit: "mg"}},
	})
	require.NoError(t, err)
	return *f
}

// countingFoods records how many times GetFood was called.
type countingFoods struct {
	calls int
	known map[string]model.Food
}

func (c *countingFoods) GetFood(_ context.Context, id string) (*model.Food, error) {
	c.calls++
	f, ok := c.known[id]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

var noon = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestCreateThenGet(t *testing.T) {
	ctx := context.Background()
	fx := setup(t)
	rice, tea := fx.food(t, "f1", "Rice"), fx.food(t, "f2", "Tea")

	in := model.Meal{ID: "m1", UserID: "u1", Name: "Lunch", MealType: model.MealTypeLunch, Date: noon, Foods: []model.Food{rice, tea}}
	created, err := fx.writer.CreateMeal(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, in, *created)

	got, err := fx.assembler.GetMeal(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "Lunch", got.Name)
	assert.Equal(t, model.MealTypeLunch, got.MealType)
	assert.True(t, noon.Equal(got.Date))
	require.Len(t, got.Foods, 2)
	assert.ElementsMatch(t, []string{"f1", "f2"}, []string{got.Foods[0].ID, got.Foods[1].ID})
	assert.Len(t, got.Foods[0].Vitamins, 1)
}

func TestGetMeal_ReadsOnlyFoodIDsFromLinks(t *testing.T) {
	ctx := context.Background()
	fx := setup(t)
	_, err := fx.writer.CreateMeal(ctx, model.Meal{ID: "m1", UserID: "u1", Date: noon})
	require.NoError(t, err)

	_, err = fx.assembler.GetMeal(ctx, "m1")
	require.NoError(t, err)

	var found bool
	for _, c := range fx.store.Calls() {
		if c.Op == "read" && c.Table == tablestore.TableMealFoods {
			found = true
			assert.Equal(t, []string{"food_id"}, c.Columns)
			assert.Equal(t, map[string]string{"meal_id": "m1"}, c.Filters)
		}
	}
	assert.True(t, found)
}

func TestGetMeal_NotFound(t *testing.T) {
	fx := setup(t)
	got, err := fx.assembler.GetMeal(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetMeal_DeletedFoodIsDropped(t *testing.T) {
	ctx := context.Background()
	fx := setup(t)
	rice, tea := fx.food(t, "f1", "Rice"), fx.food(t, "f2", "Tea")
	_, err := fx.writer.CreateMeal(ctx, model.Meal{ID: "m1", UserID: "u1", Date: noon, Foods: []model.Food{rice, tea}})
	require.NoError(t, err)

	ok, err := fx.foodW.DeleteFood(ctx, "f1")
	require.NoError(t, err)
	require.True(t, ok)

	got, err := fx.assembler.GetMeal(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, got.Foods, 1)
	assert.Equal(t, "f2", got.Foods[0].ID)
}

func TestListMeals_InclusiveBounds(t *testing.T) {
	ctx := context.Background()
	fx := setup(t)
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)

	for id, d := range map[string]time.Time{
		"at-start":  start,
		"at-end":    end,
		"inside":    noon,
		"too-early": start.Add(-time.Microsecond),
		"too-late":  end.Add(time.Microsecond),
	} {
		_, err := fx.writer.CreateMeal(ctx, model.Meal{ID: id, UserID: "u1", Date: d})
		require.NoError(t, err)
	}
	_, err := fx.writer.CreateMeal(ctx, model.Meal{ID: "other-user", UserID: "u2", Date: noon})
	require.NoError(t, err)

	got, err := fx.assembler.ListMeals(ctx, "u1", start, end)
	require.NoError(t, err)
	var ids []string
	for _, m := range got {
		assert.Equal(t, "u1", m.UserID)
		ids = append(ids, m.ID)
	}
	assert.ElementsMatch(t, []string{"at-start", "at-end", "inside"}, ids)
}

func TestListMeals_ResolvesBeforeFiltering(t *testing.T) {
	ctx := context.Background()
	m := tablestoretest.NewMemory()
	fg := &countingFoods{known: map[string]model.Food{"f1": {ID: "f1"}}}
	a := NewAssembler(m, fg, zerolog.Nop())
	w := NewWriter(m)

	_, err := w.CreateMeal(ctx, model.Meal{ID: "in", UserID: "u1", Date: noon, Foods: []model.Food{{ID: "f1"}}})
	require.NoError(t, err)
	_, err = w.CreateMeal(ctx, model.Meal{ID: "out", UserID: "u1", Date: noon.AddDate(1, 0, 0), Foods: []model.Food{{ID: "f1"}, {ID: "ghost"}}})
	require.NoError(t, err)

	got, err := a.ListMeals(ctx, "u1", noon.Add(-time.Hour), noon.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "in", got[0].ID)
	assert.Equal(t, 3, fg.calls)
}

func TestListMeals_UnknownUser(t *testing.T) {
	fx := setup(t)
	got, err := fx.assembler.ListMeals(context.Background(), "nobody", time.Unix(0, 0), noon)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMealRow_Decoding(t *testing.T) {
	fx := setup(t)
	fx.store.Seed(tablestore.TableMeals,
		tablestore.Row{"id": "legacy", "userid": "u1", "name": "Old", "meal_type": "MEAL_TYPE_BRUNCH", "date": "2023-01-02T08:30"},
		tablestore.Row{"id": "broken", "userid": "u1", "date": "yesterday"},
	)

	got, err := fx.assembler.GetMeal(context.Background(), "legacy")
	require.NoError(t, err)
	assert.Equal(t, model.MealTypeUnspecified, got.MealType)
	assert.Equal(t, time.Date(2023, 1, 2, 8, 30, 0, 0, time.UTC), got.Date)
	assert.NotNil(t, got.Foods)

	_, err = fx.assembler.GetMeal(context.Background(), "broken")
	assert.ErrorContains(t, err, "date")
}

func TestCreateMeal_RowShape(t *testing.T) {
	fx := setup(t)
	_, err := fx.writer.CreateMeal(context.Background(), model.Meal{ID: "m1", UserID: "u1", Name: "Snack", Date: noon.Add(1500 * time.Microsecond)})
	require.NoError(t, err)

	rows := fx.store.Rows(tablestore.TableMeals)
	require.Len(t, rows, 1)
	assert.Equal(t, tablestore.Row{
		"id": "m1", "userid": "u1", "name": "Snack",
		"meal_type": "MEAL_TYPE_UNSPECIFIED", "date": "2024-05-01T12:00:00.0015",
	}, rows[0])
}

func TestCreateMeal_PartialLinksAreNotRolledBack(t *testing.T) {
	ctx := context.Background()
	fx := setup(t)
	fx.store.FailNth("create", tablestore.TableMealFoods, 2, nil)

	_, err := fx.writer.CreateMeal(ctx, model.Meal{ID: "m1", UserID: "u1", Date: noon, Foods: []model.Food{{ID: "a"}, {ID: "b"}, {ID: "c"}}})
	require.Error(t, err)
	assert.True(t, tablestore.IsStoreError(err))
	assert.Len(t, fx.store.Rows(tablestore.TableMeals), 1)
	assert.Len(t, fx.store.Rows(tablestore.TableMealFoods), 1)
	assert.Equal(t, 2, fx.store.CountCalls("create", tablestore.TableMealFoods))
}

func TestCreateMeal_ParentFailure(t *testing.T) {
	fx := setup(t)
	fx.store.FailNth("create", tablestore.TableMeals, 1, nil)
	_, err := fx.writer.CreateMeal(context.Background(), model.Meal{ID: "m1", Foods: []model.Food{{ID: "a"}}})
	require.Error(t, err)
	assert.Zero(t, fx.store.CountCalls("create", tablestore.TableMealFoods))
}

func TestDeleteMeal(t *testing.T) {
	ctx := context.Background()
	fx := setup(t)
	_, err := fx.writer.CreateMeal(ctx, model.Meal{ID: "m1", UserID: "u1", Date: noon, Foods: []model.Food{{ID: "a"}}})
	require.NoError(t, err)

	ok, err := fx.writer.DeleteMeal(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := fx.assembler.GetMeal(ctx, "m1")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Len(t, fx.store.Rows(tablestore.TableMealFoods), 1)

	ok, err = fx.writer.DeleteMeal(ctx, "m1")
	require.NoError(t, err)
	assert.False(t, ok)
}
