package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/zhmu-100/RationService/internal/activity"
	"github.com/zhmu-100/RationService/internal/model"
)

// FoodGetter resolves food references of a new meal.
type FoodGetter interface {
	GetFood(ctx context.Context, id string) (*model.Food, error)
}

// MealReader is satisfied by *meals.Assembler.
type MealReader interface {
	GetMeal(ctx context.Context, id string) (*model.Meal, error)
	ListMeals(ctx context.Context, userID string, start, end time.Time) ([]model.Meal, error)
}

// MealWriter is satisfied by *meals.Writer.
type MealWriter interface {
	CreateMeal(ctx context.Context, meal model.Meal) (*model.Meal, error)
	DeleteMeal(ctx context.Context, id string) (bool, error)
}

// FoodRef names an existing food by id.
type FoodRef struct {
	ID string `json:"id" validate:"required"`
}

// CreateMealRequest is the input of MealService.CreateMeal. A nil Date means now.
type CreateMealRequest struct {
	UserID   string         `json:"userId" validate:"required"`
	Name     string         `json:"name" validate:"required"`
	MealType model.MealType `json:"mealType"`
	Foods    []FoodRef      `json:"foods" validate:"dive"`
	Date     *time.Time     `json:"date,omitempty"`
}

// MealService assigns ids and dates to new meals and resolves their food
// references.
type MealService struct {
	foods  FoodGetter
	reader MealReader
	writer MealWriter
	settings
}

// NewMealService returns a MealService. foods resolves the food references
// of new meals.
func NewMealService(foods FoodGetter, r MealReader, w MealWriter, opts ...Option) *MealService {
	return &MealService{foods: foods, reader: r, writer: w, settings: newSettings(opts)}
}

// CreateMeal resolves req.Foods, assigns an id and date, and stores the meal.
// References to unknown foods are dropped.
func (s *MealService) CreateMeal(ctx context.Context, req CreateMealRequest) (*model.Meal, error) {
	s.rec.Activity(ctx, "creating meal", activity.Fields{
		"userId":     req.UserID,
		"name":       req.Name,
		"mealType":   string(req.MealType),
		"foodsCount": strconv.Itoa(len(req.Foods)),
	})
	if req.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", model.ErrValidation)
	}
	mt, err := model.ParseMealType(string(req.MealType))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrValidation, err)
	}

	foods := make([]model.Food, 0, len(req.Foods))
	for _, ref := range req.Foods {
		f, err := s.foods.GetFood(ctx, ref.ID)
		if err != nil {
			s.rec.Error(ctx, fmt.Sprintf("failed to resolve meal food: userId=%s, foodId=%s", req.UserID, ref.ID), err, nil)
			return nil, err
		}
		if f == nil {
			s.rec.Activity(ctx, "meal food not found, skipping", activity.Fields{"userId": req.UserID, "foodId": ref.ID})
			continue
		}
		foods = append(foods, *f)
	}

	meal := model.Meal{
		ID:       s.newID(),
		UserID:   req.UserID,
		Name:     req.Name,
		MealType: mt,
		Foods:    foods,
	}
	if req.Date != nil {
		meal.Date = req.Date.UTC()
	} else {
		meal.Date = s.now().UTC()
	}
	s.rec.Activity(ctx, "generated id and date for new meal", activity.Fields{
		"userId": meal.UserID,
		"newId":  meal.ID,
		"date":   model.FormatTimestamp(meal.Date),
	})

	created, err := s.writer.CreateMeal(ctx, meal)
	if err != nil {
		s.rec.Error(ctx, fmt.Sprintf("failed to create meal: userId=%s, name=%s", req.UserID, req.Name), err, nil)
		return nil, err
	}
	s.rec.Activity(ctx, "meal created", activity.Fields{"id": created.ID, "userId": created.UserID, "name": created.Name})
	return created, nil
}

// GetMeal returns nil, nil when id is unknown.
func (s *MealService) GetMeal(ctx context.Context, id string) (*model.Meal, error) {
	s.rec.Activity(ctx, "getting meal by id", activity.Fields{"id": id})
	meal, err := s.reader.GetMeal(ctx, id)
	if err != nil {
		s.rec.Error(ctx, fmt.Sprintf("failed to get meal: id=%s", id), err, nil)
		return nil, err
	}
	if meal == nil {
		s.rec.Activity(ctx, "meal not found", activity.Fields{"id": id})
		return nil, nil
	}
	s.rec.Activity(ctx, "meal fetched", activity.Fields{
		"id":         id,
		"userId":     meal.UserID,
		"name":       meal.Name,
		"foodsCount": strconv.Itoa(len(meal.Foods)),
	})
	return meal, nil
}

// ListMeals returns the meals of userID dated within [start, end].
func (s *MealService) ListMeals(ctx context.Context, userID string, start, end time.Time) ([]model.Meal, error) {
	fields := activity.Fields{
		"userId": userID,
		"start":  model.FormatTimestamp(start),
		"end":    model.FormatTimestamp(end),
	}
	s.rec.Activity(ctx, "listing meals", fields)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", model.ErrValidation)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s is before start %s", model.ErrValidation, fields["end"], fields["start"])
	}
	list, err := s.reader.ListMeals(ctx, userID, start, end)
	if err != nil {
		s.rec.Error(ctx, fmt.Sprintf("failed to list meals: userId=%s, start=%s, end=%s", userID, fields["start"], fields["end"]), err, nil)
		return nil, err
	}
	s.rec.Activity(ctx, "meals listed", activity.Fields{"userId": userID, "count": strconv.Itoa(len(list))})
	return list, nil
}

// DeleteMeal removes the meal row and reports whether the store confirmed it.
func (s *MealService) DeleteMeal(ctx context.Context, id string) (bool, error) {
	s.rec.Activity(ctx, "deleting meal", activity.Fields{"id": id})
	ok, err := s.writer.DeleteMeal(ctx, id)
	if err != nil {
		s.rec.Error(ctx, fmt.Sprintf("failed to delete meal: id=%s", id), err, nil)
		return false, err
	}
	if ok {
		s.rec.Activity(ctx, "meal deleted", activity.Fields{"id": id})
	} else {
		s.rec.Activity(ctx, "meal not deleted", activity.Fields{"id": id})
	}
	return ok, nil
}
