// Package services holds the diet use cases: id and date assignment, food
// reference resolution and activity recording around the composition layer.
package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/zhmu-100/RationService/internal/activity"
	"github.com/zhmu-100/RationService/internal/model"
)

// FoodReader is satisfied by *foods.Assembler.
type FoodReader interface {
	GetFood(ctx context.Context, id string) (*model.Food, error)
	ListFoods(ctx context.Context, nameFilter string) ([]model.Food, error)
}

// FoodWriter is satisfied by *foods.Writer.
type FoodWriter interface {
	CreateFood(ctx context.Context, food model.Food) (*model.Food, error)
	DeleteFood(ctx context.Context, id string) (bool, error)
}

// FoodService assigns ids to new foods and records activity around every call.
type FoodService struct {
	reader FoodReader
	writer FoodWriter
	settings
}

// NewFoodService returns a FoodService over r and w.
func NewFoodService(r FoodReader, w FoodWriter, opts ...Option) *FoodService {
	return &FoodService{reader: r, writer: w, settings: newSettings(opts)}
}

// CreateFood stores food under a freshly generated id. Any id on the input is
// replaced.
func (s *FoodService) CreateFood(ctx context.Context, food model.Food) (*model.Food, error) {
	s.rec.Activity(ctx, "creating food", activity.Fields{
		"name":          food.Name,
		"vitaminsCount": strconv.Itoa(len(food.Vitamins)),
		"mineralsCount": strconv.Itoa(len(food.Minerals)),
	})
	if food.Name == "" {
		return nil, fmt.Errorf("%w: food name is required", model.ErrValidation)
	}
	food.ID = s.newID()
	s.rec.Activity(ctx, "generated id for new food", activity.Fields{"id": food.ID, "name": food.Name})

	created, err := s.writer.CreateFood(ctx, food)
	if err != nil {
		s.rec.Error(ctx, fmt.Sprintf("failed to create food: name=%s", food.Name), err, nil)
		return nil, err
	}
	s.rec.Activity(ctx, "food created", activity.Fields{"id": created.ID, "name": created.Name})
	return created, nil
}

// GetFood returns nil, nil when id is unknown.
func (s *FoodService) GetFood(ctx context.Context, id string) (*model.Food, error) {
	s.rec.Activity(ctx, "getting food by id", activity.Fields{"id": id})
	food, err := s.reader.GetFood(ctx, id)
	if err != nil {
		s.rec.Error(ctx, fmt.Sprintf("failed to get food: id=%s", id), err, nil)
		return nil, err
	}
	if food == nil {
		s.rec.Activity(ctx, "food not found", activity.Fields{"id": id})
		return nil, nil
	}
	s.rec.Activity(ctx, "food fetched", activity.Fields{"id": id, "name": food.Name})
	return food, nil
}

// ListFoods returns every food, or only those whose name contains nameFilter,
// ignoring case.
func (s *FoodService) ListFoods(ctx context.Context, nameFilter string) ([]model.Food, error) {
	s.rec.Activity(ctx, "listing foods", activity.Fields{"nameFilter": nameFilter})
	list, err := s.reader.ListFoods(ctx, nameFilter)
	if err != nil {
		s.rec.Error(ctx, fmt.Sprintf("failed to list foods: nameFilter=%s", nameFilter), err, nil)
		return nil, err
	}
	s.rec.Activity(ctx, "foods listed", activity.Fields{"count": strconv.Itoa(len(list))})
	return list, nil
}

// DeleteFood reports whether a food row was removed. Junction rows stay.
func (s *FoodService) DeleteFood(ctx context.Context, id string) (bool, error) {
	s.rec.Activity(ctx, "deleting food", activity.Fields{"id": id})
	ok, err := s.writer.DeleteFood(ctx, id)
	if err != nil {
		s.rec.Error(ctx, fmt.Sprintf("failed to delete food: id=%s", id), err, nil)
		return false, err
	}
	if ok {
		s.rec.Activity(ctx, "food deleted", activity.Fields{"id": id})
	} else {
		s.rec.Activity(ctx, "food not deleted", activity.Fields{"id": id})
	}
	return ok, nil
}
