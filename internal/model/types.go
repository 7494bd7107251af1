package model

import (
	"fmt"
	"strings"
	"time"
)

// Vitamin is a dictionary entry attached to a food with a per-food amount.
type Vitamin struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// Mineral is a dictionary entry attached to a food with a per-food amount.
type Mineral struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// Food is the nutritional record with its resolved vitamins and minerals.
// Numeric fields are stored as given; no unit conversion happens anywhere.
type Food struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Calories      float64   `json:"calories"`
	Protein       float64   `json:"protein"`
	Carbs         float64   `json:"carbs"`
	SaturatedFats float64   `json:"saturatedFats"`
	TransFats     float64   `json:"transFats"`
	Fiber         float64   `json:"fiber"`
	Sugar         float64   `json:"sugar"`
	Vitamins      []Vitamin `json:"vitamins"`
	Minerals      []Mineral `json:"minerals"`
}

// MealType classifies an eating event.
type MealType string

const (
	MealTypeUnspecified MealType = "MEAL_TYPE_UNSPECIFIED"
	MealTypeBreakfast   MealType = "MEAL_TYPE_BREAKFAST"
	MealTypeLunch       MealType = "MEAL_TYPE_LUNCH"
	MealTypeDinner      MealType = "MEAL_TYPE_DINNER"
	MealTypeSnack       MealType = "MEAL_TYPE_SNACK"
)

// ParseMealType maps a stored or requested value onto a MealType.
// The empty string is treated as unspecified.
func ParseMealType(s string) (MealType, error) {
	switch mt := MealType(strings.ToUpper(strings.TrimSpace(s))); mt {
	case "":
		return MealTypeUnspecified, nil
	case MealTypeUnspecified, MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack:
		return mt, nil
	default:
		return MealTypeUnspecified, fmt.Errorf("unknown meal type %q", s)
	}
}

// Meal is a named eating event of a user with its fully resolved foods.
type Meal struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	Name     string    `json:"name"`
	MealType MealType  `json:"mealType"`
	Date     time.Time `json:"date"`
	Foods    []Food    `json:"foods"`
}
