package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/zhmu-100/RationService/internal/api/recovery"
)

// Deps are the collaborators the diet router needs. RateLimit is optional.
type Deps struct {
	Foods     FoodService
	Meals     MealService
	Health    *HealthHandler
	RateLimit func(http.Handler) http.Handler
	Log       zerolog.Logger
}

// NewRouter wires the diet routes, health and metrics.
func NewRouter(d Deps) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware(d.Log))

	if d.Health != nil {
		root.HandleFunc("/api/health", d.Health.CheckHealth).Methods(http.MethodGet)
	}
	root.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	diet := root.PathPrefix("/diet").Subrouter()
	if d.RateLimit != nil {
		diet.Use(d.RateLimit)
	}

	food := NewFoodHandler(d.Foods)
	diet.HandleFunc("/foods", food.CreateFood).Methods(http.MethodPost)
	diet.HandleFunc("/foods", food.ListFoods).Methods(http.MethodGet)
	diet.HandleFunc("/foods/{id}", food.GetFood).Methods(http.MethodGet)
	diet.HandleFunc("/foods/{id}", food.DeleteFood).Methods(http.MethodDelete)

	meal := NewMealHandler(d.Meals)
	diet.HandleFunc("/meals", meal.CreateMeal).Methods(http.MethodPost)
	diet.HandleFunc("/meals", meal.ListMeals).Methods(http.MethodGet)
	diet.HandleFunc("/meals/{id}", meal.GetMeal).Methods(http.MethodGet)
	diet.HandleFunc("/meals/{id}", meal.DeleteMeal).Methods(http.MethodDelete)

	return root
}
