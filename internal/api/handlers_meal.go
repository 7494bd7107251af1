package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/zhmu-100/RationService/internal/api/respond"
	"github.com/zhmu-100/RationService/internal/api/validate"
	"github.com/zhmu-100/RationService/internal/model"
	"github.com/zhmu-100/RationService/internal/services"
)

// Bounds used when a meal listing omits start or end.
const (
	DefaultListStart = "1970-01-01T00:00"
	DefaultListEnd   = "3000-01-01T00:00"
)

// MealService is implemented by *services.MealService.
type MealService interface {
	CreateMeal(ctx context.Context, req services.CreateMealRequest) (*model.Meal, error)
	GetMeal(ctx context.Context, id string) (*model.Meal, error)
	ListMeals(ctx context.Context, userID string, start, end time.Time) ([]model.Meal, error)
	DeleteMeal(ctx context.Context, id string) (bool, error)
}

// MealHandler serves the /diet/meals routes.
type MealHandler struct {
	svc MealService
}

// NewMealHandler returns a MealHandler backed by svc.
func NewMealHandler(svc MealService) *MealHandler {
	return &MealHandler{svc: svc}
}

type createMealRequest struct {
	UserID   string             `json:"userId" validate:"required"`
	Name     string             `json:"name" validate:"required,max=200"`
	MealType string             `json:"mealType" validate:"omitempty,oneof=MEAL_TYPE_UNSPECIFIED MEAL_TYPE_BREAKFAST MEAL_TYPE_LUNCH MEAL_TYPE_DINNER MEAL_TYPE_SNACK"`
	Foods    []services.FoodRef `json:"foods" validate:"dive"`
	// Date accepts the zone-less forms, minute precision included, and RFC 3339.
	Date string `json:"date"`
}

// CreateMeal POST /diet/meals
func (h *MealHandler) CreateMeal(w http.ResponseWriter, r *http.Request) {
	var req createMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	in := services.CreateMealRequest{
		UserID:   req.UserID,
		Name:     req.Name,
		MealType: model.MealType(req.MealType),
		Foods:    req.Foods,
	}
	if req.Date != "" {
		d, err := model.ParseTimestamp(req.Date)
		if err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
		in.Date = &d
	}
	created, err := h.svc.CreateMeal(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, created)
}

// GetMeal GET /diet/meals/{id}
func (h *MealHandler) GetMeal(w http.ResponseWriter, r *http.Request) {
	meal, err := h.svc.GetMeal(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if meal == nil {
		respond.WriteNotFound(w, "Meal not found")
		return
	}
	respond.WriteJSON(w, http.StatusOK, meal)
}

// ListMeals GET /diet/meals?user_id=&start=&end=
func (h *MealHandler) ListMeals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := q.Get("user_id")
	if userID == "" {
		respond.WriteBadRequest(w, "user_id required")
		return
	}
	start, err := queryTime(q.Get("start"), DefaultListStart)
	if err != nil {
		respond.WriteBadRequest(w, "invalid start: "+err.Error())
		return
	}
	end, err := queryTime(q.Get("end"), DefaultListEnd)
	if err != nil {
		respond.WriteBadRequest(w, "invalid end: "+err.Error())
		return
	}
	list, err := h.svc.ListMeals(r.Context(), userID, start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, list)
}

// DeleteMeal DELETE /diet/meals/{id}
func (h *MealHandler) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	ok, err := h.svc.DeleteMeal(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !ok {
		respond.WriteNotFound(w, "Meal not found")
		return
	}
	respond.WriteSuccess(w)
}

func queryTime(v, fallback string) (time.Time, error) {
	if v == "" {
		v = fallback
	}
	return model.ParseTimestamp(v)
}
