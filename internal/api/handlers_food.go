package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/zhmu-100/RationService/internal/api/respond"
	"github.com/zhmu-100/RationService/internal/api/validate"
	"github.com/zhmu-100/RationService/internal/model"
)

// FoodService is implemented by *services.FoodService.
type FoodService interface {
	CreateFood(ctx context.Context, food model.Food) (*model.Food, error)
	GetFood(ctx context.Context, id string) (*model.Food, error)
	ListFoods(ctx context.Context, nameFilter string) ([]model.Food, error)
	DeleteFood(ctx context.Context, id string) (bool, error)
}

// FoodHandler serves the /diet/foods routes.
type FoodHandler struct {
	svc FoodService
}

// NewFoodHandler returns a FoodHandler backed by svc.
func NewFoodHandler(svc FoodService) *FoodHandler {
	return &FoodHandler{svc: svc}
}

type nutrientRequest struct {
	ID     string  `json:"id" validate:"required"`
	Name   string  `json:"name" validate:"required"`
	Amount float64 `json:"amount" validate:"gte=0"`
	Unit   string  `json:"unit"`
}

type createFoodRequest struct {
	Name          string            `json:"name" validate:"required,max=200"`
	Description   string            `json:"description"`
	Calories      float64           `json:"calories" validate:"gte=0"`
	Protein       float64           `json:"protein" validate:"gte=0"`
	Carbs         float64           `json:"carbs" validate:"gte=0"`
	SaturatedFats float64           `json:"saturatedFats" validate:"gte=0"`
	TransFats     float64           `json:"transFats" validate:"gte=0"`
	Fiber         float64           `json:"fiber" validate:"gte=0"`
	Sugar         float64           `json:"sugar" validate:"gte=0"`
	Vitamins      []nutrientRequest `json:"vitamins" validate:"dive"`
	Minerals      []nutrientRequest `json:"minerals" validate:"dive"`
}

func (r createFoodRequest) toModel() model.Food {
	f := model.Food{
		Name:          r.Name,
		Description:   r.Description,
		Calories:      r.Calories,
		Protein:       r.Protein,
		Carbs:         r.Carbs,
		SaturatedFats: r.SaturatedFats,
		TransFats:     r.TransFats,
		Fiber:         r.Fiber,
		Sugar:         r.Sugar,
		Vitamins:      make([]model.Vitamin, 0, len(r.Vitamins)),
		Minerals:      make([]model.Mineral, 0, len(r.Minerals)),
	}
	for _, v := range r.Vitamins {
		f.Vitamins = append(f.Vitamins, model.Vitamin{ID: v.ID, Name: v.Name, Amount: v.Amount, Unit: v.Unit})
	}
	for _, m := range r.Minerals {
		f.Minerals = append(f.Minerals, model.Mineral{ID: m.ID, Name: m.Name, Amount: m.Amount, Unit: m.Unit})
	}
	return f
}

// CreateFood POST /diet/foods
func (h *FoodHandler) CreateFood(w http.ResponseWriter, r *http.Request) {
	var req createFoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	created, err := h.svc.CreateFood(r.Context(), req.toModel())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, created)
}

// GetFood GET /diet/foods/{id}
func (h *FoodHandler) GetFood(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	food, err := h.svc.GetFood(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if food == nil {
		respond.WriteNotFound(w, "Food not found")
		return
	}
	respond.WriteJSON(w, http.StatusOK, food)
}

// ListFoods GET /diet/foods?name_filter=
func (h *FoodHandler) ListFoods(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListFoods(r.Context(), r.URL.Query().Get("name_filter"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, list)
}

// DeleteFood DELETE /diet/foods/{id}
func (h *FoodHandler) DeleteFood(w http.ResponseWriter, r *http.Request) {
	ok, err := h.svc.DeleteFood(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !ok {
		respond.WriteNotFound(w, "Food not found")
		return
	}
	respond.WriteSuccess(w)
}

// writeServiceError maps validation failures to 400 and everything else to 500.
func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, model.ErrValidation) {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	respond.WriteInternalError(w, err.Error())
}
