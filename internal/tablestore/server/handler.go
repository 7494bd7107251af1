// Package server serves the table service wire protocol over any
// tablestore.Client, so a local sqlite or postgres database can stand in for
// the remote table service.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/zhmu-100/RationService/internal/tablestore"
)

const maxBodyBytes = 1 << 20

// GatewayPrefix is the path the API gateway mounts the table service under.
const GatewayPrefix = "/api/db"

type handler struct {
	store tablestore.Client
	log   zerolog.Logger
}

// NewRouter registers /create, /read and /delete at the root and under
// GatewayPrefix.
func NewRouter(store tablestore.Client, log zerolog.Logger) *mux.Router {
	h := &handler{store: store, log: log}
	r := mux.NewRouter()
	for _, sub := range []*mux.Router{r, r.PathPrefix(GatewayPrefix).Subrouter()} {
		sub.HandleFunc("/create", h.create).Methods(http.MethodPost)
		sub.HandleFunc("/read", h.read).Methods(http.MethodPost)
		sub.HandleFunc("/delete", h.delete).Methods(http.MethodDelete, http.MethodPost)
	}
	return r
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	var req tablestore.CreateRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.store.Create(r.Context(), req.Table, req.Data); err != nil {
		h.log.Warn().Err(err).Str("table", req.Table).Msg("create failed")
		status := http.StatusInternalServerError
		if tablestore.IsStoreError(err) {
			status = http.StatusConflict
		}
		writeJSON(w, status, tablestore.Failed(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, tablestore.Succeeded())
}

func (h *handler) read(w http.ResponseWriter, r *http.Request) {
	var req tablestore.ReadRequest
	if !decode(w, r, &req) {
		return
	}
	rows, err := h.store.Read(r.Context(), req)
	if err != nil {
		h.log.Warn().Err(err).Str("table", req.Table).Msg("read failed")
		writeJSON(w, http.StatusInternalServerError, tablestore.Failed(err.Error()))
		return
	}
	if rows == nil {
		rows = []tablestore.Row{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	var req tablestore.DeleteRequest
	if !decode(w, r, &req) {
		return
	}
	ok, err := h.store.Delete(r.Context(), req.Table, req.Condition, req.ConditionParams)
	if err != nil {
		h.log.Warn().Err(err).Str("table", req.Table).Msg("delete failed")
		writeJSON(w, http.StatusInternalServerError, tablestore.Failed(err.Error()))
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, tablestore.Failed("no rows deleted"))
		return
	}
	writeJSON(w, http.StatusOK, tablestore.Succeeded())
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, tablestore.Failed("invalid JSON body: "+err.Error()))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
