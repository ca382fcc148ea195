package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"countryfx/internal/domain"
)

type Refresher interface {
	Run(ctx context.Context, batchSize int) (domain.RefreshSummary, error)
}

type StatusReader interface {
	GetMetadata(ctx context.Context) (domain.RefreshMetadata, error)
}

type Handler struct {
	refresher Refresher
	status    StatusReader
	batchSize int
}

func NewCountryHandler(refresher Refresher, status StatusReader, batchSize int) *Handler {
	return &Handler{refresher: refresher, status: status, batchSize: batchSize}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, statusCode int, errorMsg string) {
	writeJSON(w, statusCode, errorResponse{Error: errorMsg})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
