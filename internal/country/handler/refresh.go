package handler

import (
	"errors"
	"net/http"
	"strconv"

	"countryfx/internal/domain"

	"github.com/sirupsen/logrus"
)

const maxBatchSize = 1000

type RefreshResponse struct {
	Message    string `json:"message" example:"Countries refreshed successfully"`
	Processed  int    `json:"processed" example:"250"`
	Successful int    `json:"successful" example:"243"`
	Failed     int    `json:"failed" example:"7"`
	Skipped    int    `json:"skipped" example:"0"`
}

// Refresh godoc
// @Summary Refresh countries
// @Description Fetch countries and exchange rates, recompute estimated GDP and upsert everything in one transaction
// @Tags Countries
// @Produce json
// @Param batch_size query int false "Rows per upsert statement"
// @Success 200 {object} RefreshResponse
// @Failure 400 {object} errorResponse
// @Failure 503 {object} errorResponse "external data source unavailable"
// @Failure 500 {object} errorResponse
// @Router /countries/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	batchSize := h.batchSize
	if raw := r.URL.Query().Get("batch_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxBatchSize {
			writeError(w, http.StatusBadRequest, "batch_size must be between 1 and 1000")
			return
		}
		batchSize = n
	}

	summary, err := h.refresher.Run(r.Context(), batchSize)
	if err != nil {
		log := logrus.WithError(err).WithField("handler", "Refresh")
		if errors.Is(err, domain.ErrSourceUnavailable) {
			log.Warn("refresh aborted, source unavailable")
			writeError(w, http.StatusServiceUnavailable, "external data source unavailable")
			return
		}
		log.Error("refresh failed")
		writeError(w, http.StatusInternalServerError, "ups, couldn't refresh countries this time")
		return
	}

	writeJSON(w, http.StatusOK, RefreshResponse{
		Message:    "Countries refreshed successfully",
		Processed:  summary.Processed,
		Successful: summary.Successful,
		Failed:     summary.Failed,
		Skipped:    summary.Skipped,
	})
}
