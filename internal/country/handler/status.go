package handler

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

type StatusResponse struct {
	TotalCountries  int        `json:"total_countries" example:"250"`
	LastRefreshedAt *time.Time `json:"last_refreshed_at" example:"2025-01-02T15:04:05Z"`
}

// Status godoc
// @Summary Refresh status
// @Description Number of countries stored by the last refresh and when it committed
// @Tags Countries
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 500 {object} errorResponse
// @Router /status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	meta, err := h.status.GetMetadata(r.Context())
	if err != nil {
		msg := "ups, couldn't get refresh status this time"
		logrus.WithError(err).WithField("handler", "Status").Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{
		TotalCountries:  meta.TotalCountries,
		LastRefreshedAt: meta.LastRefreshedAt,
	})
}
