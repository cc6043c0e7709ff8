package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/you/go-dish-demand/internal/analysis"
	"github.com/you/go-dish-demand/internal/service"
)

const snapshotHeader = "X-History-Snapshot"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func RootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"Hello": "IA Backend"})
	}
}

// AnalyzeHandler takes a multipart form with the dish label (nombre_plato) and
// a photo (foto) and answers with the catalog record for the label.
func AnalyzeHandler(rec analysis.Recognizer, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", maxBytes))
				return
			}
			writeError(w, http.StatusBadRequest, "expected multipart form with nombre_plato and foto")
			return
		}
		defer r.MultipartForm.RemoveAll()

		label := strings.TrimSpace(r.PostFormValue("nombre_plato"))
		if label == "" {
			writeError(w, http.StatusBadRequest, "nombre_plato is required")
			return
		}
		file, header, err := r.FormFile("foto")
		if err != nil {
			writeError(w, http.StatusBadRequest, "foto is required")
			return
		}
		file.Close()

		dish, err := rec.Recognize(r.Context(), label, analysis.Photo{Filename: header.Filename, Size: header.Size})
		if err != nil {
			slog.Error("recognition failed", "recognizer", rec.Name(), "err", err)
			writeError(w, http.StatusInternalServerError, "recognition failed")
			return
		}
		writeJSON(w, http.StatusOK, dish)
	}
}

func HistoricalSalesHandler(svc *service.DemandService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := svc.History(r.Context())
		if err != nil {
			slog.Error("history unavailable", "err", err)
			writeError(w, http.StatusInternalServerError, "history unavailable")
			return
		}
		w.Header().Set(snapshotHeader, snap.ID)
		writeJSON(w, http.StatusOK, snap.Report)
	}
}

// predictionBody shapes a forecast for clients of the demand endpoint; the
// prediction key carries the target year, e.g. prediction_period_2026.
func predictionBody(res service.ForecastResult) map[string]any {
	body := map[string]any{
		"requested_dish":       res.Dish,
		"historical_data_used": res.HistorySeries,
	}
	body[fmt.Sprintf("prediction_period_%d", res.PredictedYear)] = fmt.Sprintf("Estimated demand of %d units.", res.PredictedUnits)
	return body
}

func dishParam(r *http.Request) string {
	q := r.URL.Query()
	if d := q.Get("plato"); d != "" {
		return d
	}
	return q.Get("dish")
}

func PredictDemandHandler(svc *service.DemandService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dish := dishParam(r)
		if dish == "" {
			writeError(w, http.StatusBadRequest, "plato is required")
			return
		}
		res, snap, err := svc.Predict(r.Context(), dish)
		if snap.ID != "" {
			w.Header().Set(snapshotHeader, snap.ID)
		}
		switch {
		case errors.Is(err, service.ErrNotFound):
			writeError(w, http.StatusNotFound, service.ErrNotFound.Error())
			return
		case err != nil:
			slog.Error("prediction failed", "dish", dish, "err", err)
			writeError(w, http.StatusInternalServerError, "prediction failed")
			return
		}
		writeJSON(w, http.StatusOK, predictionBody(res))
	}
}

type predictAllResponse struct {
	PredictionPeriod int                      `json:"prediction_period"`
	Forecasts        []service.ForecastResult `json:"forecasts"`
}

func PredictAllHandler(svc *service.DemandService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, snap, err := svc.PredictAll(r.Context())
		if err != nil {
			slog.Error("batch prediction failed", "err", err)
			writeError(w, http.StatusInternalServerError, "prediction failed")
			return
		}
		w.Header().Set(snapshotHeader, snap.ID)
		writeJSON(w, http.StatusOK, predictAllResponse{PredictionPeriod: svc.TargetYear(), Forecasts: all})
	}
}
