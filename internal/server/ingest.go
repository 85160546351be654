package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/mlieberg/eventledger/pkg/errors"
	"github.com/mlieberg/eventledger/pkg/track"
)

// MetricsCollector defines the metrics operations the ingest endpoint
// reports through.
type MetricsCollector interface {
	IncIngestRequests(status int)
	ObserveIngestDuration(category, event string, seconds float64)
	IncEventsTracked(category, event string)
	IncTrackErrors(kind string)
}

// TrackResponse is the ingest endpoint's success body.
type TrackResponse struct {
	Status   string `json:"status"`
	Category string `json:"category"`
	Event    string `json:"event"`
}

// ErrorResponse is the ingest endpoint's failure body. Kind carries the
// machine-readable failure taxonomy so callers need not parse messages.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// TrackHandler accepts POST /v1/track/{category}/{event} with an optional
// JSON object body of explicit properties, fires the event through the
// tracker and maps the failure taxonomy onto HTTP status codes: unknown
// names are 404, retired events 410, property failures 400 and sink
// failures 502.
func TrackHandler(tracker *track.Tracker, metrics MetricsCollector, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		category := r.PathValue("category")
		name := r.PathValue("event")

		explicit, err := decodeProperties(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", err, metrics, logger)
			return
		}

		err = tracker.Event(r.Context(), category, name, explicit)
		metrics.ObserveIngestDuration(category, name, time.Since(start).Seconds())
		if err != nil {
			kind := errorKind(err)
			metrics.IncTrackErrors(kind)
			writeError(w, statusFor(err), kind, err, metrics, logger)
			return
		}

		metrics.IncEventsTracked(category, name)
		metrics.IncIngestRequests(http.StatusAccepted)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		if err := json.NewEncoder(w).Encode(TrackResponse{
			Status:   "accepted",
			Category: category,
			Event:    name,
		}); err != nil {
			logger.Error("failed to encode track response", "error", err)
		}
	}
}

func decodeProperties(body io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var explicit map[string]any
	if err := json.Unmarshal(data, &explicit); err != nil {
		return nil, err
	}
	return explicit, nil
}

func writeError(w http.ResponseWriter, status int, kind string, err error, metrics MetricsCollector, logger *slog.Logger) {
	metrics.IncIngestRequests(status)
	logger.Warn("track request rejected", "kind", kind, "error", err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(ErrorResponse{
		Error: err.Error(),
		Kind:  kind,
	}); encErr != nil {
		logger.Error("failed to encode error response", "error", encErr)
	}
}

func statusFor(err error) int {
	switch {
	case apperrors.IsRetired(err):
		return http.StatusGone
	case apperrors.IsLookupError(err):
		return http.StatusNotFound
	case isExpansionError(err):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func isExpansionError(err error) bool {
	var (
		export      *apperrors.PropertyExportError
		unsupported *apperrors.UnsupportedPropertyTypeError
	)
	return errors.As(err, &export) || errors.As(err, &unsupported)
}

func errorKind(err error) string {
	var (
		unknownVersion  *apperrors.UnknownVersionError
		unknownCategory *apperrors.UnknownCategoryError
		unknownEvent    *apperrors.UnknownEventError
		retired         *apperrors.RetiredEventError
		export          *apperrors.PropertyExportError
		unsupported     *apperrors.UnsupportedPropertyTypeError
	)
	switch {
	case errors.As(err, &unknownVersion):
		return "unknown_version"
	case errors.As(err, &unknownCategory):
		return "unknown_category"
	case errors.As(err, &unknownEvent):
		return "unknown_event"
	case errors.As(err, &retired):
		return "retired_event"
	case errors.As(err, &export):
		return "property_export"
	case errors.As(err, &unsupported):
		return "unsupported_property_type"
	default:
		return "sink_failure"
	}
}
