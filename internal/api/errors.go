package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ferretcode/lovebug/internal/store"
)

var ErrInvalidQuery = errors.New("invalid query parameter")

type queryError struct {
	param  string
	reason string
}

func (e *queryError) Error() string {
	return fmt.Sprintf("%s: %s", e.param, e.reason)
}

func (e *queryError) Unwrap() error {
	return ErrInvalidQuery
}

// failure carries the user facing message for an unexpected error.
type failure struct {
	detail string
	err    error
}

func (f *failure) Error() string {
	return f.detail + ": " + f.err.Error()
}

func (f *failure) Unwrap() error {
	return f.err
}

func fail(detail string, err error) error {
	return &failure{detail: detail, err: err}
}

func writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// handleError maps err to a {"detail": ...} response. Only unexpected
// errors are logged.
func handleError(err error, w http.ResponseWriter, svc string, logger *slog.Logger) {
	if err == nil {
		return
	}

	var qe *queryError
	if errors.As(err, &qe) {
		writeDetail(w, http.StatusUnprocessableEntity, qe.Error())
		return
	}

	if errors.Is(err, store.ErrReportNotFound) {
		writeDetail(w, http.StatusNotFound, "보고서를 찾을 수 없습니다.")
		return
	}

	detail := "요청 처리 중 오류가 발생했습니다."
	var f *failure
	if errors.As(err, &f) {
		detail = f.detail
	}

	logger.Error("error processing request", "svc", svc, "err", err)
	writeDetail(w, http.StatusInternalServerError, detail)
}
