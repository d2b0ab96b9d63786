package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	rnaerrors "github.com/matzehuels/rnaviz/pkg/errors"
)

type errorBody struct {
	Error     errorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	switch rnaerrors.GetCode(err) {
	case rnaerrors.ErrCodeInvalidAlphabet,
		rnaerrors.ErrCodeMalformedPairing,
		rnaerrors.ErrCodeIndexOutOfRange,
		rnaerrors.ErrCodeSelfPairing,
		rnaerrors.ErrCodeInvalidInput,
		rnaerrors.ErrCodeInvalidFormat,
		rnaerrors.ErrCodeInvalidLayoutMode,
		rnaerrors.ErrCodeInvalidLayout,
		rnaerrors.ErrCodeInvalidConfig,
		rnaerrors.ErrCodeInvalidColor:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writePipelineError writes err with its mapped status. Messages of internal
// failures are not exposed.
func writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := string(rnaerrors.GetCode(err))
	msg := rnaerrors.UserMessage(err)
	switch {
	case status == http.StatusGatewayTimeout:
		code, msg = "TIMEOUT", "request timed out"
	case status == http.StatusServiceUnavailable:
		code, msg = "CANCELED", "request canceled"
	case code == "":
		code, msg = string(rnaerrors.ErrCodeInternal), "internal error"
	}
	writeError(w, r, status, code, msg)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, errorBody{
		Error:     errorDetail{Code: code, Message: msg},
		RequestID: RequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, `{"error":{"code":"INTERNAL_ERROR","message":"encode response"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}
