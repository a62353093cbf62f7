package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"restodash/dashboard-svc/internal/client"
	"restodash/dashboard-svc/internal/dialog"
	"restodash/dashboard-svc/internal/service"
)

// LoginPath is where unauthenticated callers are sent.
const LoginPath = "/login"

type errorResponse struct {
	Error    string   `json:"error"`
	Fields   []string `json:"fields,omitempty"`
	Redirect string   `json:"redirect,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeUnauthenticated(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated", Redirect: LoginPath})
}

// writeError maps service, client and dialog errors onto HTTP statuses.
// Remote API messages pass through verbatim.
func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, client.ErrUnauthenticated) {
		writeUnauthenticated(w)
		return
	}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: verr.Error(), Fields: verr.Fields})
		return
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		writeMessage(w, apiStatus(apiErr), client.MessageOf(apiErr))
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeMessage(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, dialog.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, dialog.ErrCreateUnsupported), errors.Is(err, dialog.ErrFilesUnsupported):
		writeMessage(w, http.StatusMethodNotAllowed, err.Error())
	case errors.Is(err, dialog.ErrClosed):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeMessage(w, http.StatusGatewayTimeout, err.Error())
	default:
		writeMessage(w, http.StatusInternalServerError, err.Error())
	}
}

func apiStatus(err *client.APIError) int {
	switch err.Kind {
	case client.KindValidation:
		if err.StatusCode != 0 {
			return err.StatusCode
		}
		return http.StatusBadRequest
	case client.KindNotFound:
		return http.StatusNotFound
	case client.KindTransport:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
