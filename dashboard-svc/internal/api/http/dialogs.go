package httpapi

import (
	"net/http"

	"restodash/dashboard-svc/internal/dialog"
	"restodash/dashboard-svc/internal/domain"

	"github.com/gorilla/mux"
)

type (
	valuesDecoder[V any] func(w http.ResponseWriter, r *http.Request) (V, error)
	uploadReader         func(w http.ResponseWriter, r *http.Request) (domain.Upload, error)
)

// registerDialog exposes one dialog controller under prefix. Every call answers
// with the dialog state so the caller can render it.
func registerDialog[T, V any](router *mux.Router, prefix string, c *dialog.Controller[T, V], decode valuesDecoder[V], readUpload uploadReader) {
	router.HandleFunc(prefix, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c.State())
	}).Methods("GET")

	router.HandleFunc(prefix+"/create", func(w http.ResponseWriter, r *http.Request) {
		if err := c.OpenCreate(); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c.State())
	}).Methods("POST")

	router.HandleFunc(prefix+"/edit/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := c.OpenEdit(mux.Vars(r)["id"]); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c.State())
	}).Methods("POST")

	router.HandleFunc(prefix+"/file", func(w http.ResponseWriter, r *http.Request) {
		upload, err := readUpload(w, r)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := c.SelectFile(upload); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c.State())
	}).Methods("POST")

	router.HandleFunc(prefix+"/preview", func(w http.ResponseWriter, r *http.Request) {
		path, contentType, ok := c.Preview()
		if !ok {
			writeMessage(w, http.StatusNotFound, "no file selected")
			return
		}
		w.Header().Set("Content-Type", contentType)
		http.ServeFile(w, r, path)
	}).Methods("GET")

	router.HandleFunc(prefix+"/submit", func(w http.ResponseWriter, r *http.Request) {
		values, err := decode(w, r)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		entity, err := c.Submit(r.Context(), values)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Entity *T              `json:"entity"`
			State  dialog.State[T] `json:"state"`
		}{Entity: entity, State: c.State()})
	}).Methods("POST")

	router.HandleFunc(prefix+"/cancel", func(w http.ResponseWriter, r *http.Request) {
		c.Cancel()
		writeJSON(w, http.StatusOK, c.State())
	}).Methods("POST")
}
