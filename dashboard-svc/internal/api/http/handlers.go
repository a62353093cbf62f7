package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"restodash/dashboard-svc/internal/client"
	"restodash/dashboard-svc/internal/domain"
	"restodash/dashboard-svc/internal/notify"
	"restodash/dashboard-svc/internal/service"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const defaultMaxUploadBytes = 10 << 20

// NotificationSource is the notification feed as the API reads it.
type NotificationSource interface {
	Since(t time.Time) []notify.Notification
}

type Deps struct {
	Menus          service.MenuServiceInterface
	Orders         service.OrderServiceInterface
	Auth           service.AuthServiceInterface
	Notifications  NotificationSource
	MenuDialog     *service.MenuDialog
	OrderDialog    *service.OrderDialog
	Gatherer       prometheus.Gatherer
	MaxUploadBytes int64
	Logger         *zap.Logger
}

type Handler struct {
	Menus         service.MenuServiceInterface
	Orders        service.OrderServiceInterface
	Auth          service.AuthServiceInterface
	Notifications NotificationSource
	MenuDialog    *service.MenuDialog
	OrderDialog   *service.OrderDialog

	gatherer  prometheus.Gatherer
	maxUpload int64
	log       *zap.Logger
}

func NewHandler(deps Deps) *Handler {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{
		Menus:         deps.Menus,
		Orders:        deps.Orders,
		Auth:          deps.Auth,
		Notifications: deps.Notifications,
		MenuDialog:    deps.MenuDialog,
		OrderDialog:   deps.OrderDialog,
		gatherer:      deps.Gatherer,
		maxUpload:     deps.MaxUploadBytes,
		log:           deps.Logger.Named("http"),
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")
	if h.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", h.login).Methods("POST")
	api.HandleFunc("/auth/signup", h.signup).Methods("POST")
	api.HandleFunc("/auth/logout", h.logout).Methods("POST")
	api.HandleFunc("/auth/me", h.me).Methods("GET")

	protected := api.NewRoute().Subrouter()
	protected.Use(h.requireAuth)

	protected.HandleFunc("/menus", h.getMenus).Methods("GET")
	protected.HandleFunc("/menus", h.createMenuItem).Methods("POST")
	protected.HandleFunc("/menus/table", h.getMenuTable).Methods("GET")
	protected.HandleFunc("/menus/{id}", h.getMenuItem).Methods("GET")
	protected.HandleFunc("/menus/{id}", h.updateMenuItem).Methods("PATCH")
	protected.HandleFunc("/menus/{id}", h.deleteMenuItem).Methods("DELETE")

	protected.HandleFunc("/orders", h.getOrders).Methods("GET")
	protected.HandleFunc("/orders/table", h.getOrderTable).Methods("GET")
	protected.HandleFunc("/orders/board", h.getOrderBoard).Methods("GET")
	protected.HandleFunc("/orders/{id}", h.getOrderDetails).Methods("GET")
	protected.HandleFunc("/orders/{id}", h.updateOrder).Methods("PATCH")
	protected.HandleFunc("/orders/{id}", h.deleteOrder).Methods("DELETE")
	protected.HandleFunc("/orders/{id}/qrcode", h.getOrderQRCode).Methods("GET")

	if h.MenuDialog != nil {
		registerDialog(protected, "/dialogs/menu", h.MenuDialog, h.decodeMenuInput, h.readUpload)
	}
	if h.OrderDialog != nil {
		registerDialog(protected, "/dialogs/order", h.OrderDialog, decodeOrderUpdate, h.readUpload)
	}

	protected.HandleFunc("/notifications", h.getNotifications).Methods("GET")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "dashboard-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	writeJSON(w, http.StatusOK, response)
}

type userResponse struct {
	User *domain.User `json:"user"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON format: "+err.Error())
		return
	}
	user, err := h.Auth.Login(r.Context(), creds)
	if err != nil {
		// a rejected login is not an expired session
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && (apiErr.Kind == client.KindUnauthenticated || apiErr.Kind == client.KindValidation) {
			writeMessage(w, http.StatusUnauthorized, client.MessageOf(err))
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: user})
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON format: "+err.Error())
		return
	}
	user, err := h.Auth.Signup(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{User: user})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, err := h.Auth.CurrentUser(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: user})
}

func (h *Handler) getMenus(w http.ResponseWriter, r *http.Request) {
	items, err := h.Menus.List(r.Context(), r.URL.Query().Get("owner"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) getMenuTable(w http.ResponseWriter, r *http.Request) {
	table, err := h.Menus.Table(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (h *Handler) getMenuItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.Menus.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) createMenuItem(w http.ResponseWriter, r *http.Request) {
	in, err := h.decodeMenuInput(w, r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := h.Menus.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) updateMenuItem(w http.ResponseWriter, r *http.Request) {
	in, err := h.decodeMenuInput(w, r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := h.Menus.Update(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) deleteMenuItem(w http.ResponseWriter, r *http.Request) {
	if err := h.Menus.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) getOrderTable(w http.ResponseWriter, r *http.Request) {
	table, err := h.Orders.Table(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (h *Handler) getOrderBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.Orders.Board(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *Handler) getOrderDetails(w http.ResponseWriter, r *http.Request) {
	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "page must be an integer")
			return
		}
		page = p
	}
	details, err := h.Orders.Details(r.Context(), mux.Vars(r)["id"], page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	upd, err := decodeOrderUpdate(w, r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	order, err := h.Orders.Update(r.Context(), mux.Vars(r)["id"], upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.Orders.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getOrderQRCode(w http.ResponseWriter, r *http.Request) {
	png, err := h.Orders.QRCode(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *Handler) getNotifications(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "since must be an RFC3339 time")
			return
		}
		since = t
	}
	writeJSON(w, http.StatusOK, h.Notifications.Since(since))
}

// decodeMenuInput accepts JSON or a multipart form whose fields carry the
// menu attributes and whose "file" part carries the image.
func (h *Handler) decodeMenuInput(w http.ResponseWriter, r *http.Request) (domain.MenuItemInput, error) {
	var in domain.MenuItemInput
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if !isMultipart(r) {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			return in, fmt.Errorf("invalid JSON format: %w", err)
		}
		return in, nil
	}

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return in, fmt.Errorf("invalid multipart form: %w", err)
	}
	attrs := make(map[string]json.RawMessage, len(r.MultipartForm.Value))
	for name, values := range r.MultipartForm.Value {
		if len(values) == 0 {
			continue
		}
		attrs[name] = formJSON(name, values[0])
	}
	raw, err := json.Marshal(attrs)
	if err != nil {
		return in, err
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, fmt.Errorf("invalid form fields: %w", err)
	}

	upload, err := formUpload(r)
	if err != nil {
		return in, err
	}
	in.Upload = upload
	return in, nil
}

// readUpload takes the "file" part of a multipart request.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (domain.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return domain.Upload{}, fmt.Errorf("invalid multipart form: %w", err)
	}
	upload, err := formUpload(r)
	if err != nil {
		return domain.Upload{}, err
	}
	if upload == nil {
		return domain.Upload{}, errors.New("file is required")
	}
	return *upload, nil
}

func decodeOrderUpdate(w http.ResponseWriter, r *http.Request) (domain.OrderUpdate, error) {
	var upd domain.OrderUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		return upd, fmt.Errorf("invalid JSON format: %w", err)
	}
	return upd, nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// menuTextFields are the string attributes a form sends bare.
var menuTextFields = map[string]bool{
	"name":        true,
	"description": true,
	"category":    true,
	"image":       true,
}

func formJSON(name, value string) json.RawMessage {
	if !menuTextFields[name] && json.Valid([]byte(value)) {
		return json.RawMessage(value)
	}
	quoted, _ := json.Marshal(value)
	return quoted
}

func formUpload(r *http.Request) (*domain.Upload, error) {
	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving the file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return &domain.Upload{Filename: header.Filename, ContentType: contentType, Data: data}, nil
}
