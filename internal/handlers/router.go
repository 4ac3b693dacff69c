package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/DevangRnd/fota-backend/internal/buildinfo"
	"github.com/DevangRnd/fota-backend/internal/config"
	"github.com/DevangRnd/fota-backend/internal/firmware"
	"github.com/DevangRnd/fota-backend/internal/fota"
	"github.com/DevangRnd/fota-backend/internal/middleware"
	"github.com/DevangRnd/fota-backend/internal/registry"
	"github.com/DevangRnd/fota-backend/internal/websocket"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// Router wraps the mux router and the services behind each endpoint
type Router struct {
	*mux.Router
	cfg        *config.Config
	store      *registry.Store
	firmware   *firmware.Service
	reconciler *fota.Reconciler
	dispatcher *fota.Dispatcher
	updates    *fota.UpdateStateMachine
	hub        *websocket.Hub
}

// NewRouter creates a new HTTP router with all routes. hub may be nil, in
// which case no live events are published and /api/ws is not served.
func NewRouter(db *gorm.DB, cfg *config.Config, hub *websocket.Hub) *Router {
	store := registry.New(db)
	r := &Router{
		Router:     mux.NewRouter(),
		cfg:        cfg,
		store:      store,
		firmware:   firmware.NewService(db, cfg.Firmware.KeepHistory),
		reconciler: fota.NewReconciler(store),
		dispatcher: fota.NewDispatcher(store),
		updates:    fota.NewUpdateStateMachine(store),
		hub:        hub,
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Auth routes
	api.HandleFunc("/register", r.register).Methods("POST")
	api.HandleFunc("/login", r.login).Methods("POST")
	api.HandleFunc("/logout", r.logout).Methods("POST")
	api.Handle("/check-auth", r.protect(r.checkAuth)).Methods("GET")

	// Device routes (operator)
	api.Handle("/add-device", r.protect(r.addDevices)).Methods("POST")
	api.Handle("/vendor/{vendorId}/add-device", r.protect(r.addDevicesForVendor)).Methods("POST")
	api.Handle("/devices", r.protect(r.listDevices)).Methods("GET")
	api.Handle("/devices/{deviceId}/qr", r.protect(r.deviceQR)).Methods("GET")
	api.Handle("/vendor/{vendorId}/devices", r.protect(r.listVendorDevices)).Methods("GET")
	api.Handle("/vendor/{vendorId}/labels", r.protect(r.vendorLabels)).Methods("GET")
	api.Handle("/initiate-update", r.protect(r.initiateUpdate)).Methods("POST")
	api.Handle("/imports", r.protect(r.listImports)).Methods("GET")

	// Device-facing routes
	api.HandleFunc("/check-for-update/{deviceId}", r.checkForUpdate).Methods("GET")
	api.HandleFunc("/fetch-update/{deviceId}", r.fetchUpdate).Methods("GET")
	api.HandleFunc("/update-completed/{deviceId}", r.markUpdateCompleted).Methods("POST")
	api.HandleFunc("/download-firmware", r.downloadFirmware).Methods("GET")

	// Firmware routes (operator)
	api.Handle("/upload-firmware", r.protect(r.uploadFirmware)).Methods("POST")
	api.Handle("/firmwares", r.protect(r.listFirmwares)).Methods("GET")

	// Project and vendor routes
	api.Handle("/create-project", r.protect(r.createProject)).Methods("POST")
	api.Handle("/get-projects", r.protect(r.getProjects)).Methods("GET")
	api.Handle("/project/{projectId}/create-vendor", r.protect(r.createVendor)).Methods("POST")
	api.Handle("/project/{projectId}/all-vendors", r.protect(r.getVendorsForProject)).Methods("GET")

	if hub != nil {
		api.Handle("/ws", r.protect(func(w http.ResponseWriter, req *http.Request) {
			websocket.ServeWs(hub, w, req)
		})).Methods("GET")
	}

	return r
}

// Handler returns the router wrapped in the global middleware
func (r *Router) Handler() http.Handler {
	return middleware.CORS(r.cfg.CORSOrigin)(r.Router)
}

func (r *Router) protect(h http.HandlerFunc) http.Handler {
	return middleware.Auth(r.cfg.JWTSecret)(h)
}

func (r *Router) publish(ev websocket.Event) {
	if r.hub != nil {
		r.hub.Publish(ev)
	}
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	status := buildinfo.Fields()
	status["status"] = "ok"
	respondJSON(w, http.StatusOK, status)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondDomainError maps the core error taxonomy onto HTTP statuses.
// Anything unclassified is logged and reported as fallback with a 500.
func respondDomainError(w http.ResponseWriter, err error, fallback string) {
	var ve *fota.ValidationError
	var nf *fota.NotFoundError
	var ce *fota.ConflictError
	switch {
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, ve.Message)
	case errors.As(err, &nf):
		respondError(w, http.StatusNotFound, capitalize(nf.Entity)+" not found")
	case errors.As(err, &ce):
		respondError(w, http.StatusConflict, capitalize(ce.Error()))
	default:
		log.Printf("❌ %s: %v", fallback, err)
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
