package api

import (
	"github.com/gorilla/mux"

	"github.com/garnizeh/posbackup/internal/config"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, store SnapshotService) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(cfg.Admin, cfg.JWTSecret, cfg.TokenDuration)
	snapshotsHandler := NewSnapshotsHandler(store)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.Handle("/metrics", systemHandler.MetricsHandler()).Methods("GET")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")

	// Snapshot endpoints
	apiV1.HandleFunc("/snapshots", snapshotsHandler.CreateSnapshot).Methods("POST")
	apiV1.HandleFunc("/snapshots", snapshotsHandler.ListSnapshots).Methods("GET")
	apiV1.HandleFunc("/snapshots/{id}", snapshotsHandler.GetSnapshot).Methods("GET")
	apiV1.HandleFunc("/snapshots/{id}", snapshotsHandler.DeleteSnapshot).Methods("DELETE")

	return r
}
