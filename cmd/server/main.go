package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/circlehub/circle-notifier/internal/config"
	"github.com/circlehub/circle-notifier/internal/database"
	"github.com/circlehub/circle-notifier/internal/handlers"
	"github.com/circlehub/circle-notifier/internal/jobs"
	"github.com/circlehub/circle-notifier/internal/push"
	"github.com/circlehub/circle-notifier/internal/repository"
	"github.com/circlehub/circle-notifier/internal/scheduler"
	"github.com/circlehub/circle-notifier/internal/services"
	"github.com/circlehub/circle-notifier/internal/watcher"
	"github.com/circlehub/circle-notifier/pkg/logger"
	"github.com/circlehub/circle-notifier/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		log.Fatalf("Invalid time zone %q: %v", cfg.TimeZone, err)
	}

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	circleRepo := repository.NewCircleRepository(db)
	eventRepo := repository.NewEventRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	// --- Services ---
	gateway := push.NewFCMClient(cfg.FCMEndpoint, cfg.FCMServerKey, cfg.FCMTimeout)
	tokenResolver := services.NewTokenResolver(userRepo)
	dispatcher := services.NewDispatcher(tokenResolver, gateway)
	notifService := services.NewNotificationService(notifRepo)

	// --- Jobs ---
	eventReminder := jobs.NewEventReminderJob(eventRepo, notifRepo, loc)
	paymentReminder := jobs.NewPaymentReminderJob(eventRepo, paymentRepo, circleRepo, notifRepo)

	// The record-created trigger: change stream on notification inserts.
	notifWatcher := watcher.NewNotificationWatcher(notifRepo, dispatcher)
	go notifWatcher.Run(context.Background())

	// The scheduled triggers.
	if _, err := scheduler.StartReminderCrons(cfg, eventReminder, paymentReminder, loc); err != nil {
		log.Fatalf("Scheduler error: %v", err)
	}

	// --- Handlers ---
	notifHandler := handlers.NewNotificationHandler(notifService)
	deviceHandler := handlers.NewDeviceHandler(userRepo)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	protectedRoutes := router.PathPrefix("/notifications").Subrouter()
	protectedRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedRoutes.HandleFunc("", notifHandler.CreateNotificationHandler).Methods("POST")
	protectedRoutes.HandleFunc("", notifHandler.GetUserNotificationsHandler).Methods("GET")

	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/me/push-token", deviceHandler.UpdatePushTokenHandler).Methods("PUT")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Start the HTTP server
	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // adjust to frontend origin
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
