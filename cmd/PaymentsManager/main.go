package main

import (
	"encoding/json"
	"log"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sebuszqo/PaymentsManager/internal/config"
	database "github.com/sebuszqo/PaymentsManager/internal/db"
	"github.com/sebuszqo/PaymentsManager/internal/payments/application"
	"github.com/sebuszqo/PaymentsManager/internal/payments/infrastructure"
	"github.com/sebuszqo/PaymentsManager/internal/payments/interfaces"
)

type Response struct {
	Message string `json:"message"`
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		log.Printf("[%s] Started %s %s", requestID, r.Method, r.URL.Path)

		next.ServeHTTP(w, r)

		log.Printf("[%s] Completed %s in %v", requestID, r.URL.Path, time.Since(start))
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	})
}

type Server struct {
	router         *http.ServeMux
	paymentHandler *interfaces.PaymentHandler
	dbService      *database.DBService
}

func NewServer(paymentHandler *interfaces.PaymentHandler, dbService *database.DBService) *Server {
	return &Server{
		paymentHandler: paymentHandler,
		dbService:      dbService,
		router:         http.NewServeMux(),
	}
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(Response{Message: "Path not found"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	health := s.dbService.Health()
	status := http.StatusOK
	if health["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, health)
}

func (s *Server) RegisterRoutes() {
	paymentRoutes := http.NewServeMux()

	// PAYMENTS API
	paymentRoutes.Handle("GET /api/payments", http.HandlerFunc(s.paymentHandler.ListPayments))
	paymentRoutes.Handle("POST /api/payments", http.HandlerFunc(s.paymentHandler.CreatePayment))
	paymentRoutes.Handle("GET /api/payments/{paymentID}", http.HandlerFunc(s.paymentHandler.GetPayment))
	paymentRoutes.Handle("PUT /api/payments/{paymentID}", http.HandlerFunc(s.paymentHandler.ReplacePayment))
	paymentRoutes.Handle("PATCH /api/payments/{paymentID}", http.HandlerFunc(s.paymentHandler.PatchPayment))
	paymentRoutes.Handle("DELETE /api/payments/{paymentID}", http.HandlerFunc(s.paymentHandler.DeletePayment))

	// PAYMENT ACTIONS
	paymentRoutes.Handle("PATCH /api/payments/{userID}/set-default", http.HandlerFunc(s.paymentHandler.SetDefaultPayment))
	paymentRoutes.Handle("PATCH /api/payments/{userID}/charge", http.HandlerFunc(s.paymentHandler.ChargePayment))

	paymentRoutes.Handle("GET /api/ready", http.HandlerFunc(s.handleReady))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/api/", paymentRoutes)
	mainRouter.Handle("/", http.HandlerFunc(notFoundHandler))

	s.router = mainRouter
}

// StartExpiryAuditScheduler periodically logs default payment methods whose
// cards have already expired, so stale defaults surface before a charge fails.
func StartExpiryAuditScheduler(paymentService *application.PaymentService, schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		expired, err := paymentService.ExpiredDefaults()
		if err != nil {
			log.Printf("Error auditing expired default payments: %v", err)
			return
		}
		for _, payment := range expired {
			log.Printf("Default payment %d of user %d is expired (%s)",
				payment.PaymentID, payment.UserID, payment.Details.Expires)
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Missing configuration, update to start server: %v", err)
	}

	dbService, err := database.NewDBService(cfg.DBConnectionString)
	if err != nil {
		log.Fatalf("Could not initialize database: %v", err)
	}
	defer dbService.Close()

	if cfg.DBAutoMigrate {
		if err := infrastructure.EnsureSchema(dbService.DB); err != nil {
			log.Fatalf("Could not apply database schema: %v", err)
		}
		log.Println("Database schema is up to date")
	}

	paymentRepo := infrastructure.NewPaymentRepository(dbService.DB)
	paymentService := application.NewPaymentService(paymentRepo)
	paymentHandler := interfaces.NewPaymentHandler(paymentService, respondJSON, respondError)

	server := NewServer(paymentHandler, dbService)
	server.RegisterRoutes()

	if err := StartExpiryAuditScheduler(paymentService, cfg.ExpiryAuditSchedule); err != nil {
		log.Fatalf("Scheduler didn't start, stoping the app ...")
	}

	log.Println("Starting perf on port 6060...")
	go func() {
		log.Println(http.ListenAndServe("localhost:6060", nil))
	}()

	handler := loggingMiddleware(server.router)
	log.Printf("Server starting on port %s...", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
