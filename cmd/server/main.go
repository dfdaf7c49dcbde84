package main

import (
	"log"
	"net/http"
	"os"

	"github.com/brightsum/backend/internal/adaptive"
	"github.com/brightsum/backend/internal/admin"
	"github.com/brightsum/backend/internal/auth"
	"github.com/brightsum/backend/internal/database"
	"github.com/brightsum/backend/internal/generator"
	"github.com/brightsum/backend/internal/middleware"
	"github.com/brightsum/backend/internal/practice"
	"github.com/brightsum/backend/internal/quiz"
	"github.com/brightsum/backend/internal/review"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	modelDir := os.Getenv("ADAPTIVE_MODEL_DIR")
	if modelDir == "" {
		modelDir = "models"
	}
	provider := adaptive.NewProvider(modelDir)

	// Initialize handlers
	authHandler := auth.NewHandler(db)

	practiceStore := practice.NewStore(db)
	practiceHandler := practice.NewHandler(practice.NewService(practiceStore, provider, provider))

	quizStore := quiz.NewStore(db)
	quizHandler := quiz.NewHandler(quiz.NewService(quizStore))

	reviewStore := review.NewStore(db)
	reviewHandler := review.NewHandler(review.NewService(reviewStore))

	adminHandler := admin.NewHandler(admin.NewStore(db), generator.NewGenerator(), provider)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	protected.HandleFunc("/practice/topics", practiceHandler.ListTopics).Methods("GET")
	protected.HandleFunc("/practice/{slug}", practiceHandler.GetTopic).Methods("GET")
	protected.HandleFunc("/practice/{slug}/attempt", practiceHandler.StartAttempt).Methods("POST")
	protected.HandleFunc("/practice/attempts/{id}/submit", practiceHandler.SubmitAnswer).Methods("POST")
	protected.HandleFunc("/practice/attempts/{id}/hint", practiceHandler.RequestHint).Methods("POST")

	protected.HandleFunc("/quiz/{slug}", quizHandler.GetQuizInfo).Methods("GET")
	protected.HandleFunc("/quiz/{slug}/start", quizHandler.StartQuiz).Methods("POST")
	protected.HandleFunc("/quiz/attempts/{id}/submit", quizHandler.SubmitQuiz).Methods("POST")

	protected.HandleFunc("/review/summary", reviewHandler.GetSummary).Methods("GET")
	protected.HandleFunc("/review/mistakes", reviewHandler.ListMistakes).Methods("GET")

	// Admin routes (teacher role only)
	protected.HandleFunc("/admin/topics/{slug}/generate", middleware.RequireTeacher(adminHandler.GenerateItems)).Methods("POST")
	protected.HandleFunc("/admin/models/reload", middleware.RequireTeacher(adminHandler.ReloadModels)).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
