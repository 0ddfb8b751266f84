package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/cors"
	"golang.org/x/exp/rand"

	"pingup/backend/handlers"
	"pingup/backend/handlers/auth"
	"pingup/backend/handlers/connection"
	"pingup/backend/handlers/message"
	"pingup/backend/handlers/notifications"
	"pingup/backend/handlers/post"
	"pingup/backend/handlers/user"
	"pingup/backend/services/events"
	"pingup/backend/services/images"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	// Check required environment variables
	requiredEnvVars := []string{"DATABASE_URL", "JWT_SECRET_KEY"}
	for _, envVar := range requiredEnvVars {
		if os.Getenv(envVar) == "" {
			log.Fatalf("Required environment variable %s is not set", envVar)
		}
	}

	// Initialize random seed
	rand.Seed(uint64(time.Now().UnixNano()))

	// Initialize database connection
	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	imageStore := images.NewStore(uploadDir, "/uploads")
	dispatcher := events.NewDispatcher(db, notifications.SendNotification)

	// Create router
	r := mux.NewRouter()

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	})

	// Public routes (no auth required)
	r.HandleFunc("/api/auth/signup", auth.SignupHandler(db)).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/auth/login", auth.LoginHandler(db)).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/test/generate-users", handlers.GenerateTestDataHandler(db)).Methods("POST", "OPTIONS")

	// Create a subrouter for protected routes
	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(auth.AuthMiddleware)

	// User routes
	protected.HandleFunc("/user/data", user.GetUserDataHandler(db)).Methods("GET", "OPTIONS")
	protected.HandleFunc("/user/update", user.UpdateUserHandler(db, imageStore)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/user/discover", user.DiscoverUsersHandler(db)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/user/follow", user.FollowUserHandler(db)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/user/unfollow", user.UnfollowUserHandler(db)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/user/profiles/{profileId}", user.GetUserProfilesHandler(db)).Methods("GET", "OPTIONS")
	protected.HandleFunc("/user/all", user.GetAllUsersHandler(db)).Methods("GET", "OPTIONS")

	// Connection routes
	protected.HandleFunc("/user/connect", connection.SendConnectionRequestHandler(db, dispatcher)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/user/accept", connection.AcceptConnectionRequestHandler(db, dispatcher)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/user/decline", connection.DeclineConnectionRequestHandler(db)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/user/connections", connection.GetUserConnectionsHandler(db)).Methods("GET", "OPTIONS")

	// Post routes
	protected.HandleFunc("/post/add", post.AddPostHandler(db, imageStore)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/post/feed", post.GetFeedPostsHandler(db)).Methods("GET", "OPTIONS")
	protected.HandleFunc("/post/like", post.LikePostHandler(db)).Methods("POST", "OPTIONS")

	// Message routes
	protected.HandleFunc("/message/send", message.SendMessageHandler(db, imageStore)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/message/get", message.GetChatMessagesHandler(db)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/user/recent-messages", message.GetUserRecentMessagesHandler(db)).Methods("GET", "OPTIONS")
	r.HandleFunc("/ws/messages", message.HandleMessagesWebSocket())

	// Notification routes
	protected.HandleFunc("/notifications", notifications.GetNotificationsHandler(db)).Methods("GET", "OPTIONS")
	protected.HandleFunc("/notifications/read", notifications.MarkNotificationsAsReadHandler(db)).Methods("POST", "OPTIONS")
	r.HandleFunc("/ws/notifications", notifications.HandleNotificationWebSocket())

	// Uploaded images
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server starting on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, c.Handler(r)))
}
