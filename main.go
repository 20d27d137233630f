// Mealfeed is a social content-sharing backend: users register and log in,
// author posts, attach tags and photos, vote on posts, and follow each other.
// This file wires configuration, database, stores and services together,
// mounts the HTTP router and runs the server with graceful shutdown.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/user/mealfeed-go/apperror"
	"github.com/user/mealfeed-go/auth"
	"github.com/user/mealfeed-go/blobstore"
	"github.com/user/mealfeed-go/config"
	"github.com/user/mealfeed-go/db"
	"github.com/user/mealfeed-go/photos"
	"github.com/user/mealfeed-go/posts"
	"github.com/user/mealfeed-go/ratelim"
	"github.com/user/mealfeed-go/store"
	"github.com/user/mealfeed-go/tags"
	"github.com/user/mealfeed-go/users"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading it: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to create database pool: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.DB, "./migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	st := store.NewPostgresStore(pool)

	blobs, err := blobstore.NewFromConfig(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to create blob store: %v", err)
	}

	authService := auth.NewAuthService(st, *cfg.Auth)
	authHandlers := auth.NewHandlers(authService)

	userService := users.NewUserService(st)
	userHandlers := users.NewHandlers(userService)

	postService := posts.NewPostService(st, blobs)
	postHandlers := posts.NewHandlers(postService)

	tagService := tags.NewTagService(st)
	tagHandlers := tags.NewHandlers(tagService)

	photoService := photos.NewPhotoService(st, blobs)
	photoHandlers := photos.NewHandlers(photoService)

	// 5 credential attempts per second with a burst of 10, per client IP.
	authLimiter := ratelim.NewRateLimiter(5, 10)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				if rvr := recover(); rvr != nil {
					log.Printf("Panic: %+v", rvr)
					writeError(ww, apperror.NewInternalError("internal server error", nil))
				}
			}()
			next.ServeHTTP(ww, r)
		})
	})

	r.Route("/api/users", func(r chi.Router) {
		r.With(authLimiter.Limit).Post("/register", authHandlers.HandleRegister())
		r.With(authLimiter.Limit).Post("/login", authHandlers.HandleLogin())

		r.Get("/", userHandlers.HandleList())
		r.Post("/", userHandlers.HandleCreate())
		r.Get("/{userID}", userHandlers.HandleGet())
		r.Delete("/{userID}", userHandlers.HandleDelete())
		r.Get("/{userID}/followers", userHandlers.HandleFollowers())
		r.Get("/{userID}/following", userHandlers.HandleFollowing())

		r.Group(func(r chi.Router) {
			r.Use(auth.JWTMiddleware(cfg.Auth))
			r.Post("/{userID}/follow", userHandlers.HandleFollow())
			r.Delete("/{userID}/follow", userHandlers.HandleUnfollow())
		})
	})

	r.Route("/api/posts", func(r chi.Router) {
		r.Get("/", postHandlers.HandleList())
		r.Post("/", postHandlers.HandleCreate())
		r.Get("/{postID}", postHandlers.HandleGet())
		r.Put("/{postID}", postHandlers.HandleUpdate())
		r.Delete("/{postID}", postHandlers.HandleDelete())
		r.Post("/{postID}/upvote", postHandlers.HandleUpvote())
		r.Post("/{postID}/downvote", postHandlers.HandleDownvote())
		r.Get("/{postID}/tags", tagHandlers.HandleTagsForPost())
	})

	r.Route("/api/tags", func(r chi.Router) {
		r.Get("/", tagHandlers.HandleList())
		r.Post("/", tagHandlers.HandleCreate())
		r.Get("/{tagID}", tagHandlers.HandleGet())
		r.Delete("/{tagID}", tagHandlers.HandleDelete())
		r.Post("/{tagID}/associate/{postID}", tagHandlers.HandleAssociate())
		r.Get("/{tagID}/posts", tagHandlers.HandlePostsForTag())
	})

	r.Route("/api/photos", func(r chi.Router) {
		r.Get("/", photoHandlers.HandleList())
		r.Post("/", photoHandlers.HandleUpload())
		r.Get("/{photoID}", photoHandlers.HandleGet())
		r.Get("/{photoID}/file", photoHandlers.HandleServeFile())
		r.Delete("/{photoID}", photoHandlers.HandleDelete())
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully")
}

// writeError is a local helper for the panic recovery middleware.
func writeError(w http.ResponseWriter, appErr *apperror.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	if err := json.NewEncoder(w).Encode(appErr.ToResponse()); err != nil {
		http.Error(w, `{"error":"Failed to encode error response"}`, http.StatusInternalServerError)
	}
}
