// Command flavourbook runs the Flavourbook API server: a multi-tenant
// catalog of flavours and tags where every record is owned by the user who
// created it. The `serve` command starts the HTTP server; `create-superuser`
// provisions an administrative account from the command line.
//
// @title Flavourbook API
// @version 1.0
// @description Multi-tenant flavour catalog with token authentication.
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_TOKEN' to authorize
package main

import (
	"context"
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
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/urfave/cli/v2"

	"github.com/user/flavourbook-go/auth"
	"github.com/user/flavourbook-go/catalog"
	"github.com/user/flavourbook-go/config"
	"github.com/user/flavourbook-go/db"
	_ "github.com/user/flavourbook-go/docs" // generated Swagger docs
	"github.com/user/flavourbook-go/httpx"
	"github.com/user/flavourbook-go/users"
)

func main() {
	app := &cli.App{
		Name:  "flavourbook",
		Usage: "multi-tenant flavour catalog API",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "start the HTTP API server",
				Action: runServe,
			},
			{
				Name:  "create-superuser",
				Usage: "create a superuser account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "email address for the account", Required: true},
					&cli.StringFlag{Name: "password", Usage: "password for the account", Required: true},
					&cli.StringFlag{Name: "name", Usage: "display name for the account"},
				},
				Action: runCreateSuperuser,
			},
		},
		// Bare invocation behaves like `serve` so the container entrypoint
		// stays a single binary name.
		Action: runServe,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// bootstrap loads the environment, configuration and database pool shared by
// every command.
func bootstrap() (*config.AppConfig, *pgxpool.Pool, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading it: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	return cfg, pool, nil
}

func runServe(c *cli.Context) error {
	cfg, pool, err := bootstrap()
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DB, cfg.MigrationsPath); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Println("Database migrations applied")
	}

	authRepo := auth.NewPostgresRepository(pool)
	authService := auth.NewService(authRepo, cfg.Auth.BcryptCost)
	authHandlers := auth.NewHandlers(authService)

	userService := users.NewService(authRepo, authService)
	userHandlers := users.NewHandlers(userService)

	catalogStore := catalog.NewPostgresStore(pool)
	catalogService := catalog.NewService(catalogStore)
	catalogHandlers := catalog.NewHandlers(catalogService)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	// Existing clients send trailing slashes on every path; accept both forms.
	r.Use(middleware.StripSlashes)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	tokenAuth := auth.TokenMiddleware(authService)

	r.Route("/users", func(r chi.Router) {
		r.Post("/", authHandlers.HandleCreateUser())
		r.Post("/token", authHandlers.HandleCreateToken())

		r.Route("/me", func(r chi.Router) {
			r.Use(tokenAuth)
			userHandlers.RegisterRoutes(r)
		})
	})

	r.Route("/flavours", func(r chi.Router) {
		r.Use(tokenAuth)
		catalogHandlers.RegisterFlavourRoutes(r)
	})

	r.Route("/tags", func(r chi.Router) {
		r.Use(tokenAuth)
		catalogHandlers.RegisterTagRoutes(r)
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
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Println("Server stopped gracefully")
	return nil
}

func runCreateSuperuser(c *cli.Context) error {
	cfg, pool, err := bootstrap()
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DB, cfg.MigrationsPath); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	authService := auth.NewService(auth.NewPostgresRepository(pool), cfg.Auth.BcryptCost)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := authService.CreateSuperuser(ctx, c.String("email"), c.String("password"), c.String("name"))
	if err != nil {
		return fmt.Errorf("failed to create superuser: %w", err)
	}
	log.Printf("Superuser %s created with id %d", user.Email, user.ID)
	return nil
}
