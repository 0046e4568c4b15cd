package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"institute-admin/app/cache"
	"institute-admin/app/config"
	"institute-admin/app/database"
	"institute-admin/app/invalidation"
	"institute-admin/app/models"
	"institute-admin/app/payments"
	"institute-admin/app/routes/auth"
	paymentroutes "institute-admin/app/routes/payments"
	"institute-admin/app/services"
)

// customErrorHandler shapes every HTTP error as a JSON envelope
func customErrorHandler(c *fiber.Ctx, err error) error {
	// Status code defaults to 500
	code := fiber.StatusInternalServerError

	// Retrieve the custom status code if it's a *fiber.Error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
		"code":    code,
	})
}

func main() {
	// Set global time zone (defaults to UTC for multi-tenant deployments)
	if tz := os.Getenv("APP_TZ"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			log.Printf("Warning: Failed to load %s location, falling back to UTC: %v", tz, err)
		} else {
			time.Local = loc
		}
	}
	log.Printf("Application time zone set to: %s", time.Local.String())

	// Initialize database
	config.InitDB()
	defer config.GetDB().Close()

	// Run database migrations
	if err := database.RunMigrations(config.GetDB()); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Staging sessions and their idle-expiry sweep
	sessions := payments.NewSessionRegistry()
	services.StartScheduler(sessions)

	// Cache store, loading registry, and the invalidation dependency table
	loading := cache.NewLoadingRegistry()
	store := cache.NewStore(loading)
	resolver := invalidation.NewDefaultResolver()
	registerRegionFetchers(store, config.GetDB())

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Setup auth routes
	auth.SetupAuthRoutes(app)

	// Setup payment staging routes
	paymentroutes.SetupPaymentsRoutes(app, &paymentroutes.Handlers{
		DB:       config.GetDB(),
		Sessions: sessions,
		Balances: services.NewBalanceService(config.GetDB()),
		Resolver: resolver,
		Store:    store,
		Rules:    models.ValidationRules{},
	})

	// Entity-mutation hook: any CRUD module reports its mutation here and the
	// derived regions are refreshed. The response is returned before the
	// refetches finish.
	app.Post("/api/cache/invalidate", auth.AuthMiddleware, func(c *fiber.Ctx) error {
		var req struct {
			Context   string `json:"context"`
			Entity    string `json:"entity"`
			Operation string `json:"operation"`
			ID        string `json:"id,omitempty"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		keys := resolver.Resolve(models.InstitutionContext(req.Context),
			invalidation.Entity(req.Entity), invalidation.Operation(req.Operation), req.ID)
		for _, key := range keys {
			store.Invalidate(key)
		}
		go func() {
			for _, key := range keys {
				if err := store.Refetch(context.Background(), key); err != nil {
					log.Printf("Region %s left stale: %v", key, err)
				}
			}
		}()

		return c.JSON(fiber.Map{
			"success": true,
			"data":    fiber.Map{"regions": keys},
		})
	})

	// Cache status shortcut for the loading overlay
	app.Get("/api/cache/status", auth.AuthMiddleware, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"data": fiber.Map{
				"loading": loading.Loading(),
				"count":   loading.Count(),
				"pending": loading.Pending(),
				"stale":   store.StaleKeys(),
			},
		})
	})

	// Catch-all route for 404 errors (must be last)
	app.Use("*", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not found")
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("Server starting on :" + port)
	log.Fatal(app.Listen(":" + port))
}

// registerRegionFetchers wires the list-level regions that have a cheap
// source-of-truth query. Detail-level regions have no fetcher; refetching
// them just drops the cached value.
func registerRegionFetchers(store *cache.Store, db *sql.DB) {
	for _, instCtx := range []models.InstitutionContext{models.SchoolContext, models.CollegeContext} {
		ctxName := string(instCtx)

		dashboardKey := invalidation.RegionKey(fmt.Sprintf("%s:%s", ctxName, invalidation.RegionDashboard))
		store.Register(dashboardKey, func(ctx context.Context) (interface{}, error) {
			var count int
			var total float64
			query := `SELECT COUNT(*), COALESCE(SUM(total_amount), 0) FROM payments
			          WHERE context = $1 AND deleted_at IS NULL`
			if err := db.QueryRowContext(ctx, query, ctxName).Scan(&count, &total); err != nil {
				return nil, err
			}
			return fiber.Map{"payments": count, "collected": total}, nil
		})

		paymentsKey := invalidation.RegionKey(fmt.Sprintf("%s:%s", ctxName, invalidation.RegionPayments))
		store.Register(paymentsKey, func(ctx context.Context) (interface{}, error) {
			query := `SELECT reference, admission_no, total_amount, created_at FROM payments
			          WHERE context = $1 AND deleted_at IS NULL
					  ORDER BY created_at DESC LIMIT 50`
			rows, err := db.QueryContext(ctx, query, ctxName)
			if err != nil {
				return nil, err
			}
			defer rows.Close()

			var recent []fiber.Map
			for rows.Next() {
				var reference, admissionNo string
				var total float64
				var createdAt time.Time
				if err := rows.Scan(&reference, &admissionNo, &total, &createdAt); err != nil {
					continue
				}
				recent = append(recent, fiber.Map{
					"reference":    reference,
					"admission_no": admissionNo,
					"total_amount": total,
					"created_at":   createdAt,
				})
			}
			return recent, rows.Err()
		})
	}
}
