//go:build !cli
// +build !cli

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"shopbot.GO/api"
	_ "shopbot.GO/api/stock"
	"shopbot.GO/bot"
	"shopbot.GO/catalog"
	"shopbot.GO/config"
	"shopbot.GO/cron"
	"shopbot.GO/cron/jobs"
	"shopbot.GO/graphql"
	stockRepo "shopbot.GO/model/repository/stock"
	"shopbot.GO/session"
	"shopbot.GO/stock"
)

func getAuthMiddleware() echo.MiddlewareFunc {
	skipPaths := config.GetAuthSkipperPaths()
	skipper := func(c echo.Context) bool {
		path := c.Path()
		for _, skip := range skipPaths {
			if path == skip {
				return true
			}
		}
		return false
	}
	authType := os.Getenv("AUTH_TYPE")
	switch authType {
	case "key":
		apiKey := os.Getenv("API_KEY")
		return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == apiKey, nil
			},
			Skipper: skipper,
		})
	default:
		return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
			Validator: func(username, password string, c echo.Context) (bool, error) {
				return username == os.Getenv("API_USER") && password == os.Getenv("API_PASS"), nil
			},
			Skipper: skipper,
		})
	}
}

func main() {
	config.LoadEnv()
	config.LoadAppConfig()
	cfg := config.AppConfig
	if err := cfg.Validate(); err != nil {
		log.Fatalf("startup: %v", err)
	}

	// Initialize Redis
	config.InitRedis()
	redisStatus := "Redis not configured, city persistence disabled."
	if config.RedisClient != nil {
		if err := config.RedisClient.Ping(config.RedisCtx()).Err(); err == nil {
			redisStatus = "Redis connection successful."
		} else {
			config.RedisClient = nil // Disable Redis if not reachable
			redisStatus = "Redis configured but not reachable, city persistence disabled."
		}
	}
	log.Println(redisStatus)

	tree, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	leaves := 0
	tree.Leaves(func(catalog.Key, catalog.Leaf) { leaves++ })
	log.Printf("Catalog loaded: %d categories, %d leaves", len(tree.Categories), leaves)

	// A broken overlay store is never fatal: the bot starts all-available.
	var repo *stockRepo.StockRepository
	if db, err := config.NewDB(cfg.OverlayDB); err != nil {
		log.Printf("Overlay store unavailable, running all-available: %v", err)
	} else if repo, err = stockRepo.NewStockRepository(db); err != nil {
		log.Printf("Overlay store unavailable, running all-available: %v", err)
		repo = nil
	}
	overlay := stock.Open(repo)

	sessions := session.NewStore(config.RedisClient)
	tr := bot.NewTelegram(cfg.BotToken)
	notifier := bot.NewNotifier(tr, cfg.StaffIDs)
	archive := bot.NewArchive()
	engine := bot.NewEngine(cfg, tree, overlay, sessions, tr, notifier, archive)

	cron.Register("overlay:flush", "@every 30s", jobs.OverlayFlush(overlay))
	cron.Register("stock:report", "0 9 * * *", jobs.StockReport(tree, overlay))
	scheduler := cron.StartCron()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start).Milliseconds()
			c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
			return err
		}
	})

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "leaves": leaves})
	})

	gqlHandler, err := graphql.Handler(tree, overlay)
	if err != nil {
		log.Fatalf("startup: graphql schema: %v", err)
	}
	e.Any("/graphql", echo.WrapHandler(gqlHandler))

	apiGroup := e.Group("/api")
	apiGroup.Use(getAuthMiddleware())
	api.ApplyModules(apiGroup, &api.Deps{Tree: tree, Overlay: overlay})

	fig := figure.NewFigure("ShopBot", "slant", true)
	fig.Print()

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Ops server running on :%s", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ops server: %v", err)
		}
	}()

	log.Println("Bot polling started.")
	go engine.Run(ctx)

	<-ctx.Done()
	log.Println("Shutting down...")
	scheduler.Stop()
	_ = e.Shutdown(context.Background())
	if err := overlay.Close(); err != nil {
		log.Printf("shutdown: overlay flush: %v", err)
	}
}
