package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/desk-booking/internal/avatar"
	"github.com/iliyamo/desk-booking/internal/config"
	"github.com/iliyamo/desk-booking/internal/handler"
	"github.com/iliyamo/desk-booking/internal/middleware"
	"github.com/iliyamo/desk-booking/internal/queue"
	"github.com/iliyamo/desk-booking/internal/repository"
	"github.com/iliyamo/desk-booking/internal/router"
	"github.com/iliyamo/desk-booking/internal/store"
	"github.com/iliyamo/desk-booking/internal/template"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	st := store.Open(cfg.DataDir)
	users := repository.NewUserRepo(st)
	bookings := repository.NewBookingRepo(st)
	settings := repository.NewSettingsRepo(st)
	engine := template.NewEngine(st)
	avatars := avatar.NewStore(cfg.AvatarDir)

	// Redis backs the response cache and the rate limiter.  Both degrade
	// to pass-through when the client is nil.
	rdb := config.NewRedisClient()

	// The consumer drains booking.created events into the audit log.  A
	// broker outage is logged and retried inside the loop, never fatal.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAPI(e, router.Handlers{
		Users:     handler.NewUserHandler(users, avatars),
		Bookings:  handler.NewBookingHandler(bookings, users, settings),
		Blockers:  handler.NewBlockerHandler(bookings),
		Templates: handler.NewTemplateHandler(engine, users, settings),
		Settings:  handler.NewSettingsHandler(settings),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, data=%s)", addr, cfg.Env, cfg.DataDir)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
