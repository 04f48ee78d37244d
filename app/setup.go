package app

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/biosecret/go-todo/config"
	"github.com/biosecret/go-todo/database"
	"github.com/biosecret/go-todo/events"
	"github.com/biosecret/go-todo/handlers"
	"github.com/biosecret/go-todo/router"
	"github.com/biosecret/go-todo/token"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// New dựng ứng dụng Fiber với đầy đủ middleware và route
func New(db *sql.DB, h *handlers.Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "go-todo",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Đính kèm middleware để xử lý lỗi và ghi log
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${ip}]:${port} ${status} - ${method} ${path} ${latency}\n",
	}))

	router.SetupRoutes(app, db, h)
	config.AddSwaggerRoutes(app)
	return app
}

// SetupAndRunApp khởi động ứng dụng Fiber
func SetupAndRunApp() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log.Infof("starting with %s", cfg)

	db, err := database.Open(context.Background(), cfg.Database)
	if err != nil {
		return err
	}
	// Đảm bảo kết nối với cơ sở dữ liệu được đóng sau khi ứng dụng kết thúc
	defer database.Close(db)

	var pub events.Publisher = events.Nop{}
	if cfg.MQTTURL != "" {
		m, err := events.NewMQTT(cfg.MQTTURL, "go-todo-"+cfg.Port)
		if err != nil {
			log.Warnf("events disabled: %v", err)
		} else {
			pub = m
		}
	}
	defer pub.Close()

	tokens := token.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	app := New(db, handlers.New(tokens, pub, cfg.Auth.BcryptCost))

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Info("shutting down")
		_ = app.Shutdown()
	}()

	// Lắng nghe trên cổng chỉ định
	return app.Listen(":" + cfg.Port)
}
