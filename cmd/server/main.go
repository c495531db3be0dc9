package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/pollwise/pollwise/auth"
	"github.com/pollwise/pollwise/config"
	"github.com/pollwise/pollwise/mailer"
	"github.com/pollwise/pollwise/polls"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DBDSN)
	if err != nil {
		return err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	ctx := context.Background()

	if err := createSchema(ctx, db); err != nil {
		return err
	}

	if err := auth.EnsureSuperAdmin(ctx, db); err != nil {
		return err
	}

	appLogger := auth.DefaultLogger()

	var mail auth.Mailer
	if cfg.HasSMTP() {
		mail = mailer.NewSMTPMailer(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
			AppName:  cfg.AppName,
		}, mailer.WithLogger(appLogger))
	} else {
		mail = mailer.NewLogMailer(appLogger)
	}

	repo := auth.NewRepositoryManager(db)
	tokens := auth.NewTokenService(cfg, appLogger)
	auther := auth.NewAuthenticator(repo, tokens, mail).WithLogger(appLogger)

	app := fiber.New(fiber.Config{AppName: cfg.AppName})

	app.Use(recover.New())
	app.Use(logger.New())

	authController := auth.NewAuthController(auther, auth.WithControllerLogger(appLogger))
	auth.RegisterAuthRoutes(app, authController)

	userController := auth.NewUserController(repo)
	auth.RegisterUserRoutes(app, userController, auther)

	pollsController := polls.NewController(polls.NewRepository(db), polls.WithLogger(appLogger))
	polls.RegisterRoutes(app, pollsController, auther)

	errc := make(chan error, 1)
	go func() {
		errc <- app.Listen(cfg.Addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		return err
	case <-quit:
		appLogger.Info("shutting down...")
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}

func createSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*auth.User)(nil),
		(*auth.RefreshToken)(nil),
		(*auth.EmailVerification)(nil),
		(*polls.Poll)(nil),
		(*polls.Option)(nil),
		(*polls.Vote)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}
	}

	return nil
}
