package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/vbonduro/hbnb/internal/apperror"
	"github.com/vbonduro/hbnb/internal/auth"
	"github.com/vbonduro/hbnb/internal/config"
	"github.com/vbonduro/hbnb/internal/db"
	"github.com/vbonduro/hbnb/internal/domain"
	"github.com/vbonduro/hbnb/internal/logging"
	"github.com/vbonduro/hbnb/internal/service"
	"github.com/vbonduro/hbnb/internal/store/memory"
	"github.com/vbonduro/hbnb/internal/store/sqlite"
	"github.com/vbonduro/hbnb/internal/web"
)

func main() {
	app := &cli.App{
		Name:  "hbnb",
		Usage: "lodging rental API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "dotenv file to load before reading configuration",
			},
		},
		Before: func(c *cli.Context) error {
			return config.LoadDotEnv(c.String("env-file"))
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:  "create-admin",
				Usage: "create an administrator in the configured store",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ADMIN_PASSWORD"}},
					&cli.StringFlag{Name: "first-name", Value: "Admin"},
					&cli.StringFlag{Name: "last-name", Value: "User"},
				},
				Action: createAdmin,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// deps holds what every command needs once configuration is loaded.
type deps struct {
	cfg     *config.Config
	logger  *slog.Logger
	facade  *service.Facade
	cleanup func()
}

func setup() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	rt := &deps{cfg: cfg, logger: logger, cleanup: closeLog}

	switch cfg.StoreBackend {
	case config.BackendSQLite:
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			closeLog()
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		rt.facade = newSQLiteFacade(database, hasher, logger)
		rt.cleanup = func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
			closeLog()
		}
		logger.Info("using sqlite store", "path", cfg.DBPath)
	default:
		rt.facade = service.NewFacade(
			memory.New[*domain.User](),
			memory.New[*domain.Place](),
			memory.New[*domain.Review](),
			memory.New[*domain.Amenity](),
			hasher,
			logger,
		)
		logger.Info("using in-memory store")
	}
	return rt, nil
}

func newSQLiteFacade(database *sql.DB, hasher domain.PasswordHasher, logger *slog.Logger) *service.Facade {
	return service.NewFacade(
		sqlite.NewUserStore(database),
		sqlite.NewPlaceStore(database),
		sqlite.NewReviewStore(database),
		sqlite.NewAmenityStore(database),
		hasher,
		logger,
	)
}

func serve(c *cli.Context) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.cleanup()

	if rt.cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	if rt.cfg.AdminEmail != "" && rt.cfg.AdminPassword != "" {
		if err := ensureAdmin(c.Context, rt.facade, rt.logger, rt.cfg.AdminEmail, rt.cfg.AdminPassword, "Admin", "User"); err != nil {
			return err
		}
	}

	server := web.NewServer(rt.facade, auth.NewTokenIssuer(rt.cfg.JWTSecret, rt.cfg.TokenTTL), rt.logger)
	if err := server.ListenAndServe(rt.cfg.ListenAddr); err != nil {
		rt.logger.Error("server error", "error", err)
		return err
	}
	return nil
}

func createAdmin(c *cli.Context) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.cleanup()

	if rt.cfg.StoreBackend == config.BackendMemory {
		return errors.New("create-admin needs STORE_BACKEND=sqlite; the memory store does not persist")
	}
	return ensureAdmin(c.Context, rt.facade, rt.logger, c.String("email"), c.String("password"), c.String("first-name"), c.String("last-name"))
}

// ensureAdmin creates an administrator unless a user with that email exists.
func ensureAdmin(ctx context.Context, facade *service.Facade, logger *slog.Logger, email, password, first, last string) error {
	user, err := facade.CreateUser(ctx, domain.UserInput{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Password:  password,
		IsAdmin:   true,
	})
	if errors.Is(err, apperror.ErrEmailInUse) {
		logger.Info("admin already present", "email", email)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	logger.Info("admin created", "user_id", user.ID)
	return nil
}
