// Command profile-service runs the profile HTTP API and its maintenance
// commands.
//
// @title Profile Service API
// @version 1.0
// @description Login, profile and profile picture endpoints.
// @contact.name API Support
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize
package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/user/profile-service/auth"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: error loading .env file: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:           "profile-service",
		Usage:          "user profile API",
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "start the HTTP server",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "migrate", Usage: "apply database migrations before serving"},
				},
				Action: func(c *cli.Context) error {
					return runServe(c.Context, c.Bool("migrate"))
				},
			},
			{
				Name:  "migrate",
				Usage: "apply database migrations and exit",
				Action: func(c *cli.Context) error {
					return runMigrate()
				},
			},
			{
				Name:  "create-user",
				Usage: "create a user account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"CREATE_USER_PASSWORD"}},
					&cli.StringFlag{Name: "role", Value: auth.RoleUser, Usage: "user or admin"},
				},
				Action: func(c *cli.Context) error {
					return runCreateUser(c.Context, c.String("username"), c.String("password"), c.String("role"))
				},
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatalf("%v", err)
	}
}
