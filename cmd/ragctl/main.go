// Command ragctl runs operator tasks against the same database as the API:
// schema migration, demo ingestion, ad-hoc queries and audit review.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"docrag/internal/bootstrap"
	"docrag/internal/config"
	handlers "docrag/internal/http/handler"
	"docrag/internal/logging"
	"docrag/internal/model"
	"docrag/internal/repository"
)

var (
	workspaceID string
	actorEmail  string
	jsonOutput  bool
)

var rootCmd = &cobra.Command{
	Use:           "ragctl",
	Short:         "Operate the policy-filtered retrieval service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output results as JSON")
}

// env is what the workspace commands operate on.
type env struct {
	users    repository.UserRepository
	services handlers.Services
	close    func() error
}

// openEnv is replaced in tests.
var openEnv = func(ctx context.Context) (*env, error) {
	cfg := config.Load()
	app, err := bootstrap.New(ctx, cfg, newLogger(cfg))
	if err != nil {
		return nil, err
	}
	return &env{users: app.Users, services: app.Services, close: app.Close}, nil
}

func newLogger(cfg *config.AppConfig) *slog.Logger {
	return logging.New(os.Stderr, cfg.LogLevel, logging.LoadLocation(cfg.Timezone))
}

// addWorkspaceFlags registers the flags every workspace-scoped command needs.
func addWorkspaceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&workspaceID, "workspace", "w", "", "workspace id")
	cmd.Flags().StringVar(&actorEmail, "as", "", "email of the acting user")
	_ = cmd.MarkFlagRequired("workspace")
	_ = cmd.MarkFlagRequired("as")
}

// actor resolves --as to a registered user. Membership and role are checked
// by the services, exactly as for HTTP callers.
func (e *env) actor(ctx context.Context, email string) (model.Actor, error) {
	u, err := e.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Actor{}, fmt.Errorf("no user registered as %q", email)
		}
		return model.Actor{}, err
	}
	return model.Actor{UserID: u.ID, Email: u.Email}, nil
}

// withActor opens the environment, resolves the acting user and runs fn.
func withActor(cmd *cobra.Command, fn func(ctx context.Context, e *env, actor model.Actor) error) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	actor, err := e.actor(ctx, actorEmail)
	if err != nil {
		return err
	}
	return fn(ctx, e, actor)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
