package commands

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jakechorley/interview-allocator/internal/config"
	"github.com/jakechorley/interview-allocator/pkg/clients/gmailclient"
	"github.com/jakechorley/interview-allocator/pkg/clients/sheetsclient"
	"github.com/jakechorley/interview-allocator/pkg/db"
	"github.com/jakechorley/interview-allocator/pkg/utils"
)

// Migrator applies the embedded schema migrations
type Migrator interface {
	RunMigrations(ctx context.Context) ([]string, error)
}

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env      string
	Cfg      *config.Config
	Database db.Database
	Migrator Migrator
	Logger   *zap.Logger
	Ctx      context.Context

	// Google clients are created on first use so commands that only touch the
	// database never start the OAuth flow
	googleOnce   sync.Once
	googleErr    error
	sheetsClient *sheetsclient.Client
	gmailClient  *gmailclient.Client
}

// SheetsClient returns the Sheets client, authenticating on first use
func (app *AppContext) SheetsClient() (*sheetsclient.Client, error) {
	app.initGoogle()
	return app.sheetsClient, app.googleErr
}

// GmailClient returns the Gmail client, authenticating on first use
func (app *AppContext) GmailClient() (*gmailclient.Client, error) {
	app.initGoogle()
	return app.gmailClient, app.googleErr
}

// initGoogle runs one OAuth flow whose token is shared by both clients
func (app *AppContext) initGoogle() {
	app.googleOnce.Do(func() {
		app.Logger.Info("Loading OAuth client configuration")
		oauthCfg, err := config.LoadOAuthClientWithEnv(app.Env)
		if err != nil {
			app.googleErr = fmt.Errorf("failed to load OAuth client config: %w", err)
			return
		}

		oauthConfig, err := utils.GetOAuthConfig(oauthCfg)
		if err != nil {
			app.googleErr = err
			return
		}

		store, err := utils.NewTokenStore("")
		if err != nil {
			app.googleErr = err
			return
		}
		auth := utils.NewAuthenticator(oauthConfig, store, app.Env, app.Logger)

		app.Logger.Info("Initializing sheets client")
		app.sheetsClient, err = sheetsclient.NewClient(app.Ctx, auth)
		if err != nil {
			app.googleErr = fmt.Errorf("failed to create sheets client: %w", err)
			return
		}

		app.Logger.Info("Initializing gmail client")
		app.gmailClient, err = gmailclient.NewClient(app.Ctx, auth, app.Cfg.GmailUserID, app.Cfg.GmailSender)
		if err != nil {
			app.googleErr = fmt.Errorf("failed to create gmail client: %w", err)
			return
		}
		app.Logger.Debug("Google clients initialized successfully")
	})
}
