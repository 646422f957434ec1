package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mkrupp/storefront/internal/app"
	"github.com/mkrupp/storefront/internal/infra/config"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/repo/account"
	"github.com/mkrupp/storefront/internal/repo/blob"
	"github.com/mkrupp/storefront/internal/repo/suggestion"
	"github.com/mkrupp/storefront/internal/svc/accountsvc"
	"github.com/mkrupp/storefront/internal/svc/avatarsvc"
	"github.com/mkrupp/storefront/internal/svc/catalogsvc"
	"github.com/mkrupp/storefront/internal/svc/profilesvc"
	"github.com/mkrupp/storefront/internal/svc/sessionsvc"
	"github.com/mkrupp/storefront/internal/svc/suggestionsvc"
)

const (
	appName = "demo"
	svcName = "storefront"
)

type Config struct {
	Log        logging.LoggerConfig                      `envPrefix:"LOG_"`
	Account    accountsvc.AccountConfig                  `envPrefix:"ACCOUNT_"`
	Store      account.RepositoryConfig                  `envPrefix:"STORE_"`
	Suggestion suggestion.FileSuggestionRepositoryConfig `envPrefix:"SUGGESTION_"`
	Avatar     avatarsvc.AvatarConfig                    `envPrefix:"AVATAR_"`
	Catalog    catalogsvc.CatalogConfig                  `envPrefix:"CATALOG_"`
	Blob       blob.FileSystemBlobRepositoryConfig       `envPrefix:"BLOB_"`
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		fail(err)
	}

	if err := logging.Configure(ctx, cfg.Log, loggerName); err != nil {
		fail(err)
	}

	if err := run(ctx, cfg); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "storefront:", err)
	os.Exit(1)
}

func run(ctx context.Context, cfg Config) (err error) {
	log := logging.GetLogger("cmd.storefront")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
		} else {
			log.InfoContext(ctx, "shutdown")
		}
	}()

	blobFactory := blob.FileSystemBlobRepositoryFactory(cfg.Blob)

	avatarSvc, err := avatarsvc.NewAvatarService(ctx, blobFactory, cfg.Avatar)
	if err != nil {
		return fmt.Errorf("new avatar service: %w", err)
	}

	accountSvc, err := accountsvc.NewAccountService(ctx, account.RepositoryFactoryFor(cfg.Store), avatarSvc, cfg.Account)
	if err != nil {
		return fmt.Errorf("new account service: %w", err)
	}
	defer accountSvc.Close()

	session := sessionsvc.NewSessionManager(accountSvc)

	suggestionSvc, err := suggestionsvc.NewSuggestionService(
		ctx,
		suggestion.FileSuggestionRepositoryFactory(cfg.Suggestion),
		session,
	)
	if err != nil {
		return fmt.Errorf("new suggestion service: %w", err)
	}

	catalogSvc, err := catalogsvc.NewCatalogService(ctx, blobFactory, cfg.Catalog)
	if err != nil {
		return fmt.Errorf("new catalog service: %w", err)
	}

	log.InfoContext(ctx, "startup", "store", cfg.Store.Driver)

	repl := app.NewApp(app.Services{
		Accounts:    accountSvc,
		Session:     session,
		Profile:     profilesvc.NewProfileService(accountSvc, session, cfg.Account),
		Suggestions: suggestionSvc,
		Avatars:     avatarSvc,
		Catalog:     catalogSvc,
	}, os.Stdin, os.Stdout).WithTerminal(int(os.Stdin.Fd()))

	if err := repl.Run(ctx); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	return nil
}
