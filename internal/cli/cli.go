package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/themilan1337/nerdie/internal/auth/exchange"
	"github.com/themilan1337/nerdie/internal/auth/guard"
	"github.com/themilan1337/nerdie/internal/auth/identity"
	"github.com/themilan1337/nerdie/internal/auth/repository"
	"github.com/themilan1337/nerdie/internal/auth/usecase"
	"github.com/themilan1337/nerdie/internal/chat"
	"github.com/themilan1337/nerdie/internal/config"
	"github.com/themilan1337/nerdie/internal/ingestion"
	"github.com/themilan1337/nerdie/internal/rag"
	"github.com/themilan1337/nerdie/pkg/crypto"
	"github.com/themilan1337/nerdie/pkg/logger"
)

// app wires the client together. One instance per process, created at
// startup and shared by every command.
type app struct {
	cfg      *config.Config
	storage  *repository.FileStorage
	sessions *repository.SessionStore
	bridge   *identity.Bridge
	auth     usecase.AuthUsecase
	guards   *guard.Guards
	chats    *chat.Store
	chatDB   *chat.SQLiteStore

	ingestion *ingestion.Client
	rag       *rag.Client

	detached bool
}

// routeLogger is the CLI's navigator: a route change is an announcement,
// not a page load.
type routeLogger struct{}

func (routeLogger) Navigate(route string) error {
	logger.Info("Navigating", "route", route)
	return nil
}

func (a *app) init(cmd *cobra.Command) error {
	logger.Init()
	a.cfg = config.Load()

	if a.cfg.StorageEncryptionKey != "" {
		if err := crypto.SetEncryptionKey(a.cfg.StorageEncryptionKey); err != nil {
			return fmt.Errorf("invalid storage encryption key: %w", err)
		}
	}

	storage, err := repository.NewFileStorage(a.cfg.SessionStoragePath())
	if err != nil {
		return err
	}
	a.storage = storage
	a.sessions = repository.NewSessionStore(storage)

	strategy := a.cfg.SignInStrategy
	if a.detached {
		strategy = identity.StrategyRedirect
	}
	provider := identity.NewGoogleProvider(identity.GoogleConfig{
		ClientID:          a.cfg.GoogleClientID,
		ClientSecret:      a.cfg.GoogleClientSecret,
		CallbackPort:      a.cfg.CallbackPort,
		Strategy:          strategy,
		PendingResultPath: a.cfg.PendingSignInPath(),
	})
	a.bridge = identity.NewBridge(provider)

	exchanger := exchange.NewClient(a.cfg.AuthServiceURL, a.sessions)
	a.auth = usecase.NewAuthService(a.bridge, exchanger, a.sessions, routeLogger{}, usecase.Routes{
		SignIn:    a.cfg.SignInRoute,
		Dashboard: a.cfg.DashboardRoute,
	}, a.cfg.AuthServiceURL)

	a.guards = guard.New(a.sessions, guard.Routes{
		SignIn:          a.cfg.SignInRoute,
		Dashboard:       a.cfg.DashboardRoute,
		DashboardPrefix: a.cfg.DashboardRoute,
	})

	chatDB, err := chat.NewSQLiteStore(a.cfg.ChatDatabasePath())
	if err != nil {
		return err
	}
	a.chatDB = chatDB
	chats, err := chat.NewPersistentStore(chatDB)
	if err != nil {
		return err
	}
	a.chats = chats

	a.ingestion = ingestion.NewClient(a.cfg.IngestionServiceURL, a.auth)
	a.rag = rag.NewClient(a.cfg.RagServiceURL, a.auth)

	// Every startup is a potential tail of a redirect sign-in; resolving
	// unconditionally is what makes the flow converge.
	if record, err := a.auth.Bootstrap(cmd.Context()); err != nil {
		logger.Warn("Could not complete a pending sign-in", "error", err)
	} else if record != nil {
		logger.Info("Completed pending sign-in", "uid", record.UID)
	}
	return nil
}

func (a *app) close() {
	if a.chatDB != nil {
		a.chatDB.Close()
	}
	if a.storage != nil {
		a.storage.Close()
	}
}

// NewRootCommand builds the nerdie CLI.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "nerdie",
		Short:         "Chat with your documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	root.PersistentFlags().BoolVar(&a.detached, "detached", false, "use the detached redirect sign-in strategy")

	root.AddCommand(
		newLoginCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newCheckCommand(a),
		newChatCommand(a),
		newIngestCommand(a),
		newDocsCommand(a),
		newServeCommand(a),
	)
	return root
}
