package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/themilan1337/nerdie/internal/chat"
	"github.com/themilan1337/nerdie/internal/ingestion"
	"github.com/themilan1337/nerdie/internal/middleware"
	"github.com/themilan1337/nerdie/internal/server"
	"github.com/themilan1337/nerdie/pkg/logger"
)

func newLoginCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in with Google",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.auth.IsAuthenticated() {
				fmt.Println(successStyle.Render("Already signed in."))
				return nil
			}
			if err := a.auth.SignIn(cmd.Context()); err != nil {
				return fmt.Errorf("sign-in failed: %s", a.auth.LastError())
			}
			if a.detached {
				fmt.Println("Complete the sign-in in your browser; the next command picks it up.")
				return nil
			}
			record := a.auth.SessionRecord()
			if record == nil {
				return fmt.Errorf("sign-in did not produce a session")
			}
			fmt.Println(successStyle.Render("Signed in as " + record.Email))
			return nil
		},
	}
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.auth.SignOut(cmd.Context()); err != nil {
				// Local state is cleared regardless; report and move on.
				logger.Warn("Provider sign-out reported an error", "error", err)
			}
			fmt.Println("Signed out.")
			return nil
		},
	}
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := a.auth.FetchCurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("%s <%s>\n", info.DisplayName, info.Email)
			return nil
		},
	}
}

func newCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Probe whether the stored session is still valid",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.auth.CheckValidity(cmd.Context()) {
				fmt.Println(successStyle.Render("Session is valid."))
				return nil
			}
			fmt.Println(errorStyle.Render("Session is not valid."))
			return nil
		},
	}
}

func newChatCommand(a *app) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask questions over your ingested documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			record := a.auth.SessionRecord()
			if record == nil {
				stored, err := a.sessions.LoadSession()
				if err != nil || stored == nil {
					return fmt.Errorf("sign in first: nerdie login")
				}
				record = stored
			}

			if sessionID == "" {
				sessionID = a.chats.CreateSession("")
			} else {
				a.chats.SetCurrentSession(sessionID)
			}

			fmt.Println("Type a question, or /quit to leave.")
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print(promptStyle.Render("> "))
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "/quit" || line == "/q" {
					return nil
				}

				if err := a.chats.AddMessage(sessionID, chat.NewUserMessage(line)); err != nil {
					return err
				}

				answer, err := a.rag.Query(cmd.Context(), line, record.UID)
				if err != nil {
					fmt.Println(errorStyle.Render(err.Error()))
					continue
				}

				message := chat.NewAssistantMessage(answer.Answer, answer.Sources)
				if err := a.chats.AddMessage(sessionID, message); err != nil {
					return err
				}
				fmt.Println(renderAssistantMessage(message))
			}
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "continue an existing chat session")
	return cmd
}

func newIngestCommand(a *app) *cobra.Command {
	var text string
	cmd := &cobra.Command{
		Use:   "ingest [file]",
		Short: "Ingest a document or raw text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if text != "" {
				resp, err := a.ingestion.IngestText(cmd.Context(), ingestion.TextInput{Text: text})
				if err != nil {
					return err
				}
				fmt.Printf("Ingested text: %d chunks, %d embeddings\n", resp.Chunks, resp.Embeddings)
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("provide a file or --text")
			}

			resp, err := a.ingestion.UploadDocument(cmd.Context(), args[0], func(percent int) {
				fmt.Printf("\rUploading... %d%%", percent)
			})
			fmt.Println()
			if err != nil {
				return err
			}
			fmt.Printf("Ingested %s: %d chunks, %d embeddings\n", args[0], resp.Chunks, resp.Embeddings)
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "ingest raw text instead of a file")
	return cmd
}

func newDocsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "docs",
		Short: "List ingested documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			documents, err := a.ingestion.FetchDocuments(cmd.Context())
			if err != nil {
				return err
			}
			if len(documents) == 0 {
				fmt.Println("No documents ingested yet.")
				return nil
			}
			for _, doc := range documents {
				fmt.Printf("%-30s %-8s %-10s chunks=%d\n", doc.Name, doc.Type, doc.Status, doc.Chunks)
			}
			return nil
		},
	}
}

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local UI server",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Another process signing in or out rewrites the storage file;
			// stale guard decisions must not outlive that.
			if err := a.storage.Watch(func() {
				logger.Info("Session storage changed externally")
				middleware.PurgeGuardCache()
			}); err != nil {
				logger.Warn("Could not watch session storage", "error", err)
			}

			srv := server.NewServer(a.cfg, server.Deps{
				Auth:      a.auth,
				Sessions:  a.sessions,
				Guards:    a.guards,
				Chats:     a.chats,
				Ingestion: a.ingestion,
				Rag:       a.rag,
			})
			logger.Info("Serving", "addr", srv.Addr)
			return srv.ListenAndServe()
		},
	}
}
