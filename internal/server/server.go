package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/themilan1337/nerdie/internal/auth/guard"
	"github.com/themilan1337/nerdie/internal/auth/repository"
	"github.com/themilan1337/nerdie/internal/auth/usecase"
	"github.com/themilan1337/nerdie/internal/chat"
	"github.com/themilan1337/nerdie/internal/config"
	"github.com/themilan1337/nerdie/internal/ingestion"
	"github.com/themilan1337/nerdie/internal/rag"
)

// Server is the local UI server: it exposes the client's route surface and
// enforces the dashboard guard on it.
type Server struct {
	cfg *config.Config

	auth      usecase.AuthUsecase
	sessions  repository.SessionRepository
	guards    *guard.Guards
	chats     *chat.Store
	ingestion *ingestion.Client
	rag       *rag.Client
}

type Deps struct {
	Auth      usecase.AuthUsecase
	Sessions  repository.SessionRepository
	Guards    *guard.Guards
	Chats     *chat.Store
	Ingestion *ingestion.Client
	Rag       *rag.Client
}

func NewServer(cfg *config.Config, deps Deps) *http.Server {
	s := &Server{
		cfg:       cfg,
		auth:      deps.Auth,
		sessions:  deps.Sessions,
		guards:    deps.Guards,
		chats:     deps.Chats,
		ingestion: deps.Ingestion,
		rag:       deps.Rag,
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
