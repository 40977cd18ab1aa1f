package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	guardMiddleware "github.com/themilan1337/nerdie/internal/middleware"
	"github.com/themilan1337/nerdie/pkg/logger"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XFrameOptions:      "DENY",
		ContentTypeNosniff: "nosniff",
		XSSProtection:      "1; mode=block",
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit("2MB"))

	guardMiddleware.InitGuardMiddleware(s.guards)
	e.Use(guardMiddleware.DashboardGuardMiddleware(s.sessions))

	e.GET("/health", s.healthHandler)
	e.GET(s.cfg.SignInRoute, s.signInPageHandler)

	dashboard := e.Group(s.cfg.DashboardRoute)
	dashboard.GET("", s.dashboardHandler)
	dashboard.GET("/documents", s.documentsHandler)
	dashboard.GET("/chats", s.chatsHandler)
	dashboard.POST("/logout", s.logoutHandler)

	return e
}

func (s *Server) healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status": "ok",
		"rag":    s.rag.Health(c.Request().Context()),
	})
}

// signInPageHandler is the unauthenticated landing route. An already
// authenticated visitor is bounced to the dashboard by the guest guard.
func (s *Server) signInPageHandler(c echo.Context) error {
	if decision := s.guards.RequireGuest(); !decision.Allowed() {
		return c.Redirect(http.StatusFound, decision.Redirect)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Sign in with the nerdie CLI: nerdie login",
	})
}

func (s *Server) dashboardHandler(c echo.Context) error {
	record := s.auth.SessionRecord()
	if record == nil {
		// The guard admitted us off persisted state; surface that view.
		stored, err := s.sessions.LoadSession()
		if err != nil {
			logger.Error("Failed to load session record:", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
		}
		record = stored
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":  record,
		"state": s.auth.State().String(),
	})
}

func (s *Server) documentsHandler(c echo.Context) error {
	documents, err := s.ingestion.FetchDocuments(c.Request().Context())
	if err != nil {
		logger.Error("Failed to fetch documents:", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, documents)
}

func (s *Server) chatsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, s.chats.RecentChats())
}

func (s *Server) logoutHandler(c echo.Context) error {
	if token, ok := s.sessions.IDToken(); ok {
		guardMiddleware.InvalidateGuardCache(token)
	}
	if err := s.auth.SignOut(c.Request().Context()); err != nil {
		logger.Error("Error during logout:", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}
