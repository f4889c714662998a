package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"dirmerge/internal/logger"
	"dirmerge/internal/model"
	"dirmerge/internal/repository"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Server exposes a processed tree read-only over HTTP.
type Server struct {
	echo     *echo.Echo
	tree     *model.Tree
	histRepo *repository.HistoryRepository
	port     int
	stopCh   chan struct{}
}

// New serves tree. histRepo may be nil when history is disabled.
func New(tree *model.Tree, histRepo *repository.HistoryRepository, port int) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:     e,
		tree:     tree,
		histRepo: histRepo,
		port:     port,
		stopCh:   make(chan struct{}, 1),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/summary", s.handleSummary)
	s.echo.GET("/tree", s.handleTree)
	s.echo.GET("/nodes/:id", s.handleNode)
	s.echo.GET("/history", s.handleHistory)
	s.echo.POST("/stop", s.handleStop)
}

func (s *Server) Start() {
	go func() {
		addr := ":" + strconv.Itoa(s.port)
		logger.Log.Info("inspection server started",
			zap.String("addr", addr))

		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("inspection server error", zap.Error(err))
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) StopCh() <-chan struct{} {
	return s.stopCh
}

type entry struct {
	ID          model.NodeID   `json:"id"`
	Path        string         `json:"path"`
	IsDir       bool           `json:"is_dir"`
	Location    model.Location `json:"location"`
	Status      model.Status   `json:"status"`
	Differences string         `json:"differences"`
	FileType    model.FileType `json:"file_type"`
	Unresolved  int            `json:"unresolved"`
	Error       string         `json:"error,omitempty"`
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (s *Server) handleTree(c echo.Context) error {
	var entries []entry
	s.tree.Walk(func(n *model.Node) bool {
		entries = append(entries, entry{
			ID:          n.ID,
			Path:        n.Path,
			IsDir:       n.IsDir,
			Location:    n.Location,
			Status:      n.Status,
			Differences: string(n.Differences),
			FileType:    n.FileType,
			Unresolved:  n.Unresolved(),
			Error:       errString(n.Err),
		})
		return true
	})

	return c.JSON(http.StatusOK, entries)
}

type nodeView struct {
	*model.Node
	Error string `json:"error,omitempty"`
}

func (s *Server) handleNode(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if id < 0 || id >= s.tree.Len() {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "node not found"})
	}

	n := s.tree.Node(model.NodeID(id))
	return c.JSON(http.StatusOK, nodeView{Node: n, Error: errString(n.Err)})
}

func (s *Server) handleSummary(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"mode":     s.tree.Mode,
		"roots":    s.tree.Roots,
		"nodes":    s.tree.Len(),
		"statuses": s.tree.Summary(),
	})
}

func (s *Server) handleHistory(c echo.Context) error {
	if s.histRepo == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "history disabled"})
	}

	n := 50
	if v := c.QueryParam("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid n"})
		}
		n = parsed
	}

	histories, err := s.histRepo.GetRecent(c.Request().Context(), n)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, histories)
}

func (s *Server) handleStop(c echo.Context) error {
	select {
	case s.stopCh <- struct{}{}:
	default:
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "stopping"})
}
