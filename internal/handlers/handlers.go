// Package handlers implements the HTTP surface: chat (streaming and not),
// code generation, the multi-agent project pipeline, web search, and
// weather lookup.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rafiq-chat/internal/agents"
	"rafiq-chat/internal/ai"
	"rafiq-chat/internal/logging"
	"rafiq-chat/internal/weather"
	"rafiq-chat/internal/websearch"
)

// TurnRunner runs one chat turn to a terminal outcome.
type TurnRunner interface {
	Run(ctx context.Context, req *ai.TurnRequest, sink ai.Sink) (*ai.TurnResult, error)
}

// Searcher gathers ranked web results.
type Searcher interface {
	Search(ctx context.Context, query, lang string) []websearch.Result
}

// WeatherLookup resolves a location to its weather report.
type WeatherLookup interface {
	Lookup(ctx context.Context, location string) (*weather.Report, error)
}

// ProjectRunner executes one multi-agent project-generation run.
type ProjectRunner interface {
	Execute(ctx context.Context, runID, prompt string, progress func(agents.ProgressUpdate)) (*agents.ProjectResult, error)
}

// Handler carries the wired dependencies for every route.
type Handler struct {
	engine   TurnRunner
	gatherer Searcher
	weather  WeatherLookup
	projects ProjectRunner
	hub      *agents.Hub
	registry *ai.Registry
	log      *zap.Logger
}

// New assembles a handler.
func New(engine TurnRunner, gatherer Searcher, w WeatherLookup, projects ProjectRunner, hub *agents.Hub, registry *ai.Registry) *Handler {
	return &Handler{
		engine:   engine,
		gatherer: gatherer,
		weather:  w,
		projects: projects,
		hub:      hub,
		registry: registry,
		log:      logging.L(),
	}
}

// Register mounts every route on the router.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.POST("/chat", h.Chat)
	api.POST("/code", h.Code)
	api.POST("/search", h.Search)
	api.POST("/weather", h.Weather)
	api.POST("/agents/project", h.GenerateProject)
	api.GET("/agents/ws", h.WatchProject)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
