// Package httpapi wires the engine's HTTP surface: POST /intents/dustZap
// and GET /intents/{id}/stream, per spec.md §6. Grounded on
// DimaJoyti-go-coffee's gin router setup — the only repo in the pack that
// builds an actual HTTP server around a DeFi engine.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zappilot/dustzap/internal/execctx"
	"github.com/zappilot/dustzap/internal/intent"
	"github.com/zappilot/dustzap/internal/stream"
	"github.com/zappilot/dustzap/pkg/dzerrors"
)

// Server bundles the registry, context store, and streaming pipeline
// behind the HTTP surface.
type Server struct {
	Registry *intent.Registry
	Store    *execctx.Store
	Pipeline *stream.Pipeline
}

func NewServer(registry *intent.Registry, store *execctx.Store, pipeline *stream.Pipeline) *Server {
	return &Server{Registry: registry, Store: store, Pipeline: pipeline}
}

// Router builds the gin engine exposing the dust-zap HTTP surface.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.POST("/intents/dustZap", s.handleCreateIntent)
	r.GET("/intents/:id/stream", s.handleStream)
	return r
}

func (s *Server) handleCreateIntent(c *gin.Context) {
	var req intent.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": dzerrors.KindValidation, "message": err.Error()})
		return
	}

	result, dzErr := s.Registry.Dispatch(c.Request.Context(), "dustZap", req)
	if dzErr != nil {
		c.JSON(statusForKind(dzErr.Kind), gin.H{"error": dzErr.Kind, "message": dzErr.Message})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleStream(c *gin.Context) {
	id := c.Param("id")

	execCtx, ok := s.Store.Take(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": dzerrors.KindNotFound, "message": "unknown or expired intent"})
		return
	}

	if err := s.Pipeline.Serve(c.Writer, c.Request, execCtx); err != nil {
		// A disconnect or write failure mid-stream is silent to the client
		// per spec.md §7 — the connection is already gone.
		return
	}
}
