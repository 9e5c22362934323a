// Package server exposes attendance.Service as the JSON API the web client
// talks to.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"attendance-backend/lib/telemetry"
	"attendance-backend/services/attendance"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = telemetry.Tracer("attendance.services.attendance.server")

const (
	report_server_fetch = "server.fetch"
	report_server_probe = "server.probe"
)

type Fetcher interface {
	Fetch(ctx context.Context, cred attendance.Credential) (attendance.Report, error)
}

type Prober interface {
	Check(ctx context.Context) error
}

type Options struct {
	// Threshold is the percentage margins are computed against.
	Threshold    float64
	AllowOrigins []string
}

type Server struct {
	fetcher Fetcher
	prober  Prober
	opts    Options
	tel     telemetry.API
}

// NewServer creates the api server, prober may be nil in which case
// /healthz only reports liveness.
func NewServer(fetcher Fetcher, prober Prober, opts Options, tel telemetry.API) Server {
	if opts.Threshold <= 0 {
		opts.Threshold = attendance.DefaultThreshold
	}
	return Server{
		fetcher: fetcher,
		prober:  prober,
		opts:    opts,
		tel:     telemetry.NewScopedAPI("server", tel),
	}
}

func requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	slog.Debug(
		"request",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"status", c.Writer.Status(),
		"duration", time.Since(start),
	)
}

// Handler builds the gin engine, gin's mode is left to the caller.
func (s Server) Handler() http.Handler {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger)

	config := cors.DefaultConfig()
	if len(s.opts.AllowOrigins) > 0 {
		config.AllowOrigins = s.opts.AllowOrigins
	} else {
		config.AllowAllOrigins = true
	}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	config.AllowMethods = []string{"GET", "POST"}
	engine.Use(cors.New(config))

	engine.GET("/healthz", s.health)
	api := engine.Group("/api")
	{
		api.POST("/attendance", s.attendance)
	}
	return engine
}

func (s Server) attendance(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "attendance")
	defer span.End()

	var req fetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Username and password are required"})
		return
	}

	report, err := s.fetcher.Fetch(ctx, attendance.Credential{
		Identifier: req.Username,
		Secret:     req.Password,
	})
	status := HTTPStatus(err)
	span.SetAttributes(attribute.Int("status", status))
	if err != nil {
		if status == http.StatusInternalServerError {
			s.tel.ReportBroken(report_server_fetch, err)
		}
		c.JSON(status, errorResponse{Error: PublicMessage(err)})
		return
	}

	c.JSON(http.StatusOK, newFetchResponse(report, s.opts.Threshold))
}

func (s Server) health(c *gin.Context) {
	if c.Query("probe") == "" || s.prober == nil {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		return
	}

	ctx, span := tracer.Start(c.Request.Context(), "health")
	defer span.End()

	err := s.prober.Check(ctx)
	if err != nil {
		s.tel.ReportWarning(report_server_probe, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unreachable",
			"error":  attendance.MessagePortalUnreachable,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "portal": "reachable"})
}
