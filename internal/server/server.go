package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/matthieukhl/deckaudit/internal/audit"
	"github.com/matthieukhl/deckaudit/internal/config"
	"github.com/matthieukhl/deckaudit/internal/ingest"
	"github.com/matthieukhl/deckaudit/internal/policy"
)

type Server struct {
	router *gin.Engine
	cfg    *config.Config
	log    *zap.Logger
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, log *zap.Logger) *Server {
	router := gin.Default()

	server := &Server{
		router: router,
		cfg:    cfg,
		log:    log,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.healthCheck)
		api.GET("/audit", s.runAudit)
	}
}

// healthCheck endpoint for monitoring
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "deckaudit",
		"version": "0.1.0",
	})
}

type sectionSummary struct {
	Heading string `json:"heading"`
	Count   int    `json:"count"`
}

// runAudit loads the deck from the configured source, runs every query,
// and returns the report as JSON. Each request is an independent run;
// nothing is cached between requests.
func (s *Server) runAudit(c *gin.Context) {
	started := time.Now()

	doc, err := policy.Load(s.cfg.Audit.PolicyPath)
	if err != nil {
		s.fail(c, "failed to load policy", err)
		return
	}
	rules, err := doc.Compile()
	if err != nil {
		s.fail(c, "failed to compile policy", err)
		return
	}

	orders, hotlist, err := ingest.Load(c.Request.Context(), s.cfg)
	if err != nil {
		s.fail(c, "failed to load deck", err)
		return
	}

	auditor, err := audit.NewAuditor(rules, orders, hotlist)
	if err != nil {
		s.fail(c, "failed to build auditor", err)
		return
	}
	report := auditor.BuildReport()

	sections := make([]sectionSummary, 0, len(report.Sections))
	for _, section := range report.Sections {
		sections = append(sections, sectionSummary{
			Heading: section.Heading,
			Count:   len(section.Orders),
		})
	}

	s.log.Info("audit run complete",
		zap.Int("orders", len(auditor.Orders())),
		zap.Int("changes_needed", len(report.Changes)),
		zap.Duration("elapsed", time.Since(started)),
	)

	c.JSON(http.StatusOK, gin.H{
		"generated_at":   time.Now().UTC(),
		"orders_audited": len(auditor.Orders()),
		"changes_needed": len(report.Changes),
		"sections":       sections,
		"text":           report.Text(),
	})
}

func (s *Server) fail(c *gin.Context, msg string, err error) {
	s.log.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"status": "error",
		"error":  msg + ": " + err.Error(),
	})
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}
