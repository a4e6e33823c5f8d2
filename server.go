package backend

import (
	"fmt"
	"sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/floorguard/claims-backend/pkg/claims"
	"github.com/floorguard/claims-backend/pkg/detection"
	"github.com/floorguard/claims-backend/pkg/extraction"
	"github.com/floorguard/claims-backend/pkg/storage/model"
	"github.com/floorguard/claims-backend/pkg/wizard"
)

// Server exposes the claim wizard and the claim store to the mobile client.
type Server struct {
	e         *gin.Engine
	store     *claims.Store
	photos    model.RWStorage
	extractor *extraction.Client
	detector  *detection.Client

	sessionsMu sync.Mutex
	sessions   map[string]*wizard.Session
	photoSeq   map[string]int
}

var log = logrus.StandardLogger().WithField("package", "backend")

func New(store *claims.Store, photos model.RWStorage, extractor *extraction.Client, detector *detection.Client) *Server {
	s := Server{
		e:         gin.New(),
		store:     store,
		photos:    photos,
		extractor: extractor,
		detector:  detector,
		sessions:  map[string]*wizard.Session{},
		photoSeq:  map[string]int{},
	}

	s.initRoutes()
	return &s
}

func (s *Server) Run(addr string) error {
	return s.e.Run(addr)
}

func (s *Server) initRoutes() {
	s.e.Use(gin.Logger())
	s.e.Use(cors.Default())

	g := s.e.Group("/api/v1")
	g.POST("/login", s.handleLogin)

	g.GET("/claims", s.handleGetClaims)
	g.GET("/claims/:id", s.handleGetClaim)
	g.POST("/claims/:id/followups", s.handleAddFollowUp)
	g.POST("/claims/:id/followups/:followUpId/response", s.handleRespondFollowUp)

	g.POST("/sessions", s.handleCreateSession)
	g.GET("/sessions/:id", s.handleGetSession)
	g.POST("/sessions/:id/events", s.handleSessionEvent)
	g.PATCH("/sessions/:id/invoice", s.handleUpdateInvoice)
	g.POST("/sessions/:id/invoice/file", s.handleInvoiceFile)
	g.POST("/sessions/:id/photos", s.handleAddPhoto)
	g.POST("/sessions/:id/analyze", s.handleAnalyze)
	g.POST("/sessions/:id/issues", s.handleSaveIssue)
	g.DELETE("/sessions/:id/issues/:issueId", s.handleRemoveIssue)
	g.POST("/sessions/:id/followups", s.handleSendFollowUp)

	g.GET("/photos/:sessionId/:sequenceId", s.handleGetPhoto)
}

// Ping checks that both AI collaborators are reachable.
func (s *Server) Ping() error {
	if healthy, err := s.extractor.Healthz(); err != nil || !healthy {
		return pingError("extraction", healthy, err)
	}
	if healthy, err := s.detector.Healthz(); err != nil || !healthy {
		return pingError("detection", healthy, err)
	}
	return nil
}

func pingError(name string, healthy bool, err error) error {
	if err != nil {
		return fmt.Errorf("%s service: %v", name, err)
	}
	return fmt.Errorf("%s service is not healthy", name)
}

var badRequest = gin.H{
	"error": "bad request",
}

var internalServerError = gin.H{
	"error": "internal server error",
}
