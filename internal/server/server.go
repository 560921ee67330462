package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/smartlands/landregistry/internal/config"
	"github.com/smartlands/landregistry/pkg/auth"
	"github.com/smartlands/landregistry/pkg/documents"
	"github.com/smartlands/landregistry/pkg/ledger"
	"github.com/smartlands/landregistry/pkg/orchestrator"
	"github.com/smartlands/landregistry/pkg/repository"
	"go.uber.org/zap"
)

type Server struct {
	config       config.Config
	logger       *zap.Logger
	repository   repository.Repository
	ledger       ledger.Ledger
	orchestrator *orchestrator.Orchestrator
	gate         *auth.Gate
	documents    documents.Store

	router *gin.Engine
}

func NewServer(
	cfg config.Config,
	logger *zap.Logger,
	repository repository.Repository,
	ledgerClient ledger.Ledger,
	orch *orchestrator.Orchestrator,
	gate *auth.Gate,
	documentStore documents.Store,
) *Server {
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	return &Server{
		config:       cfg,
		logger:       logger,
		repository:   repository,
		ledger:       ledgerClient,
		orchestrator: orch,
		gate:         gate,
		documents:    documentStore,

		router: gin.New(),
	}
}

func (s *Server) Run() error {
	s.registerRoutes()
	return s.router.Run(s.config.Server.Address)
}

func (s *Server) registerRoutes() {
	_ = s.router.SetTrustedProxies(nil)

	s.router.Use(gin.Recovery())
	s.router.Use(s.RequestLogger())
	s.router.Use(cors.Default())

	s.router.GET("/status", s.HandleStatus)

	api := s.router.Group("/api")

	api.POST("/users", s.HandleCreateUser)
	api.GET("/users", s.RequireAdmin(), s.HandleListUsers)
	api.GET("/users/:id", s.HandleGetUser)
	api.PUT("/users/:id", s.HandleUpdateUser)
	api.GET("/auth/check-wallet", s.HandleCheckWallet)

	api.POST("/lands", s.HandleSubmitLand)
	api.GET("/lands", s.HandleLandsByOwner)
	api.GET("/lands/marketplace", s.HandleMarketplace)
	api.GET("/lands/non-verified-lands", s.RequireAdmin(), s.HandleNonVerified)
	api.GET("/lands/all", s.RequireAdmin(), s.HandleAllLands)
	api.GET("/lands/history/:landId", s.HandleLandHistory)

	api.POST("/lands/purchase-request", s.HandlePurchaseRequest)
	api.GET("/lands/purchase-requests", s.HandleSellerRequests)
	api.GET("/lands/accepted-requests", s.HandleBuyerAcceptedRequests)
	api.POST("/lands/accept-purchase-request", s.HandleAcceptPurchaseRequest)

	api.POST("/lands/verify", s.RequireAdmin(), s.HandleVerify)
	api.POST("/lands/transfer", s.HandleTransfer)

	api.POST("/documents", s.HandleUploadDocument)

	// Parameterised route last so it cannot shadow the fixed /lands/* paths.
	api.GET("/lands/:landId", s.HandleGetLand)
}
