package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) HandleStatus(c *gin.Context) {
	if err := s.repository.TestConnection(); err != nil {
		s.logger.Error("failed to connect to the database", zap.Error(err))
		c.JSON(500, gin.H{"status": "error", "error": "failed to connect to the database"})
		return
	}

	if err := s.ledger.Ping(c); err != nil {
		s.logger.Error("failed to reach the ledger", zap.Error(err))
		c.JSON(500, gin.H{"status": "error", "error": "failed to reach the ledger"})
		return
	}

	c.JSON(200, gin.H{"status": "ok"})
}
