package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smartlands/landregistry/pkg/types/land"
	"go.uber.org/zap"
)

const headerWalletAddress = "wallet-address"

// RequestLogger logs one line per request through the service logger.
func (s *Server) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// RequireAdmin guards administrative routes. The caller identifies itself
// with the wallet-address header; the gate decides whether that wallet is an
// administrator. Missing or unknown wallets fail closed.
func (s *Server) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		walletAddress := c.GetHeader(headerWalletAddress)
		if !land.ValidWalletAddress(walletAddress) {
			respondError(c, NewHttpError(http.StatusUnauthorized, "missing or malformed wallet-address header"))
			c.Abort()
			return
		}

		isAdmin, err := s.gate.IsAdmin(c, walletAddress)
		if err != nil {
			respondError(c, s.mapError(err))
			c.Abort()
			return
		}

		if !isAdmin {
			respondError(c, NewHttpError(http.StatusForbidden, "admin privileges required"))
			c.Abort()
			return
		}

		c.Next()
	}
}
