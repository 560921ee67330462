package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartlands/landregistry/pkg/types/land"
	"go.uber.org/zap"
)

type transferRequestBody struct {
	LandId       string `json:"landId" binding:"required"`
	BuyerAddress string `json:"buyerAddress" binding:"required"`
	TxHash       string `json:"txHash" binding:"required"`
}

// HandleTransfer reconciles the off-chain record after the buyer has paid on
// the ledger. Replays with the same transaction hash are accepted, so a
// client that timed out waiting for the first response can safely retry.
func (s *Server) HandleTransfer(c *gin.Context) {
	var req transferRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	id, err := land.ParseLandID(req.LandId)
	if err != nil {
		respondBadRequest(c, "invalid land id")
		return
	}

	txHash, err := land.ParseTxHash(req.TxHash)
	if err != nil {
		respondBadRequest(c, "invalid transaction hash")
		return
	}

	if !land.ValidWalletAddress(req.BuyerAddress) {
		respondBadRequest(c, "invalid buyer address")
		return
	}

	ctx, cancelFunc := context.WithTimeout(c, repositoryTimeout)
	defer cancelFunc()

	parcel, err := s.orchestrator.CompleteTransfer(ctx, id, req.BuyerAddress, txHash)
	if err != nil {
		respondError(c, s.mapError(err))
		return
	}

	s.logger.Info("ownership transfer recorded",
		zap.Stringer("land_id", id),
		zap.String("buyer", req.BuyerAddress),
		zap.Stringer("tx_hash", txHash))

	respondMessage(c, http.StatusOK, parcel, "ownership transfer recorded")
}
