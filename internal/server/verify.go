package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/smartlands/landregistry/pkg/ledger"
	"github.com/smartlands/landregistry/pkg/types/land"
	"go.uber.org/zap"
)

type verifyRequestBody struct {
	LandId        string `json:"landId" binding:"required"`
	Approved      *bool  `json:"approved" binding:"required"`
	AdminComments string `json:"adminComments"`
}

func (s *Server) HandleVerify(c *gin.Context) {
	var req verifyRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	id, err := land.ParseLandID(req.LandId)
	if err != nil {
		respondBadRequest(c, "invalid land id")
		return
	}

	if !*req.Approved {
		parcel, err := s.orchestrator.Reject(c, id, req.AdminComments)
		if err != nil {
			respondError(c, s.mapError(err))
			return
		}

		s.logger.Info("parcel rejected", zap.Stringer("land_id", id))
		respondMessage(c, http.StatusOK, parcel, "land registration rejected")
		return
	}

	// No handler timeout here: approval waits for the ledger transaction to
	// be mined, bounded by the client's own confirmation deadline.
	parcel, err := s.orchestrator.Approve(c, id, req.AdminComments)
	if err != nil {
		if errors.Is(err, ledger.ErrConfirmationPending) {
			respondMessage(c, http.StatusAccepted, nil,
				"registration submitted to the ledger; confirmation pending, the record will be verified once observed")
			return
		}

		respondError(c, s.mapError(err))
		return
	}

	s.logger.Info("parcel verified", zap.Stringer("land_id", id), zap.Stringer("tx_hash", parcel.TxHash))
	respondMessage(c, http.StatusOK, parcel, "land verified and registered on the ledger")
}
