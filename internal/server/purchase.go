package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/smartlands/landregistry/pkg/repository"
	"github.com/smartlands/landregistry/pkg/types/land"
	"go.uber.org/zap"
)

type purchaseRequestBody struct {
	LandId       string `json:"landId" binding:"required"`
	BuyerAddress string `json:"buyerAddress" binding:"required"`
	BuyerName    string `json:"buyerName" binding:"required"`
	Message      string `json:"message"`
}

// parcelRequestsView is the trimmed listing shown on request dashboards: the
// parcel summary plus only the requests relevant to the viewer.
type parcelRequestsView struct {
	LandId   land.LandID            `json:"landId"`
	Village  string                 `json:"village"`
	District string                 `json:"district"`
	Owner    string                 `json:"ownerAddress"`
	Price    land.Price             `json:"price"`
	Status   land.Status            `json:"status"`
	Requests []land.PurchaseRequest `json:"requests"`
}

func (s *Server) HandlePurchaseRequest(c *gin.Context) {
	var req purchaseRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	id, err := land.ParseLandID(req.LandId)
	if err != nil {
		respondBadRequest(c, "invalid land id")
		return
	}

	if !land.ValidWalletAddress(req.BuyerAddress) {
		respondBadRequest(c, "invalid buyer address")
		return
	}

	ctx, cancelFunc := context.WithTimeout(c, repositoryTimeout)
	defer cancelFunc()

	parcel, found, err := s.repository.Lands().GetByLandId(ctx, id)
	if err != nil {
		respondError(c, s.mapError(err))
		return
	}

	if !found {
		respondError(c, NewHttpError(http.StatusNotFound, "land record not found"))
		return
	}

	if parcel.Status != land.StatusVerified {
		respondError(c, s.mapError(errors.Wrap(repository.ErrStateConflict, "parcel is not listed for sale")))
		return
	}

	if land.SameWallet(parcel.WalletAddress, req.BuyerAddress) {
		respondBadRequest(c, "owner cannot request their own parcel")
		return
	}

	updated, err := s.repository.Lands().AddPurchaseRequest(ctx, id, land.NewPurchaseRequest(req.BuyerAddress, req.BuyerName, req.Message))
	if err != nil {
		respondError(c, s.mapError(err))
		return
	}

	s.logger.Info("purchase request added",
		zap.Stringer("land_id", id),
		zap.String("buyer", req.BuyerAddress))

	respondMessage(c, http.StatusCreated, updated, "purchase request submitted")
}

func (s *Server) HandleSellerRequests(c *gin.Context) {
	seller := c.Query("seller")
	if !land.ValidWalletAddress(seller) {
		respondBadRequest(c, "missing or invalid seller address")
		return
	}

	ctx, cancelFunc := context.WithTimeout(c, repositoryTimeout)
	defer cancelFunc()

	parcels, err := s.repository.Lands().FindPendingRequestsForSeller(ctx, seller)
	if err != nil {
		respondError(c, s.mapError(err))
		return
	}

	views := lo.Map(parcels, func(parcel land.Parcel, _ int) parcelRequestsView {
		return newParcelRequestsView(parcel, func(req land.PurchaseRequest) bool {
			return req.Status == land.RequestStatusPending
		})
	})

	respondData(c, http.StatusOK, views)
}

func (s *Server) HandleBuyerAcceptedRequests(c *gin.Context) {
	buyer := c.Query("buyer")
	if !land.ValidWalletAddress(buyer) {
		respondBadRequest(c, "missing or invalid buyer address")
		return
	}

	ctx, cancelFunc := context.WithTimeout(c, repositoryTimeout)
	defer cancelFunc()

	parcels, err := s.repository.Lands().FindAcceptedRequestsForBuyer(ctx, buyer)
	if err != nil {
		respondError(c, s.mapError(err))
		return
	}

	views := lo.Map(parcels, func(parcel land.Parcel, _ int) parcelRequestsView {
		return newParcelRequestsView(parcel, func(req land.PurchaseRequest) bool {
			return req.Status == land.RequestStatusAccepted && land.SameWallet(req.BuyerAddress, buyer)
		})
	})

	respondData(c, http.StatusOK, views)
}

type acceptRequestBody struct {
	LandId        string `json:"landId" binding:"required"`
	SellerAddress string `json:"sellerAddress" binding:"required"`
	BuyerAddress  string `json:"buyerAddress" binding:"required"`
}

func (s *Server) HandleAcceptPurchaseRequest(c *gin.Context) {
	var req acceptRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	id, err := land.ParseLandID(req.LandId)
	if err != nil {
		respondBadRequest(c, "invalid land id")
		return
	}

	ctx, cancelFunc := context.WithTimeout(c, repositoryTimeout)
	defer cancelFunc()

	parcel, found, err := s.repository.Lands().GetByLandId(ctx, id)
	if err != nil {
		respondError(c, s.mapError(err))
		return
	}

	if !found {
		respondError(c, NewHttpError(http.StatusNotFound, "land record not found"))
		return
	}

	if !land.SameWallet(parcel.WalletAddress, req.SellerAddress) {
		respondError(c, NewHttpError(http.StatusForbidden, "only the parcel owner can accept requests"))
		return
	}

	updated, err := s.repository.Lands().AcceptPurchaseRequest(ctx, id, req.BuyerAddress)
	if err != nil {
		respondError(c, s.mapError(err))
		return
	}

	s.logger.Info("purchase request accepted",
		zap.Stringer("land_id", id),
		zap.String("buyer", req.BuyerAddress))

	respondMessage(c, http.StatusOK, updated, "purchase request accepted")
}

func newParcelRequestsView(parcel land.Parcel, keep func(land.PurchaseRequest) bool) parcelRequestsView {
	return parcelRequestsView{
		LandId:   parcel.LandId,
		Village:  parcel.Village,
		District: parcel.District,
		Owner:    parcel.WalletAddress,
		Price:    parcel.Price,
		Status:   parcel.Status,
		Requests: lo.Filter(parcel.PurchaseRequests, func(req land.PurchaseRequest, _ int) bool {
			return keep(req)
		}),
	}
}
