package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smartlands/landregistry/pkg/types/land"
	"go.uber.org/zap"
)

const repositoryTimeout = time.Second * 5

type submitLandRequest struct {
	OwnerName     string `json:"ownerName" binding:"required"`
	WalletAddress string `json:"walletAddress" binding:"required"`
	LandArea      int64  `json:"landArea"`
	District      string `json:"district" binding:"required"`
	Taluk         string `json:"taluk" binding:"required"`
	Village       string `json:"village" binding:"required"`
	BlockNumber   int64  `json:"blockNumber"`
	SurveyNumber  int64  `json:"surveyNumber"`
	DocumentHash  string `json:"documentHash"`
	Price         string `json:"price" binding:"required"`
}

func (s *Server) HandleSubmitLand(c *gin.Context) {
	var req submitLandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if !land.ValidWalletAddress(req.WalletAddress) {
		respondBadRequest(c, "invalid wallet address")
		return
	}

	price, err := land.PriceFromString(req.Price)
	if err != nil {
		respondBadRequest(c, "invalid price")
		return
	}

	id, err := land.DeriveLandID(req.LandArea, req.District, req.Taluk, req.Village, req.BlockNumber, req.SurveyNumber)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	parcel := land.Parcel{
		LandId:           id,
		OwnerName:        req.OwnerName,
		WalletAddress:    req.WalletAddress,
		LandArea:         req.LandArea,
		District:         req.District,
		Taluk:            req.Taluk,
		Village:          req.Village,
		BlockNumber:      req.BlockNumber,
		SurveyNumber:     req.SurveyNumber,
		DocumentHash:     req.DocumentHash,
		Price:            price,
		Status:           land.StatusPending,
		PurchaseRequests: []land.PurchaseRequest{},
		RegistrationDate: time.Now().UTC(),
	}

	ctx, cancelFunc := context.WithTimeout(c, repositoryTimeout)
	defer cancelFunc()

	if err := s.repository.Lands().Create(ctx, parcel); err != nil {
		respondError(c, s.mapError(err))
		return
	}

	s.logger.Info("parcel submitted for verification",
		zap.Stringer("land_id", parcel.LandId),
		zap.String("owner", parcel.WalletAddress))

	respondMessage(c, http.StatusCreated, parcel, "land registration submitted for verification")
}

func (s *Server) HandleLandsByOwner(c *gin.Context) {
	owner := c.Query("owner")
	if !land.ValidWalletAddress(owner) {
		respondBadRequest(c, "missing or invalid owner address")
		return
	}

	ctx, cancelFunc := context.WithTimeout(c, repositoryTimeout)
	defer cancelFunc()

	parcels, err := s.repository.Lands().FindByOwner(ctx, owner)
	if err != nil {
		respondError(c, s.mapError(err))
		return
	}

	respondData(c, http.StatusOK, parcels)
}

func (s *Server) HandleMarketplace(c *gin.Context) {
	// The browsing owner is excluded from the listing; without one the whole
	// verified marketplace is returned.
	excludeOwner := c.Query("owner")
	if excludeOwner != "" && !land.ValidWalletAddress(excludeOwner) {
		respondBadRequest(c, "invalid owner address")
		return
	}

	ctx, cancelFunc := context.WithTimeout(c, repositoryTimeout)
	defer cancelFunc()

	parcels, err := s.repository.Lands().FindMarketplace(ctx, excludeOwner)
	if err != nil {
		respondError(c, s.mapError(err))
		return
	}

	respondData(c, http.StatusOK, parcels)
}

func (s *Server) HandleNonVerified(c *gin.Context) {
	ctx, cancelFunc := context.WithTimeout(c, repositoryTimeout)
	defer cancelFunc()

	parcels, err := s.repository.Lands().FindNonVerified(ctx)
	if err != nil {
		respondError(c, s.mapError(err))
		return
	}

	respondData(c, http.StatusOK, parcels)
}

func (s *Server) HandleAllLands(c *gin.Context) {
	ctx, cancelFunc := context.WithTimeout(c, repositoryTimeout)
	defer cancelFunc()

	parcels, err := s.repository.Lands().All(ctx)
	if err != nil {
		respondError(c, s.mapError(err))
		return
	}

	respondData(c, http.StatusOK, parcels)
}

func (s *Server) HandleGetLand(c *gin.Context) {
	id, err := land.ParseLandID(c.Param("landId"))
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

	respondData(c, http.StatusOK, parcel)
}

func (s *Server) HandleLandHistory(c *gin.Context) {
	id, err := land.ParseLandID(c.Param("landId"))
	if err != nil {
		respondBadRequest(c, "invalid land id")
		return
	}

	events, err := s.ledger.History(c, id)
	if err != nil {
		respondError(c, s.mapError(err))
		return
	}

	respondData(c, http.StatusOK, events)
}

func (s *Server) HandleUploadDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "missing document file")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, s.mapError(err))
		return
	}
	defer file.Close()

	cid, err := s.documents.Upload(c, fileHeader.Filename, file)
	if err != nil {
		s.logger.Error("document upload failed", zap.Error(err), zap.String("file_name", fileHeader.Filename))
		respondError(c, NewHttpError(http.StatusBadGateway, "failed to pin document"))
		return
	}

	respondData(c, http.StatusCreated, gin.H{"documentHash": cid})
}
