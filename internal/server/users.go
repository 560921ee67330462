package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/smartlands/landregistry/pkg/auth"
	"github.com/smartlands/landregistry/pkg/types/identity"
	"github.com/smartlands/landregistry/pkg/types/land"
	"go.uber.org/zap"
)

type createUserRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	WalletAddress string `json:"walletAddress"`
}

func (s *Server) HandleCreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if req.WalletAddress != "" && !land.ValidWalletAddress(req.WalletAddress) {
		respondBadRequest(c, "invalid wallet address")
		return
	}

	ctx, cancelFunc := context.WithTimeout(c, repositoryTimeout)
	defer cancelFunc()

	user, err := s.repository.Users().Create(ctx, identity.User{
		Name:          req.Name,
		Email:         req.Email,
		WalletAddress: req.WalletAddress,
		Role:          identity.RoleUser,
	})
	if err != nil {
		respondError(c, s.mapError(err))
		return
	}

	s.logger.Info("user registered", zap.String("user_id", user.Id.Hex()))
	respondMessage(c, http.StatusCreated, user, "user registered")
}

func (s *Server) HandleListUsers(c *gin.Context) {
	ctx, cancelFunc := context.WithTimeout(c, repositoryTimeout)
	defer cancelFunc()

	users, err := s.repository.Users().All(ctx)
	if err != nil {
		respondError(c, s.mapError(err))
		return
	}

	respondData(c, http.StatusOK, users)
}

func (s *Server) HandleGetUser(c *gin.Context) {
	ctx, cancelFunc := context.WithTimeout(c, repositoryTimeout)
	defer cancelFunc()

	user, found, err := s.repository.Users().GetById(ctx, c.Param("id"))
	if err != nil {
		respondError(c, s.mapError(err))
		return
	}

	if !found {
		respondError(c, NewHttpError(http.StatusNotFound, "user not found"))
		return
	}

	respondData(c, http.StatusOK, user)
}

type updateUserRequest struct {
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	WalletAddress *string `json:"walletAddress"`
}

func (s *Server) HandleUpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if req.WalletAddress != nil && *req.WalletAddress != "" && !land.ValidWalletAddress(*req.WalletAddress) {
		respondBadRequest(c, "invalid wallet address")
		return
	}

	ctx, cancelFunc := context.WithTimeout(c, repositoryTimeout)
	defer cancelFunc()

	user, err := s.repository.Users().Update(ctx, c.Param("id"), identity.UserUpdate{
		Name:          req.Name,
		Email:         req.Email,
		WalletAddress: req.WalletAddress,
	})
	if err != nil {
		respondError(c, s.mapError(err))
		return
	}

	respondMessage(c, http.StatusOK, user, "user updated")
}

type checkWalletResponse struct {
	IsAuthorized bool           `json:"isAuthorized"`
	IsAdmin      bool           `json:"isAdmin"`
	User         *identity.User `json:"user,omitempty"`
}

// HandleCheckWallet resolves a wallet address to a role for the frontend.
// Unknown wallets get a 404 rather than an empty 200 so that the caller
// cannot mistake "not registered" for "registered without privileges".
func (s *Server) HandleCheckWallet(c *gin.Context) {
	walletAddress := c.Query("walletAddress")
	if !land.ValidWalletAddress(walletAddress) {
		respondBadRequest(c, "missing or invalid walletAddress")
		return
	}

	ctx, cancelFunc := context.WithTimeout(c, repositoryTimeout)
	defer cancelFunc()

	role, err := s.gate.ResolveRole(ctx, walletAddress)
	if err != nil {
		if errors.Is(err, auth.ErrUnknownWallet) {
			respondError(c, NewHttpError(http.StatusNotFound, "wallet address is not registered"))
			return
		}

		respondError(c, s.mapError(err))
		return
	}

	response := checkWalletResponse{
		IsAuthorized: true,
		IsAdmin:      role == identity.RoleAdmin,
	}

	if user, found, err := s.repository.Users().GetByWallet(ctx, walletAddress); err == nil && found {
		response.User = &user
	}

	respondData(c, http.StatusOK, response)
}
