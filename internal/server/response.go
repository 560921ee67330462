package server

import "github.com/gin-gonic/gin"

// Response is the envelope every endpoint answers with, matching what the
// frontend already consumes.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
	})
}

func respondMessage(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func respondError(c *gin.Context, err *HttpError) {
	c.JSON(err.ResponseCode, Response{
		Success: false,
		Error:   err.Error(),
	})
}

func respondBadRequest(c *gin.Context, message string) {
	respondError(c, NewHttpError(400, message))
}
