package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/chargedesk/internal/assistant"
)

func (s *Server) GetAssistantBoard(c *gin.Context) {
	c.JSON(http.StatusOK, s.board.Snapshot())
}

func (s *Server) PutAssistantBoard(c *gin.Context) {
	var req assistant.Update
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	snapshot, err := s.board.Publish(req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
