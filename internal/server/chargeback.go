package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/chargedesk/internal/chargeback/domain"
)

func (s *Server) ListChargebacks(c *gin.Context) {
	resp, err := s.chargebackSvc.ListCases(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if resp.Chargebacks == nil {
		resp.Chargebacks = []domain.Case{}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetChargebackSummary(c *gin.Context) {
	resp, err := s.chargebackSvc.Summary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListChargebackEvents(c *gin.Context) {
	resp, err := s.chargebackSvc.ListEvents(c.Request.Context(), domain.ListEventsRequest{
		ChargebackID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if resp.Events == nil {
		resp.Events = []domain.CaseEvent{}
	}

	c.JSON(http.StatusOK, resp)
}
