package server

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/chargedesk/internal/caseview"
	"github.com/smallbiznis/chargedesk/internal/config"
	"go.uber.org/zap"
)

// Dashboard mounts a fresh case view per request and renders it with the
// assistant board alongside.
func (s *Server) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	view := caseview.New(caseview.ServiceFetcher{Service: s.chargebackSvc}, s.presenter, s.log)
	view.Mount(ctx)

	display := config.DefaultDisplayConfig()
	if s.display != nil {
		display = s.display.Get()
	}

	var buf bytes.Buffer
	if err := caseview.RenderHTML(&buf, caseview.Page{
		Display:   display,
		View:      view.Snapshot(),
		Assistant: s.board.Snapshot(),
	}); err != nil {
		s.log.Error("dashboard render failed", zap.Error(err))
		AbortWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
