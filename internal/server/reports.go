package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	dashboarddomain "github.com/smallbiznis/vendhub/internal/dashboard/domain"
	moversdomain "github.com/smallbiznis/vendhub/internal/movers/domain"
)

func (s *Server) GetOverview(c *gin.Context) {
	report, err := s.dashboardSvc.Overview(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) GetInventory(c *gin.Context) {
	report, err := s.dashboardSvc.Inventory(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) GetStockouts(c *gin.Context) {
	report, err := s.dashboardSvc.Stockouts(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) GetMovers(c *gin.Context) {
	query, err := parseMoversQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	report, err := s.dashboardSvc.Movers(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) GetRoutes(c *gin.Context) {
	topN, err := parseOptionalInt(c.Query("top_n"))
	if err != nil || (topN != nil && *topN <= 0) {
		AbortWithError(c, newValidationError("top_n", "invalid_top_n", "top_n must be a positive integer"))
		return
	}
	limit := 0
	if topN != nil {
		limit = *topN
	}

	report, err := s.dashboardSvc.Routes(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) GetPipeline(c *gin.Context) {
	report, err := s.dashboardSvc.Pipeline(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) PostRefresh(c *gin.Context) {
	if err := s.dashboardSvc.Refresh(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "refreshed"})
}

func parseMoversQuery(c *gin.Context) (dashboarddomain.MoversQuery, error) {
	query := dashboarddomain.MoversQuery{GroupBy: moversdomain.GroupByMachine}

	if groupBy := c.Query("group_by"); groupBy != "" {
		switch moversdomain.GroupBy(groupBy) {
		case moversdomain.GroupByMachine, moversdomain.GroupByProduct, moversdomain.GroupByMachineProduct:
			query.GroupBy = moversdomain.GroupBy(groupBy)
		default:
			return query, newValidationError("group_by", "invalid_group_by", "group_by must be machine, product or machine_product")
		}
	}

	windowDays, err := parseOptionalInt(c.Query("window_days"))
	if err != nil || (windowDays != nil && *windowDays <= 0) {
		return query, newValidationError("window_days", "invalid_window_days", "window_days must be a positive integer")
	}
	if windowDays != nil {
		query.WindowDays = *windowDays
	}

	topN, err := parseOptionalInt(c.Query("top_n"))
	if err != nil || (topN != nil && *topN <= 0) {
		return query, newValidationError("top_n", "invalid_top_n", "top_n must be a positive integer")
	}
	if topN != nil {
		query.TopN = *topN
	}

	return query, nil
}
