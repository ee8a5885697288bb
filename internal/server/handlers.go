package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/sunset/internal/audit/domain"
	invoicedomain "github.com/smallbiznis/sunset/internal/invoice/domain"
	"github.com/smallbiznis/sunset/pkg/db/pagination"
	"go.uber.org/zap"
)

type listInvoicesQuery struct {
	Status     string `form:"status"`
	CustomerID string `form:"customer_id"`
}

func (s *Server) ListInvoices(c *gin.Context) {
	var q listInvoicesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	req := invoicedomain.ListInvoiceRequest{}
	if q.Status != "" {
		status := invoicedomain.InvoiceStatus(q.Status)
		req.Status = &status
	}
	if q.CustomerID != "" {
		id, err := snowflake.ParseString(q.CustomerID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_customer_id"})
			return
		}
		req.CustomerID = &id
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), req)
	if err != nil {
		s.log.Error("list invoices failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	inv, err := s.invoiceSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, invoicedomain.ErrInvalidInvoiceID):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, invoicedomain.ErrInvoiceNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			s.log.Error("get invoice failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		}
		return
	}
	c.JSON(http.StatusOK, inv)
}

type listActivityQuery struct {
	pagination.Pagination
	Action      string `form:"action"`
	SubjectType string `form:"subject_type"`
	SubjectID   string `form:"subject_id"`
	StartAt     string `form:"start_at"`
	EndAt       string `form:"end_at"`
}

func (s *Server) ListActivityLogs(c *gin.Context) {
	var q listActivityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	req := auditdomain.ListActivityRequest{
		Pagination:  q.Pagination,
		Action:      q.Action,
		SubjectType: q.SubjectType,
		SubjectID:   q.SubjectID,
	}
	if q.StartAt != "" {
		t, err := time.Parse(time.RFC3339, q.StartAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_start_at"})
			return
		}
		req.StartAt = &t
	}
	if q.EndAt != "" {
		t, err := time.Parse(time.RFC3339, q.EndAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_end_at"})
			return
		}
		req.EndAt = &t
	}

	resp, err := s.auditSvc.List(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, auditdomain.ErrInvalidPageToken),
			errors.Is(err, auditdomain.ErrInvalidTimeRange):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			s.log.Error("list activity logs failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}
