package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	cancellationdomain "github.com/smallbiznis/sunset/internal/cancellation/domain"
	hostingdomain "github.com/smallbiznis/sunset/internal/hosting/domain"
	"go.uber.org/zap"
)

type statusChangeRequest struct {
	NewStatus      string `json:"new_status" binding:"required"`
	PreviousStatus string `json:"previous_status" binding:"required"`
	TicketRef      string `json:"ticket_ref"`
}

type statusChangeResponse struct {
	Triggered         bool     `json:"triggered"`
	Note              string   `json:"note,omitempty"`
	CancelledAddonIDs []string `json:"cancelled_addon_ids,omitempty"`
}

// HandleServiceStatusChange is the pre-commit lifecycle trigger. A valid
// cancellation always responds 202: split, note and subscription failures
// surface through the activity log only.
func (s *Server) HandleServiceStatusChange(c *gin.Context) {
	var req statusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	result, err := s.cancellationSvc.HandleStatusChange(c.Request.Context(), cancellationdomain.StatusChangeRequest{
		ServiceID:      c.Param("id"),
		NewStatus:      hostingdomain.ServiceStatus(req.NewStatus),
		PreviousStatus: hostingdomain.ServiceStatus(req.PreviousStatus),
		TicketRef:      req.TicketRef,
	})
	if err != nil {
		s.respondCancellationError(c, err)
		return
	}

	resp := statusChangeResponse{
		Triggered: result.Triggered,
		Note:      result.Note,
	}
	for _, id := range result.CancelledAddonIDs {
		resp.CancelledAddonIDs = append(resp.CancelledAddonIDs, id.String())
	}
	c.JSON(http.StatusAccepted, resp)
}

// HandleServiceEdited is the post-commit lifecycle trigger: it appends the
// staged cancellation note to the service record.
func (s *Server) HandleServiceEdited(c *gin.Context) {
	if err := s.cancellationSvc.CompleteServiceEdit(c.Request.Context(), c.Param("id")); err != nil {
		s.respondCancellationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) respondCancellationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cancellationdomain.ErrInvalidServiceID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, cancellationdomain.ErrServiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		s.log.Error("cancellation trigger failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
