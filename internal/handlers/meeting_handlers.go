package handlers

import (
	"context"
	"net/http"

	"assochub/internal/models"
	"assochub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// MeetingHandlers serves meetings, their lifecycle and RSVPs
type MeetingHandlers struct {
	meetingService services.MeetingService
}

func NewMeetingHandlers(meetingService services.MeetingService) *MeetingHandlers {
	return &MeetingHandlers{meetingService: meetingService}
}

// CancelMeetingRequest carries an optional reason appended to the meeting notes
type CancelMeetingRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

func (h *MeetingHandlers) ids(c echo.Context) (*models.Identity, uuid.UUID, uuid.UUID, error) {
	identity, err := caller(c)
	if err != nil {
		return nil, uuid.Nil, uuid.Nil, err
	}
	assocID, err := associationID(c)
	if err != nil {
		return nil, uuid.Nil, uuid.Nil, err
	}
	meetingID, err := pathID(c, "meetingId", "meeting id")
	if err != nil {
		return nil, uuid.Nil, uuid.Nil, err
	}
	return identity, assocID, meetingID, nil
}

// ListMeetings godoc
// @Summary List meetings
// @Tags meetings
// @Param associationId path string true "Association ID"
// @Param status query string false "draft, scheduled, completed, archived or cancelled"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Router /v1/associations/{associationId}/meetings [get]
func (h *MeetingHandlers) ListMeetings(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}
	limit, offset, err := paginate(c)
	if err != nil {
		return err
	}

	var status *models.MeetingStatus
	if s := c.QueryParam("status"); s != "" {
		ms := models.MeetingStatus(s)
		status = &ms
	}

	meetings, err := h.meetingService.ListMeetings(c.Request().Context(), assocID, identity, status, limit, offset)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"meetings": meetings,
		"limit":    limit,
		"offset":   offset,
	})
}

// CreateMeeting godoc
// @Summary Create a draft meeting (admin)
// @Tags meetings
// @Param associationId path string true "Association ID"
// @Param request body services.CreateMeetingRequest true "Meeting"
// @Success 201 {object} models.Meeting
// @Router /v1/associations/{associationId}/meetings [post]
func (h *MeetingHandlers) CreateMeeting(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}

	var req services.CreateMeetingRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	meeting, err := h.meetingService.CreateMeeting(c.Request().Context(), assocID, identity, &req)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, meeting)
}

func (h *MeetingHandlers) GetMeeting(c echo.Context) error {
	identity, assocID, meetingID, err := h.ids(c)
	if err != nil {
		return err
	}

	meeting, err := h.meetingService.GetMeeting(c.Request().Context(), assocID, meetingID, identity)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, meeting)
}

func (h *MeetingHandlers) UpdateMeeting(c echo.Context) error {
	identity, assocID, meetingID, err := h.ids(c)
	if err != nil {
		return err
	}

	var req services.UpdateMeetingRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	meeting, err := h.meetingService.UpdateMeeting(c.Request().Context(), assocID, meetingID, identity, &req)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, meeting)
}

func (h *MeetingHandlers) DeleteMeeting(c echo.Context) error {
	identity, assocID, meetingID, err := h.ids(c)
	if err != nil {
		return err
	}

	if err := h.meetingService.DeleteMeeting(c.Request().Context(), assocID, meetingID, identity); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type meetingTransition func(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity) (*models.Meeting, error)

func (h *MeetingHandlers) transition(c echo.Context, apply meetingTransition) error {
	identity, assocID, meetingID, err := h.ids(c)
	if err != nil {
		return err
	}

	meeting, err := apply(c.Request().Context(), assocID, meetingID, identity)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, meeting)
}

// ScheduleMeeting godoc
// @Summary Move a draft meeting to scheduled and send invitations
// @Tags meetings
// @Param associationId path string true "Association ID"
// @Param meetingId path string true "Meeting ID"
// @Success 200 {object} models.Meeting
// @Failure 409 {object} map[string]string
// @Router /v1/associations/{associationId}/meetings/{meetingId}/schedule [post]
func (h *MeetingHandlers) ScheduleMeeting(c echo.Context) error {
	return h.transition(c, h.meetingService.Schedule)
}

func (h *MeetingHandlers) ArchiveMeeting(c echo.Context) error {
	return h.transition(c, h.meetingService.Archive)
}

func (h *MeetingHandlers) CompleteMeeting(c echo.Context) error {
	identity, assocID, meetingID, err := h.ids(c)
	if err != nil {
		return err
	}

	var req services.CompleteMeetingRequest
	if c.Request().ContentLength != 0 {
		if err := bindRequest(c, &req); err != nil {
			return err
		}
	}

	meeting, err := h.meetingService.Complete(c.Request().Context(), assocID, meetingID, identity, &req)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, meeting)
}

func (h *MeetingHandlers) CancelMeeting(c echo.Context) error {
	identity, assocID, meetingID, err := h.ids(c)
	if err != nil {
		return err
	}

	var req CancelMeetingRequest
	if c.Request().ContentLength != 0 {
		if err := bindRequest(c, &req); err != nil {
			return err
		}
	}

	meeting, err := h.meetingService.Cancel(c.Request().Context(), assocID, meetingID, identity, req.Reason)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, meeting)
}

// RSVP godoc
// @Summary Record or change the caller's RSVP
// @Tags meetings
// @Param associationId path string true "Association ID"
// @Param meetingId path string true "Meeting ID"
// @Param request body services.RSVPRequest true "RSVP"
// @Success 200 {object} models.MeetingAttendance
// @Router /v1/associations/{associationId}/meetings/{meetingId}/rsvp [put]
func (h *MeetingHandlers) RSVP(c echo.Context) error {
	identity, assocID, meetingID, err := h.ids(c)
	if err != nil {
		return err
	}

	var req services.RSVPRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	attendance, err := h.meetingService.RSVP(c.Request().Context(), assocID, meetingID, identity, &req)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, attendance)
}

func (h *MeetingHandlers) GetMyRSVP(c echo.Context) error {
	identity, assocID, meetingID, err := h.ids(c)
	if err != nil {
		return err
	}

	attendance, err := h.meetingService.GetMyRSVP(c.Request().Context(), assocID, meetingID, identity)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, attendance)
}

func (h *MeetingHandlers) ListAttendance(c echo.Context) error {
	identity, assocID, meetingID, err := h.ids(c)
	if err != nil {
		return err
	}

	attendance, err := h.meetingService.ListAttendance(c.Request().Context(), assocID, meetingID, identity)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"attendance": attendance,
		"count":      len(attendance),
	})
}

func (h *MeetingHandlers) AttendanceStats(c echo.Context) error {
	identity, assocID, meetingID, err := h.ids(c)
	if err != nil {
		return err
	}

	stats, err := h.meetingService.AttendanceStats(c.Request().Context(), assocID, meetingID, identity)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, stats)
}
