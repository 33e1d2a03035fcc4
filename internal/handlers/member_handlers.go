package handlers

import (
	"net/http"

	"assochub/internal/services"

	"github.com/labstack/echo/v4"
)

// MemberHandlers serves the association member roster
type MemberHandlers struct {
	memberService services.MemberService
	unitService   services.UnitService
}

func NewMemberHandlers(memberService services.MemberService, unitService services.UnitService) *MemberHandlers {
	return &MemberHandlers{
		memberService: memberService,
		unitService:   unitService,
	}
}

func (h *MemberHandlers) ListMembers(c echo.Context) error {
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

	members, err := h.memberService.ListMembers(c.Request().Context(), assocID, identity, limit, offset)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"members": members,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *MemberHandlers) GetMember(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}
	memberID, err := pathID(c, "memberId", "member id")
	if err != nil {
		return err
	}

	member, err := h.memberService.GetMember(c.Request().Context(), assocID, memberID, identity)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, member)
}

// InviteMember godoc
// @Summary Invite a member by email (admin)
// @Tags members
// @Param associationId path string true "Association ID"
// @Param request body services.InviteMemberRequest true "Invitation"
// @Success 201 {object} models.Member
// @Router /v1/associations/{associationId}/members [post]
func (h *MemberHandlers) InviteMember(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}

	var req services.InviteMemberRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	member, err := h.memberService.InviteMember(c.Request().Context(), assocID, identity, &req)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, member)
}

func (h *MemberHandlers) UpdateMember(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}
	memberID, err := pathID(c, "memberId", "member id")
	if err != nil {
		return err
	}

	var req services.UpdateMemberRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	member, err := h.memberService.UpdateMember(c.Request().Context(), assocID, memberID, identity, &req)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, member)
}

func (h *MemberHandlers) RemoveMember(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}
	memberID, err := pathID(c, "memberId", "member id")
	if err != nil {
		return err
	}

	if err := h.memberService.RemoveMember(c.Request().Context(), assocID, memberID, identity); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListMemberUnits lists the units held by one member
func (h *MemberHandlers) ListMemberUnits(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}
	memberID, err := pathID(c, "memberId", "member id")
	if err != nil {
		return err
	}

	units, err := h.unitService.ListMemberUnits(c.Request().Context(), assocID, memberID, identity)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"units": units,
		"count": len(units),
	})
}
