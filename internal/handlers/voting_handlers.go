package handlers

import (
	"context"
	"net/http"

	"assochub/internal/models"
	"assochub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// VotingHandlers serves voting topics, ballots and results
type VotingHandlers struct {
	votingService services.VotingService
}

func NewVotingHandlers(votingService services.VotingService) *VotingHandlers {
	return &VotingHandlers{votingService: votingService}
}

// CastVoteRequest is a ballot. Single-choice topics take exactly one option.
type CastVoteRequest struct {
	Options []string `json:"options" validate:"required"`
}

// ListTopics godoc
// @Summary List voting topics visible to the caller
// @Tags voting
// @Param associationId path string true "Association ID"
// @Param status query string false "draft, active or closed"
// @Success 200 {object} map[string]interface{}
// @Router /v1/associations/{associationId}/topics [get]
func (h *VotingHandlers) ListTopics(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}

	var status *models.TopicStatus
	if s := c.QueryParam("status"); s != "" {
		ts := models.TopicStatus(s)
		status = &ts
	}

	topics, err := h.votingService.ListTopics(c.Request().Context(), assocID, identity, status)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"topics": topics,
		"count":  len(topics),
	})
}

// CreateTopic godoc
// @Summary Create a voting topic (admin)
// @Tags voting
// @Param associationId path string true "Association ID"
// @Param request body services.TopicRequest true "Topic"
// @Success 201 {object} models.VotingTopic
// @Router /v1/associations/{associationId}/topics [post]
func (h *VotingHandlers) CreateTopic(c echo.Context) error {
	return h.createTopic(c, h.votingService.CreateTopic)
}

// ProposeTopic lets any member submit a draft topic for admin review
func (h *VotingHandlers) ProposeTopic(c echo.Context) error {
	return h.createTopic(c, h.votingService.ProposeTopic)
}

type topicCreator func(ctx context.Context, associationID uuid.UUID, caller *models.Identity, req *services.TopicRequest) (*models.VotingTopic, error)

func (h *VotingHandlers) createTopic(c echo.Context, create topicCreator) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}

	var req services.TopicRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	topic, err := create(c.Request().Context(), assocID, identity, &req)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, topic)
}

// GetTopic handles GET /topics/:topicId
func (h *VotingHandlers) GetTopic(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}
	topicID, err := pathID(c, "topicId", "topic id")
	if err != nil {
		return err
	}

	topic, err := h.votingService.GetTopic(c.Request().Context(), assocID, topicID, identity)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, topic)
}

// ActivateTopic opens a draft topic for voting
func (h *VotingHandlers) ActivateTopic(c echo.Context) error {
	return h.transition(c, h.votingService.ActivateTopic)
}

// CloseTopic ends voting on a draft or active topic
func (h *VotingHandlers) CloseTopic(c echo.Context) error {
	return h.transition(c, h.votingService.CloseTopic)
}

type topicTransition func(ctx context.Context, associationID, topicID uuid.UUID, caller *models.Identity) (*models.VotingTopic, error)

func (h *VotingHandlers) transition(c echo.Context, apply topicTransition) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}
	topicID, err := pathID(c, "topicId", "topic id")
	if err != nil {
		return err
	}

	topic, err := apply(c.Request().Context(), assocID, topicID, identity)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, topic)
}

// DeleteTopic removes a draft topic. Any other status is a 409.
func (h *VotingHandlers) DeleteTopic(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}
	topicID, err := pathID(c, "topicId", "topic id")
	if err != nil {
		return err
	}

	if err := h.votingService.DeleteTopic(c.Request().Context(), assocID, topicID, identity); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CastVote godoc
// @Summary Cast a ballot on an active topic
// @Tags voting
// @Param associationId path string true "Association ID"
// @Param topicId path string true "Topic ID"
// @Param request body CastVoteRequest true "Ballot"
// @Success 201 {object} models.Vote
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /v1/associations/{associationId}/topics/{topicId}/votes [post]
func (h *VotingHandlers) CastVote(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}
	topicID, err := pathID(c, "topicId", "topic id")
	if err != nil {
		return err
	}

	var req CastVoteRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	vote, err := h.votingService.CastVote(c.Request().Context(), assocID, topicID, identity, req.Options)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, vote)
}

// GetMyVote returns the caller's ballot, or null when they have not voted
func (h *VotingHandlers) GetMyVote(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}
	topicID, err := pathID(c, "topicId", "topic id")
	if err != nil {
		return err
	}

	vote, err := h.votingService.GetMyVote(c.Request().Context(), assocID, topicID, identity)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, vote)
}

// GetResults godoc
// @Summary Tally for a topic
// @Tags voting
// @Param associationId path string true "Association ID"
// @Param topicId path string true "Topic ID"
// @Success 200 {object} models.TopicResults
// @Router /v1/associations/{associationId}/topics/{topicId}/results [get]
func (h *VotingHandlers) GetResults(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}
	topicID, err := pathID(c, "topicId", "topic id")
	if err != nil {
		return err
	}

	results, err := h.votingService.GetResults(c.Request().Context(), assocID, topicID, identity)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, results)
}
