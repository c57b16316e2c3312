package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/socialgraph/social-api/internal/core/ports"
)

// ThoughtHandler handles HTTP requests for thoughts and their reactions.
type ThoughtHandler struct {
	service ports.ThoughtService
}

func NewThoughtHandler(service ports.ThoughtService) *ThoughtHandler {
	return &ThoughtHandler{service: service}
}

// List handles GET /api/thoughts.
//
// @Summary      List thoughts, newest first
// @Tags         thoughts
// @Produce      json
// @Success      200  {array}   thoughtResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/thoughts [get]
func (h *ThoughtHandler) List(c echo.Context) error {
	thoughts, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toThoughtResponses(thoughts))
}

// Get handles GET /api/thoughts/:thoughtId.
//
// @Summary      Get a thought
// @Tags         thoughts
// @Produce      json
// @Param        thoughtId  path      string  true  "Thought ID"
// @Success      200        {object}  thoughtResponse
// @Failure      404        {object}  ErrorResponse
// @Failure      500        {object}  ErrorResponse
// @Router       /api/thoughts/{thoughtId} [get]
func (h *ThoughtHandler) Get(c echo.Context) error {
	t, err := h.service.Get(c.Request().Context(), c.Param("thoughtId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toThoughtResponse(t))
}

// Create handles POST /api/thoughts.
//
// @Summary      Create a thought and link it to its author
// @Description  Returns the author with the new thought id appended. A repeated
// @Description  Idempotency-Key returns the author without creating another thought.
// @Tags         thoughts
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string                false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createThoughtRequest  true   "Thought"
// @Success      200              {object}  userResponse
// @Failure      400              {object}  ErrorResponse
// @Failure      404              {object}  ErrorResponse
// @Failure      500              {object}  ErrorResponse
// @Router       /api/thoughts [post]
func (h *ThoughtHandler) Create(c echo.Context) error {
	var req createThoughtRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	u, err := h.service.Create(c.Request().Context(), ports.CreateThoughtInput{
		UserID:         req.UserID,
		Text:           req.Text,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

// Update handles PUT /api/thoughts/:thoughtId.
//
// @Summary      Update a thought's text
// @Tags         thoughts
// @Accept       json
// @Produce      json
// @Param        thoughtId  path      string                true  "Thought ID"
// @Param        body       body      updateThoughtRequest  true  "New text"
// @Success      200        {object}  thoughtResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Failure      500        {object}  ErrorResponse
// @Router       /api/thoughts/{thoughtId} [put]
func (h *ThoughtHandler) Update(c echo.Context) error {
	var req updateThoughtRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	t, err := h.service.UpdateText(c.Request().Context(), c.Param("thoughtId"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toThoughtResponse(t))
}

// Delete handles DELETE /api/thoughts/:thoughtId.
//
// @Summary      Delete a thought and unlink it from its author
// @Tags         thoughts
// @Produce      json
// @Param        thoughtId  path      string  true  "Thought ID"
// @Success      200        {object}  messageResponse
// @Failure      404        {object}  ErrorResponse
// @Failure      500        {object}  ErrorResponse
// @Router       /api/thoughts/{thoughtId} [delete]
func (h *ThoughtHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("thoughtId")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Thought successfully deleted"})
}

// AddReaction handles POST /api/thoughts/:thoughtId/reactions.
//
// @Summary      Add a reaction to a thought
// @Description  reactionId is generated when omitted; a reactionId already on the thought is rejected.
// @Tags         reactions
// @Accept       json
// @Produce      json
// @Param        thoughtId  path      string                 true  "Thought ID"
// @Param        body       body      createReactionRequest  true  "Reaction"
// @Success      200        {object}  thoughtResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Failure      409        {object}  ErrorResponse
// @Failure      500        {object}  ErrorResponse
// @Router       /api/thoughts/{thoughtId}/reactions [post]
func (h *ThoughtHandler) AddReaction(c echo.Context) error {
	var req createReactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	t, err := h.service.AddReaction(c.Request().Context(), c.Param("thoughtId"), ports.ReactionInput{
		ReactionID: req.ReactionID,
		Body:       req.Body,
		Username:   req.Username,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toThoughtResponse(t))
}

// RemoveReaction handles DELETE /api/thoughts/:thoughtId/reactions/:reactionId.
//
// @Summary      Remove a reaction from a thought
// @Description  An unknown reactionId leaves the thought unchanged.
// @Tags         reactions
// @Produce      json
// @Param        thoughtId   path      string  true  "Thought ID"
// @Param        reactionId  path      string  true  "Reaction ID"
// @Success      200         {object}  thoughtResponse
// @Failure      404         {object}  ErrorResponse
// @Failure      500         {object}  ErrorResponse
// @Router       /api/thoughts/{thoughtId}/reactions/{reactionId} [delete]
func (h *ThoughtHandler) RemoveReaction(c echo.Context) error {
	t, err := h.service.RemoveReaction(c.Request().Context(), c.Param("thoughtId"), c.Param("reactionId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toThoughtResponse(t))
}
