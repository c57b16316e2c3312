package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/socialgraph/social-api/internal/core/domain"
	"github.com/socialgraph/social-api/internal/core/ports"
)

// UserHandler handles HTTP requests for users and their friend sets.
type UserHandler struct {
	users   ports.UserService
	friends ports.FriendService
}

func NewUserHandler(users ports.UserService, friends ports.FriendService) *UserHandler {
	return &UserHandler{users: users, friends: friends}
}

// List handles GET /api/users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {array}   userResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(users))
}

// Get handles GET /api/users/:userId.
//
// @Summary      Get a user with thoughts and friends expanded
// @Tags         users
// @Produce      json
// @Param        userId  path      string  true  "User ID"
// @Success      200     {object}  userDetailResponse
// @Failure      404     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Router       /api/users/{userId} [get]
func (h *UserHandler) Get(c echo.Context) error {
	detail, err := h.users.Get(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserDetailResponse(detail))
}

// Create handles POST /api/users.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "User"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /api/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	u, err := h.users.Create(c.Request().Context(), ports.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

// Update handles PUT /api/users/:userId.
//
// @Summary      Update a user
// @Description  Every supplied field is validated; on any failure nothing is applied.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        userId  path      string             true  "User ID"
// @Param        body    body      updateUserRequest  true  "Fields to change"
// @Success      200     {object}  userResponse
// @Failure      400     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Failure      409     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Router       /api/users/{userId} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	u, err := h.users.Update(c.Request().Context(), c.Param("userId"), domain.UserPatch{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

// Delete handles DELETE /api/users/:userId.
//
// @Summary      Delete a user, its thoughts and every friend link to it
// @Tags         users
// @Produce      json
// @Param        userId  path      string  true  "User ID"
// @Success      200     {object}  deleteUserResponse
// @Failure      404     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Router       /api/users/{userId} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	res, err := h.users.Delete(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deleteUserResponse{
		Message:         "User and associated thoughts deleted!",
		UserID:          res.UserID,
		DeletedThoughts: res.DeletedThoughts,
		UnlinkedFriends: res.UnlinkedFriends,
	})
}

// AddFriend handles POST /api/users/:userId/friends/:friendId.
//
// @Summary      Add a friend
// @Description  Adding an existing friend is a no-op.
// @Tags         friends
// @Produce      json
// @Param        userId    path      string  true  "User ID"
// @Param        friendId  path      string  true  "Friend user ID"
// @Success      200       {object}  userResponse
// @Failure      400       {object}  ErrorResponse
// @Failure      404       {object}  ErrorResponse
// @Failure      500       {object}  ErrorResponse
// @Router       /api/users/{userId}/friends/{friendId} [post]
func (h *UserHandler) AddFriend(c echo.Context) error {
	u, err := h.friends.AddFriend(c.Request().Context(), c.Param("userId"), c.Param("friendId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

// RemoveFriend handles DELETE /api/users/:userId/friends/:friendId.
//
// @Summary      Remove a friend
// @Description  Removing a friend that is not in the set is a no-op.
// @Tags         friends
// @Produce      json
// @Param        userId    path      string  true  "User ID"
// @Param        friendId  path      string  true  "Friend user ID"
// @Success      200       {object}  userResponse
// @Failure      404       {object}  ErrorResponse
// @Failure      500       {object}  ErrorResponse
// @Router       /api/users/{userId}/friends/{friendId} [delete]
func (h *UserHandler) RemoveFriend(c echo.Context) error {
	u, err := h.friends.RemoveFriend(c.Request().Context(), c.Param("userId"), c.Param("friendId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}
