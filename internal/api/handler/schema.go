package handler

import (
	"time"

	"github.com/socialgraph/social-api/internal/core/domain"
	"github.com/socialgraph/social-api/internal/core/ports"
)

// --- Requests ---

type createUserRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email"    validate:"required,email"`
}

type updateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,min=1,max=64"`
	Email    *string `json:"email"    validate:"omitempty,email"`
}

type createThoughtRequest struct {
	UserID string `json:"userId" validate:"required"`
	Text   string `json:"text"   validate:"required,max=280"`
}

type updateThoughtRequest struct {
	Text string `json:"text" validate:"required,max=280"`
}

type createReactionRequest struct {
	ReactionID string `json:"reactionId" validate:"omitempty,max=64"`
	Body       string `json:"body"       validate:"required,max=280"`
	Username   string `json:"username"   validate:"required,max=64"`
}

// --- Responses ---

type userResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Thoughts    []string  `json:"thoughts"`
	Friends     []string  `json:"friends"`
	FriendCount int       `json:"friendCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

type userDetailResponse struct {
	ID          string            `json:"id"`
	Username    string            `json:"username"`
	Email       string            `json:"email"`
	Thoughts    []thoughtResponse `json:"thoughts"`
	Friends     []userResponse    `json:"friends"`
	FriendCount int               `json:"friendCount"`
	CreatedAt   time.Time         `json:"createdAt"`
}

type reactionResponse struct {
	ReactionID string    `json:"reactionId"`
	Body       string    `json:"body"`
	Username   string    `json:"username"`
	CreatedAt  time.Time `json:"createdAt"`
}

type thoughtResponse struct {
	ID            string             `json:"id"`
	UserID        string             `json:"userId"`
	Text          string             `json:"text"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
	Reactions     []reactionResponse `json:"reactions"`
	ReactionCount int                `json:"reactionCount"`
}

type deleteUserResponse struct {
	Message         string `json:"message"`
	UserID          string `json:"userId"`
	DeletedThoughts int64  `json:"deletedThoughts"`
	UnlinkedFriends int64  `json:"unlinkedFriends"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Mapping ---

func toUserResponse(u *domain.User) userResponse {
	u = u.Clone()
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Thoughts:    u.Thoughts,
		Friends:     u.Friends,
		FriendCount: u.FriendCount(),
		CreatedAt:   u.CreatedAt,
	}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	return out
}

func toUserDetailResponse(d *ports.UserDetail) userDetailResponse {
	return userDetailResponse{
		ID:          d.User.ID,
		Username:    d.User.Username,
		Email:       d.User.Email,
		Thoughts:    toThoughtResponses(d.Thoughts),
		Friends:     toUserResponses(d.Friends),
		FriendCount: d.User.FriendCount(),
		CreatedAt:   d.User.CreatedAt,
	}
}

func toThoughtResponse(t *domain.Thought) thoughtResponse {
	reactions := make([]reactionResponse, len(t.Reactions))
	for i, r := range t.Reactions {
		reactions[i] = reactionResponse{
			ReactionID: r.ReactionID,
			Body:       r.Body,
			Username:   r.Username,
			CreatedAt:  r.CreatedAt,
		}
	}
	return thoughtResponse{
		ID:            t.ID,
		UserID:        t.UserID,
		Text:          t.Text,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		Reactions:     reactions,
		ReactionCount: t.ReactionCount(),
	}
}

func toThoughtResponses(thoughts []*domain.Thought) []thoughtResponse {
	out := make([]thoughtResponse, len(thoughts))
	for i, t := range thoughts {
		out[i] = toThoughtResponse(t)
	}
	return out
}

// ErrorResponse is the canonical error envelope for all API errors.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields,omitempty"`
	Detail string              `json:"detail,omitempty"`
}
