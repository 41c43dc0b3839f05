package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"profilegraph/backend/internal/graph"
	"profilegraph/backend/internal/state"
	apperrors "profilegraph/backend/pkg/errors"
)

// Handlers serves the profile graph over HTTP.
type Handlers struct {
	store  graph.Store
	logger *zap.Logger
}

// NewHandlers creates handlers backed by store
func NewHandlers(store graph.Store, log *zap.Logger) *Handlers {
	return &Handlers{store: store, logger: log}
}

type addProfileRequest struct {
	Firstname string  `json:"firstname"`
	Lastname  string  `json:"lastname"`
	Phone     *string `json:"phone"`
	DOB       *string `json:"dob"`
}

type modifyProfileRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

type friendsResponse struct {
	Profile *state.Profile   `json:"profile"`
	Friends []*state.Profile `json:"friends"`
}

func profileFromPath(c *gin.Context) *state.Profile {
	return state.NewProfile(c.Param("firstname"), c.Param("lastname"))
}

func friendFromPath(c *gin.Context) *state.Profile {
	return state.NewProfile(c.Param("ffirst"), c.Param("flast"))
}

// AddProfile handles POST /api/profiles
func (h *Handlers) AddProfile(c *gin.Context) {
	var req addProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var opts []state.ProfileOption
	if req.Phone != nil {
		opts = append(opts, state.WithPhone(*req.Phone))
	}
	if req.DOB != nil {
		opts = append(opts, state.WithDOB(*req.DOB))
	}

	p, err := h.store.AddProfile(c.Request.Context(), state.NewProfile(req.Firstname, req.Lastname, opts...))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// GetProfile handles GET /api/profiles/:firstname/:lastname
func (h *Handlers) GetProfile(c *gin.Context) {
	p := profileFromPath(c)
	if err := h.store.GetProfile(c.Request.Context(), p); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ModifyProfile handles PATCH /api/profiles/:firstname/:lastname
func (h *Handlers) ModifyProfile(c *gin.Context) {
	var req modifyProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	field, err := state.ParseField(req.Field)
	if err != nil {
		h.fail(c, err)
		return
	}

	p := profileFromPath(c)
	if err := h.store.ModifyProfile(c.Request.Context(), p, field, req.Value); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// RemoveProfile handles DELETE /api/profiles/:firstname/:lastname
func (h *Handlers) RemoveProfile(c *gin.Context) {
	if err := h.store.RemoveProfile(c.Request.Context(), profileFromPath(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetFriends handles GET /api/profiles/:firstname/:lastname/friends
func (h *Handlers) GetFriends(c *gin.Context) {
	p := profileFromPath(c)
	friends, err := h.store.GetFriends(c.Request.Context(), p)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, friendsResponse{Profile: p, Friends: friends})
}

// AddFriend handles PUT /api/profiles/:firstname/:lastname/friends/:ffirst/:flast
func (h *Handlers) AddFriend(c *gin.Context) {
	if err := h.store.AddFriend(c.Request.Context(), profileFromPath(c), friendFromPath(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveFriend handles DELETE /api/profiles/:firstname/:lastname/friends/:ffirst/:flast
func (h *Handlers) RemoveFriend(c *gin.Context) {
	if err := h.store.RemoveFriend(c.Request.Context(), profileFromPath(c), friendFromPath(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Dump handles GET /api/profiles
func (h *Handlers) Dump(c *gin.Context) {
	entries, err := h.store.Dump(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": entries})
}

// Health handles GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": apperrors.UserMessage(err)})
}

// statusFor maps a store error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case apperrors.IsNotFound(err):
		return http.StatusNotFound
	case apperrors.IsAlreadyExists(err):
		return http.StatusConflict
	case apperrors.IsUserError(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
