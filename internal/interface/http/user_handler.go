package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	userapp "github.com/rosterhq/roster/internal/application"
	"github.com/rosterhq/roster/internal/domain"
	"github.com/rosterhq/roster/internal/domain/repository"
	"github.com/rosterhq/roster/pkg/response"
	"github.com/rosterhq/roster/pkg/validation"
)

type UserHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// respondError maps service errors onto the envelope. Anything outside the
// domain sentinels is a store failure: log it server-side, leak nothing.
func (h *UserHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.Error(c, http.StatusNotFound, "user not found")
	case errors.Is(err, domain.ErrEmailTaken):
		response.Error(c, http.StatusConflict, "email already in use")
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("store operation failed")
		}
		response.Error(c, http.StatusInternalServerError, "internal server error")
	}
}

// userID rejects a malformed :id before it reaches the store.
func userID(c *gin.Context) (string, bool) {
	raw := c.Param("id")
	if _, err := uuid.Parse(raw); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid user id")
		return "", false
	}
	return raw, true
}

// List handles GET /users with page, limit and search query parameters.
func (h *UserHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	q := repository.NewListQuery(page, limit, c.Query("search"))

	users, total, err := h.Svc.List(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.SuccessPage(c, users, response.Pagination{
		Page:  q.Page,
		Limit: q.Limit,
		Total: total,
		Pages: q.Pages(total),
	})
}

// Get handles GET /users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	u, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

// Create handles POST /users.
func (h *UserHandler) Create(c *gin.Context) {
	var in validation.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "invalid payload", validation.BindDetails(err))
		return
	}
	validation.Normalize(&in)
	if details := validation.ValidateCreate(in); len(details) > 0 {
		response.ErrorWithDetails(c, http.StatusBadRequest, "validation failed", details)
		return
	}

	u, err := h.Svc.Create(c.Request.Context(), userapp.CreateInput{
		Name:     *in.Name,
		Email:    *in.Email,
		Password: *in.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, u)
}

// Update handles PUT /users/:id with a partial body; {} is a valid no-op
// patch that still bumps updatedAt.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var in validation.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "invalid payload", validation.BindDetails(err))
		return
	}
	validation.Normalize(&in)
	if details := validation.ValidateUpdate(in); len(details) > 0 {
		response.ErrorWithDetails(c, http.StatusBadRequest, "validation failed", details)
		return
	}

	u, err := h.Svc.Update(c.Request.Context(), id, userapp.UpdateInput{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

// Delete handles DELETE /users/:id and returns the removed record.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	u, err := h.Svc.Delete(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

// Stats handles GET /stats.
func (h *UserHandler) Stats(c *gin.Context) {
	st, err := h.Svc.Stats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, st)
}

// Search handles GET /users/search backed by Elasticsearch.
func (h *UserHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Error(c, http.StatusBadRequest, "missing query")
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	hits, err := h.Svc.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, hits)
}
