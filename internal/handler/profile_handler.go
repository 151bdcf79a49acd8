package handler

import (
	"net/http"
	"strconv"

	"user_auth/internal/middleware"
	"user_auth/internal/model"
	"user_auth/internal/service"
	"user_auth/internal/storage"
	"user_auth/internal/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProfileHandler handles profile CRUD requests
type ProfileHandler struct {
	service        service.ProfileService
	media          storage.Storage
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(s service.ProfileService, media storage.Storage, maxUploadBytes int64, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{service: s, media: media, maxUploadBytes: maxUploadBytes, logger: logger}
}

func (h *ProfileHandler) List(c *gin.Context) {
	var filters model.ProfileFilters
	if v, ok := c.GetQuery("user__email"); ok && v != "" {
		filters.Email = &v
	}
	if v, ok := c.GetQuery("phone_number"); ok && v != "" {
		filters.PhoneNumber = &v
	}
	if v, ok := c.GetQuery("search"); ok && v != "" {
		filters.Search = &v
	}
	filters.Ordering = c.Query("ordering")

	profiles, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newProfileListResponse(profiles, h.media))
}

func (h *ProfileHandler) Get(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}

	profile, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(profile, h.media))
}

func (h *ProfileHandler) Create(c *gin.Context) {
	var in model.ProfileCreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err)
		return
	}

	profile, err := h.service.Create(c.Request.Context(), middleware.CurrentUser(c), &in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, newProfileResponse(profile, h.media))
}

// Update serves both PUT and PATCH
func (h *ProfileHandler) Update(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}

	var in model.ProfileUpdateInput
	if isMultipart(c) {
		errs, err := h.bindUpdateForm(c, &in)
		if err != nil {
			respondBadRequest(c, err)
			return
		}
		if !errs.Empty() {
			respondValidation(c, errs)
			return
		}
	} else if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err)
		return
	}

	partial := c.Request.Method == http.MethodPatch
	profile, err := h.service.Update(c.Request.Context(), middleware.CurrentUser(c), id, &in, partial)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(profile, h.media))
}

func (h *ProfileHandler) bindUpdateForm(c *gin.Context, in *model.ProfileUpdateInput) (validator.Errors, error) {
	errs := validator.Errors{}
	in.PhoneNumber = formPtr(c, "phone_number")
	in.AdditionalInfo = formPtr(c, "additional_info")

	user := &model.ProfileUserUpdate{
		FirstName:       formPtr(c, "user.first_name"),
		LastName:        formPtr(c, "user.last_name"),
		IsPropertyOwner: formBool(c, errs, "user.is_property_owner"),
		IsAdmin:         formBool(c, errs, "user.is_admin"),
	}
	if user.FirstName != nil || user.LastName != nil || user.IsPropertyOwner != nil || user.IsAdmin != nil {
		in.User = user
	}

	photo, err := readUpload(c, h.maxUploadBytes, "photo")
	if err != nil {
		return nil, err
	}
	in.Photo = photo
	return errs, nil
}

func (h *ProfileHandler) Delete(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func profileID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Not found."})
		return 0, false
	}
	return id, true
}

// RegisterProfileRoutes registers profile routes behind authMW; creation also needs adminMW
func (h *ProfileHandler) RegisterProfileRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	profiles := rg.Group("/profiles", authMW)
	{
		profiles.GET("/", h.List)
		profiles.POST("/", adminMW, h.Create)
		profiles.GET("/:id", h.Get)
		profiles.PUT("/:id", h.Update)
		profiles.PATCH("/:id", h.Update)
		profiles.DELETE("/:id", h.Delete)
	}
}
