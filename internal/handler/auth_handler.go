package handler

import (
	"errors"
	"net/http"

	"user_auth/internal/middleware"
	"user_auth/internal/model"
	"user_auth/internal/service"
	"user_auth/internal/storage"
	"user_auth/internal/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler handles registration, login, logout and token requests
type AuthHandler struct {
	service        service.AuthService
	media          storage.Storage
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, media storage.Storage, maxUploadBytes int64, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{service: s, media: media, maxUploadBytes: maxUploadBytes, logger: logger}
}

// registrationRequest also accepts phone_number at the top level
type registrationRequest struct {
	model.RegistrationInput
	PhoneNumber string `json:"phone_number"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var in model.RegistrationInput
	if isMultipart(c) {
		if err := h.bindRegistrationForm(c, &in); err != nil {
			respondBadRequest(c, err)
			return
		}
	} else {
		var req registrationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, err)
			return
		}
		in = req.RegistrationInput
		if in.Profile.PhoneNumber == "" {
			in.Profile.PhoneNumber = req.PhoneNumber
		}
	}

	result, err := h.service.Register(c.Request.Context(), &in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, authResponse{
		Token: result.Token,
		User:  newProfileResponse(result.Profile, h.media),
	})
}

func (h *AuthHandler) bindRegistrationForm(c *gin.Context, in *model.RegistrationInput) error {
	in.Email = c.PostForm("email")
	in.FirstName = c.PostForm("first_name")
	in.LastName = c.PostForm("last_name")
	in.Password = c.PostForm("password")
	in.Password2 = c.PostForm("password2")
	in.Profile.PhoneNumber, _ = formValue(c, "profile.phone_number", "phone_number")
	in.Profile.AdditionalInfo, _ = formValue(c, "profile.additional_info", "additional_info")

	photo, err := readUpload(c, h.maxUploadBytes, "profile.photo", "photo")
	if err != nil {
		return err
	}
	in.Profile.Photo = photo
	return nil
}

func (h *AuthHandler) Login(c *gin.Context) {
	var in model.LoginInput
	if err := c.ShouldBind(&in); err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := h.service.Login(c.Request.Context(), &in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, authResponse{
		Token: result.Token,
		User:  newProfileResponse(result.Profile, h.media),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, h.logger, service.ErrNotAuthenticated)
		return
	}

	if err := h.service.Logout(c.Request.Context(), user.ID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

type obtainTokenRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// ObtainToken is the legacy endpoint that returns the user's current token
func (h *AuthHandler) ObtainToken(c *gin.Context) {
	var req obtainTokenRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	login := req.Username
	if login == "" {
		login = req.Email
	}
	errs := validator.Errors{}
	if login == "" {
		errs.Add("username", validator.CodeRequired, "This field is required.")
	}
	if req.Password == "" {
		errs.Add("password", validator.CodeRequired, "This field is required.")
	}
	if !errs.Empty() {
		respondValidation(c, errs)
		return
	}

	token, err := h.service.ObtainToken(c.Request.Context(), login, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Unable to log in with provided credentials."})
			return
		}
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// RegisterAuthRoutes registers auth routes. loginLimit throttles credential checks.
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, optionalAuth, loginLimit gin.HandlerFunc) {
	rg.POST("/register/", h.Register)
	rg.POST("/login/", loginLimit, h.Login)
	rg.POST("/logout/", optionalAuth, h.Logout)
	rg.GET("/logout/", optionalAuth, h.Logout)
	rg.POST("/token/", loginLimit, h.ObtainToken)
}
