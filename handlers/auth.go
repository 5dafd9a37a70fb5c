package handlers

import (
	"net/http"

	"peer-delivery-api/accounts"
	"peer-delivery-api/middleware"
	"peer-delivery-api/models"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func userView(u *models.User) gin.H {
	return gin.H{
		"id":       u.ID,
		"name":     u.Name,
		"email":    u.Email,
		"is_admin": u.IsAdmin,
	}
}

// Register creates a new user account
func (h *Handler) Register(c *gin.Context) {
	var req accounts.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	token, err := middleware.GenerateToken(h.jwtSecret, user, h.tokenTTL)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"token":   token,
		"user":    userView(user),
	})
}

// Login authenticates a user and returns a JWT
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	token, err := middleware.GenerateToken(h.jwtSecret, user, h.tokenTTL)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    userView(user),
	})
}

// GetProfile returns the authenticated user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	sess := middleware.GetSession(c)
	user, err := h.accounts.Profile(c.Request.Context(), sess)
	if err != nil {
		h.fail(c, err)
		return
	}
	avg, count, err := h.ratings.PartnerAverage(c.Request.Context(), sess.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":           user,
		"average_rating": avg,
		"rating_count":   count,
	})
}

// UpdateProfile edits name, phone, default address or profile image
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req accounts.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.accounts.UpdateProfile(c.Request.Context(), middleware.GetSession(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": user})
}
