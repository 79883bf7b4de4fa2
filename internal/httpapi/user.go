package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/psergee/authd/internal/logging"
	"github.com/psergee/authd/internal/services"
)

// UserHandler serves the authenticated profile surface.
type UserHandler struct {
	users   *services.UserService
	baseURL string
	logger  logging.Logger
}

func NewUserHandler(users *services.UserService, baseURL string, logger logging.Logger) *UserHandler {
	return &UserHandler{
		users:   users,
		baseURL: baseURL,
		logger:  logger.With("module", "user_handler"),
	}
}

type userInfoResponse struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Provider   string     `json:"provider"`
	Role       string     `json:"role"`
	Picture    *string    `json:"picture,omitempty"`
	CreateTime time.Time  `json:"create_time"`
	UpdateTime *time.Time `json:"update_time,omitempty"`
}

func (h *UserHandler) GetUserInfo(c *gin.Context) {
	info, err := h.users.GetUserInfo(c.Request.Context(), currentUserID(c), h.baseURL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, userInfoResponse{
		ID:         info.ID,
		Name:       info.Name,
		Email:      info.Email,
		Provider:   string(info.Provider),
		Role:       string(info.Role),
		Picture:    info.Picture,
		CreateTime: info.CreateTime,
		UpdateTime: info.UpdateTime,
	})
}

type editUserRequest struct {
	Name string `form:"name" binding:"required"`
}

// EditUser accepts a multipart form with the new display name and an optional
// "avatar" file part.
func (h *UserHandler) EditUser(c *gin.Context) {
	var req editUserRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	in := services.EditUserInput{
		UserID: currentUserID(c),
		Name:   req.Name,
	}

	if header, err := c.FormFile("avatar"); err == nil {
		file, err := header.Open()
		if err != nil {
			respondBadRequest(c, err)
			return
		}
		defer file.Close()
		in.Avatar = file
		in.AvatarName = header.Filename
	}

	picture, err := h.users.EditUser(c.Request.Context(), in, h.baseURL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"picture": picture})
}

func (h *UserHandler) RemoveAvatar(c *gin.Context) {
	removed, err := h.users.RemoveAvatar(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "ResourceNotFound",
			"message": "user not found or already deleted",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "avatar removed"})
}
