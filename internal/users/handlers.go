package users

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandlers provides HTTP handlers for user CRUD operations
type UserHandlers struct {
	service UserService
	logger  *zap.Logger
}

// NewUserHandlers creates new user handlers
func NewUserHandlers(service UserService, logger *zap.Logger) *UserHandlers {
	return &UserHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers all user-related routes
func (h *UserHandlers) RegisterRoutes(router gin.IRouter) {
	users := router.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.GET("/:id", h.GetUserByID)
		users.PUT("/:id", h.UpdateUser)
		users.PATCH("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}
}

func (h *UserHandlers) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list users",
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *UserHandlers) GetUserByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		if IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.logger.Error("Failed to get user",
			zap.String("request_id", c.GetString("request_id")),
			zap.Int64("user_id", id),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	// The lookup responds with a single-element array, matching the shape
	// of the list endpoint.
	c.JSON(http.StatusOK, []User{*user})
}

func (h *UserHandlers) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), &req)
	if err != nil {
		switch {
		case IsEmailExists(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email ID already exists"})
		case IsValidation(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name and email are required"})
		default:
			h.logger.Error("Failed to create user",
				zap.String("request_id", c.GetString("request_id")),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		}
		return
	}

	c.String(http.StatusCreated, "User created successfully with ID %d", user.ID)
}

func (h *UserHandlers) UpdateUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	err := h.service.UpdateUser(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case IsNotFound(err):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case IsValidation(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name and email are required"})
		default:
			h.logger.Error("Failed to update user",
				zap.String("request_id", c.GetString("request_id")),
				zap.Int64("user_id", id),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		}
		return
	}

	c.String(http.StatusOK, "User modified with ID: %d", id)
}

func (h *UserHandlers) DeleteUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	err := h.service.DeleteUser(c.Request.Context(), id)
	if err != nil {
		if IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.logger.Error("Failed to delete user",
			zap.String("request_id", c.GetString("request_id")),
			zap.Int64("user_id", id),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	c.String(http.StatusOK, "User deleted with ID: %d", id)
}

func (h *UserHandlers) parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return 0, false
	}
	return id, true
}
