package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmwangi/soko-api/internal/auth"
	"github.com/dmwangi/soko-api/internal/models"
)

// RegisterInput is the JSON body for POST /api/auth/register. It is separate
// from models.User so callers cannot supply an id or role of their choosing.
type RegisterInput struct {
	Username  string  `json:"username" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	ZipCode   *string `json:"zipCode"`
	Country   *string `json:"country"`
}

// Register creates a new buyer account and returns a signed token.
func (h *Handlers) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Email and username must both be unique.
	var existingID int64
	err := h.DB.QueryRow("SELECT id FROM users WHERE email = ? LIMIT 1", input.Email).Scan(&existingID)
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already in use"})
		return
	} else if err != sql.ErrNoRows {
		h.Logger.Error("register: email lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	err = h.DB.QueryRow("SELECT id FROM users WHERE username = ? LIMIT 1", input.Username).Scan(&existingID)
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username already taken"})
		return
	} else if err != sql.ErrNoRows {
		h.Logger.Error("register: username lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var password models.Password
	if err := password.Set(input.Password); err != nil {
		h.Logger.Error("register: password hash failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	result, err := h.DB.Exec(`
		INSERT INTO users (username, email, password, role, first_name, last_name, phone, address, city, state, zip_code, country)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		input.Username, input.Email, password.Hash, models.RoleBuyer,
		input.FirstName, input.LastName, input.Phone, input.Address,
		input.City, input.State, input.ZipCode, input.Country)
	if err != nil {
		h.Logger.Error("register: insert failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	userID, err := result.LastInsertId()
	if err != nil {
		h.Logger.Error("register: LastInsertId failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	user := &models.User{
		ID:       userID,
		Username: input.Username,
		Email:    input.Email,
		Role:     models.RoleBuyer,
	}

	token, err := auth.GenerateToken(h.JWTSecret, user, h.JWTExpiry)
	if err != nil {
		h.Logger.Error("register: token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":  user,
		"token": token,
	})
}

// LoginInput is the JSON body for POST /api/auth/login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and returns a signed token. Unknown email and
// wrong password produce the same response on purpose.
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := h.DB.QueryRow(
		"SELECT id, username, email, password, role FROM users WHERE email = ? LIMIT 1",
		input.Email,
	).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
			return
		}
		h.Logger.Error("login: user lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	password := models.Password{Hash: user.PasswordHash}
	match, err := password.Matches(input.Password)
	if err != nil {
		h.Logger.Error("login: password comparison failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if !match {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, &user, h.JWTExpiry)
	if err != nil {
		h.Logger.Error("login: token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}

// GetMe returns the authenticated user's profile.
func (h *Handlers) GetMe(c *gin.Context) {
	userID := currentUserID(c)

	var user models.User
	err := h.DB.QueryRow(`
		SELECT id, username, email, role, first_name, last_name, phone, address, city, state, zip_code, country, created_at, updated_at
		FROM users WHERE id = ? LIMIT 1`, userID,
	).Scan(&user.ID, &user.Username, &user.Email, &user.Role,
		&user.FirstName, &user.LastName, &user.Phone, &user.Address,
		&user.City, &user.State, &user.ZipCode, &user.Country,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.Logger.Error("getMe: lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfileInput carries the mutable profile fields. Pointers distinguish
// "not provided" from "set to empty".
type UpdateProfileInput struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	ZipCode   *string `json:"zipCode"`
	Country   *string `json:"country"`
}

// UpdateProfile applies the provided fields to the caller's profile.
func (h *Handlers) UpdateProfile(c *gin.Context) {
	userID := currentUserID(c)

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sets := []string{}
	args := []interface{}{}
	appendSet := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, *v)
		}
	}
	appendSet("first_name", input.FirstName)
	appendSet("last_name", input.LastName)
	appendSet("phone", input.Phone)
	appendSet("address", input.Address)
	appendSet("city", input.City)
	appendSet("state", input.State)
	appendSet("zip_code", input.ZipCode)
	appendSet("country", input.Country)

	if len(sets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields provided"})
		return
	}

	query := "UPDATE users SET " + joinSets(sets) + ", updated_at = ? WHERE id = ?"
	args = append(args, time.Now(), userID)

	if _, err := h.DB.Exec(query, args...); err != nil {
		h.Logger.Error("updateProfile: update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	h.GetMe(c)
}

func joinSets(sets []string) string {
	out := sets[0]
	for _, s := range sets[1:] {
		out += ", " + s
	}
	return out
}

// ChangePasswordInput is the JSON body for PUT /api/auth/password.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// ChangePassword re-verifies the current password before storing a new hash.
func (h *Handlers) ChangePassword(c *gin.Context) {
	userID := currentUserID(c)

	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var currentHash string
	err := h.DB.QueryRow("SELECT password FROM users WHERE id = ? LIMIT 1", userID).Scan(&currentHash)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.Logger.Error("changePassword: lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	password := models.Password{Hash: currentHash}
	match, err := password.Matches(input.CurrentPassword)
	if err != nil {
		h.Logger.Error("changePassword: comparison failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if !match {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Current password is incorrect"})
		return
	}

	if err := password.Set(input.NewPassword); err != nil {
		h.Logger.Error("changePassword: hash failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if _, err := h.DB.Exec("UPDATE users SET password = ?, updated_at = ? WHERE id = ?", password.Hash, time.Now(), userID); err != nil {
		h.Logger.Error("changePassword: update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// Logout is stateless: the client drops the token. The endpoint exists so the
// frontend has a uniform call to make.
func (h *Handlers) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
