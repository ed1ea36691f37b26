package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"vehicle-tracker/internal/models"
	"vehicle-tracker/internal/services"
	"vehicle-tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserList возвращает всех пользователей (только для администратора)
func UserList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		if err := db.Order("full_name").Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении пользователей"})
			return
		}

		response := make([]models.UserResponse, 0, len(users))
		for _, u := range users {
			response = append(response, u.ToResponse())
		}

		c.JSON(http.StatusOK, response)
	}
}

// UserUpdate редактирует пользователя: имя, email, роль и активность.
// Администратор не может деактивировать себя или снять с себя роль admin.
func UserUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		currentID := c.GetUint("user_id")

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID пользователя"})
			return
		}

		var user models.User
		if err := db.First(&user, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Пользователь не найден"})
			return
		}

		var req struct {
			FullName string `json:"full_name"`
			Email    string `json:"email"`
			Role     string `json:"role"`
			IsActive bool   `json:"is_active"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		fullName := strings.TrimSpace(req.FullName)
		email := strings.ToLower(strings.TrimSpace(req.Email))

		var errors []string
		if fullName == "" {
			errors = append(errors, "Укажите полное имя")
		}
		if email == "" || !validEmail(email) {
			errors = append(errors, "Укажите корректный email")
		}

		var dup models.User
		if err := db.Where("email = ? AND id <> ?", email, user.ID).First(&dup).Error; err == nil {
			errors = append(errors, fmt.Sprintf("Email '%s' уже используется пользователем %s", email, dup.Username))
		}

		if req.Role != models.RoleAdmin && req.Role != models.RoleDriver && req.Role != models.RoleRequester {
			errors = append(errors, "Неверная роль")
		}

		if user.ID == currentID {
			if !req.IsActive {
				errors = append(errors, "Нельзя деактивировать собственную учетную запись")
			}
			if req.Role != models.RoleAdmin {
				errors = append(errors, "Нельзя снять с себя роль администратора")
			}
		}

		if len(errors) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errors})
			return
		}

		user.FullName = fullName
		user.Email = email
		user.Role = req.Role
		user.IsActive = req.IsActive
		if err := db.Save(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении пользователя"})
			return
		}

		services.RecordAudit(db, currentID, c.GetString("username"), models.AuditActionEdit, "User", user.ID,
			fmt.Sprintf("Пользователь %s обновлен администратором", user.Username))

		c.JSON(http.StatusOK, user.ToResponse())
	}
}

// UserResetPassword устанавливает пользователю временный пароль
// и требует сменить его при следующем входе
func UserResetPassword(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID пользователя"})
			return
		}

		var user models.User
		if err := db.First(&user, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Пользователь не найден"})
			return
		}

		var req struct {
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		if len(req.Password) < 6 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"Пароль должен содержать не менее 6 символов"}})
			return
		}

		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при сбросе пароля"})
			return
		}

		user.PasswordHash = hash
		user.MustChangePassword = true
		if err := db.Save(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при сбросе пароля"})
			return
		}

		services.RecordAudit(db, c.GetUint("user_id"), c.GetString("username"),
			models.AuditActionEdit, "User", user.ID,
			fmt.Sprintf("Пароль пользователя %s сброшен администратором", user.Username))

		c.JSON(http.StatusOK, gin.H{"message": "Пароль сброшен, пользователь сменит его при следующем входе"})
	}
}
