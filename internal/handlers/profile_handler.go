package handlers

import (
	"net/http"
	"strings"

	"vehicle-tracker/internal/models"
	"vehicle-tracker/internal/services"
	"vehicle-tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetCurrentUser возвращает текущего пользователя
func GetCurrentUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Пользователь не найден"})
			return
		}

		c.JSON(http.StatusOK, user.ToResponse())
	}
}

// ProfileUpdate обновляет имя и email текущего пользователя
func ProfileUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Пользователь не найден"})
			return
		}

		var req struct {
			FullName string `json:"full_name"`
			Email    string `json:"email"`
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

		// Email должен оставаться уникальным среди остальных пользователей
		if len(errors) == 0 {
			var count int64
			db.Model(&models.User{}).Where("email = ? AND id <> ?", email, user.ID).Count(&count)
			if count > 0 {
				errors = append(errors, "Email уже используется другим пользователем")
			}
		}

		if len(errors) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errors})
			return
		}

		user.FullName = fullName
		user.Email = email
		if err := db.Save(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении профиля"})
			return
		}

		services.RecordAudit(db, user.ID, user.Username, models.AuditActionEdit, "User", user.ID,
			"Профиль обновлен")

		c.JSON(http.StatusOK, user.ToResponse())
	}
}

// ProfileChangePassword меняет пароль текущего пользователя
func ProfileChangePassword(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Пользователь не найден"})
			return
		}

		var req struct {
			CurrentPassword string `json:"current_password"`
			NewPassword     string `json:"new_password"`
			NewPassword2    string `json:"new_password2"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		var errors []string
		if !utils.CheckPassword(req.CurrentPassword, user.PasswordHash) {
			errors = append(errors, "Текущий пароль указан неверно")
		}
		if len(req.NewPassword) < 6 {
			errors = append(errors, "Новый пароль должен содержать не менее 6 символов")
		}
		if req.NewPassword != req.NewPassword2 {
			errors = append(errors, "Пароли не совпадают")
		}
		if req.NewPassword == req.CurrentPassword {
			errors = append(errors, "Новый пароль должен отличаться от текущего")
		}

		if len(errors) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errors})
			return
		}

		hash, err := utils.HashPassword(req.NewPassword)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при смене пароля"})
			return
		}

		user.PasswordHash = hash
		user.MustChangePassword = false
		if err := db.Save(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при смене пароля"})
			return
		}

		services.RecordAudit(db, user.ID, user.Username, models.AuditActionEdit, "User", user.ID,
			"Пароль изменен")

		c.JSON(http.StatusOK, gin.H{"message": "Пароль изменен"})
	}
}
