package handlers

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"vehicle-tracker/internal/models"
	"vehicle-tracker/internal/services"
	"vehicle-tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var emailService = services.NewEmailService()

var usernameRe = regexp.MustCompile(`^[a-z0-9._]+$`)

// validEmail выполняет минимальную проверку адреса: наличие @ и точки в домене
func validEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}

// AuthRegister регистрирует нового пользователя с ролью requester
func AuthRegister(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			FullName  string `json:"full_name"`
			Username  string `json:"username"`
			Email     string `json:"email"`
			Password  string `json:"password"`
			Password2 string `json:"password2"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		fullName := strings.TrimSpace(req.FullName)
		username := strings.ToLower(strings.TrimSpace(req.Username))
		email := strings.ToLower(strings.TrimSpace(req.Email))

		var errors []string

		if fullName == "" {
			errors = append(errors, "Укажите полное имя")
		}
		if username == "" {
			errors = append(errors, "Укажите имя пользователя")
		} else if len(username) < 3 {
			errors = append(errors, "Имя пользователя должно содержать не менее 3 символов")
		} else if !usernameRe.MatchString(username) {
			errors = append(errors, "Имя пользователя может содержать только буквы, цифры, точки и подчеркивания")
		}
		if email == "" {
			errors = append(errors, "Укажите email")
		} else if !validEmail(email) {
			errors = append(errors, "Укажите корректный email")
		}
		if req.Password == "" {
			errors = append(errors, "Укажите пароль")
		} else if len(req.Password) < 6 {
			errors = append(errors, "Пароль должен содержать не менее 6 символов")
		}
		if req.Password != req.Password2 {
			errors = append(errors, "Пароли не совпадают")
		}

		// Проверка уникальности выполняется только при корректных полях
		if len(errors) == 0 {
			var count int64
			db.Model(&models.User{}).Where("username = ?", username).Count(&count)
			if count > 0 {
				errors = append(errors, "Имя пользователя уже занято")
			}
			count = 0
			db.Model(&models.User{}).Where("email = ?", email).Count(&count)
			if count > 0 {
				errors = append(errors, "Email уже зарегистрирован")
			}
		}

		if len(errors) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errors})
			return
		}

		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании пользователя"})
			return
		}

		user := models.User{
			Username:     username,
			Email:        email,
			PasswordHash: hash,
			FullName:     fullName,
			Role:         models.RoleRequester, // роль по умолчанию, сменить может администратор
			IsActive:     true,
		}

		if err := db.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании пользователя"})
			return
		}

		services.RecordAudit(db, user.ID, user.Username, models.AuditActionCreate, "User", user.ID,
			fmt.Sprintf("Регистрация пользователя %s", user.Username))

		c.JSON(http.StatusCreated, user.ToResponse())
	}
}

// AuthLogin проверяет учетные данные и выдает JWT
func AuthLogin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		username := strings.ToLower(strings.TrimSpace(req.Username))
		if username == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Укажите имя пользователя и пароль"})
			return
		}

		var user models.User
		if err := db.Where("username = ?", username).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Неверное имя пользователя или пароль"})
			return
		}

		if !utils.CheckPassword(req.Password, user.PasswordHash) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Неверное имя пользователя или пароль"})
			return
		}

		if !user.IsActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "Учетная запись деактивирована, обратитесь к администратору"})
			return
		}

		token, err := utils.GenerateJWT(user.ID, user.Username, user.Role)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании токена"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":                token,
			"user":                 user.ToResponse(),
			"must_change_password": user.MustChangePassword,
		})
	}
}

// AuthForgotPassword генерирует токен восстановления пароля.
// Ответ одинаков для известных и неизвестных адресов.
func AuthForgotPassword(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email string `json:"email"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		var user models.User
		if err := db.Where("email = ? AND is_active = ?", email, true).First(&user).Error; err == nil {
			token := uuid.NewString()
			expiry := time.Now().Add(time.Hour)
			user.ResetToken = &token
			user.ResetTokenExpiry = &expiry
			db.Save(&user)

			baseURL := os.Getenv("APP_BASE_URL")
			if baseURL == "" {
				baseURL = "http://localhost:8080"
			}

			emailService.Send(
				"Восстановление пароля – COSME Vehicle Tracker",
				[]string{user.Email},
				fmt.Sprintf(
					"Здравствуйте, %s!\n\n"+
						"Для вашей учетной записи был запрошен сброс пароля.\n"+
						"Ссылка действительна в течение часа:\n\n"+
						"%s/reset-password?token=%s\n\n"+
						"Если вы не запрашивали сброс, проигнорируйте это письмо.\n\n"+
						"– COSME Vehicle Tracker",
					user.FullName, baseURL, token,
				),
			)
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Если адрес зарегистрирован, на него отправлена ссылка для восстановления пароля",
		})
	}
}

// AuthResetPassword устанавливает новый пароль по токену восстановления
func AuthResetPassword(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Token     string `json:"token"`
			Password  string `json:"password"`
			Password2 string `json:"password2"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		var errors []string
		if req.Password == "" {
			errors = append(errors, "Укажите пароль")
		} else if len(req.Password) < 6 {
			errors = append(errors, "Пароль должен содержать не менее 6 символов")
		}
		if req.Password != req.Password2 {
			errors = append(errors, "Пароли не совпадают")
		}
		if len(errors) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errors})
			return
		}

		var user models.User
		if err := db.Where("reset_token = ?", req.Token).First(&user).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Недействительная или устаревшая ссылка для сброса пароля"})
			return
		}

		if user.ResetTokenExpiry == nil || user.ResetTokenExpiry.Before(time.Now()) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Недействительная или устаревшая ссылка для сброса пароля"})
			return
		}

		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при смене пароля"})
			return
		}

		user.PasswordHash = hash
		user.ResetToken = nil
		user.ResetTokenExpiry = nil
		user.MustChangePassword = false
		if err := db.Save(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при смене пароля"})
			return
		}

		services.RecordAudit(db, user.ID, user.Username, models.AuditActionEdit, "User", user.ID,
			"Пароль восстановлен по ссылке сброса")

		c.JSON(http.StatusOK, gin.H{"message": "Пароль изменен, теперь вы можете войти"})
	}
}
