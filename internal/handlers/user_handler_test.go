package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"vehicle-tracker/internal/models"
	"vehicle-tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func userRouter(db *gorm.DB, user *models.User) *gin.Engine {
	r := gin.New()
	r.Use(authAs(user))
	r.GET("/users", UserList(db))
	r.PUT("/users/:id", UserUpdate(db))
	r.PUT("/users/:id/reset-password", UserResetPassword(db))
	r.GET("/user", GetCurrentUser(db))
	r.PUT("/profile", ProfileUpdate(db))
	r.PUT("/profile/password", ProfileChangePassword(db))
	return r
}

func TestUserUpdateRoleAndActivity(t *testing.T) {
	db := setupTestDB(t)
	admin := createTestUser(t, db, "admin40", models.RoleAdmin)
	target := createTestUser(t, db, "promote.me", models.RoleRequester)
	router := userRouter(db, admin)

	w := performJSON(t, router, "PUT", fmt.Sprintf("/users/%d", target.ID), map[string]interface{}{
		"full_name": target.FullName,
		"email":     target.Email,
		"role":      models.RoleDriver,
		"is_active": true,
	})
	expectStatus(t, w, http.StatusOK)

	var resp models.UserResponse
	decodeJSON(t, w, &resp)
	if resp.Role != models.RoleDriver {
		t.Fatalf("ожидалась роль driver, получена %q", resp.Role)
	}

	// Неизвестная роль отклоняется
	w = performJSON(t, router, "PUT", fmt.Sprintf("/users/%d", target.ID), map[string]interface{}{
		"full_name": target.FullName,
		"email":     target.Email,
		"role":      "superuser",
		"is_active": true,
	})
	expectStatus(t, w, http.StatusBadRequest)
}

func TestUserUpdateSelfProtection(t *testing.T) {
	db := setupTestDB(t)
	admin := createTestUser(t, db, "admin41", models.RoleAdmin)
	router := userRouter(db, admin)

	// Администратор не может деактивировать себя
	w := performJSON(t, router, "PUT", fmt.Sprintf("/users/%d", admin.ID), map[string]interface{}{
		"full_name": admin.FullName,
		"email":     admin.Email,
		"role":      models.RoleAdmin,
		"is_active": false,
	})
	expectStatus(t, w, http.StatusBadRequest)

	// И не может снять с себя роль администратора
	w = performJSON(t, router, "PUT", fmt.Sprintf("/users/%d", admin.ID), map[string]interface{}{
		"full_name": admin.FullName,
		"email":     admin.Email,
		"role":      models.RoleRequester,
		"is_active": true,
	})
	expectStatus(t, w, http.StatusBadRequest)
}

func TestUserResetPasswordForcesChange(t *testing.T) {
	db := setupTestDB(t)
	admin := createTestUser(t, db, "admin42", models.RoleAdmin)
	target := createTestUser(t, db, "reset.target", models.RoleRequester)
	router := userRouter(db, admin)

	w := performJSON(t, router, "PUT", fmt.Sprintf("/users/%d/reset-password", target.ID),
		map[string]interface{}{"password": "temp-pass1"})
	expectStatus(t, w, http.StatusOK)

	var stored models.User
	db.First(&stored, target.ID)
	if !stored.MustChangePassword {
		t.Fatal("после сброса пароля должен требоваться его смена")
	}
	if !utils.CheckPassword("temp-pass1", stored.PasswordHash) {
		t.Fatal("временный пароль не сохранен")
	}
}

func TestProfileUpdate(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "profile.user", models.RoleRequester)
	other := createTestUser(t, db, "other.user", models.RoleRequester)
	router := userRouter(db, user)

	// Чужой email занять нельзя
	w := performJSON(t, router, "PUT", "/profile", map[string]interface{}{
		"full_name": "Новое Имя",
		"email":     other.Email,
	})
	expectStatus(t, w, http.StatusBadRequest)

	w = performJSON(t, router, "PUT", "/profile", map[string]interface{}{
		"full_name": "Новое Имя",
		"email":     "New.Mail@Example.Org",
	})
	expectStatus(t, w, http.StatusOK)

	var resp models.UserResponse
	decodeJSON(t, w, &resp)
	if resp.FullName != "Новое Имя" || resp.Email != "new.mail@example.org" {
		t.Fatalf("профиль не обновился: %+v", resp)
	}
}

func TestProfileChangePassword(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "pwd.user", models.RoleRequester)
	db.Model(user).Update("must_change_password", true)
	router := userRouter(db, user)

	// Неверный текущий пароль
	w := performJSON(t, router, "PUT", "/profile/password", map[string]interface{}{
		"current_password": "wrong",
		"new_password":     "another123",
		"new_password2":    "another123",
	})
	expectStatus(t, w, http.StatusBadRequest)

	// Новый пароль совпадает с текущим
	w = performJSON(t, router, "PUT", "/profile/password", map[string]interface{}{
		"current_password": "secret123",
		"new_password":     "secret123",
		"new_password2":    "secret123",
	})
	expectStatus(t, w, http.StatusBadRequest)

	w = performJSON(t, router, "PUT", "/profile/password", map[string]interface{}{
		"current_password": "secret123",
		"new_password":     "another123",
		"new_password2":    "another123",
	})
	expectStatus(t, w, http.StatusOK)

	var stored models.User
	db.First(&stored, user.ID)
	if stored.MustChangePassword {
		t.Fatal("флаг обязательной смены пароля должен сниматься")
	}
	if !utils.CheckPassword("another123", stored.PasswordHash) {
		t.Fatal("новый пароль не сохранен")
	}
}
