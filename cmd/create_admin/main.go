package main

import (
	"fmt"
	"log"
	"os"

	"vehicle-tracker/internal/models"
	"vehicle-tracker/internal/utils"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Утилита создает учетную запись администратора по умолчанию,
// если в базе еще нет пользователя admin.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Файл .env не найден, используем переменные окружения")
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		log.Fatal("Ошибка подключения к базе данных:", err)
	}

	if err := db.AutoMigrate(&models.User{}); err != nil {
		log.Fatal("Ошибка миграции базы данных:", err)
	}

	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count > 0 {
		log.Println("Администратор уже существует, ничего не делаем")
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
		log.Println("ADMIN_PASSWORD не задан, используем пароль по умолчанию")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		log.Fatal("Ошибка при создании пароля:", err)
	}

	admin := models.User{
		Username:     "admin",
		Email:        "admin@cosme-project.org",
		PasswordHash: hash,
		FullName:     "System Admin",
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatal("Ошибка при создании администратора:", err)
	}

	log.Printf("Администратор создан: username=admin, id=%d", admin.ID)
}
