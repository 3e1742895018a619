package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"renthub/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var userSeq uint64

// setupTestDB открывает in-memory SQLite и накатывает схему
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.Unit{},
		&models.Listing{},
		&models.ListingNote{},
		&models.Lease{},
		&models.Payment{},
		&models.Application{},
		&models.Notification{},
	)
	require.NoError(t, err)

	return db
}

// newTestNotifications создает сервис уведомлений без отправки почты
func newTestNotifications(db *gorm.DB) *NotificationService {
	return NewNotificationService(db, nil)
}

func createTestUser(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	n := atomic.AddUint64(&userSeq, 1)
	user := &models.User{
		FirstName: "Тест",
		LastName:  "Пользователь",
		Email:     fmt.Sprintf("user%d@example.com", n),
		Password:  "hashed-password",
		Role:      role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestProperty(t *testing.T, db *gorm.DB, ownerID uint) *models.Property {
	property := &models.Property{
		Title:   "Бизнес-центр",
		Address: "ул. Тестовая, 1",
		City:    "Москва",
		OwnerID: ownerID,
	}
	require.NoError(t, db.Create(property).Error)
	return property
}

func createTestUnit(t *testing.T, db *gorm.DB, ownerID uint) *models.Unit {
	property := createTestProperty(t, db, ownerID)
	unit := &models.Unit{
		Name:       "Офис 101",
		Floor:      1,
		Area:       42.5,
		Status:     models.UnitStatusAvailable,
		PropertyID: property.ID,
	}
	require.NoError(t, db.Create(unit).Error)
	return unit
}

func reloadUnit(t *testing.T, db *gorm.DB, id uint) *models.Unit {
	var unit models.Unit
	require.NoError(t, db.First(&unit, id).Error)
	return &unit
}
