package services

import (
	"testing"
	"time"

	"renthub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// publishUnit создает действующую публикацию для помещения
func publishUnit(t *testing.T, db *gorm.DB, unitID uint) {
	expiresAt := time.Now().AddDate(0, 3, 0)
	require.NoError(t, db.Create(&models.Listing{
		UnitID:       unitID,
		Status:       models.ListingStatusActive,
		AttemptCount: 1,
		ExpiresAt:    &expiresAt,
	}).Error)
}

func TestApplyToListedUnit(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	tenant := createTestUser(t, db, models.RoleTenant)
	unit := createTestUnit(t, db, landlord.ID)
	publishUnit(t, db, unit.ID)
	service := NewApplicationService(db, newTestNotifications(db))

	application, err := service.Apply(CreateApplicationDTO{
		UnitID:   unit.ID,
		Message:  "Хочу снять офис с февраля",
		TenantID: tenant.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, unit.ID, application.UnitID)
}

func TestApplyToUnlistedUnit(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	tenant := createTestUser(t, db, models.RoleTenant)
	unit := createTestUnit(t, db, landlord.ID)
	service := NewApplicationService(db, newTestNotifications(db))

	_, err := service.Apply(CreateApplicationDTO{UnitID: unit.ID, TenantID: tenant.ID})
	require.Error(t, err)
	assert.Equal(t, ErrKindConflict, KindOf(err))
}

func TestApplyToExpiredListing(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	tenant := createTestUser(t, db, models.RoleTenant)
	unit := createTestUnit(t, db, landlord.ID)
	service := NewApplicationService(db, newTestNotifications(db))

	// Публикация с прошедшим сроком не считается действующей
	expiresAt := time.Now().Add(-time.Hour)
	require.NoError(t, db.Create(&models.Listing{
		UnitID:       unit.ID,
		Status:       models.ListingStatusActive,
		AttemptCount: 1,
		ExpiresAt:    &expiresAt,
	}).Error)

	_, err := service.Apply(CreateApplicationDTO{UnitID: unit.ID, TenantID: tenant.ID})
	require.Error(t, err)
	assert.Equal(t, ErrKindConflict, KindOf(err))
}

func TestApplyTwice(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	tenant := createTestUser(t, db, models.RoleTenant)
	unit := createTestUnit(t, db, landlord.ID)
	publishUnit(t, db, unit.ID)
	service := NewApplicationService(db, newTestNotifications(db))

	_, err := service.Apply(CreateApplicationDTO{UnitID: unit.ID, TenantID: tenant.ID})
	require.NoError(t, err)

	_, err = service.Apply(CreateApplicationDTO{UnitID: unit.ID, TenantID: tenant.ID})
	require.Error(t, err)
	assert.Equal(t, ErrKindConflict, KindOf(err))
}

func TestRejectApplicationDeletesRecord(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	tenant := createTestUser(t, db, models.RoleTenant)
	unit := createTestUnit(t, db, landlord.ID)
	publishUnit(t, db, unit.ID)
	service := NewApplicationService(db, newTestNotifications(db))

	application, err := service.Apply(CreateApplicationDTO{UnitID: unit.ID, TenantID: tenant.ID})
	require.NoError(t, err)

	require.NoError(t, service.Reject(application.ID, landlord.ID))

	var count int64
	require.NoError(t, db.Model(&models.Application{}).Where("id = ?", application.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRejectForeignApplication(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	other := createTestUser(t, db, models.RoleLandlord)
	tenant := createTestUser(t, db, models.RoleTenant)
	unit := createTestUnit(t, db, landlord.ID)
	publishUnit(t, db, unit.ID)
	service := NewApplicationService(db, newTestNotifications(db))

	application, err := service.Apply(CreateApplicationDTO{UnitID: unit.ID, TenantID: tenant.ID})
	require.NoError(t, err)

	err = service.Reject(application.ID, other.ID)
	require.Error(t, err)
	assert.Equal(t, ErrKindForbidden, KindOf(err))
}

func TestGetApplicationsByLandlord(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	stranger := createTestUser(t, db, models.RoleLandlord)
	tenant := createTestUser(t, db, models.RoleTenant)
	unit := createTestUnit(t, db, landlord.ID)
	publishUnit(t, db, unit.ID)
	service := NewApplicationService(db, newTestNotifications(db))

	_, err := service.Apply(CreateApplicationDTO{UnitID: unit.ID, TenantID: tenant.ID})
	require.NoError(t, err)

	mine, err := service.GetApplicationsByLandlord(landlord.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	foreign, err := service.GetApplicationsByLandlord(stranger.ID)
	require.NoError(t, err)
	assert.Empty(t, foreign)
}
