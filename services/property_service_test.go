package services

import (
	"testing"

	"renthub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePropertyAndAddUnit(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	service := NewPropertyService(db)

	property, err := service.CreateProperty(CreatePropertyDTO{
		Title:   "Бизнес-центр",
		Address: "ул. Тестовая, 1",
		City:    "Москва",
		OwnerID: landlord.ID,
	})
	require.NoError(t, err)

	unit, err := service.AddUnit(CreateUnitDTO{
		Name:       "Офис 101",
		Floor:      1,
		Area:       42.5,
		PropertyID: property.ID,
		OwnerID:    landlord.ID,
	})
	require.NoError(t, err)

	// Новое помещение всегда свободно
	assert.Equal(t, string(models.UnitStatusAvailable), unit.Status)
}

func TestAddUnitToForeignProperty(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, models.RoleLandlord)
	other := createTestUser(t, db, models.RoleLandlord)
	property := createTestProperty(t, db, owner.ID)
	service := NewPropertyService(db)

	_, err := service.AddUnit(CreateUnitDTO{
		Name:       "Офис 102",
		Floor:      1,
		Area:       30,
		PropertyID: property.ID,
		OwnerID:    other.ID,
	})
	require.Error(t, err)
	assert.Equal(t, ErrKindForbidden, KindOf(err))
}

func TestCreatePropertyValidation(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	service := NewPropertyService(db)

	_, err := service.CreateProperty(CreatePropertyDTO{
		Title:   "Б",
		Address: "к.1",
		City:    "М",
		OwnerID: landlord.ID,
	})
	require.Error(t, err)
	assert.Equal(t, ErrKindValidation, KindOf(err))
}

func TestGetOwnedUnit(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, models.RoleLandlord)
	other := createTestUser(t, db, models.RoleLandlord)
	unit := createTestUnit(t, db, owner.ID)
	service := NewPropertyService(db)

	found, err := service.GetOwnedUnit(unit.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, unit.ID, found.ID)

	_, err = service.GetOwnedUnit(unit.ID, other.ID)
	require.Error(t, err)
	assert.Equal(t, ErrKindConflict, KindOf(err))

	_, err = service.GetOwnedUnit(9999, owner.ID)
	require.Error(t, err)
	assert.Equal(t, ErrKindNotFound, KindOf(err))
}
