package services

import (
	"testing"
	"time"

	"renthub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format(leaseDateLayout)
}

func TestCreateLeaseDraftByDefault(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	unit := createTestUnit(t, db, landlord.ID)
	service := NewLeaseService(db, newTestNotifications(db))

	lease, err := service.CreateLease(CreateLeaseDTO{
		UnitID:     unit.ID,
		StartDate:  futureDate(1),
		RentAmount: 50000,
		Interval:   "MONTHLY",
		LandlordID: landlord.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, string(models.LeaseStatusDraft), lease.Status)
	assert.Nil(t, lease.TenantID)

	// Черновик не занимает помещение
	assert.Equal(t, models.UnitStatusAvailable, reloadUnit(t, db, unit.ID).Status)
}

func TestCreateLeaseActiveOccupiesUnit(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	tenant := createTestUser(t, db, models.RoleTenant)
	unit := createTestUnit(t, db, landlord.ID)
	service := NewLeaseService(db, newTestNotifications(db))

	lease, err := service.CreateLease(CreateLeaseDTO{
		UnitID:     unit.ID,
		TenantID:   &tenant.ID,
		StartDate:  futureDate(1),
		RentAmount: 50000,
		Interval:   "MONTHLY",
		Status:     "ACTIVE",
		LandlordID: landlord.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, string(models.LeaseStatusActive), lease.Status)
	assert.Equal(t, models.UnitStatusOccupied, reloadUnit(t, db, unit.ID).Status)
}

func TestCreateLeaseSecondActiveRejected(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	unit := createTestUnit(t, db, landlord.ID)
	service := NewLeaseService(db, newTestNotifications(db))

	_, err := service.CreateLease(CreateLeaseDTO{
		UnitID:     unit.ID,
		StartDate:  futureDate(1),
		RentAmount: 50000,
		Interval:   "MONTHLY",
		Status:     "ACTIVE",
		LandlordID: landlord.ID,
	})
	require.NoError(t, err)

	_, err = service.CreateLease(CreateLeaseDTO{
		UnitID:     unit.ID,
		StartDate:  futureDate(2),
		RentAmount: 60000,
		Interval:   "MONTHLY",
		Status:     "ACTIVE",
		LandlordID: landlord.ID,
	})
	require.Error(t, err)
	assert.Equal(t, ErrKindConflict, KindOf(err))
}

func TestCreateLeaseForeignUnit(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, models.RoleLandlord)
	other := createTestUser(t, db, models.RoleLandlord)
	unit := createTestUnit(t, db, owner.ID)
	service := NewLeaseService(db, newTestNotifications(db))

	_, err := service.CreateLease(CreateLeaseDTO{
		UnitID:     unit.ID,
		StartDate:  futureDate(1),
		RentAmount: 50000,
		Interval:   "MONTHLY",
		LandlordID: other.ID,
	})
	require.Error(t, err)
	assert.Equal(t, ErrKindConflict, KindOf(err))
}

func TestCreateLeasePastStartDate(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	unit := createTestUnit(t, db, landlord.ID)
	service := NewLeaseService(db, newTestNotifications(db))

	_, err := service.CreateLease(CreateLeaseDTO{
		UnitID:     unit.ID,
		StartDate:  futureDate(-3),
		RentAmount: 50000,
		Interval:   "MONTHLY",
		LandlordID: landlord.ID,
	})
	require.Error(t, err)
	assert.Equal(t, ErrKindValidation, KindOf(err))
}

func TestCreateLeaseEndBeforeStart(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	unit := createTestUnit(t, db, landlord.ID)
	service := NewLeaseService(db, newTestNotifications(db))

	endDate := futureDate(1)
	_, err := service.CreateLease(CreateLeaseDTO{
		UnitID:     unit.ID,
		StartDate:  futureDate(10),
		EndDate:    &endDate,
		RentAmount: 50000,
		Interval:   "MONTHLY",
		LandlordID: landlord.ID,
	})
	require.Error(t, err)
	assert.Equal(t, ErrKindValidation, KindOf(err))
}

func TestCreateLeaseUnknownTenant(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	unit := createTestUnit(t, db, landlord.ID)
	service := NewLeaseService(db, newTestNotifications(db))

	missing := uint(9999)
	_, err := service.CreateLease(CreateLeaseDTO{
		UnitID:     unit.ID,
		TenantID:   &missing,
		StartDate:  futureDate(1),
		RentAmount: 50000,
		Interval:   "MONTHLY",
		LandlordID: landlord.ID,
	})
	require.Error(t, err)
	assert.Equal(t, ErrKindNotFound, KindOf(err))
}

func TestActivateLease(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	unit := createTestUnit(t, db, landlord.ID)
	service := NewLeaseService(db, newTestNotifications(db))

	draft, err := service.CreateLease(CreateLeaseDTO{
		UnitID:     unit.ID,
		StartDate:  futureDate(1),
		RentAmount: 50000,
		Interval:   "MONTHLY",
		LandlordID: landlord.ID,
	})
	require.NoError(t, err)

	activated, err := service.ActivateLease(draft.ID, landlord.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.LeaseStatusActive), activated.Status)
	assert.Equal(t, models.UnitStatusOccupied, reloadUnit(t, db, unit.ID).Status)
}

func TestActivateLeaseTwice(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	unit := createTestUnit(t, db, landlord.ID)
	service := NewLeaseService(db, newTestNotifications(db))

	draft, err := service.CreateLease(CreateLeaseDTO{
		UnitID:     unit.ID,
		StartDate:  futureDate(1),
		RentAmount: 50000,
		Interval:   "MONTHLY",
		LandlordID: landlord.ID,
	})
	require.NoError(t, err)

	_, err = service.ActivateLease(draft.ID, landlord.ID)
	require.NoError(t, err)

	_, err = service.ActivateLease(draft.ID, landlord.ID)
	require.Error(t, err)
	assert.Equal(t, ErrKindConflict, KindOf(err))
}

func TestActivateTerminatedLease(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	unit := createTestUnit(t, db, landlord.ID)
	service := NewLeaseService(db, newTestNotifications(db))

	lease := &models.Lease{
		UnitID:     unit.ID,
		Status:     models.LeaseStatusTerminated,
		StartDate:  time.Now(),
		RentAmount: 50000,
		Interval:   models.LeaseIntervalMonthly,
	}
	require.NoError(t, db.Create(lease).Error)

	_, err := service.ActivateLease(lease.ID, landlord.ID)
	require.Error(t, err)
	assert.Equal(t, ErrKindConflict, KindOf(err))
}

func TestTerminateLeaseFreesUnit(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	unit := createTestUnit(t, db, landlord.ID)
	service := NewLeaseService(db, newTestNotifications(db))

	lease, err := service.CreateLease(CreateLeaseDTO{
		UnitID:     unit.ID,
		StartDate:  futureDate(1),
		RentAmount: 50000,
		Interval:   "MONTHLY",
		Status:     "ACTIVE",
		LandlordID: landlord.ID,
	})
	require.NoError(t, err)
	require.Equal(t, models.UnitStatusOccupied, reloadUnit(t, db, unit.ID).Status)

	status := "TERMINATED"
	updated, err := service.UpdateLease(lease.ID, landlord.ID, UpdateLeaseDTO{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, string(models.LeaseStatusTerminated), updated.Status)
	assert.Equal(t, models.UnitStatusAvailable, reloadUnit(t, db, unit.ID).Status)
}

func TestUpdateLeaseActiveToDraftRejected(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	unit := createTestUnit(t, db, landlord.ID)
	service := NewLeaseService(db, newTestNotifications(db))

	lease, err := service.CreateLease(CreateLeaseDTO{
		UnitID:     unit.ID,
		StartDate:  futureDate(1),
		RentAmount: 50000,
		Interval:   "MONTHLY",
		Status:     "ACTIVE",
		LandlordID: landlord.ID,
	})
	require.NoError(t, err)

	status := "DRAFT"
	_, err = service.UpdateLease(lease.ID, landlord.ID, UpdateLeaseDTO{Status: &status})
	require.Error(t, err)
	assert.Equal(t, ErrKindConflict, KindOf(err))
}

func TestUpdateTerminalLeaseRejected(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	unit := createTestUnit(t, db, landlord.ID)
	service := NewLeaseService(db, newTestNotifications(db))

	lease := &models.Lease{
		UnitID:     unit.ID,
		Status:     models.LeaseStatusExpired,
		StartDate:  time.Now(),
		RentAmount: 50000,
		Interval:   models.LeaseIntervalMonthly,
	}
	require.NoError(t, db.Create(lease).Error)

	status := "ACTIVE"
	_, err := service.UpdateLease(lease.ID, landlord.ID, UpdateLeaseDTO{Status: &status})
	require.Error(t, err)
	assert.Equal(t, ErrKindConflict, KindOf(err))
}

func TestDeleteLeaseWithPayments(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	unit := createTestUnit(t, db, landlord.ID)
	service := NewLeaseService(db, newTestNotifications(db))

	lease, err := service.CreateLease(CreateLeaseDTO{
		UnitID:     unit.ID,
		StartDate:  futureDate(1),
		RentAmount: 50000,
		Interval:   "MONTHLY",
		LandlordID: landlord.ID,
	})
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.Payment{
		LeaseID:      lease.ID,
		Amount:       50000,
		Status:       models.PaymentStatusPaid,
		TimingStatus: models.PaymentTimingOnTime,
	}).Error)

	err = service.DeleteLease(lease.ID, landlord.ID)
	require.Error(t, err)
	assert.Equal(t, ErrKindConflict, KindOf(err))

	// Договор остается на месте
	var count int64
	require.NoError(t, db.Model(&models.Lease{}).Where("id = ?", lease.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDeleteActiveLeaseFreesUnit(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	unit := createTestUnit(t, db, landlord.ID)
	service := NewLeaseService(db, newTestNotifications(db))

	lease, err := service.CreateLease(CreateLeaseDTO{
		UnitID:     unit.ID,
		StartDate:  futureDate(1),
		RentAmount: 50000,
		Interval:   "MONTHLY",
		Status:     "ACTIVE",
		LandlordID: landlord.ID,
	})
	require.NoError(t, err)

	require.NoError(t, service.DeleteLease(lease.ID, landlord.ID))
	assert.Equal(t, models.UnitStatusAvailable, reloadUnit(t, db, unit.ID).Status)
}

func TestAssignLeaseToTenant(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	tenant := createTestUser(t, db, models.RoleTenant)
	unit := createTestUnit(t, db, landlord.ID)
	service := NewLeaseService(db, newTestNotifications(db))

	draft, err := service.CreateLease(CreateLeaseDTO{
		UnitID:     unit.ID,
		StartDate:  futureDate(1),
		RentAmount: 50000,
		Interval:   "MONTHLY",
		LandlordID: landlord.ID,
	})
	require.NoError(t, err)

	application := &models.Application{UnitID: unit.ID, TenantID: tenant.ID}
	require.NoError(t, db.Create(application).Error)

	assigned, err := service.AssignLeaseToTenant(draft.ID, application.ID, landlord.ID)
	require.NoError(t, err)
	require.NotNil(t, assigned.TenantID)
	assert.Equal(t, tenant.ID, *assigned.TenantID)

	// Использованная заявка удаляется
	var count int64
	require.NoError(t, db.Model(&models.Application{}).Where("id = ?", application.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAssignLeaseWrongUnit(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	tenant := createTestUser(t, db, models.RoleTenant)
	unit := createTestUnit(t, db, landlord.ID)
	otherUnit := createTestUnit(t, db, landlord.ID)
	service := NewLeaseService(db, newTestNotifications(db))

	draft, err := service.CreateLease(CreateLeaseDTO{
		UnitID:     unit.ID,
		StartDate:  futureDate(1),
		RentAmount: 50000,
		Interval:   "MONTHLY",
		LandlordID: landlord.ID,
	})
	require.NoError(t, err)

	application := &models.Application{UnitID: otherUnit.ID, TenantID: tenant.ID}
	require.NoError(t, db.Create(application).Error)

	_, err = service.AssignLeaseToTenant(draft.ID, application.ID, landlord.ID)
	require.Error(t, err)
	assert.Equal(t, ErrKindConflict, KindOf(err))
}

func TestAssignLeaseTenantAlreadySet(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	tenant := createTestUser(t, db, models.RoleTenant)
	other := createTestUser(t, db, models.RoleTenant)
	unit := createTestUnit(t, db, landlord.ID)
	service := NewLeaseService(db, newTestNotifications(db))

	draft, err := service.CreateLease(CreateLeaseDTO{
		UnitID:     unit.ID,
		TenantID:   &tenant.ID,
		StartDate:  futureDate(1),
		RentAmount: 50000,
		Interval:   "MONTHLY",
		LandlordID: landlord.ID,
	})
	require.NoError(t, err)

	application := &models.Application{UnitID: unit.ID, TenantID: other.ID}
	require.NoError(t, db.Create(application).Error)

	_, err = service.AssignLeaseToTenant(draft.ID, application.ID, landlord.ID)
	require.Error(t, err)
	assert.Equal(t, ErrKindConflict, KindOf(err))
}

func TestLeaseShownExpiredAfterEndDate(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	unit := createTestUnit(t, db, landlord.ID)
	service := NewLeaseService(db, newTestNotifications(db))

	endDate := time.Now().Add(-24 * time.Hour)
	lease := &models.Lease{
		UnitID:     unit.ID,
		Status:     models.LeaseStatusActive,
		StartDate:  time.Now().AddDate(0, -6, 0),
		EndDate:    &endDate,
		RentAmount: 50000,
		Interval:   models.LeaseIntervalMonthly,
	}
	require.NoError(t, db.Create(lease).Error)

	dto, err := service.GetLeaseByID(lease.ID, landlord.ID)
	require.NoError(t, err)

	// Хранимый статус не трогаем, но наружу истекший договор показывается как EXPIRED
	assert.Equal(t, string(models.LeaseStatusExpired), dto.Status)

	var reloaded models.Lease
	require.NoError(t, db.First(&reloaded, lease.ID).Error)
	assert.Equal(t, models.LeaseStatusActive, reloaded.Status)
}
