package services

import (
	"testing"
	"time"

	"renthub/config"
	"renthub/models"
	"renthub/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testHMACKey = "test-hmac-key"

func newPaymentService(db *gorm.DB) *PaymentService {
	cfg := &config.Config{}
	cfg.ReceiptHMACKey = testHMACKey
	return NewPaymentService(db, newTestNotifications(db), cfg)
}

func createTestLease(t *testing.T, db *gorm.DB, landlordID uint) *models.Lease {
	unit := createTestUnit(t, db, landlordID)
	lease := &models.Lease{
		UnitID:     unit.ID,
		Status:     models.LeaseStatusActive,
		StartDate:  time.Now(),
		RentAmount: 50000,
		Interval:   models.LeaseIntervalMonthly,
	}
	require.NoError(t, db.Create(lease).Error)
	return lease
}

func TestRecordPaymentDefaults(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	lease := createTestLease(t, db, landlord.ID)
	service := newPaymentService(db)

	payment, err := service.RecordPayment(lease.ID, landlord.ID, RecordPaymentDTO{Amount: 50000})
	require.NoError(t, err)

	assert.Equal(t, string(models.PaymentStatusPending), payment.Status)
	assert.Equal(t, string(models.PaymentTimingOnTime), payment.TimingStatus)
	assert.Nil(t, payment.PaidAt)
	assert.True(t, utils.VerifyReceiptNumber(payment.Receipt, testHMACKey))
}

func TestRecordPaymentPaidSetsPaidAt(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	lease := createTestLease(t, db, landlord.ID)
	service := newPaymentService(db)

	payment, err := service.RecordPayment(lease.ID, landlord.ID, RecordPaymentDTO{
		Amount:       50000,
		Method:       "TRANSFER",
		Status:       "PAID",
		TimingStatus: "LATE",
	})
	require.NoError(t, err)

	assert.Equal(t, string(models.PaymentStatusPaid), payment.Status)
	assert.Equal(t, string(models.PaymentTimingLate), payment.TimingStatus)
	assert.NotNil(t, payment.PaidAt)
}

func TestRecordPaymentForeignLandlord(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	other := createTestUser(t, db, models.RoleLandlord)
	lease := createTestLease(t, db, landlord.ID)
	service := newPaymentService(db)

	_, err := service.RecordPayment(lease.ID, other.ID, RecordPaymentDTO{Amount: 50000})
	require.Error(t, err)
	assert.Equal(t, ErrKindForbidden, KindOf(err))
}

func TestRecordPaymentInvalidAmount(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	lease := createTestLease(t, db, landlord.ID)
	service := newPaymentService(db)

	_, err := service.RecordPayment(lease.ID, landlord.ID, RecordPaymentDTO{Amount: 0})
	require.Error(t, err)
	assert.Equal(t, ErrKindValidation, KindOf(err))
}

func TestUpdatePaymentStatusToPaid(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	lease := createTestLease(t, db, landlord.ID)
	service := newPaymentService(db)

	pending, err := service.RecordPayment(lease.ID, landlord.ID, RecordPaymentDTO{Amount: 50000})
	require.NoError(t, err)

	paid, err := service.UpdatePaymentStatus(pending.ID, landlord.ID, UpdatePaymentStatusDTO{Status: "PAID"})
	require.NoError(t, err)

	assert.Equal(t, string(models.PaymentStatusPaid), paid.Status)
	assert.NotNil(t, paid.PaidAt)
}

func TestUpdatePaymentStatusPaidToPending(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	lease := createTestLease(t, db, landlord.ID)
	service := newPaymentService(db)

	payment, err := service.RecordPayment(lease.ID, landlord.ID, RecordPaymentDTO{
		Amount: 50000,
		Status: "PAID",
	})
	require.NoError(t, err)

	_, err = service.UpdatePaymentStatus(payment.ID, landlord.ID, UpdatePaymentStatusDTO{Status: "PENDING"})
	require.Error(t, err)
	assert.Equal(t, ErrKindConflict, KindOf(err))
}

func TestUpdatePaymentStatusIdempotentPaid(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	lease := createTestLease(t, db, landlord.ID)
	service := newPaymentService(db)

	payment, err := service.RecordPayment(lease.ID, landlord.ID, RecordPaymentDTO{
		Amount: 50000,
		Status: "PAID",
	})
	require.NoError(t, err)
	firstPaidAt := payment.PaidAt

	again, err := service.UpdatePaymentStatus(payment.ID, landlord.ID, UpdatePaymentStatusDTO{Status: "PAID"})
	require.NoError(t, err)
	assert.Equal(t, string(models.PaymentStatusPaid), again.Status)
	assert.Equal(t, firstPaidAt, again.PaidAt)
}

func TestGetPaymentStats(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	lease := createTestLease(t, db, landlord.ID)
	service := newPaymentService(db)

	fixtures := []RecordPaymentDTO{
		{Amount: 1000, Status: "PAID", TimingStatus: "ONTIME"},
		{Amount: 2000, Status: "PAID", TimingStatus: "LATE"},
		{Amount: 3000, Status: "PENDING", TimingStatus: "ADVANCE"},
		{Amount: 4000, Status: "PENDING", TimingStatus: "ONTIME"},
	}
	for _, dto := range fixtures {
		_, err := service.RecordPayment(lease.ID, landlord.ID, dto)
		require.NoError(t, err)
	}

	stats, err := service.GetPaymentStats(lease.ID, landlord.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.TotalCount)
	assert.Equal(t, int64(2), stats.PaidCount)
	assert.Equal(t, float64(10000), stats.TotalAmount)
	assert.Equal(t, float64(3000), stats.PaidAmount)
	assert.Equal(t, int64(2), stats.OnTimeCount)
	assert.Equal(t, int64(1), stats.LateCount)
	assert.Equal(t, int64(1), stats.AdvanceCount)
	assert.InDelta(t, 75.0, stats.ReliabilityPc, 0.01)
}

func TestGetPaymentsUnknownLease(t *testing.T) {
	db := setupTestDB(t)
	landlord := createTestUser(t, db, models.RoleLandlord)
	service := newPaymentService(db)

	_, err := service.GetPaymentsByLease(9999, landlord.ID)
	require.Error(t, err)
	assert.Equal(t, ErrKindNotFound, KindOf(err))
}
