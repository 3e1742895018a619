package models

import (
	"time"
)

// PaymentStatus представляет статус арендного платежа
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING" // Ожидает оплаты
	PaymentStatusPaid    PaymentStatus = "PAID"    // Оплачен
)

// PaymentTiming представляет классификацию платежа по времени.
// Присваивается один раз при создании и больше не пересчитывается.
type PaymentTiming string

const (
	PaymentTimingOnTime  PaymentTiming = "ONTIME"  // В срок
	PaymentTimingLate    PaymentTiming = "LATE"    // С опозданием
	PaymentTimingAdvance PaymentTiming = "ADVANCE" // Заранее
)

// Payment представляет арендный платеж по договору
type Payment struct {
	ID           uint          `gorm:"primaryKey;autoIncrement"`
	LeaseID      uint          `gorm:"column:lease_id;not null;index"`
	Lease        Lease         `gorm:"foreignKey:LeaseID;references:ID"`
	Amount       float64       `gorm:"column:amount;type:decimal(20,2);not null"`
	Method       string        `gorm:"column:method;size:50"` // CASH, CARD, TRANSFER и т.п.
	Status       PaymentStatus `gorm:"column:status;type:varchar(20);not null;default:'PENDING'"`
	TimingStatus PaymentTiming `gorm:"column:timing_status;type:varchar(20);not null;default:'ONTIME'"`
	PaidAt       *time.Time    `gorm:"column:paid_at"` // Не nil тогда и только тогда, когда Status == PAID
	IsPartial    bool          `gorm:"column:is_partial;not null;default:false"`
	Receipt      string        `gorm:"column:receipt;size:64"` // Номер квитанции с HMAC-подписью
	CreatedAt    time.Time     `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time     `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (Payment) TableName() string {
	return "payments"
}
