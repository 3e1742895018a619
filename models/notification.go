package models

import (
	"time"
)

// NotificationType представляет тип уведомления
type NotificationType string

const (
	NotificationListingRequested NotificationType = "LISTING_REQUESTED"
	NotificationListingDecided   NotificationType = "LISTING_DECIDED"
	NotificationListingDeleted   NotificationType = "LISTING_DELETED"
	NotificationLeaseCreated     NotificationType = "LEASE_CREATED"
	NotificationLeaseAssigned    NotificationType = "LEASE_ASSIGNED"
	NotificationPaymentRecorded  NotificationType = "PAYMENT_RECORDED"
	NotificationApplication      NotificationType = "APPLICATION"
)

// Notification представляет уведомление пользователя.
// Создание уведомления никогда не влияет на исход основной операции.
type Notification struct {
	ID        uint             `gorm:"primaryKey;autoIncrement"`
	UserID    uint             `gorm:"column:user_id;not null;index"`
	Type      NotificationType `gorm:"column:type;type:varchar(30);not null"`
	Message   string           `gorm:"column:message;not null;size:500"`
	IsRead    bool             `gorm:"column:is_read;not null;default:false"`
	CreatedAt time.Time        `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
}

func (Notification) TableName() string {
	return "notifications"
}
