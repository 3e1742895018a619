package models

import (
	"time"
)

// Application представляет заявку арендатора на конкретное помещение.
// Это состояние "до договора": запись удаляется, как только заявка
// привязана к договору или отклонена арендодателем.
type Application struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	UnitID    uint      `gorm:"column:unit_id;not null;index"`
	Unit      Unit      `gorm:"foreignKey:UnitID;references:ID"`
	TenantID  uint      `gorm:"column:tenant_id;not null;index"`
	Tenant    User      `gorm:"foreignKey:TenantID;references:ID"`
	Message   string    `gorm:"column:message;size:1000"`
	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
}

func (Application) TableName() string {
	return "applications"
}
