package models

import (
	"time"
)

// Property представляет объект недвижимости арендодателя
type Property struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Title     string    `gorm:"column:title;not null;size:100"`
	Address   string    `gorm:"column:address;not null;size:255"`
	City      string    `gorm:"column:city;not null;size:100"`
	OwnerID   uint      `gorm:"column:owner_id;not null;index"`
	Owner     User      `gorm:"foreignKey:OwnerID;references:ID"`
	Units     []Unit    `gorm:"foreignKey:PropertyID"`
	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (Property) TableName() string {
	return "properties"
}
