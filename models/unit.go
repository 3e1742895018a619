package models

import (
	"time"
)

// UnitStatus представляет статус помещения
type UnitStatus string

const (
	UnitStatusAvailable   UnitStatus = "AVAILABLE"   // Свободно
	UnitStatusOccupied    UnitStatus = "OCCUPIED"    // Занято по договору
	UnitStatusMaintenance UnitStatus = "MAINTENANCE" // На ремонте
)

// Unit представляет отдельное сдаваемое помещение внутри объекта недвижимости
type Unit struct {
	ID         uint       `gorm:"primaryKey;autoIncrement"`
	Name       string     `gorm:"column:name;not null;size:100"`
	Floor      int        `gorm:"column:floor;not null;default:1"`
	Area       float64    `gorm:"column:area;type:decimal(10,2);not null;default:0.0"`
	Status     UnitStatus `gorm:"column:status;type:varchar(20);not null;default:'AVAILABLE'"`
	ListedAt   *time.Time `gorm:"column:listed_at"` // Не nil, пока помещение опубликовано в каталоге
	PropertyID uint       `gorm:"column:property_id;not null;index"`
	Property   Property   `gorm:"foreignKey:PropertyID;references:ID"`
	Listings   []Listing  `gorm:"foreignKey:UnitID"`
	Leases     []Lease    `gorm:"foreignKey:UnitID"`
	CreatedAt  time.Time  `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (Unit) TableName() string {
	return "units"
}
