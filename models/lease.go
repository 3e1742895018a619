package models

import (
	"time"
)

// LeaseStatus представляет статус договора аренды
type LeaseStatus string

const (
	LeaseStatusDraft      LeaseStatus = "DRAFT"      // Черновик, арендатор может быть не назначен
	LeaseStatusActive     LeaseStatus = "ACTIVE"     // Действующий договор
	LeaseStatusExpired    LeaseStatus = "EXPIRED"    // Срок договора истек
	LeaseStatusTerminated LeaseStatus = "TERMINATED" // Расторгнут досрочно
)

// LeaseInterval представляет периодичность арендной платы
type LeaseInterval string

const (
	LeaseIntervalDaily   LeaseInterval = "DAILY"
	LeaseIntervalWeekly  LeaseInterval = "WEEKLY"
	LeaseIntervalMonthly LeaseInterval = "MONTHLY"
)

// Lease представляет договор аренды: привязывает арендатора к помещению
// на интервал времени. У помещения может быть много договоров за всю
// историю, но не более одного ACTIVE одновременно.
type Lease struct {
	ID         uint          `gorm:"primaryKey;autoIncrement"`
	UnitID     uint          `gorm:"column:unit_id;not null;index"`
	Unit       Unit          `gorm:"foreignKey:UnitID;references:ID"`
	TenantID   *uint         `gorm:"column:tenant_id;index"` // nil у черновика без назначенного арендатора
	Tenant     *User         `gorm:"foreignKey:TenantID;references:ID"`
	Status     LeaseStatus   `gorm:"column:status;type:varchar(20);not null;default:'DRAFT'"`
	StartDate  time.Time     `gorm:"column:start_date;not null"`
	EndDate    *time.Time    `gorm:"column:end_date"` // nil - бессрочный договор
	RentAmount float64       `gorm:"column:rent_amount;type:decimal(20,2);not null"`
	Interval   LeaseInterval `gorm:"column:interval;type:varchar(20);not null;default:'MONTHLY'"`
	Payments   []Payment     `gorm:"foreignKey:LeaseID"`
	CreatedAt  time.Time     `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time     `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (Lease) TableName() string {
	return "leases"
}

// Terminal сообщает, находится ли договор в конечном состоянии
func (l *Lease) Terminal() bool {
	return l.Status == LeaseStatusExpired || l.Status == LeaseStatusTerminated
}
