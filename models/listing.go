package models

import (
	"time"
)

// ListingStatus представляет статус заявки на публикацию помещения
type ListingStatus string

const (
	ListingStatusPending  ListingStatus = "PENDING"  // Ожидает решения администратора
	ListingStatusApproved ListingStatus = "APPROVED" // Одобрена (совмещена с ACTIVE, см. DecideListing)
	ListingStatusActive   ListingStatus = "ACTIVE"   // Опубликована в каталоге
	ListingStatusRejected ListingStatus = "REJECTED" // Отклонена
	ListingStatusBlocked  ListingStatus = "BLOCKED"  // Заблокирована, повторная подача запрещена
	ListingStatusExpired  ListingStatus = "EXPIRED"  // Срок публикации истек
)

// Listing представляет одну попытку публикации помещения в каталоге.
// У помещения может быть много публикаций за всю историю, но не более одной
// "в работе" (PENDING/APPROVED/ACTIVE) одновременно.
type Listing struct {
	ID           uint          `gorm:"primaryKey;autoIncrement"`
	UnitID       uint          `gorm:"column:unit_id;not null;index"`
	Unit         Unit          `gorm:"foreignKey:UnitID;references:ID"`
	Status       ListingStatus `gorm:"column:status;type:varchar(20);not null;default:'PENDING'"`
	AttemptCount int           `gorm:"column:attempt_count;not null;default:1"`
	ExpiresAt    *time.Time    `gorm:"column:expires_at"` // Устанавливается только при одобрении, +3 месяца
	Notes        []ListingNote `gorm:"foreignKey:ListingID"`
	CreatedAt    time.Time     `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time     `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (Listing) TableName() string {
	return "listings"
}

// InFlight сообщает, находится ли заявка в работе
func (l *Listing) InFlight() bool {
	return l.Status == ListingStatusPending ||
		l.Status == ListingStatusApproved ||
		l.Status == ListingStatusActive
}

// EffectivelyActive сообщает, опубликована ли заявка с учетом ленивого истечения.
// Поле Status может оставаться ACTIVE после прохождения ExpiresAt, поэтому
// фактическую активность всегда считаем от текущего времени.
func (l *Listing) EffectivelyActive(now time.Time) bool {
	if l.Status != ListingStatusActive {
		return false
	}
	return l.ExpiresAt != nil && l.ExpiresAt.After(now)
}

// ListingNote представляет запись в журнале комментариев администратора.
// Журнал только пополняется, существующие записи не изменяются.
type ListingNote struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	ListingID uint      `gorm:"column:listing_id;not null;index"`
	AuthorID  uint      `gorm:"column:author_id;not null"`
	Text      string    `gorm:"column:text;not null;size:1000"`
	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
}

func (ListingNote) TableName() string {
	return "listing_notes"
}
