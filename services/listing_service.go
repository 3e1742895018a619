package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"renthub/models"
	"renthub/utils"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// DecideListingDTO представляет решение администратора по заявке.
// APPROVED при сохранении сворачивается в ACTIVE: отдельного состояния
// "одобрено, но не опубликовано" на практике не существует.
type DecideListingDTO struct {
	Status     string `json:"status" validate:"required,oneof=APPROVED REJECTED BLOCKED"`
	AdminNotes string `json:"adminNotes" validate:"omitempty,max=1000"`
}

// ListingNoteDTO представляет комментарий администратора в ответе
type ListingNoteDTO struct {
	AuthorID  uint   `json:"authorId"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

// ListingDTO представляет заявку на публикацию в ответе
type ListingDTO struct {
	ID           uint             `json:"id"`
	UnitID       uint             `json:"unitId"`
	UnitName     string           `json:"unitName"`
	PropertyID   uint             `json:"propertyId"`
	City         string           `json:"city,omitempty"`
	Status       string           `json:"status"`
	AttemptCount int              `json:"attemptCount"`
	ExpiresAt    *string          `json:"expiresAt,omitempty"`
	Notes        []ListingNoteDTO `json:"notes,omitempty"`
	CreatedAt    string           `json:"createdAt"`
}

// ListingService управляет жизненным циклом публикаций помещений
type ListingService struct {
	db            *gorm.DB
	validator     *validator.Validate
	notifications *NotificationService
}

// NewListingService создает новый экземпляр ListingService
func NewListingService(db *gorm.DB, notifications *NotificationService) *ListingService {
	return &ListingService{
		db:            db,
		validator:     validator.New(),
		notifications: notifications,
	}
}

// latestListingForUnit возвращает самую свежую заявку помещения.
// Историю целиком не загружаем: для всех проверок достаточно последней записи.
func (s *ListingService) latestListingForUnit(tx *gorm.DB, unitID uint) (*models.Listing, error) {
	var listing models.Listing
	err := tx.Where("unit_id = ?", unitID).
		Order("created_at DESC, id DESC").
		First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, NewInternalError("ошибка при поиске заявок помещения")
	}
	return &listing, nil
}

// RequestListing создает заявку на публикацию помещения от имени арендодателя
func (s *ListingService) RequestListing(unitID, landlordID uint) (*ListingDTO, error) {
	// Начинаем транзакцию: проверка последней заявки и вставка новой
	// должны видеть одно и то же состояние
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, NewInternalError("ошибка при начале транзакции")
	}

	// Получаем помещение вместе с объектом недвижимости
	var unit models.Unit
	if err := tx.Preload("Property").First(&unit, unitID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("помещение не найдено")
		}
		return nil, NewInternalError("ошибка при поиске помещения")
	}

	// Проверяем принадлежность помещения арендодателю
	if unit.Property.OwnerID != landlordID {
		tx.Rollback()
		return nil, NewConflictError("помещение не принадлежит арендодателю")
	}

	// Публиковать можно только свободное помещение
	if unit.Status != models.UnitStatusAvailable {
		tx.Rollback()
		return nil, NewConflictError("помещение недоступно для публикации: статус " + string(unit.Status))
	}

	// Смотрим последнюю заявку помещения
	latest, err := s.latestListingForUnit(tx, unitID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	attemptCount := 1
	now := time.Now()

	if latest != nil {
		// Публикация с истекшим сроком фактически не активна. Фиксируем это
		// в хранимом статусе, иначе частичный индекс не пропустит новую заявку.
		if latest.Status == models.ListingStatusActive && !latest.EffectivelyActive(now) {
			latest.Status = models.ListingStatusExpired
			if err := tx.Save(latest).Error; err != nil {
				tx.Rollback()
				return nil, NewInternalError("ошибка при обновлении истекшей публикации")
			}
			utils.LogTransition("listing", latest.ID, string(models.ListingStatusActive), string(models.ListingStatusExpired))
		}

		switch {
		case latest.InFlight():
			tx.Rollback()
			return nil, NewConflictError("у помещения уже есть заявка на публикацию в обработке")
		case latest.Status == models.ListingStatusBlocked:
			tx.Rollback()
			return nil, NewForbiddenError("публикация помещения заблокирована администратором")
		}

		attemptCount = latest.AttemptCount + 1
	}

	// Создаем заявку
	listing := &models.Listing{
		UnitID:       unitID,
		Status:       models.ListingStatusPending,
		AttemptCount: attemptCount,
	}

	// Сохраняем заявку
	if err := tx.Create(listing).Error; err != nil {
		tx.Rollback()
		if isUniqueViolation(err) {
			return nil, NewConflictError("у помещения уже есть заявка на публикацию в обработке")
		}
		return nil, NewInternalError("ошибка при сохранении заявки на публикацию")
	}

	// Подтверждаем транзакцию
	if err := tx.Commit().Error; err != nil {
		return nil, NewInternalError("ошибка при подтверждении транзакции")
	}

	// Уведомляем администраторов после успешного перехода
	s.notifications.NotifyAdmins(models.NotificationListingRequested,
		fmt.Sprintf("Новая заявка на публикацию помещения «%s» (попытка %d)", unit.Name, attemptCount))

	utils.GetMetrics().RecordListingOperation("request")

	listing.Unit = unit
	return s.toListingDTO(listing), nil
}

// DecideListing применяет решение администратора к заявке
func (s *ListingService) DecideListing(listingID, adminID uint, dto DecideListingDTO) (*ListingDTO, error) {
	// Валидируем решение
	if err := s.validator.Struct(dto); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				errorMessages = append(errorMessages, "поле "+e.Field()+" обязательно")
			case "oneof":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть одним из: "+e.Param())
			case "max":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно содержать максимум "+e.Param()+" символов")
			}
		}
		return nil, NewValidationError(strings.Join(errorMessages, "; "))
	}

	// Начинаем транзакцию: статус заявки и отметка публикации помещения
	// должны измениться согласованно
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, NewInternalError("ошибка при начале транзакции")
	}

	// Получаем заявку вместе с помещением и объектом
	var listing models.Listing
	if err := tx.Preload("Unit.Property").First(&listing, listingID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("заявка на публикацию не найдена")
		}
		return nil, NewInternalError("ошибка при поиске заявки")
	}

	// Решение принимается только по заявке в состоянии PENDING
	if listing.Status != models.ListingStatusPending {
		tx.Rollback()
		return nil, NewConflictError("по заявке уже принято решение")
	}

	now := time.Now()
	previous := listing.Status
	decision := models.ListingStatus(dto.Status)

	switch decision {
	case models.ListingStatusApproved:
		// Одобрение и публикация совмещены: заявка сразу становится ACTIVE,
		// промежуточное состояние APPROVED не сохраняется
		listing.Status = models.ListingStatusActive
		expiresAt := now.AddDate(0, 3, 0)
		listing.ExpiresAt = &expiresAt

		// Отмечаем помещение опубликованным
		listing.Unit.ListedAt = &now
		if err := tx.Save(&listing.Unit).Error; err != nil {
			tx.Rollback()
			return nil, NewInternalError("ошибка при обновлении помещения")
		}
	case models.ListingStatusRejected, models.ListingStatusBlocked:
		// Отказ и блокировка не затрагивают помещение
		listing.Status = decision
	}

	// Сохраняем заявку
	if err := tx.Save(&listing).Error; err != nil {
		tx.Rollback()
		return nil, NewInternalError("ошибка при обновлении заявки")
	}

	// Добавляем комментарий администратора в журнал
	if dto.AdminNotes != "" {
		note := &models.ListingNote{
			ListingID: listing.ID,
			AuthorID:  adminID,
			Text:      dto.AdminNotes,
		}
		if err := tx.Create(note).Error; err != nil {
			tx.Rollback()
			return nil, NewInternalError("ошибка при сохранении комментария")
		}
	}

	// Подтверждаем транзакцию
	if err := tx.Commit().Error; err != nil {
		return nil, NewInternalError("ошибка при подтверждении транзакции")
	}

	utils.LogTransition("listing", listing.ID, string(previous), string(listing.Status))

	// Уведомляем арендодателя после успешного перехода
	s.notifications.Notify(listing.Unit.Property.OwnerID, models.NotificationListingDecided,
		fmt.Sprintf("По заявке на публикацию помещения «%s» принято решение: %s", listing.Unit.Name, dto.Status))

	switch decision {
	case models.ListingStatusApproved:
		utils.GetMetrics().RecordListingOperation("approve")
	case models.ListingStatusRejected:
		utils.GetMetrics().RecordListingOperation("reject")
	case models.ListingStatusBlocked:
		utils.GetMetrics().RecordListingOperation("block")
	}

	return s.toListingDTO(&listing), nil
}

// DeleteListing удаляет заявку на публикацию
func (s *ListingService) DeleteListing(listingID, landlordID uint) error {
	// Начинаем транзакцию
	tx := s.db.Begin()
	if tx.Error != nil {
		return NewInternalError("ошибка при начале транзакции")
	}

	// Получаем заявку вместе с помещением и объектом
	var listing models.Listing
	if err := tx.Preload("Unit.Property").First(&listing, listingID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("заявка на публикацию не найдена")
		}
		return NewInternalError("ошибка при поиске заявки")
	}

	// Проверяем принадлежность заявки арендодателю
	if listing.Unit.Property.OwnerID != landlordID {
		tx.Rollback()
		return NewForbiddenError("заявка не принадлежит арендодателю")
	}

	// У активной публикации сначала снимаем отметку с помещения
	if listing.Status == models.ListingStatusActive {
		listing.Unit.ListedAt = nil
		if err := tx.Save(&listing.Unit).Error; err != nil {
			tx.Rollback()
			return NewInternalError("ошибка при обновлении помещения")
		}
	}

	// Удаляем журнал комментариев и саму заявку
	if err := tx.Where("listing_id = ?", listing.ID).Delete(&models.ListingNote{}).Error; err != nil {
		tx.Rollback()
		return NewInternalError("ошибка при удалении комментариев")
	}

	if err := tx.Delete(&listing).Error; err != nil {
		tx.Rollback()
		return NewInternalError("ошибка при удалении заявки")
	}

	// Подтверждаем транзакцию
	if err := tx.Commit().Error; err != nil {
		return NewInternalError("ошибка при подтверждении транзакции")
	}

	// Уведомляем арендодателя
	s.notifications.Notify(landlordID, models.NotificationListingDeleted,
		fmt.Sprintf("Публикация помещения «%s» удалена", listing.Unit.Name))

	return nil
}

// GetActiveListings возвращает публикации, доступные арендаторам.
// Истечение срока не обслуживается таймером, поэтому хранимый статус ACTIVE
// дополнительно фильтруется по expires_at.
func (s *ListingService) GetActiveListings() ([]ListingDTO, error) {
	var listings []models.Listing
	if err := s.db.Where("status = ? AND expires_at > ?", models.ListingStatusActive, time.Now()).
		Preload("Unit.Property").
		Order("created_at DESC").
		Find(&listings).Error; err != nil {
		return nil, NewInternalError("не удалось получить публикации")
	}

	result := make([]ListingDTO, 0, len(listings))
	for i := range listings {
		result = append(result, *s.toListingDTO(&listings[i]))
	}
	return result, nil
}

// GetPendingListings возвращает заявки, ожидающие решения администратора
func (s *ListingService) GetPendingListings() ([]ListingDTO, error) {
	var listings []models.Listing
	if err := s.db.Where("status = ?", models.ListingStatusPending).
		Preload("Unit.Property").
		Preload("Notes").
		Order("created_at ASC").
		Find(&listings).Error; err != nil {
		return nil, NewInternalError("не удалось получить заявки")
	}

	result := make([]ListingDTO, 0, len(listings))
	for i := range listings {
		result = append(result, *s.toListingDTO(&listings[i]))
	}
	return result, nil
}

// GetListingsByOwner возвращает все заявки арендодателя
func (s *ListingService) GetListingsByOwner(ownerID uint) ([]ListingDTO, error) {
	var listings []models.Listing
	if err := s.db.
		Joins("JOIN units ON units.id = listings.unit_id").
		Joins("JOIN properties ON properties.id = units.property_id").
		Where("properties.owner_id = ?", ownerID).
		Preload("Unit.Property").
		Preload("Notes").
		Order("listings.created_at DESC").
		Find(&listings).Error; err != nil {
		return nil, NewInternalError("не удалось получить заявки")
	}

	result := make([]ListingDTO, 0, len(listings))
	for i := range listings {
		result = append(result, *s.toListingDTO(&listings[i]))
	}
	return result, nil
}

// toListingDTO конвертирует модель Listing в DTO
func (s *ListingService) toListingDTO(listing *models.Listing) *ListingDTO {
	dto := &ListingDTO{
		ID:           listing.ID,
		UnitID:       listing.UnitID,
		UnitName:     listing.Unit.Name,
		PropertyID:   listing.Unit.PropertyID,
		City:         listing.Unit.Property.City,
		Status:       string(listing.Status),
		AttemptCount: listing.AttemptCount,
		CreatedAt:    listing.CreatedAt.Format(time.RFC3339),
	}

	if listing.ExpiresAt != nil {
		expiresAt := listing.ExpiresAt.Format(time.RFC3339)
		dto.ExpiresAt = &expiresAt
	}

	for _, note := range listing.Notes {
		dto.Notes = append(dto.Notes, ListingNoteDTO{
			AuthorID:  note.AuthorID,
			Text:      note.Text,
			CreatedAt: note.CreatedAt.Format(time.RFC3339),
		})
	}

	return dto
}
