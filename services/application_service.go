package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"renthub/models"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// CreateApplicationDTO представляет заявку арендатора на помещение
type CreateApplicationDTO struct {
	UnitID   uint   `json:"unitId" validate:"required"`
	Message  string `json:"message" validate:"omitempty,max=1000"`
	TenantID uint   `json:"-" validate:"required"`
}

// ApplicationDTO представляет заявку арендатора в ответе
type ApplicationDTO struct {
	ID        uint    `json:"id"`
	UnitID    uint    `json:"unitId"`
	UnitName  string  `json:"unitName"`
	Tenant    UserDTO `json:"tenant"`
	Message   string  `json:"message,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

// ApplicationService управляет заявками арендаторов на помещения.
// Заявка живет до решения арендодателя: привязка к договору или отказ
// удаляют запись.
type ApplicationService struct {
	db            *gorm.DB
	validator     *validator.Validate
	notifications *NotificationService
}

// NewApplicationService создает новый экземпляр ApplicationService
func NewApplicationService(db *gorm.DB, notifications *NotificationService) *ApplicationService {
	return &ApplicationService{
		db:            db,
		validator:     validator.New(),
		notifications: notifications,
	}
}

// Apply создает заявку арендатора на помещение.
// Подать заявку можно только на фактически опубликованное помещение.
func (s *ApplicationService) Apply(dto CreateApplicationDTO) (*ApplicationDTO, error) {
	// Валидируем DTO
	if err := s.validator.Struct(dto); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				errorMessages = append(errorMessages, "поле "+e.Field()+" обязательно")
			case "max":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно содержать максимум "+e.Param()+" символов")
			}
		}
		return nil, NewValidationError(strings.Join(errorMessages, "; "))
	}

	// Получаем помещение
	var unit models.Unit
	if err := s.db.Preload("Property").First(&unit, dto.UnitID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("помещение не найдено")
		}
		return nil, NewInternalError("ошибка при поиске помещения")
	}

	// Помещение должно быть опубликовано с учетом ленивого истечения срока
	var listing models.Listing
	err := s.db.Where("unit_id = ? AND status = ? AND expires_at > ?",
		dto.UnitID, models.ListingStatusActive, time.Now()).
		First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewConflictError("помещение не опубликовано в каталоге")
		}
		return nil, NewInternalError("ошибка при поиске публикации")
	}

	// Повторная заявка того же арендатора на то же помещение не создается
	var existing models.Application
	if err := s.db.Where("unit_id = ? AND tenant_id = ?", dto.UnitID, dto.TenantID).
		First(&existing).Error; err == nil {
		return nil, NewConflictError("заявка на это помещение уже подана")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewInternalError("ошибка при проверке заявок")
	}

	// Создаем заявку
	application := &models.Application{
		UnitID:   dto.UnitID,
		TenantID: dto.TenantID,
		Message:  dto.Message,
	}

	// Сохраняем заявку
	if err := s.db.Create(application).Error; err != nil {
		return nil, NewInternalError("не удалось сохранить заявку")
	}

	// Уведомляем владельца помещения
	s.notifications.Notify(unit.Property.OwnerID, models.NotificationApplication,
		fmt.Sprintf("Новая заявка арендатора на помещение «%s»", unit.Name))

	application.Unit = unit
	return s.toApplicationDTO(application), nil
}

// Reject отклоняет заявку арендатора и удаляет запись
func (s *ApplicationService) Reject(applicationID, landlordID uint) error {
	// Получаем заявку вместе с помещением
	var application models.Application
	if err := s.db.Preload("Unit.Property").First(&application, applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("заявка арендатора не найдена")
		}
		return NewInternalError("ошибка при поиске заявки")
	}

	// Проверяем принадлежность помещения арендодателю
	if application.Unit.Property.OwnerID != landlordID {
		return NewForbiddenError("заявка относится к чужому помещению")
	}

	// Удаляем заявку
	if err := s.db.Delete(&application).Error; err != nil {
		return NewInternalError("ошибка при удалении заявки")
	}

	// Уведомляем арендатора
	s.notifications.Notify(application.TenantID, models.NotificationApplication,
		fmt.Sprintf("Заявка на помещение «%s» отклонена", application.Unit.Name))

	return nil
}

// GetApplicationsByLandlord возвращает заявки на помещения арендодателя
func (s *ApplicationService) GetApplicationsByLandlord(landlordID uint) ([]ApplicationDTO, error) {
	var applications []models.Application
	if err := s.db.
		Joins("JOIN units ON units.id = applications.unit_id").
		Joins("JOIN properties ON properties.id = units.property_id").
		Where("properties.owner_id = ?", landlordID).
		Preload("Unit").
		Preload("Tenant").
		Order("applications.created_at ASC").
		Find(&applications).Error; err != nil {
		return nil, NewInternalError("не удалось получить заявки")
	}

	result := make([]ApplicationDTO, 0, len(applications))
	for i := range applications {
		result = append(result, *s.toApplicationDTO(&applications[i]))
	}
	return result, nil
}

// toApplicationDTO конвертирует модель Application в DTO
func (s *ApplicationService) toApplicationDTO(application *models.Application) *ApplicationDTO {
	return &ApplicationDTO{
		ID:       application.ID,
		UnitID:   application.UnitID,
		UnitName: application.Unit.Name,
		Tenant: UserDTO{
			ID:        application.Tenant.ID,
			FirstName: application.Tenant.FirstName,
			LastName:  application.Tenant.LastName,
			Email:     application.Tenant.Email,
			Role:      string(application.Tenant.Role),
		},
		Message:   application.Message,
		CreatedAt: application.CreatedAt.Format(time.RFC3339),
	}
}
