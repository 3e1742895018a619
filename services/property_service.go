package services

import (
	"errors"
	"strings"
	"time"

	"renthub/models"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// CreatePropertyDTO представляет данные для создания объекта недвижимости
type CreatePropertyDTO struct {
	Title   string `json:"title" validate:"required,min=2,max=100"`
	Address string `json:"address" validate:"required,min=5,max=255"`
	City    string `json:"city" validate:"required,min=2,max=100"`
	OwnerID uint   `json:"-" validate:"required"`
}

// CreateUnitDTO представляет данные для создания помещения
type CreateUnitDTO struct {
	Name       string  `json:"name" validate:"required,min=1,max=100"`
	Floor      int     `json:"floor" validate:"gte=-2,lte=200"`
	Area       float64 `json:"area" validate:"gt=0"`
	PropertyID uint    `json:"-" validate:"required"`
	OwnerID    uint    `json:"-" validate:"required"`
}

// UnitDTO представляет помещение в ответе
type UnitDTO struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Floor    int     `json:"floor"`
	Area     float64 `json:"area"`
	Status   string  `json:"status"`
	ListedAt *string `json:"listedAt,omitempty"`
}

// PropertyDTO представляет объект недвижимости в ответе
type PropertyDTO struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Units     []UnitDTO `json:"units"`
	CreatedAt string    `json:"createdAt"`
}

// PropertyService предоставляет методы для работы с объектами недвижимости
type PropertyService struct {
	db        *gorm.DB
	validator *validator.Validate
}

// NewPropertyService создает новый экземпляр PropertyService
func NewPropertyService(db *gorm.DB) *PropertyService {
	return &PropertyService{
		db:        db,
		validator: validator.New(),
	}
}

// validateDTO валидирует DTO и собирает сообщения об ошибках
func (s *PropertyService) validateDTO(dto interface{}) error {
	if err := s.validator.Struct(dto); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				errorMessages = append(errorMessages, "поле "+e.Field()+" обязательно")
			case "min":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно содержать минимум "+e.Param()+" символов")
			case "max":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно содержать максимум "+e.Param()+" символов")
			case "gt":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть больше "+e.Param())
			default:
				errorMessages = append(errorMessages, "поле "+e.Field()+" заполнено неверно")
			}
		}
		return NewValidationError(strings.Join(errorMessages, "; "))
	}
	return nil
}

// CreateProperty создает новый объект недвижимости
func (s *PropertyService) CreateProperty(dto CreatePropertyDTO) (*PropertyDTO, error) {
	// Валидируем DTO
	if err := s.validateDTO(dto); err != nil {
		return nil, err
	}

	// Создаем объект
	property := &models.Property{
		Title:   dto.Title,
		Address: dto.Address,
		City:    dto.City,
		OwnerID: dto.OwnerID,
	}

	// Сохраняем объект
	if err := s.db.Create(property).Error; err != nil {
		return nil, NewInternalError("не удалось создать объект недвижимости")
	}

	return s.toPropertyDTO(property), nil
}

// AddUnit добавляет помещение к объекту недвижимости
func (s *PropertyService) AddUnit(dto CreateUnitDTO) (*UnitDTO, error) {
	// Валидируем DTO
	if err := s.validateDTO(dto); err != nil {
		return nil, err
	}

	// Проверяем существование объекта и его принадлежность арендодателю
	var property models.Property
	if err := s.db.First(&property, dto.PropertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("объект недвижимости не найден")
		}
		return nil, NewInternalError("ошибка при поиске объекта недвижимости")
	}

	if property.OwnerID != dto.OwnerID {
		return nil, NewForbiddenError("объект недвижимости не принадлежит пользователю")
	}

	// Создаем помещение
	unit := &models.Unit{
		Name:       dto.Name,
		Floor:      dto.Floor,
		Area:       dto.Area,
		Status:     models.UnitStatusAvailable,
		PropertyID: dto.PropertyID,
	}

	// Сохраняем помещение
	if err := s.db.Create(unit).Error; err != nil {
		return nil, NewInternalError("не удалось создать помещение")
	}

	dtoOut := s.toUnitDTO(unit)
	return &dtoOut, nil
}

// GetPropertiesByOwner возвращает объекты недвижимости арендодателя
func (s *PropertyService) GetPropertiesByOwner(ownerID uint) ([]PropertyDTO, error) {
	var properties []models.Property
	if err := s.db.Where("owner_id = ?", ownerID).
		Preload("Units").
		Find(&properties).Error; err != nil {
		return nil, NewInternalError("не удалось получить объекты недвижимости")
	}

	result := make([]PropertyDTO, 0, len(properties))
	for i := range properties {
		result = append(result, *s.toPropertyDTO(&properties[i]))
	}
	return result, nil
}

// GetOwnedUnit возвращает помещение, проверяя его принадлежность арендодателю.
// Используется сервисами публикаций и договоров для проверки владения.
func (s *PropertyService) GetOwnedUnit(unitID, ownerID uint) (*models.Unit, error) {
	var unit models.Unit
	if err := s.db.Preload("Property").First(&unit, unitID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("помещение не найдено")
		}
		return nil, NewInternalError("ошибка при поиске помещения")
	}

	if unit.Property.OwnerID != ownerID {
		return nil, NewConflictError("помещение не принадлежит арендодателю")
	}

	return &unit, nil
}

func (s *PropertyService) toUnitDTO(unit *models.Unit) UnitDTO {
	dto := UnitDTO{
		ID:     unit.ID,
		Name:   unit.Name,
		Floor:  unit.Floor,
		Area:   unit.Area,
		Status: string(unit.Status),
	}
	if unit.ListedAt != nil {
		listedAt := unit.ListedAt.Format(time.RFC3339)
		dto.ListedAt = &listedAt
	}
	return dto
}

func (s *PropertyService) toPropertyDTO(property *models.Property) *PropertyDTO {
	units := make([]UnitDTO, 0, len(property.Units))
	for i := range property.Units {
		units = append(units, s.toUnitDTO(&property.Units[i]))
	}

	return &PropertyDTO{
		ID:        property.ID,
		Title:     property.Title,
		Address:   property.Address,
		City:      property.City,
		Units:     units,
		CreatedAt: property.CreatedAt.Format(time.RFC3339),
	}
}
