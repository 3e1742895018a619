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

const leaseDateLayout = "2006-01-02"

// CreateLeaseDTO представляет данные для создания договора аренды
type CreateLeaseDTO struct {
	UnitID     uint    `json:"unitId" validate:"required"`
	TenantID   *uint   `json:"tenantId"`
	StartDate  string  `json:"startDate" validate:"required"`
	EndDate    *string `json:"endDate"`
	RentAmount float64 `json:"rentAmount" validate:"required,gt=0"`
	Interval   string  `json:"interval" validate:"required,oneof=DAILY WEEKLY MONTHLY"`
	Status     string  `json:"status" validate:"omitempty,oneof=DRAFT ACTIVE"`
	LandlordID uint    `json:"-" validate:"required"`
}

// UpdateLeaseDTO представляет изменяемые поля договора.
// Нулевой указатель означает "поле не меняется".
type UpdateLeaseDTO struct {
	StartDate  *string  `json:"startDate"`
	EndDate    *string  `json:"endDate"`
	RentAmount *float64 `json:"rentAmount"`
	Interval   *string  `json:"interval" validate:"omitempty,oneof=DAILY WEEKLY MONTHLY"`
	Status     *string  `json:"status" validate:"omitempty,oneof=DRAFT ACTIVE EXPIRED TERMINATED"`
}

// LeaseDTO представляет договор аренды в ответе
type LeaseDTO struct {
	ID         uint     `json:"id"`
	UnitID     uint     `json:"unitId"`
	UnitName   string   `json:"unitName"`
	TenantID   *uint    `json:"tenantId,omitempty"`
	Tenant     *UserDTO `json:"tenant,omitempty"`
	Status     string   `json:"status"`
	StartDate  string   `json:"startDate"`
	EndDate    *string  `json:"endDate,omitempty"`
	RentAmount float64  `json:"rentAmount"`
	Interval   string   `json:"interval"`
	CreatedAt  string   `json:"createdAt"`
}

// LeaseService управляет жизненным циклом договоров аренды
type LeaseService struct {
	db            *gorm.DB
	validator     *validator.Validate
	notifications *NotificationService
}

// NewLeaseService создает новый экземпляр LeaseService
func NewLeaseService(db *gorm.DB, notifications *NotificationService) *LeaseService {
	return &LeaseService{
		db:            db,
		validator:     validator.New(),
		notifications: notifications,
	}
}

// validateDTO валидирует DTO и собирает сообщения об ошибках
func (s *LeaseService) validateDTO(dto interface{}) error {
	if err := s.validator.Struct(dto); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				errorMessages = append(errorMessages, "поле "+e.Field()+" обязательно")
			case "gt":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть больше "+e.Param())
			case "oneof":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть одним из: "+e.Param())
			}
		}
		return NewValidationError(strings.Join(errorMessages, "; "))
	}
	return nil
}

// parseLeaseDates разбирает и проверяет даты договора.
// Дата начала не может быть в прошлом (сегодняшний день разрешен),
// дата окончания должна быть строго позже даты начала.
func (s *LeaseService) parseLeaseDates(startDate string, endDate *string, checkPast bool) (time.Time, *time.Time, error) {
	start, err := time.Parse(leaseDateLayout, startDate)
	if err != nil {
		return time.Time{}, nil, NewValidationError("неверный формат даты начала, ожидается ГГГГ-ММ-ДД")
	}

	if checkPast {
		today := time.Now().Truncate(24 * time.Hour)
		if start.Before(today) {
			return time.Time{}, nil, NewValidationError("дата начала договора не может быть в прошлом")
		}
	}

	var end *time.Time
	if endDate != nil && *endDate != "" {
		parsed, err := time.Parse(leaseDateLayout, *endDate)
		if err != nil {
			return time.Time{}, nil, NewValidationError("неверный формат даты окончания, ожидается ГГГГ-ММ-ДД")
		}
		if !parsed.After(start) {
			return time.Time{}, nil, NewValidationError("дата окончания должна быть позже даты начала")
		}
		end = &parsed
	}

	return start, end, nil
}

// activeLeaseExists проверяет, есть ли у помещения действующий договор.
// excludeID исключает из проверки сам изменяемый договор.
func (s *LeaseService) activeLeaseExists(tx *gorm.DB, unitID, excludeID uint) (bool, error) {
	var count int64
	query := tx.Model(&models.Lease{}).
		Where("unit_id = ? AND status = ?", unitID, models.LeaseStatusActive)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, NewInternalError("ошибка при проверке действующих договоров")
	}
	return count > 0, nil
}

// CreateLease создает договор аренды
func (s *LeaseService) CreateLease(dto CreateLeaseDTO) (*LeaseDTO, error) {
	// Валидируем DTO
	if err := s.validateDTO(dto); err != nil {
		return nil, err
	}

	// Разбираем даты
	start, end, err := s.parseLeaseDates(dto.StartDate, dto.EndDate, true)
	if err != nil {
		return nil, err
	}

	status := models.LeaseStatusDraft
	if dto.Status != "" {
		status = models.LeaseStatus(dto.Status)
	}

	// Начинаем транзакцию: проверка единственного действующего договора
	// и вставка должны выполняться атомарно
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, NewInternalError("ошибка при начале транзакции")
	}

	// Получаем помещение вместе с объектом недвижимости
	var unit models.Unit
	if err := tx.Preload("Property").First(&unit, dto.UnitID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("помещение не найдено")
		}
		return nil, NewInternalError("ошибка при поиске помещения")
	}

	// Проверяем принадлежность помещения арендодателю
	if unit.Property.OwnerID != dto.LandlordID {
		tx.Rollback()
		return nil, NewConflictError("помещение не принадлежит арендодателю")
	}

	// Проверяем существование арендатора, если он назначен сразу
	var tenant *models.User
	if dto.TenantID != nil {
		var found models.User
		if err := tx.First(&found, *dto.TenantID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NewNotFoundError("арендатор не найден")
			}
			return nil, NewInternalError("ошибка при поиске арендатора")
		}
		tenant = &found
	}

	// У помещения может быть только один действующий договор
	exists, err := s.activeLeaseExists(tx, dto.UnitID, 0)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if exists {
		tx.Rollback()
		return nil, NewConflictError("у помещения уже есть действующий договор аренды")
	}

	// Создаем договор
	lease := &models.Lease{
		UnitID:     dto.UnitID,
		TenantID:   dto.TenantID,
		Status:     status,
		StartDate:  start,
		EndDate:    end,
		RentAmount: dto.RentAmount,
		Interval:   models.LeaseInterval(dto.Interval),
	}

	// Сохраняем договор
	if err := tx.Create(lease).Error; err != nil {
		tx.Rollback()
		if isUniqueViolation(err) {
			return nil, NewConflictError("у помещения уже есть действующий договор аренды")
		}
		return nil, NewInternalError("ошибка при сохранении договора аренды")
	}

	// Действующий договор сразу занимает помещение
	if status == models.LeaseStatusActive {
		unit.Status = models.UnitStatusOccupied
		if err := tx.Save(&unit).Error; err != nil {
			tx.Rollback()
			return nil, NewInternalError("ошибка при обновлении статуса помещения")
		}
	}

	// Подтверждаем транзакцию
	if err := tx.Commit().Error; err != nil {
		return nil, NewInternalError("ошибка при подтверждении транзакции")
	}

	// Уведомляем арендодателя после успешного перехода
	s.notifications.Notify(dto.LandlordID, models.NotificationLeaseCreated,
		fmt.Sprintf("Создан договор аренды помещения «%s» со статусом %s", unit.Name, status))

	utils.GetMetrics().RecordLeaseOperation("create")

	lease.Unit = unit
	lease.Tenant = tenant
	return s.toLeaseDTO(lease), nil
}

// ActivateLease переводит договор в действующее состояние
func (s *LeaseService) ActivateLease(leaseID, landlordID uint) (*LeaseDTO, error) {
	// Начинаем транзакцию
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, NewInternalError("ошибка при начале транзакции")
	}

	// Получаем договор вместе с помещением
	var lease models.Lease
	if err := tx.Preload("Unit.Property").Preload("Tenant").First(&lease, leaseID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("договор аренды не найден")
		}
		return nil, NewInternalError("ошибка при поиске договора")
	}

	// Проверяем принадлежность договора арендодателю
	if lease.Unit.Property.OwnerID != landlordID {
		tx.Rollback()
		return nil, NewForbiddenError("договор не принадлежит арендодателю")
	}

	// Защита от повторной активации
	if lease.Status == models.LeaseStatusActive {
		tx.Rollback()
		return nil, NewConflictError("договор уже активен")
	}

	// Конечные состояния не покидаются
	if lease.Terminal() {
		tx.Rollback()
		return nil, NewConflictError("договор завершен и не может быть активирован")
	}

	// У помещения может быть только один действующий договор
	exists, err := s.activeLeaseExists(tx, lease.UnitID, lease.ID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if exists {
		tx.Rollback()
		return nil, NewConflictError("у помещения уже есть действующий договор аренды")
	}

	previous := lease.Status
	lease.Status = models.LeaseStatusActive
	if err := tx.Save(&lease).Error; err != nil {
		tx.Rollback()
		return nil, NewInternalError("ошибка при обновлении договора")
	}

	// Действующий договор занимает помещение
	lease.Unit.Status = models.UnitStatusOccupied
	if err := tx.Save(&lease.Unit).Error; err != nil {
		tx.Rollback()
		return nil, NewInternalError("ошибка при обновлении статуса помещения")
	}

	// Подтверждаем транзакцию
	if err := tx.Commit().Error; err != nil {
		return nil, NewInternalError("ошибка при подтверждении транзакции")
	}

	utils.LogTransition("lease", lease.ID, string(previous), string(lease.Status))
	utils.GetMetrics().RecordLeaseOperation("activate")

	return s.toLeaseDTO(&lease), nil
}

// UpdateLease изменяет поля договора с повторной проверкой правил создания
func (s *LeaseService) UpdateLease(leaseID, landlordID uint, dto UpdateLeaseDTO) (*LeaseDTO, error) {
	// Валидируем изменяемые поля
	if err := s.validateDTO(dto); err != nil {
		return nil, err
	}

	// Начинаем транзакцию
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, NewInternalError("ошибка при начале транзакции")
	}

	// Получаем договор вместе с помещением
	var lease models.Lease
	if err := tx.Preload("Unit.Property").Preload("Tenant").First(&lease, leaseID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("договор аренды не найден")
		}
		return nil, NewInternalError("ошибка при поиске договора")
	}

	// Проверяем принадлежность договора арендодателю
	if lease.Unit.Property.OwnerID != landlordID {
		tx.Rollback()
		return nil, NewForbiddenError("договор не принадлежит арендодателю")
	}

	// Сумма аренды проверяется тем же правилом, что и при создании
	if dto.RentAmount != nil {
		if *dto.RentAmount <= 0 {
			tx.Rollback()
			return nil, NewValidationError("поле RentAmount должно быть больше 0")
		}
		lease.RentAmount = *dto.RentAmount
	}

	if dto.Interval != nil {
		lease.Interval = models.LeaseInterval(*dto.Interval)
	}

	// Даты перепроверяются в сочетании с неизмененными полями.
	// Проверка "не в прошлом" применяется только к измененной дате начала.
	if dto.StartDate != nil || dto.EndDate != nil {
		startStr := lease.StartDate.Format(leaseDateLayout)
		if dto.StartDate != nil {
			startStr = *dto.StartDate
		}

		var endStr *string
		if dto.EndDate != nil {
			if *dto.EndDate != "" {
				endStr = dto.EndDate
			}
		} else if lease.EndDate != nil {
			formatted := lease.EndDate.Format(leaseDateLayout)
			endStr = &formatted
		}

		start, end, err := s.parseLeaseDates(startStr, endStr, dto.StartDate != nil)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		lease.StartDate = start
		lease.EndDate = end
	}

	unitChanged := false

	// Смена статуса повторяет правила конечного автомата
	if dto.Status != nil && models.LeaseStatus(*dto.Status) != lease.Status {
		newStatus := models.LeaseStatus(*dto.Status)

		// Конечные состояния не покидаются
		if lease.Terminal() {
			tx.Rollback()
			return nil, NewConflictError("договор завершен, смена статуса невозможна")
		}

		switch newStatus {
		case models.LeaseStatusActive:
			// У помещения может быть только один действующий договор
			exists, err := s.activeLeaseExists(tx, lease.UnitID, lease.ID)
			if err != nil {
				tx.Rollback()
				return nil, err
			}
			if exists {
				tx.Rollback()
				return nil, NewConflictError("у помещения уже есть действующий договор аренды")
			}

			lease.Unit.Status = models.UnitStatusOccupied
			unitChanged = true
		case models.LeaseStatusExpired, models.LeaseStatusTerminated:
			// Помещение освобождается, только если его занимал именно этот договор
			wasControlling := lease.Status == models.LeaseStatusActive && lease.Unit.Status == models.UnitStatusOccupied
			if wasControlling {
				exists, err := s.activeLeaseExists(tx, lease.UnitID, lease.ID)
				if err != nil {
					tx.Rollback()
					return nil, err
				}
				if !exists {
					lease.Unit.Status = models.UnitStatusAvailable
					unitChanged = true
				}
			}
		case models.LeaseStatusDraft:
			// Возврат действующего договора в черновик не предусмотрен
			if lease.Status == models.LeaseStatusActive {
				tx.Rollback()
				return nil, NewConflictError("действующий договор нельзя вернуть в черновик")
			}
		}

		previous := lease.Status
		lease.Status = newStatus
		utils.LogTransition("lease", lease.ID, string(previous), string(newStatus))

		if newStatus == models.LeaseStatusTerminated || newStatus == models.LeaseStatusExpired {
			utils.GetMetrics().RecordLeaseOperation("terminate")
		}
		if newStatus == models.LeaseStatusActive {
			utils.GetMetrics().RecordLeaseOperation("activate")
		}
	}

	// Сохраняем договор
	if err := tx.Save(&lease).Error; err != nil {
		tx.Rollback()
		return nil, NewInternalError("ошибка при обновлении договора")
	}

	// Сохраняем помещение, если его статус изменился
	if unitChanged {
		if err := tx.Save(&lease.Unit).Error; err != nil {
			tx.Rollback()
			return nil, NewInternalError("ошибка при обновлении статуса помещения")
		}
	}

	// Подтверждаем транзакцию
	if err := tx.Commit().Error; err != nil {
		return nil, NewInternalError("ошибка при подтверждении транзакции")
	}

	return s.toLeaseDTO(&lease), nil
}

// DeleteLease удаляет договор без платежей.
// Договор, по которому уже есть платежи, можно только расторгнуть.
func (s *LeaseService) DeleteLease(leaseID, landlordID uint) error {
	// Начинаем транзакцию
	tx := s.db.Begin()
	if tx.Error != nil {
		return NewInternalError("ошибка при начале транзакции")
	}

	// Получаем договор вместе с помещением
	var lease models.Lease
	if err := tx.Preload("Unit.Property").First(&lease, leaseID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("договор аренды не найден")
		}
		return NewInternalError("ошибка при поиске договора")
	}

	// Проверяем принадлежность договора арендодателю
	if lease.Unit.Property.OwnerID != landlordID {
		tx.Rollback()
		return NewForbiddenError("договор не принадлежит арендодателю")
	}

	// Проверяем наличие платежей по договору
	var paymentCount int64
	if err := tx.Model(&models.Payment{}).
		Where("lease_id = ?", lease.ID).
		Count(&paymentCount).Error; err != nil {
		tx.Rollback()
		return NewInternalError("ошибка при проверке платежей")
	}

	if paymentCount > 0 {
		tx.Rollback()
		return NewConflictError("по договору есть платежи, удаление невозможно: расторгните договор")
	}

	// Освобождаем помещение, если его занимал именно этот договор
	if lease.Status == models.LeaseStatusActive && lease.Unit.Status == models.UnitStatusOccupied {
		exists, err := s.activeLeaseExists(tx, lease.UnitID, lease.ID)
		if err != nil {
			tx.Rollback()
			return err
		}
		if !exists {
			lease.Unit.Status = models.UnitStatusAvailable
			if err := tx.Save(&lease.Unit).Error; err != nil {
				tx.Rollback()
				return NewInternalError("ошибка при обновлении статуса помещения")
			}
		}
	}

	// Удаляем договор
	if err := tx.Delete(&lease).Error; err != nil {
		tx.Rollback()
		return NewInternalError("ошибка при удалении договора")
	}

	// Подтверждаем транзакцию
	if err := tx.Commit().Error; err != nil {
		return NewInternalError("ошибка при подтверждении транзакции")
	}

	return nil
}

// AssignLeaseToTenant привязывает одобренную заявку арендатора к черновику договора.
// Заявка при этом считается использованной и удаляется.
func (s *LeaseService) AssignLeaseToTenant(leaseID, applicationID, landlordID uint) (*LeaseDTO, error) {
	// Начинаем транзакцию
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, NewInternalError("ошибка при начале транзакции")
	}

	// Получаем договор вместе с помещением
	var lease models.Lease
	if err := tx.Preload("Unit.Property").First(&lease, leaseID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("договор аренды не найден")
		}
		return nil, NewInternalError("ошибка при поиске договора")
	}

	// Проверяем принадлежность договора арендодателю
	if lease.Unit.Property.OwnerID != landlordID {
		tx.Rollback()
		return nil, NewForbiddenError("договор не принадлежит арендодателю")
	}

	// Арендатор уже назначен - заявку привязать нельзя
	if lease.TenantID != nil {
		tx.Rollback()
		return nil, NewConflictError("у договора уже назначен арендатор")
	}

	// Получаем заявку
	var application models.Application
	if err := tx.Preload("Tenant").First(&application, applicationID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("заявка арендатора не найдена")
		}
		return nil, NewInternalError("ошибка при поиске заявки")
	}

	// Заявка должна относиться к тому же помещению
	if application.UnitID != lease.UnitID {
		tx.Rollback()
		return nil, NewConflictError("заявка относится к другому помещению")
	}

	// Назначаем арендатора
	lease.TenantID = &application.TenantID
	if err := tx.Save(&lease).Error; err != nil {
		tx.Rollback()
		return nil, NewInternalError("ошибка при обновлении договора")
	}

	// Удаляем использованную заявку
	if err := tx.Delete(&application).Error; err != nil {
		tx.Rollback()
		return nil, NewInternalError("ошибка при удалении заявки")
	}

	// Подтверждаем транзакцию
	if err := tx.Commit().Error; err != nil {
		return nil, NewInternalError("ошибка при подтверждении транзакции")
	}

	// Уведомляем арендатора после успешного перехода
	s.notifications.Notify(application.TenantID, models.NotificationLeaseAssigned,
		fmt.Sprintf("Вам назначен договор аренды помещения «%s»", lease.Unit.Name))

	lease.Tenant = &application.Tenant
	return s.toLeaseDTO(&lease), nil
}

// GetLeasesByLandlord возвращает договоры по помещениям арендодателя
func (s *LeaseService) GetLeasesByLandlord(landlordID uint) ([]LeaseDTO, error) {
	var leases []models.Lease
	if err := s.db.
		Joins("JOIN units ON units.id = leases.unit_id").
		Joins("JOIN properties ON properties.id = units.property_id").
		Where("properties.owner_id = ?", landlordID).
		Preload("Unit").
		Preload("Tenant").
		Order("leases.created_at DESC").
		Find(&leases).Error; err != nil {
		return nil, NewInternalError("не удалось получить договоры")
	}

	result := make([]LeaseDTO, 0, len(leases))
	for i := range leases {
		result = append(result, *s.toLeaseDTO(&leases[i]))
	}
	return result, nil
}

// GetLeaseByID возвращает договор, проверяя его принадлежность арендодателю
func (s *LeaseService) GetLeaseByID(leaseID, landlordID uint) (*LeaseDTO, error) {
	var lease models.Lease
	if err := s.db.Preload("Unit.Property").Preload("Tenant").First(&lease, leaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("договор аренды не найден")
		}
		return nil, NewInternalError("ошибка при поиске договора")
	}

	if lease.Unit.Property.OwnerID != landlordID {
		return nil, NewForbiddenError("договор не принадлежит арендодателю")
	}

	return s.toLeaseDTO(&lease), nil
}

// toLeaseDTO конвертирует модель Lease в DTO.
// Истечение срока не обслуживается таймером: действующий договор с прошедшей
// датой окончания показывается как EXPIRED, хранимый статус не трогаем.
func (s *LeaseService) toLeaseDTO(lease *models.Lease) *LeaseDTO {
	status := lease.Status
	if status == models.LeaseStatusActive && lease.EndDate != nil && lease.EndDate.Before(time.Now()) {
		status = models.LeaseStatusExpired
	}

	dto := &LeaseDTO{
		ID:         lease.ID,
		UnitID:     lease.UnitID,
		UnitName:   lease.Unit.Name,
		TenantID:   lease.TenantID,
		Status:     string(status),
		StartDate:  lease.StartDate.Format(leaseDateLayout),
		RentAmount: lease.RentAmount,
		Interval:   string(lease.Interval),
		CreatedAt:  lease.CreatedAt.Format(time.RFC3339),
	}

	if lease.EndDate != nil {
		endDate := lease.EndDate.Format(leaseDateLayout)
		dto.EndDate = &endDate
	}

	if lease.Tenant != nil {
		dto.Tenant = &UserDTO{
			ID:        lease.Tenant.ID,
			FirstName: lease.Tenant.FirstName,
			LastName:  lease.Tenant.LastName,
			Email:     lease.Tenant.Email,
			Role:      string(lease.Tenant.Role),
		}
	}

	return dto
}
