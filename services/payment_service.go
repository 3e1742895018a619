package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"renthub/config"
	"renthub/models"
	"renthub/utils"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// RecordPaymentDTO представляет данные для регистрации арендного платежа.
// Классификацию по времени задает вызывающая сторона; упрощенный путь подачи
// не передает ее вовсе, тогда платеж считается внесенным в срок.
type RecordPaymentDTO struct {
	Amount       float64 `json:"amount" validate:"required,gt=0"`
	Method       string  `json:"method" validate:"omitempty,oneof=CASH CARD TRANSFER"`
	Status       string  `json:"status" validate:"omitempty,oneof=PENDING PAID"`
	TimingStatus string  `json:"timingStatus" validate:"omitempty,oneof=ONTIME LATE ADVANCE"`
	IsPartial    bool    `json:"isPartial"`
}

// UpdatePaymentStatusDTO представляет смену статуса платежа
type UpdatePaymentStatusDTO struct {
	Status string `json:"status" validate:"required,oneof=PENDING PAID"`
}

// PaymentDTO представляет платеж в ответе
type PaymentDTO struct {
	ID           uint    `json:"id"`
	LeaseID      uint    `json:"leaseId"`
	Amount       float64 `json:"amount"`
	Method       string  `json:"method,omitempty"`
	Status       string  `json:"status"`
	TimingStatus string  `json:"timingStatus"`
	PaidAt       *string `json:"paidAt,omitempty"`
	IsPartial    bool    `json:"isPartial"`
	Receipt      string  `json:"receipt"`
	CreatedAt    string  `json:"createdAt"`
}

// PaymentStatsDTO представляет сводную статистику платежей по договору.
// Считается только на чтении, в базе агрегатов нет.
type PaymentStatsDTO struct {
	TotalCount    int64   `json:"totalCount"`
	PaidCount     int64   `json:"paidCount"`
	TotalAmount   float64 `json:"totalAmount"`
	PaidAmount    float64 `json:"paidAmount"`
	OnTimeCount   int64   `json:"onTimeCount"`
	LateCount     int64   `json:"lateCount"`
	AdvanceCount  int64   `json:"advanceCount"`
	ReliabilityPc float64 `json:"reliabilityPercent"` // Доля платежей без опоздания среди всех зарегистрированных
}

// PaymentService регистрирует арендные платежи по договорам
type PaymentService struct {
	db            *gorm.DB
	validator     *validator.Validate
	notifications *NotificationService
	hmacKey       string
}

// NewPaymentService создает новый экземпляр PaymentService
func NewPaymentService(db *gorm.DB, notifications *NotificationService, cfg *config.Config) *PaymentService {
	hmacKey := ""
	if cfg != nil {
		hmacKey = cfg.ReceiptHMACKey
	}
	return &PaymentService{
		db:            db,
		validator:     validator.New(),
		notifications: notifications,
		hmacKey:       hmacKey,
	}
}

// validateDTO валидирует DTO и собирает сообщения об ошибках
func (s *PaymentService) validateDTO(dto interface{}) error {
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

// getOwnedLease возвращает договор, проверяя его принадлежность арендодателю
func (s *PaymentService) getOwnedLease(leaseID, landlordID uint) (*models.Lease, error) {
	var lease models.Lease
	if err := s.db.Preload("Unit.Property").First(&lease, leaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("договор аренды не найден")
		}
		return nil, NewInternalError("ошибка при поиске договора")
	}

	if lease.Unit.Property.OwnerID != landlordID {
		return nil, NewForbiddenError("договор не принадлежит арендодателю")
	}

	return &lease, nil
}

// RecordPayment регистрирует платеж по договору.
// Классификация по времени фиксируется один раз и далее не пересчитывается.
func (s *PaymentService) RecordPayment(leaseID, landlordID uint, dto RecordPaymentDTO) (*PaymentDTO, error) {
	// Валидируем DTO
	if err := s.validateDTO(dto); err != nil {
		return nil, err
	}

	// Проверяем существование договора и принадлежность арендодателю
	lease, err := s.getOwnedLease(leaseID, landlordID)
	if err != nil {
		return nil, err
	}

	status := models.PaymentStatusPending
	if dto.Status != "" {
		status = models.PaymentStatus(dto.Status)
	}

	timing := models.PaymentTimingOnTime
	if dto.TimingStatus != "" {
		timing = models.PaymentTiming(dto.TimingStatus)
	}

	// Создаем платеж
	payment := &models.Payment{
		LeaseID:      lease.ID,
		Amount:       dto.Amount,
		Method:       dto.Method,
		Status:       status,
		TimingStatus: timing,
		IsPartial:    dto.IsPartial,
		Receipt:      utils.GenerateReceiptNumber(s.hmacKey),
	}

	// paidAt устанавливается тогда и только тогда, когда платеж оплачен
	if status == models.PaymentStatusPaid {
		now := time.Now()
		payment.PaidAt = &now
	}

	// Сохраняем платеж
	if err := s.db.Create(payment).Error; err != nil {
		return nil, NewInternalError("не удалось сохранить платеж")
	}

	// Уведомляем арендодателя
	s.notifications.Notify(landlordID, models.NotificationPaymentRecorded,
		fmt.Sprintf("Зарегистрирован платеж %.2f по договору помещения «%s», квитанция %s",
			dto.Amount, lease.Unit.Name, payment.Receipt))

	utils.GetMetrics().RecordPaymentOperation("record")
	if status == models.PaymentStatusPaid {
		utils.GetMetrics().RecordPaymentOperation("paid")
	}

	return s.toPaymentDTO(payment), nil
}

// UpdatePaymentStatus переводит платеж из PENDING в PAID.
// Обратный переход не поддерживается.
func (s *PaymentService) UpdatePaymentStatus(paymentID, landlordID uint, dto UpdatePaymentStatusDTO) (*PaymentDTO, error) {
	// Валидируем DTO
	if err := s.validateDTO(dto); err != nil {
		return nil, err
	}

	// Получаем платеж вместе с договором
	var payment models.Payment
	if err := s.db.Preload("Lease.Unit.Property").First(&payment, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("платеж не найден")
		}
		return nil, NewInternalError("ошибка при поиске платежа")
	}

	// Проверяем принадлежность платежа арендодателю
	if payment.Lease.Unit.Property.OwnerID != landlordID {
		return nil, NewForbiddenError("платеж не принадлежит арендодателю")
	}

	newStatus := models.PaymentStatus(dto.Status)

	// Оплаченный платеж не возвращается в ожидание
	if payment.Status == models.PaymentStatusPaid && newStatus == models.PaymentStatusPending {
		return nil, NewConflictError("оплаченный платеж нельзя вернуть в ожидание")
	}

	if payment.Status == models.PaymentStatusPending && newStatus == models.PaymentStatusPaid {
		payment.Status = models.PaymentStatusPaid
		if payment.PaidAt == nil {
			now := time.Now()
			payment.PaidAt = &now
		}

		if err := s.db.Save(&payment).Error; err != nil {
			return nil, NewInternalError("ошибка при обновлении платежа")
		}

		utils.LogTransition("payment", payment.ID, string(models.PaymentStatusPending), string(models.PaymentStatusPaid))
		utils.GetMetrics().RecordPaymentOperation("paid")
	}

	return s.toPaymentDTO(&payment), nil
}

// GetPaymentsByLease возвращает платежи по договору, новые первыми
func (s *PaymentService) GetPaymentsByLease(leaseID, landlordID uint) ([]PaymentDTO, error) {
	// Проверяем существование договора и принадлежность арендодателю
	if _, err := s.getOwnedLease(leaseID, landlordID); err != nil {
		return nil, err
	}

	var payments []models.Payment
	if err := s.db.Where("lease_id = ?", leaseID).
		Order("created_at DESC").
		Find(&payments).Error; err != nil {
		return nil, NewInternalError("не удалось получить платежи")
	}

	result := make([]PaymentDTO, 0, len(payments))
	for i := range payments {
		result = append(result, *s.toPaymentDTO(&payments[i]))
	}
	return result, nil
}

// GetPaymentStats возвращает сводную статистику платежей по договору
func (s *PaymentService) GetPaymentStats(leaseID, landlordID uint) (*PaymentStatsDTO, error) {
	// Проверяем существование договора и принадлежность арендодателю
	if _, err := s.getOwnedLease(leaseID, landlordID); err != nil {
		return nil, err
	}

	var payments []models.Payment
	if err := s.db.Where("lease_id = ?", leaseID).Find(&payments).Error; err != nil {
		return nil, NewInternalError("не удалось получить платежи")
	}

	stats := &PaymentStatsDTO{}
	for _, payment := range payments {
		stats.TotalCount++
		stats.TotalAmount += payment.Amount

		if payment.Status == models.PaymentStatusPaid {
			stats.PaidCount++
			stats.PaidAmount += payment.Amount
		}

		switch payment.TimingStatus {
		case models.PaymentTimingOnTime:
			stats.OnTimeCount++
		case models.PaymentTimingLate:
			stats.LateCount++
		case models.PaymentTimingAdvance:
			stats.AdvanceCount++
		}
	}

	// Надежность: доля платежей без опоздания среди всех зарегистрированных
	if stats.TotalCount > 0 {
		stats.ReliabilityPc = float64(stats.TotalCount-stats.LateCount) / float64(stats.TotalCount) * 100
	}

	return stats, nil
}

// toPaymentDTO конвертирует модель Payment в DTO
func (s *PaymentService) toPaymentDTO(payment *models.Payment) *PaymentDTO {
	dto := &PaymentDTO{
		ID:           payment.ID,
		LeaseID:      payment.LeaseID,
		Amount:       payment.Amount,
		Method:       payment.Method,
		Status:       string(payment.Status),
		TimingStatus: string(payment.TimingStatus),
		IsPartial:    payment.IsPartial,
		Receipt:      payment.Receipt,
		CreatedAt:    payment.CreatedAt.Format(time.RFC3339),
	}

	if payment.PaidAt != nil {
		paidAt := payment.PaidAt.Format(time.RFC3339)
		dto.PaidAt = &paidAt
	}

	return dto
}
