package services

import (
	"renthub/models"
	"renthub/utils"

	"gorm.io/gorm"
)

// NotificationService сохраняет уведомления пользователей и, если настроен
// SMTP, дублирует их на email. Любая ошибка здесь логируется и никогда
// не влияет на исход операции, которая породила уведомление.
type NotificationService struct {
	db    *gorm.DB
	email *EmailService
}

// NewNotificationService создает новый экземпляр NotificationService.
// email может быть nil, тогда уведомления пишутся только в базу.
func NewNotificationService(db *gorm.DB, email *EmailService) *NotificationService {
	return &NotificationService{
		db:    db,
		email: email,
	}
}

// Notify создает уведомление для пользователя
func (s *NotificationService) Notify(userID uint, ntype models.NotificationType, message string) {
	notification := &models.Notification{
		UserID:  userID,
		Type:    ntype,
		Message: message,
	}

	if err := s.db.Create(notification).Error; err != nil {
		utils.LogError("не удалось сохранить уведомление для пользователя %d: %v", userID, err)
		return
	}

	// Дублируем на email, если настроен SMTP
	if s.email == nil {
		return
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		utils.LogError("не удалось получить email пользователя %d: %v", userID, err)
		return
	}

	if err := s.email.SendNotification(user.Email, subjectFor(ntype), message); err != nil {
		utils.LogError("не удалось отправить email пользователю %d: %v", userID, err)
	}
}

// subjectFor подбирает тему письма по типу уведомления
func subjectFor(ntype models.NotificationType) string {
	switch ntype {
	case models.NotificationListingRequested:
		return "Новая заявка на публикацию"
	case models.NotificationListingDecided:
		return "Решение по заявке на публикацию"
	case models.NotificationListingDeleted:
		return "Публикация снята"
	case models.NotificationLeaseCreated:
		return "Создан договор аренды"
	case models.NotificationLeaseAssigned:
		return "Назначен договор аренды"
	case models.NotificationPaymentRecorded:
		return "Зарегистрирован платеж"
	case models.NotificationApplication:
		return "Заявка на аренду"
	default:
		return "Уведомление"
	}
}

// NotifyAdmins создает уведомление для всех администраторов
func (s *NotificationService) NotifyAdmins(ntype models.NotificationType, message string) {
	var admins []models.User
	if err := s.db.Where("role = ?", models.RoleAdmin).Find(&admins).Error; err != nil {
		utils.LogError("не удалось получить список администраторов: %v", err)
		return
	}

	for _, admin := range admins {
		s.Notify(admin.ID, ntype, message)
	}
}

// GetByUserID возвращает уведомления пользователя, новые первыми
func (s *NotificationService) GetByUserID(userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, NewInternalError("не удалось получить уведомления")
	}
	return notifications, nil
}

// MarkRead отмечает уведомление пользователя прочитанным
func (s *NotificationService) MarkRead(notificationID, userID uint) error {
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return NewInternalError("не удалось обновить уведомление")
	}
	if result.RowsAffected == 0 {
		return NewNotFoundError("уведомление не найдено")
	}
	return nil
}
