package controllers

import (
	"net/http"

	"renthub/database"
	"renthub/middleware"
	"renthub/services"
	"renthub/utils"

	"github.com/gorilla/mux"
)

// NotificationController обрабатывает запросы к уведомлениям пользователя
type NotificationController struct {
	notificationService *services.NotificationService
}

// NewNotificationController создает новый экземпляр NotificationController
func NewNotificationController(db *database.Database, notifications *services.NotificationService) *NotificationController {
	return &NotificationController{
		notificationService: notifications,
	}
}

// RegisterRoutes регистрирует маршруты уведомлений
func (c *NotificationController) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/notifications", c.GetNotifications).Methods(http.MethodGet)
	router.HandleFunc("/notifications/{notificationId}/read", c.MarkRead).Methods(http.MethodPatch)
}

// RegisterAdminRoutes регистрирует служебные маршруты администратора
func (c *NotificationController) RegisterAdminRoutes(router *mux.Router) {
	router.HandleFunc("/admin/metrics", c.GetMetrics).Methods(http.MethodGet)
}

// GetNotifications возвращает уведомления текущего пользователя
func (c *NotificationController) GetNotifications(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Не авторизован", nil)
		return
	}

	notifications, err := c.notificationService.GetByUserID(userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, notifications)
}

// MarkRead помечает уведомление прочитанным
func (c *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Не авторизован", nil)
		return
	}

	notificationID, err := pathID(r, "notificationId")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := c.notificationService.MarkRead(notificationID, userID); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Уведомление прочитано", nil)
}

// GetMetrics возвращает снимок метрик приложения
func (c *NotificationController) GetMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, utils.GetMetrics().GetMetricsSnapshot())
}
