package controllers

import (
	"encoding/json"
	"net/http"

	"renthub/config"
	"renthub/database"
	"renthub/middleware"
	"renthub/services"

	"github.com/gorilla/mux"
)

// PaymentController обрабатывает запросы арендодателя к платежам по договорам
type PaymentController struct {
	paymentService *services.PaymentService
}

// NewPaymentController создает новый экземпляр PaymentController
func NewPaymentController(db *database.Database, notifications *services.NotificationService, cfg *config.Config) *PaymentController {
	return &PaymentController{
		paymentService: services.NewPaymentService(db.DB, notifications, cfg),
	}
}

// RegisterRoutes регистрирует маршруты платежей
func (c *PaymentController) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/landlord/leases/{leaseId}/payments", c.RecordPayment).Methods(http.MethodPost)
	router.HandleFunc("/landlord/leases/{leaseId}/payments", c.GetPayments).Methods(http.MethodGet)
	router.HandleFunc("/landlord/leases/{leaseId}/payments/stats", c.GetPaymentStats).Methods(http.MethodGet)
	router.HandleFunc("/landlord/payments/{paymentId}/status", c.UpdatePaymentStatus).Methods(http.MethodPut)
}

// RecordPayment обрабатывает внесение платежа по договору
func (c *PaymentController) RecordPayment(w http.ResponseWriter, r *http.Request) {
	landlordID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Не авторизован", nil)
		return
	}

	leaseID, err := pathID(r, "leaseId")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var dto services.RecordPaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeMessage(w, http.StatusBadRequest, "Некорректное тело запроса", nil)
		return
	}

	payment, err := c.paymentService.RecordPayment(leaseID, landlordID, dto)
	if err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusCreated, "Платеж зафиксирован", map[string]interface{}{
		"payment": payment,
	})
}

// GetPayments возвращает платежи по договору
func (c *PaymentController) GetPayments(w http.ResponseWriter, r *http.Request) {
	landlordID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Не авторизован", nil)
		return
	}

	leaseID, err := pathID(r, "leaseId")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	payments, err := c.paymentService.GetPaymentsByLease(leaseID, landlordID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payments)
}

// GetPaymentStats возвращает сводку платежей по договору
func (c *PaymentController) GetPaymentStats(w http.ResponseWriter, r *http.Request) {
	landlordID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Не авторизован", nil)
		return
	}

	leaseID, err := pathID(r, "leaseId")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	stats, err := c.paymentService.GetPaymentStats(leaseID, landlordID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// UpdatePaymentStatus обрабатывает смену статуса платежа
func (c *PaymentController) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	landlordID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Не авторизован", nil)
		return
	}

	paymentID, err := pathID(r, "paymentId")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var dto services.UpdatePaymentStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeMessage(w, http.StatusBadRequest, "Некорректное тело запроса", nil)
		return
	}

	payment, err := c.paymentService.UpdatePaymentStatus(paymentID, landlordID, dto)
	if err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Статус платежа обновлен", map[string]interface{}{
		"payment": payment,
	})
}
