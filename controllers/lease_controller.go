package controllers

import (
	"encoding/json"
	"net/http"

	"renthub/database"
	"renthub/middleware"
	"renthub/services"

	"github.com/gorilla/mux"
)

// LeaseController обрабатывает запросы арендодателя к договорам аренды
type LeaseController struct {
	leaseService *services.LeaseService
}

// NewLeaseController создает новый экземпляр LeaseController
func NewLeaseController(db *database.Database, notifications *services.NotificationService) *LeaseController {
	return &LeaseController{
		leaseService: services.NewLeaseService(db.DB, notifications),
	}
}

// RegisterRoutes регистрирует маршруты договоров аренды
func (c *LeaseController) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/landlord/leases", c.CreateLease).Methods(http.MethodPost)
	router.HandleFunc("/landlord/leases", c.GetLeases).Methods(http.MethodGet)
	router.HandleFunc("/landlord/leases/{leaseId}", c.GetLease).Methods(http.MethodGet)
	router.HandleFunc("/landlord/leases/{leaseId}", c.UpdateLease).Methods(http.MethodPut)
	router.HandleFunc("/landlord/leases/{leaseId}", c.DeleteLease).Methods(http.MethodDelete)
	router.HandleFunc("/landlord/leases/{leaseId}/activate", c.ActivateLease).Methods(http.MethodPatch)
	router.HandleFunc("/landlord/leases/{leaseId}/assign/{applicationId}", c.AssignTenant).Methods(http.MethodPost)
}

// CreateLease обрабатывает создание договора аренды
func (c *LeaseController) CreateLease(w http.ResponseWriter, r *http.Request) {
	landlordID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Не авторизован", nil)
		return
	}

	var dto services.CreateLeaseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeMessage(w, http.StatusBadRequest, "Некорректное тело запроса", nil)
		return
	}
	dto.LandlordID = landlordID

	lease, err := c.leaseService.CreateLease(dto)
	if err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusCreated, "Договор создан", map[string]interface{}{
		"lease": lease,
	})
}

// GetLeases возвращает договоры арендодателя
func (c *LeaseController) GetLeases(w http.ResponseWriter, r *http.Request) {
	landlordID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Не авторизован", nil)
		return
	}

	leases, err := c.leaseService.GetLeasesByLandlord(landlordID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, leases)
}

// GetLease возвращает договор по идентификатору
func (c *LeaseController) GetLease(w http.ResponseWriter, r *http.Request) {
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

	lease, err := c.leaseService.GetLeaseByID(leaseID, landlordID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lease)
}

// UpdateLease обрабатывает изменение договора
func (c *LeaseController) UpdateLease(w http.ResponseWriter, r *http.Request) {
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

	var dto services.UpdateLeaseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeMessage(w, http.StatusBadRequest, "Некорректное тело запроса", nil)
		return
	}

	lease, err := c.leaseService.UpdateLease(leaseID, landlordID, dto)
	if err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Договор обновлен", map[string]interface{}{
		"lease": lease,
	})
}

// ActivateLease переводит черновик договора в действующий
func (c *LeaseController) ActivateLease(w http.ResponseWriter, r *http.Request) {
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

	lease, err := c.leaseService.ActivateLease(leaseID, landlordID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Договор активирован", map[string]interface{}{
		"lease": lease,
	})
}

// DeleteLease обрабатывает удаление договора
func (c *LeaseController) DeleteLease(w http.ResponseWriter, r *http.Request) {
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

	if err := c.leaseService.DeleteLease(leaseID, landlordID); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Договор удален", nil)
}

// AssignTenant закрепляет арендатора из заявки за договором
func (c *LeaseController) AssignTenant(w http.ResponseWriter, r *http.Request) {
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

	applicationID, err := pathID(r, "applicationId")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	lease, err := c.leaseService.AssignLeaseToTenant(leaseID, applicationID, landlordID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Арендатор закреплен за договором", map[string]interface{}{
		"lease": lease,
	})
}
