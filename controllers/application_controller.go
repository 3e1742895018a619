package controllers

import (
	"encoding/json"
	"net/http"

	"renthub/database"
	"renthub/middleware"
	"renthub/services"

	"github.com/gorilla/mux"
)

// ApplicationController обрабатывает заявки арендаторов на аренду
type ApplicationController struct {
	applicationService *services.ApplicationService
}

// NewApplicationController создает новый экземпляр ApplicationController
func NewApplicationController(db *database.Database, notifications *services.NotificationService) *ApplicationController {
	return &ApplicationController{
		applicationService: services.NewApplicationService(db.DB, notifications),
	}
}

// RegisterTenantRoutes регистрирует маршруты арендатора
func (c *ApplicationController) RegisterTenantRoutes(router *mux.Router) {
	router.HandleFunc("/tenant/applications", c.Apply).Methods(http.MethodPost)
}

// RegisterLandlordRoutes регистрирует маршруты арендодателя
func (c *ApplicationController) RegisterLandlordRoutes(router *mux.Router) {
	router.HandleFunc("/landlord/applications", c.GetApplications).Methods(http.MethodGet)
	router.HandleFunc("/landlord/applications/{applicationId}", c.Reject).Methods(http.MethodDelete)
}

// Apply обрабатывает подачу заявки арендатором
func (c *ApplicationController) Apply(w http.ResponseWriter, r *http.Request) {
	tenantID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Не авторизован", nil)
		return
	}

	var dto services.CreateApplicationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeMessage(w, http.StatusBadRequest, "Некорректное тело запроса", nil)
		return
	}
	dto.TenantID = tenantID

	application, err := c.applicationService.Apply(dto)
	if err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusCreated, "Заявка отправлена", map[string]interface{}{
		"application": application,
	})
}

// GetApplications возвращает заявки на помещения арендодателя
func (c *ApplicationController) GetApplications(w http.ResponseWriter, r *http.Request) {
	landlordID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Не авторизован", nil)
		return
	}

	applications, err := c.applicationService.GetApplicationsByLandlord(landlordID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, applications)
}

// Reject обрабатывает отклонение заявки арендодателем
func (c *ApplicationController) Reject(w http.ResponseWriter, r *http.Request) {
	landlordID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Не авторизован", nil)
		return
	}

	applicationID, err := pathID(r, "applicationId")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := c.applicationService.Reject(applicationID, landlordID); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Заявка отклонена", nil)
}
