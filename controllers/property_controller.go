package controllers

import (
	"encoding/json"
	"net/http"

	"renthub/database"
	"renthub/middleware"
	"renthub/services"

	"github.com/gorilla/mux"
)

// PropertyController обрабатывает запросы арендодателя к объектам и помещениям
type PropertyController struct {
	propertyService *services.PropertyService
}

// NewPropertyController создает новый экземпляр PropertyController
func NewPropertyController(db *database.Database) *PropertyController {
	return &PropertyController{
		propertyService: services.NewPropertyService(db.DB),
	}
}

// RegisterRoutes регистрирует маршруты объектов недвижимости
func (c *PropertyController) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/landlord/properties", c.CreateProperty).Methods(http.MethodPost)
	router.HandleFunc("/landlord/properties", c.GetProperties).Methods(http.MethodGet)
	router.HandleFunc("/landlord/properties/{propertyId}/units", c.AddUnit).Methods(http.MethodPost)
}

// CreateProperty обрабатывает создание объекта недвижимости
func (c *PropertyController) CreateProperty(w http.ResponseWriter, r *http.Request) {
	// Получаем ID пользователя из контекста (установлен middleware)
	ownerID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Не авторизован", nil)
		return
	}

	var dto services.CreatePropertyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeMessage(w, http.StatusBadRequest, "Некорректное тело запроса", nil)
		return
	}
	dto.OwnerID = ownerID

	property, err := c.propertyService.CreateProperty(dto)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, property)
}

// GetProperties возвращает объекты недвижимости арендодателя
func (c *PropertyController) GetProperties(w http.ResponseWriter, r *http.Request) {
	ownerID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Не авторизован", nil)
		return
	}

	properties, err := c.propertyService.GetPropertiesByOwner(ownerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, properties)
}

// AddUnit обрабатывает добавление помещения к объекту
func (c *PropertyController) AddUnit(w http.ResponseWriter, r *http.Request) {
	ownerID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Не авторизован", nil)
		return
	}

	propertyID, err := pathID(r, "propertyId")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var dto services.CreateUnitDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeMessage(w, http.StatusBadRequest, "Некорректное тело запроса", nil)
		return
	}
	dto.PropertyID = propertyID
	dto.OwnerID = ownerID

	unit, err := c.propertyService.AddUnit(dto)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, unit)
}
