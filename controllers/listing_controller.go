package controllers

import (
	"encoding/json"
	"net/http"

	"renthub/database"
	"renthub/middleware"
	"renthub/services"

	"github.com/gorilla/mux"
)

// ListingController обрабатывает запросы каталога и модерации публикаций
type ListingController struct {
	listingService *services.ListingService
}

// NewListingController создает новый экземпляр ListingController
func NewListingController(db *database.Database, notifications *services.NotificationService) *ListingController {
	return &ListingController{
		listingService: services.NewListingService(db.DB, notifications),
	}
}

// RegisterPublicRoutes регистрирует публичные маршруты каталога
func (c *ListingController) RegisterPublicRoutes(router *mux.Router) {
	router.HandleFunc("/listings", c.GetActiveListings).Methods(http.MethodGet)
}

// RegisterLandlordRoutes регистрирует маршруты арендодателя
func (c *ListingController) RegisterLandlordRoutes(router *mux.Router) {
	router.HandleFunc("/landlord/units/{unitId}/request-listing", c.RequestListing).Methods(http.MethodPost)
	router.HandleFunc("/landlord/listings", c.GetOwnListings).Methods(http.MethodGet)
	router.HandleFunc("/landlord/listings/{listingId}", c.DeleteListing).Methods(http.MethodDelete)
}

// RegisterAdminRoutes регистрирует маршруты модерации
func (c *ListingController) RegisterAdminRoutes(router *mux.Router) {
	router.HandleFunc("/admin/property-requests", c.GetPendingListings).Methods(http.MethodGet)
	router.HandleFunc("/admin/property-requests/{listingId}", c.DecideListing).Methods(http.MethodPatch)
}

// RequestListing обрабатывает заявку арендодателя на публикацию помещения
func (c *ListingController) RequestListing(w http.ResponseWriter, r *http.Request) {
	landlordID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Не авторизован", nil)
		return
	}

	unitID, err := pathID(r, "unitId")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	listing, err := c.listingService.RequestListing(unitID, landlordID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusCreated, "Заявка на публикацию отправлена", map[string]interface{}{
		"listing": listing,
	})
}

// GetActiveListings возвращает каталог опубликованных помещений
func (c *ListingController) GetActiveListings(w http.ResponseWriter, r *http.Request) {
	listings, err := c.listingService.GetActiveListings()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listings)
}

// GetOwnListings возвращает публикации арендодателя
func (c *ListingController) GetOwnListings(w http.ResponseWriter, r *http.Request) {
	landlordID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Не авторизован", nil)
		return
	}

	listings, err := c.listingService.GetListingsByOwner(landlordID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listings)
}

// GetPendingListings возвращает заявки, ожидающие модерации
func (c *ListingController) GetPendingListings(w http.ResponseWriter, r *http.Request) {
	listings, err := c.listingService.GetPendingListings()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listings)
}

// DecideListing обрабатывает решение администратора по заявке
func (c *ListingController) DecideListing(w http.ResponseWriter, r *http.Request) {
	adminID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Не авторизован", nil)
		return
	}

	listingID, err := pathID(r, "listingId")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var dto services.DecideListingDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeMessage(w, http.StatusBadRequest, "Некорректное тело запроса", nil)
		return
	}

	listing, err := c.listingService.DecideListing(listingID, adminID, dto)
	if err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Решение по заявке принято", map[string]interface{}{
		"listing": listing,
	})
}

// DeleteListing обрабатывает снятие публикации арендодателем
func (c *ListingController) DeleteListing(w http.ResponseWriter, r *http.Request) {
	landlordID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Не авторизован", nil)
		return
	}

	listingID, err := pathID(r, "listingId")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := c.listingService.DeleteListing(listingID, landlordID); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Публикация снята", nil)
}
