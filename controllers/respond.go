package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"renthub/services"
	"renthub/utils"

	"github.com/gorilla/mux"
)

// writeJSON отправляет JSON-ответ с указанным статусом
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeMessage отправляет ответ вида {"message": ...} с дополнительными полями
func writeMessage(w http.ResponseWriter, status int, message string, extra map[string]interface{}) {
	payload := map[string]interface{}{"message": message}
	for key, value := range extra {
		payload[key] = value
	}
	writeJSON(w, status, payload)
}

// writeError отображает ошибку сервиса в HTTP-ответ по ее категории
func writeError(w http.ResponseWriter, err error) {
	status := services.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		utils.GetMetrics().RecordError(err)
	}
	writeJSON(w, status, map[string]string{"message": err.Error()})
}

// pathID извлекает числовой идентификатор из параметров маршрута
func pathID(r *http.Request, name string) (uint, error) {
	raw, ok := mux.Vars(r)[name]
	if !ok {
		return 0, errors.New("параметр " + name + " не указан")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("параметр " + name + " должен быть положительным числом")
	}
	return uint(id), nil
}
