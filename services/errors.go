package services

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// ErrorKind представляет категорию ошибки сервиса
type ErrorKind string

const (
	ErrKindUnauthorized ErrorKind = "UNAUTHORIZED" // Нет или неверная идентификация
	ErrKindForbidden    ErrorKind = "FORBIDDEN"    // Идентификация есть, но не хватает прав
	ErrKindNotFound     ErrorKind = "NOT_FOUND"    // Сущность не найдена
	ErrKindValidation   ErrorKind = "VALIDATION"   // Некорректные входные данные
	ErrKindConflict     ErrorKind = "CONFLICT"     // Нарушен инвариант состояния
	ErrKindInternal     ErrorKind = "INTERNAL"     // Внутренняя ошибка
)

// ServiceError представляет ошибку сервисного слоя с категорией.
// HTTP-слой отображает категорию в статус-код, текст уходит клиенту как есть.
type ServiceError struct {
	Kind    ErrorKind
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// NewUnauthorizedError создает ошибку категории UNAUTHORIZED
func NewUnauthorizedError(message string) error {
	return &ServiceError{Kind: ErrKindUnauthorized, Message: message}
}

// NewForbiddenError создает ошибку категории FORBIDDEN
func NewForbiddenError(message string) error {
	return &ServiceError{Kind: ErrKindForbidden, Message: message}
}

// NewNotFoundError создает ошибку категории NOT_FOUND
func NewNotFoundError(message string) error {
	return &ServiceError{Kind: ErrKindNotFound, Message: message}
}

// NewValidationError создает ошибку категории VALIDATION
func NewValidationError(message string) error {
	return &ServiceError{Kind: ErrKindValidation, Message: message}
}

// NewConflictError создает ошибку категории CONFLICT
func NewConflictError(message string) error {
	return &ServiceError{Kind: ErrKindConflict, Message: message}
}

// NewInternalError создает ошибку категории INTERNAL
func NewInternalError(message string) error {
	return &ServiceError{Kind: ErrKindInternal, Message: message}
}

// KindOf возвращает категорию ошибки.
// Ошибки без категории считаются внутренними.
func KindOf(err error) ErrorKind {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return ErrKindInternal
}

// isUniqueViolation распознает нарушение уникального индекса.
// Postgres и sqlite формулируют ошибку по-разному, поэтому проверяем оба текста.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}

// HTTPStatus отображает ошибку сервиса в HTTP статус-код
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case ErrKindUnauthorized:
		return http.StatusUnauthorized
	case ErrKindForbidden:
		return http.StatusForbidden
	case ErrKindNotFound:
		return http.StatusNotFound
	case ErrKindValidation:
		return http.StatusBadRequest
	case ErrKindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
