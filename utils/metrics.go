package utils

import (
	"sync"
	"time"
)

// Metrics содержит метрики приложения
type Metrics struct {
	mu sync.RWMutex

	// Метрики запросов
	TotalRequests   int64
	FailedRequests  int64
	RequestLatency  time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time

	// Метрики публикаций
	ListingsRequested int64
	ListingsApproved  int64
	ListingsRejected  int64
	ListingsBlocked   int64

	// Метрики договоров
	LeasesCreated    int64
	LeasesActivated  int64
	LeasesTerminated int64

	// Метрики платежей
	PaymentsRecorded int64
	PaymentsPaid     int64

	// Метрики ошибок
	ErrorCount    int64
	LastErrorTime time.Time
	ErrorTypes    map[string]int64
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// GetMetrics возвращает экземпляр метрик
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			ErrorTypes: make(map[string]int64),
		}
	})
	return metrics
}

// RecordRequest записывает метрики запроса
func (m *Metrics) RecordRequest(duration time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests++
	m.RequestLatency += duration
	m.AverageLatency = m.RequestLatency / time.Duration(m.TotalRequests)
	m.LastRequestTime = time.Now()

	if failed {
		m.FailedRequests++
	}
}

// RecordListingOperation записывает метрики операции с публикацией
func (m *Metrics) RecordListingOperation(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch operation {
	case "request":
		m.ListingsRequested++
	case "approve":
		m.ListingsApproved++
	case "reject":
		m.ListingsRejected++
	case "block":
		m.ListingsBlocked++
	}
}

// RecordLeaseOperation записывает метрики операции с договором
func (m *Metrics) RecordLeaseOperation(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch operation {
	case "create":
		m.LeasesCreated++
	case "activate":
		m.LeasesActivated++
	case "terminate":
		m.LeasesTerminated++
	}
}

// RecordPaymentOperation записывает метрики операции с платежом
func (m *Metrics) RecordPaymentOperation(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch operation {
	case "record":
		m.PaymentsRecorded++
	case "paid":
		m.PaymentsPaid++
	}
}

// RecordError записывает метрики ошибки
func (m *Metrics) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ErrorCount++
	m.LastErrorTime = time.Now()

	errorType := "unknown"
	if err != nil {
		errorType = err.Error()
	}

	m.ErrorTypes[errorType]++
}

// GetMetricsSnapshot возвращает снимок текущих метрик
func (m *Metrics) GetMetricsSnapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"total_requests":     m.TotalRequests,
		"failed_requests":    m.FailedRequests,
		"average_latency":    m.AverageLatency.String(),
		"listings_requested": m.ListingsRequested,
		"listings_approved":  m.ListingsApproved,
		"listings_rejected":  m.ListingsRejected,
		"listings_blocked":   m.ListingsBlocked,
		"leases_created":     m.LeasesCreated,
		"leases_activated":   m.LeasesActivated,
		"leases_terminated":  m.LeasesTerminated,
		"payments_recorded":  m.PaymentsRecorded,
		"payments_paid":      m.PaymentsPaid,
		"error_count":        m.ErrorCount,
		"last_error_time":    m.LastErrorTime,
	}
}

// ResetMetrics сбрасывает все метрики
func (m *Metrics) ResetMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests = 0
	m.FailedRequests = 0
	m.RequestLatency = 0
	m.AverageLatency = 0
	m.ListingsRequested = 0
	m.ListingsApproved = 0
	m.ListingsRejected = 0
	m.ListingsBlocked = 0
	m.LeasesCreated = 0
	m.LeasesActivated = 0
	m.LeasesTerminated = 0
	m.PaymentsRecorded = 0
	m.PaymentsPaid = 0
	m.ErrorCount = 0
	m.ErrorTypes = make(map[string]int64)
}
