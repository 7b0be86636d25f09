package models

const (
	StatusConfirmed = "confirmed"
	StatusCheckedIn = "checked_in"
	StatusCancelled = "cancelled"
)

const (
	RentalStatusOut      = "out"
	RentalStatusReturned = "returned"
	RentalStatusOverdue  = "overdue"
)

const (
	// SessionTTL время жизни LIFF-сессии в Redis
	SessionTTL = 24 * 60 * 60 // 24 hours in seconds

	// DefaultRentalDays срок аренды игры по умолчанию
	DefaultRentalDays = 7

	// DefaultExportRangeMonths период экспорта по умолчанию
	DefaultExportRangeMonthsBefore = 1
	DefaultExportRangeMonthsAfter  = 2

	// WorkerQueueSize размер очереди воркера
	WorkerQueueSize = 1000

	// RateLimitRequests количество запросов в окне
	RateLimitRequests = 20

	// RateLimitWindow окно ограничения частоты запросов
	RateLimitWindow = 60 // 1 minute in seconds

	// SheetsCacheTTL время жизни кэша строк Google Sheets
	SheetsCacheTTL = 60 * 60 // 1 hour in seconds
)
