package main

import (
	"fmt"
	"log"
	"net/http"

	"renthub/config"
	"renthub/controllers"
	"renthub/database"
	"renthub/middleware"
	"renthub/models"
	"renthub/services"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {
	// Подгружаем .env, если он есть
	if err := godotenv.Load(); err != nil {
		log.Println("Файл .env не найден, используются переменные окружения")
	}

	// Инициализируем конфигурацию
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Инициализируем подключение к базе данных
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}

	// Инициализируем сервис email (отключен без SMTP)
	var emailService *services.EmailService
	if cfg.SMTP.Enabled {
		emailService = services.NewEmailService(cfg)
	}

	// Сервис уведомлений общий для всех контроллеров
	notificationService := services.NewNotificationService(db.DB, emailService)

	// Создаем роутер
	router := mux.NewRouter()
	router.Use(middleware.RecoveryMiddleware)
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.RateLimitMiddleware)
	router.Use(middleware.LoggingMiddleware)

	// Инициализируем контроллеры
	authController := controllers.NewAuthController(db, cfg)
	propertyController := controllers.NewPropertyController(db)
	listingController := controllers.NewListingController(db, notificationService)
	leaseController := controllers.NewLeaseController(db, notificationService)
	paymentController := controllers.NewPaymentController(db, notificationService, cfg)
	applicationController := controllers.NewApplicationController(db, notificationService)
	notificationController := controllers.NewNotificationController(db, notificationService)

	// Публичные маршруты: аутентификация и каталог
	public := router.PathPrefix("/api").Subrouter()
	authController.RegisterRoutes(public)
	listingController.RegisterPublicRoutes(public)

	// Защищенные маршруты для любого авторизованного пользователя
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.AuthMiddleware([]byte(authController.GetJWTKey())))
	notificationController.RegisterRoutes(protected)

	// Маршруты арендодателя
	landlord := router.PathPrefix("/api").Subrouter()
	landlord.Use(middleware.AuthMiddleware([]byte(authController.GetJWTKey())))
	landlord.Use(middleware.RequireRole(models.RoleLandlord))
	propertyController.RegisterRoutes(landlord)
	listingController.RegisterLandlordRoutes(landlord)
	leaseController.RegisterRoutes(landlord)
	paymentController.RegisterRoutes(landlord)
	applicationController.RegisterLandlordRoutes(landlord)

	// Маршруты арендатора
	tenant := router.PathPrefix("/api").Subrouter()
	tenant.Use(middleware.AuthMiddleware([]byte(authController.GetJWTKey())))
	tenant.Use(middleware.RequireRole(models.RoleTenant))
	applicationController.RegisterTenantRoutes(tenant)

	// Маршруты администратора
	admin := router.PathPrefix("/api").Subrouter()
	admin.Use(middleware.AuthMiddleware([]byte(authController.GetJWTKey())))
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	listingController.RegisterAdminRoutes(admin)
	notificationController.RegisterAdminRoutes(admin)

	// Запускаем сервер
	port := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Сервер запущен на порту %s", port)
	if err := http.ListenAndServe(port, router); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}
