package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/exam-api/internal/config"
	"github.com/yourusername/exam-api/internal/handler"
	"github.com/yourusername/exam-api/internal/middleware"
	pgRepo "github.com/yourusername/exam-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/exam-api/internal/repository/redis"
	"github.com/yourusername/exam-api/internal/service"
	ws "github.com/yourusername/exam-api/internal/websocket"
	"github.com/yourusername/exam-api/pkg/auth"
	"github.com/yourusername/exam-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	quizRepo := pgRepo.NewQuizRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	attemptRepo := pgRepo.NewAttemptRepo(db)
	responseRepo := pgRepo.NewResponseRepo(db)
	announcementRepo := pgRepo.NewAnnouncementRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Инициализируем JWT
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Email: Resend в проде, Noop без ключа
	var emailService service.EmailService
	if cfg.Email.APIKey != "" {
		emailService, err = service.NewResendEmailService(cfg.Email.APIKey, cfg.Email.From)
		if err != nil {
			log.Printf("Failed to initialize ResendEmailService: %v", err)
			os.Exit(1)
		}
	} else {
		log.Println("RESEND_API_KEY не задан, исходящие письма отключены")
		emailService = &service.NoopEmailService{}
	}

	// Внешний sandbox для задач с кодом
	judge := service.NewPistonJudge(cfg.Judge.URL, time.Duration(cfg.Judge.TimeoutSec)*time.Second)

	// WebSocket hub для широковещательных уведомлений
	hub := ws.NewHub()
	go hub.Run()

	// Инициализируем сервисы
	authService := service.NewAuthService(userRepo, jwtService)
	userService := service.NewUserService(userRepo)
	quizService := service.NewQuizService(quizRepo, questionRepo, cacheRepo)
	examService := service.NewExamService(quizRepo, questionRepo, attemptRepo, responseRepo, judge)
	resultService := service.NewResultService(quizRepo, questionRepo, attemptRepo, responseRepo, announcementRepo)
	certificateService := service.NewCertificateService(attemptRepo, quizRepo, userRepo, emailService)

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService)
	quizHandler := handler.NewQuizHandler(quizService)
	examHandler := handler.NewExamHandler(examService)
	resultHandler := handler.NewResultHandler(resultService, certificateService, hub)
	userHandler := handler.NewUserHandler(userService, authService)
	wsHandler := handler.NewWSHandler(hub)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Инициализируем роутер Gin
	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode
	if isProduction {
		// Production: не доверять прокси-заголовкам
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		// Аутентификация
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", rateLimiter.Limit(middleware.StrictAuthRateLimitConfig()), authHandler.Register)
			authGroup.POST("/login", rateLimiter.Limit(middleware.StrictAuthRateLimitConfig()), authHandler.Login)
			authGroup.GET("/me", authMiddleware.RequireAuth(), authHandler.Me)
		}

		// Квизы: чтение доступно всем аутентифицированным,
		// управление — координаторам
		quizzes := api.Group("/quizzes")
		quizzes.Use(authMiddleware.RequireAuth())
		{
			quizzes.GET("", quizHandler.ListQuizzes)
			quizzes.GET("/categories", quizHandler.ListCategories)

			coordQuizzes := quizzes.Group("")
			coordQuizzes.Use(authMiddleware.CoordinatorOnly())
			{
				coordQuizzes.POST("", quizHandler.CreateQuiz)
			}

			quizWithID := quizzes.Group("/:id")
			quizWithID.Use(middleware.ExtractUintParam("id", "quizID"))
			{
				// Вход в экзамен (создает или возобновляет попытку)
				quizWithID.POST("/start", examHandler.StartAttempt)

				coordQuizWithID := quizWithID.Group("")
				coordQuizWithID.Use(authMiddleware.CoordinatorOnly())
				{
					coordQuizWithID.GET("", quizHandler.GetQuiz)
					coordQuizWithID.PUT("", quizHandler.UpdateQuiz)
					coordQuizWithID.PUT("/schedule", quizHandler.ScheduleQuiz)
					coordQuizWithID.DELETE("", quizHandler.DeleteQuiz)
					coordQuizWithID.POST("/question", quizHandler.AddQuestion)
					coordQuizWithID.POST("/questions", quizHandler.AddQuestions)
				}
			}
		}

		// Вопросы: массовое удаление
		api.DELETE("/questions",
			authMiddleware.RequireAuth(), authMiddleware.CoordinatorOnly(),
			quizHandler.DeleteQuestions)

		// Вопросы (изменение и удаление по ID вопроса)
		questions := api.Group("/questions/:id")
		questions.Use(authMiddleware.RequireAuth(), authMiddleware.CoordinatorOnly())
		questions.Use(middleware.ExtractUintParam("id", "questionID"))
		{
			questions.PUT("", quizHandler.UpdateQuestion)
			questions.DELETE("", quizHandler.DeleteQuestion)
		}

		// Попытки
		attempts := api.Group("/attempts/:id")
		attempts.Use(authMiddleware.RequireAuth())
		attempts.Use(middleware.ExtractUintParam("id", "attemptID"))
		{
			attempts.GET("", examHandler.GetAttempt)
			attempts.POST("/answers", examHandler.SaveAnswer)
			attempts.POST("/run-code", rateLimiter.Limit(middleware.JudgeRateLimitConfig()), examHandler.RunCode)
			attempts.POST("/submit", examHandler.SubmitAttempt)
			attempts.GET("/result", resultHandler.GetAttemptResult)
			attempts.GET("/certificate", resultHandler.GetCertificate)

			coordAttempts := attempts.Group("")
			coordAttempts.Use(authMiddleware.CoordinatorOnly())
			{
				coordAttempts.POST("/certificate/approve", resultHandler.ApproveCertificate)
				coordAttempts.POST("/certificate/revoke", resultHandler.RevokeCertificate)
			}
		}

		// Результаты и дашборды
		results := api.Group("/results")
		results.Use(authMiddleware.RequireAuth())
		{
			results.GET("/my", resultHandler.ListMyResults)

			coordResults := results.Group("")
			coordResults.Use(authMiddleware.CoordinatorOnly())
			{
				coordResults.GET("", resultHandler.ListResults)
				coordResults.GET("/winners", resultHandler.ListWinners)
				coordResults.GET("/stats", resultHandler.GetDashboardStats)
				coordResults.GET("/export", resultHandler.ExportResults)
			}
		}

		// Объявления
		announcements := api.Group("/announcements")
		announcements.Use(authMiddleware.RequireAuth())
		{
			announcements.GET("", resultHandler.GetAnnouncement)

			coordAnnouncements := announcements.Group("")
			coordAnnouncements.Use(authMiddleware.CoordinatorOnly())
			{
				coordAnnouncements.POST("", resultHandler.PublishAnnouncement)
				coordAnnouncements.DELETE("", resultHandler.ClearAnnouncement)
			}
		}

		// Пользователи
		users := api.Group("/users")
		users.Use(authMiddleware.RequireAuth())
		{
			users.PUT("/me/session", userHandler.UpdateMySession)

			adminUsers := users.Group("")
			adminUsers.Use(authMiddleware.AdminOnly())
			{
				adminUsers.GET("/students", userHandler.ListStudents)
				adminUsers.GET("/coordinators", userHandler.ListCoordinators)
				adminUsers.POST("/coordinators", userHandler.CreateCoordinator)

				userWithID := adminUsers.Group("/:id")
				userWithID.Use(middleware.ExtractUintParam("id", "userID"))
				{
					userWithID.PUT("/blocked", userHandler.SetBlocked)
					userWithID.DELETE("", userHandler.DeleteUser)
				}
			}
		}
	}

	// WebSocket маршрут
	router.GET("/ws", authMiddleware.RequireAuth(), wsHandler.Connect)

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
