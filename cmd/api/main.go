package main

import (
	"github.com/gin-gonic/gin"

	"taskboard/internal/config"
	"taskboard/internal/database"
	"taskboard/internal/domain/comment"
	"taskboard/internal/domain/notification"
	"taskboard/internal/domain/project"
	"taskboard/internal/domain/task"
	"taskboard/internal/domain/user"
	"taskboard/internal/middleware"
	jwtsvc "taskboard/internal/pkg/jwt"
	"taskboard/internal/pkg/logger"
	"taskboard/internal/realtime"
)

func main() {
	log := logger.New("taskboard-api")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect")
	}

	if err := db.AutoMigrate(
		&user.User{},
		&project.Project{},
		&project.Member{},
		&task.Task{},
		&comment.Comment{},
		&notification.Notification{},
	); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	// One hub per process; every connected tab hangs off it.
	hub := realtime.NewHub(log)

	notifRepo := notification.NewRepository(db)
	notifService := notification.NewService(notifRepo, hub, log)
	hub.SetNotificationSink(notifService)

	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, j)
	userHandler := user.NewHandler(userService)

	projectRepo := project.NewRepository(db)
	projectService := project.NewService(projectRepo, hub, notifService)
	projectHandler := project.NewHandler(projectService)

	taskRepo := task.NewRepository(db)
	taskService := task.NewService(taskRepo, hub, notifService)
	taskHandler := task.NewHandler(taskService)

	commentRepo := comment.NewRepository(db)
	commentService := comment.NewService(commentRepo, taskRepo, hub, notifService)
	commentHandler := comment.NewHandler(commentService)

	notifHandler := notification.NewHandler(notifService)
	wsHandler := realtime.NewWSHandler(hub, j, log)

	r := gin.New()
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS())

	wsHandler.RegisterRoutes(r)

	v1 := r.Group("/api/v1")
	{
		user.RegisterRoutes(v1, userHandler)

		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			user.RegisterProtectedRoutes(protected, userHandler)
			project.RegisterRoutes(protected, projectHandler)
			task.RegisterRoutes(protected, taskHandler)
			comment.RegisterRoutes(protected, commentHandler)
			notification.RegisterRoutes(protected, notifHandler)
		}
	}

	log.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}
