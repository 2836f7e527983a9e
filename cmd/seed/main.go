package main

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"taskboard/internal/config"
	"taskboard/internal/database"
	"taskboard/internal/domain/comment"
	"taskboard/internal/domain/notification"
	"taskboard/internal/domain/project"
	"taskboard/internal/domain/task"
	"taskboard/internal/domain/user"
	"taskboard/internal/pkg/logger"
)

// Seeds a local database with demo users, one project, and a few tasks.
func main() {
	log := logger.New("taskboard-seed")

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

	ctx := context.Background()
	users := user.NewRepository(db)
	projects := project.NewRepository(db)
	tasks := task.NewRepository(db)

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	alice := &user.User{Email: "alice@example.com", Name: "Alice", PasswordHash: string(hash)}
	bob := &user.User{Email: "bob@example.com", Name: "Bob", PasswordHash: string(hash)}
	for _, u := range []*user.User{alice, bob} {
		if err := users.Create(ctx, u); err != nil {
			log.Fatal().Err(err).Str("email", u.Email).Msg("seed user")
		}
	}

	p := &project.Project{Name: "Launch", Description: "Demo project", OwnerID: alice.ID}
	if err := projects.Create(ctx, p); err != nil {
		log.Fatal().Err(err).Msg("seed project")
	}
	if err := projects.AddMember(ctx, p.ID, bob.ID); err != nil {
		log.Fatal().Err(err).Msg("seed member")
	}

	titles := []string{"Write landing page", "Set up CI", "Draft announcement"}
	for _, title := range titles {
		t := &task.Task{
			ProjectID:  p.ID,
			Title:      title,
			Status:     task.StatusTodo,
			AssigneeID: &bob.ID,
			CreatorID:  alice.ID,
			CreatedAt:  time.Now(),
		}
		if err := tasks.Create(ctx, t); err != nil {
			log.Fatal().Err(err).Str("title", title).Msg("seed task")
		}
	}

	log.Info().Msg("seed complete")
}
