package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stemsi/enrollment-backend/internal/config"
	"github.com/stemsi/enrollment-backend/internal/database"
	"github.com/stemsi/enrollment-backend/internal/logger"
	"github.com/stemsi/enrollment-backend/internal/model"
	"github.com/stemsi/enrollment-backend/internal/repository"
	"github.com/stemsi/enrollment-backend/internal/service"
)

type seedCourse struct {
	name       string
	instructor string
	seats      int
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := database.Migrate(cfg.DatabaseURL, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	studentService := service.NewStudentService(repository.NewStudentRepository(pool), log)
	courseRepo := repository.NewCourseRepository(pool)
	courseService := service.NewCourseService(courseRepo, nil, log)

	fmt.Println("=== Seeding courses ===")

	existing, err := courseService.List(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list courses")
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c.Name] = true
	}

	courses := []seedCourse{
		{"Introduction to Programming", "Ada Lovelace", 30},
		{"Data Structures", "Edsger Dijkstra", 25},
		{"Operating Systems", "Ken Thompson", 20},
		{"Databases", "Edgar Codd", 20},
		{"Computer Networks", "Vint Cerf", 15},
		{"Compilers", "Grace Hopper", 10},
		{"Distributed Systems", "Leslie Lamport", 2},
	}
	added := 0
	for _, sc := range courses {
		if have[sc.name] {
			continue
		}
		seats := sc.seats
		if _, err := courseService.Add(ctx, model.CourseInput{Name: sc.name, Instructor: sc.instructor, AvailableSeats: &seats}); err != nil {
			fmt.Printf("Error creating course %s: %v\n", sc.name, err)
			continue
		}
		added++
	}
	fmt.Printf("Added %d/%d courses.\n", added, len(courses))

	fmt.Println("=== Seeding students ===")

	names := []string{
		"Alice Johnson", "Bob Smith", "Carla Gomez", "Dmitri Ivanov", "Emeka Obi",
		"Fatima Khan", "Guo Wei", "Hannah Schmidt", "Ines Costa", "Jonas Berg",
		"Kaito Tanaka", "Lena Novak", "Mateo Rossi", "Nadia Haddad", "Owen O'Brien",
		"Priya Nair", "Quentin Moreau", "Rosa Alvarez", "Sven Lund", "Tara Kelly",
	}

	successCount := 0
	for i, name := range names {
		email := strings.ToLower(strings.NewReplacer(" ", ".", "'", "").Replace(name)) + "@example.edu"
		in := model.StudentInput{
			Name:  name,
			Email: email,
			Year:  i%model.MaxStudentYear + model.MinStudentYear,
		}

		if _, err := studentService.Register(ctx, in); err != nil {
			if errors.Is(err, repository.ErrEmailTaken) {
				continue
			}
			fmt.Printf("Error creating student %s: %v\n", name, err)
			continue
		}
		successCount++
		if successCount%10 == 0 {
			fmt.Printf("Created %d students...\n", successCount)
		}
	}

	fmt.Printf("\nSeed completed! Successfully added %d/%d students.\n", successCount, len(names))
}
