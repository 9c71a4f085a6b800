// Seeds two well-known test users so the interactions endpoint can be
// exercised without the full signup flow.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/meetlog/meetlog/internal/model"
	"github.com/meetlog/meetlog/internal/repository"
)

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		randomize   = flag.Bool("randomize", false, "Suffix emails and external ids with a ULID to avoid collisions")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	users := []*model.User{
		{
			ExternalID: "test-user-1",
			Email:      "test.user1@example.com",
			FullName:   "Test User One",
			City:       "New York",
		},
		{
			ExternalID: "test-user-2",
			Email:      "test.user2@example.com",
			FullName:   "Test User Two",
			City:       "San Francisco",
		},
	}

	if *randomize {
		suffix := strings.ToLower(ulid.Make().String())
		for _, u := range users {
			u.ExternalID = u.ExternalID + "-" + suffix
			u.Email = strings.Replace(u.Email, "@", "+"+suffix+"@", 1)
		}
	}

	for _, u := range users {
		existing, err := repo.GetUserByExternalID(ctx, u.ExternalID)
		if err == nil {
			fmt.Printf("user already exists: %s (external_id: %s)\n", existing.Email, existing.ExternalID)
			continue
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			fmt.Fprintln(os.Stderr, "look up user:", err)
			os.Exit(1)
		}

		if err := repo.CreateUser(ctx, u); err != nil {
			// The external id is free but the email may still collide.
			if errors.Is(err, repository.ErrUserExists) {
				fmt.Printf("user already exists: %s (external_id: %s)\n", u.Email, u.ExternalID)
				continue
			}
			fmt.Fprintln(os.Stderr, "create user:", err)
			os.Exit(1)
		}
		fmt.Printf("created user: %s (external_id: %s)\n", u.Email, u.ExternalID)
	}
}
