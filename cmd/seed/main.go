// Command seed fills the configured store with fake developers.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/mrJackie7/coderdev-hub/internal/auth"
	"github.com/mrJackie7/coderdev-hub/internal/bootstrap"
	"github.com/mrJackie7/coderdev-hub/internal/config"
	"github.com/mrJackie7/coderdev-hub/internal/seed"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 20, "Number of developers to create")
	postsPerUser := flag.Int("posts", 3, "Number of posts per developer")
	shouldClean := flag.Bool("clean", false, "Delete existing accounts with profiles before seeding")
	seedValue := flag.Int64("seed", 0, "Random seed for reproducible data (0 = random)")
	password := flag.String("password", seed.DefaultPassword, "Password for every seeded account")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d developers, %d posts each, clean=%v\n", *numUsers, *postsPerUser, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	stores, err := bootstrap.OpenStores(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer func() { _ = stores.Close(ctx) }()

	s := seed.NewSeeder(stores, auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL(), nil), seed.Options{
		Users:        *numUsers,
		PostsPerUser: *postsPerUser,
		Password:     *password,
		Seed:         *seedValue,
	})

	if *shouldClean {
		removed, err := s.Clean(ctx)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		log.Printf("Removed %d accounts\n", removed)
	}

	res, err := s.Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d developers, %d posts, %d likes, %d comments\n",
		res.Users, res.Posts, res.Likes, res.Comments)
	log.Printf("All seeded accounts use the password: %s\n", *password)
}
