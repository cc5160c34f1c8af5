// Command main runs the database seeder for Pressroom.
package main

import (
	"flag"
	"log"

	"pressroom/internal/config"
	"pressroom/internal/database"
	"pressroom/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numArticles := flag.Int("articles", 100, "Number of articles to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d articles, clean=%v\n", *numUsers, *numArticles, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumArticles: *numArticles,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done! The database is now populated with test data.")
	log.Println("All test users have the password: password123")
}
