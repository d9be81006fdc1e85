// Command seed fills the database with fake users and posts for local
// development, in the spirit of the original fake-data migration.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jonboulle/clockwork"

	"updoot/internal/config"
	"updoot/internal/domain"
	"updoot/internal/postgres"
)

func main() {
	userCount := flag.Int("users", 10, "number of users to create")
	postCount := flag.Int("posts", 100, "number of posts to create")
	voteCount := flag.Int("votes", 300, "number of votes to cast")
	flag.Parse()

	gofakeit.Seed(time.Now().UnixNano())

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	userRepo := postgres.NewUserRepo(pool)
	postRepo := postgres.NewPostRepo(pool)
	voteRepo := postgres.NewVoteRepo(pool, cfg.VoteLockTimeout)
	clock := clockwork.NewRealClock()

	users := make([]*domain.User, 0, *userCount)
	for i := 0; i < *userCount; i++ {
		user, err := userRepo.Create(ctx, gofakeit.Username(), gofakeit.Email())
		if err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}
		users = append(users, user)
	}
	log.Printf("Created %d users", len(users))

	posts := make([]*domain.Post, 0, *postCount)
	for i := 0; i < *postCount; i++ {
		creator := users[rand.Intn(len(users))]
		title := strings.TrimSuffix(gofakeit.Sentence(gofakeit.Number(3, 8)), ".")
		post, err := postRepo.Create(ctx, creator.ID, title, gofakeit.Paragraph(1, 3, 12, " "), clock.Now().UTC())
		if err != nil {
			log.Fatalf("Failed to create post: %v", err)
		}
		posts = append(posts, post)
	}
	log.Printf("Created %d posts", len(posts))

	values := []domain.VoteValue{domain.Upvote, domain.Upvote, domain.Upvote, domain.Downvote}
	for i := 0; i < *voteCount; i++ {
		voter := users[rand.Intn(len(users))]
		post := posts[rand.Intn(len(posts))]
		if _, err := voteRepo.CastVote(ctx, voter.ID, post.ID, values[rand.Intn(len(values))]); err != nil {
			log.Fatalf("Failed to cast vote: %v", err)
		}
	}
	log.Printf("Cast %d votes", *voteCount)
}
