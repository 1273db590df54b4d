// Command seed fills a development database with fake users, follows, posts,
// comments and likes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/anonto42/nanogram/backend/internal/models"
	"github.com/anonto42/nanogram/backend/internal/repositories"
	"github.com/anonto42/nanogram/backend/internal/services"
	"github.com/anonto42/nanogram/backend/pkg/apperror"
	"github.com/anonto42/nanogram/backend/pkg/config"
	"github.com/anonto42/nanogram/backend/pkg/logger"
)

const seedPassword = "password123"

func main() {
	users := flag.Int("users", 20, "number of fake users")
	posts := flag.Int("posts", 3, "posts per user")
	followRate := flag.Float64("follow-rate", 0.3, "probability that one user follows another")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	logger.SetGlobal(zl)

	ctx := context.Background()
	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		zl.Fatal("failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	gofakeit.Seed(*seed)
	rng := rand.New(rand.NewSource(*seed))

	s, err := newSeeder(ctx, db)
	if err != nil {
		zl.Fatal("failed to prepare stores", zap.Error(err))
	}
	if err := s.run(ctx, cfg.HouseAccountUsername, *users, *posts, *followRate, rng); err != nil {
		zl.Fatal("seeding failed", zap.Error(err))
	}
	zl.Info("seeding complete", zap.Int("users", *users), zap.String("password", seedPassword))
}

type seeder struct {
	users      *repositories.PostgresUserRepository
	posts      *services.PostService
	engagement *services.EngagementService
	hash       string
}

func newSeeder(ctx context.Context, db *config.DB) (*seeder, error) {
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	if err := userRepo.Migrate(); err != nil {
		return nil, err
	}
	if err := repositories.EnsureIndexes(ctx, db.Database); err != nil {
		return nil, err
	}

	postRepo := repositories.NewMongoPostRepository(db.Database)
	commentRepo := repositories.NewMongoCommentRepository(db.Database)
	likeRepo := repositories.NewMongoLikeRepository(db.Database)
	followRepo := repositories.NewMongoFollowRepository(db.Database)
	savedRepo := repositories.NewMongoSavedPostRepository(db.Database)
	notificationRepo := repositories.NewMongoNotificationRepository(db.Database)
	enricher := services.NewPostEnricher(userRepo, likeRepo, commentRepo, savedRepo)

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &seeder{
		users:      userRepo,
		posts:      services.NewPostService(postRepo, userRepo, likeRepo, commentRepo, savedRepo, notificationRepo, enricher),
		engagement: services.NewEngagementService(postRepo, commentRepo, likeRepo, savedRepo, followRepo, userRepo, notificationRepo),
		hash:       string(hash),
	}, nil
}

func (s *seeder) run(ctx context.Context, house string, userCount, postsPerUser int, followRate float64, rng *rand.Rand) error {
	ids := make([]string, 0, userCount+1)
	if house != "" {
		id, err := s.ensureUser(ctx, house, "Official account")
		if err != nil {
			return fmt.Errorf("house account: %w", err)
		}
		ids = append(ids, id)
	}
	for i := 0; i < userCount; i++ {
		username := strings.ToLower(gofakeit.Username())
		username = strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '_' {
				return r
			}
			return -1
		}, username)
		id, err := s.ensureUser(ctx, fmt.Sprintf("%s%d", username, i), gofakeit.Name())
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	for _, follower := range ids {
		for _, target := range ids {
			if follower != target && rng.Float64() < followRate {
				if _, err := s.engagement.ToggleFollow(ctx, follower, target); err != nil {
					return err
				}
			}
		}
	}

	var postIDs []string
	for _, author := range ids {
		for i := 0; i < postsPerUser; i++ {
			image := fmt.Sprintf("https://picsum.photos/seed/%s/1080/1080", gofakeit.UUID())
			post, err := s.posts.Create(ctx, author, image, gofakeit.Sentence(8))
			if err != nil {
				return err
			}
			postIDs = append(postIDs, post.ID)
		}
	}

	for _, postID := range postIDs {
		for _, userID := range ids {
			if rng.Float64() < 0.2 {
				if _, err := s.engagement.ToggleLike(ctx, userID, postID); err != nil {
					return err
				}
			}
			if rng.Float64() < 0.05 {
				if _, err := s.engagement.CreateComment(ctx, userID, postID, gofakeit.Sentence(6)); err != nil {
					return err
				}
			}
		}
	}
	logger.L().Info("seeded content", zap.Int("accounts", len(ids)), zap.Int("posts", len(postIDs)))
	return nil
}

// ensureUser returns the existing user with username or creates one.
func (s *seeder) ensureUser(ctx context.Context, username, name string) (string, error) {
	existing, err := s.users.GetUserByUsername(ctx, username)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return "", err
	}
	u := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		Name:         name,
		PasswordHash: s.hash,
		Avatar:       fmt.Sprintf("https://i.pravatar.cc/300?u=%s", username),
		Bio:          gofakeit.HipsterSentence(6),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return "", err
	}
	return u.ID, nil
}
