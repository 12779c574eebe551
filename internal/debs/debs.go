package deps

import (
	"context"
	"log"
	"time"

	"github.com/bwise1/complaint_portal/config"
	"github.com/bwise1/complaint_portal/internal/db"
	"github.com/bwise1/complaint_portal/internal/events"
	"github.com/bwise1/complaint_portal/internal/http/google"
	"github.com/bwise1/complaint_portal/internal/vote"
	"github.com/bwise1/complaint_portal/util/storage"
	"github.com/bwise1/complaint_portal/util/websockets"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Dependencies struct {
	DB        *db.DB
	Images    storage.ImageStore
	WebSocket *websockets.WebSocketManager
	Events    *events.Producer
	Redis     *redis.Client
	VoteGuard vote.Guard
	Google    google.UserInfoFetcher
}

func New(cfg *config.Config) (*Dependencies, error) {
	database, err := db.New(cfg.Dsn)
	if err != nil {
		return nil, err
	}

	d := Dependencies{
		DB:        database,
		WebSocket: websockets.NewWebSocketManager(),
		Events:    events.NewProducer(cfg.Brokers(), cfg.KafkaTopic),
		VoteGuard: vote.NewLocalGuard(),
		Google:    google.NewClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL),
	}

	cloudinary, err := storage.NewCloudinary(cfg)
	if err != nil {
		log.Printf("[Deps]: image uploads disabled: %v", err)
	} else {
		d.Images = cloudinary
	}

	if cfg.RedisURL != "" {
		rdb, err := newRedis(cfg.RedisURL)
		if err != nil {
			log.Printf("[Deps]: redis unavailable, using in-process vote guard: %v", err)
		} else {
			d.Redis = rdb
			d.VoteGuard = vote.NewRedisGuard(rdb, cfg.VoteGuardTTL)
		}
	}

	if !d.Events.Enabled() {
		log.Println("[Deps]: KAFKA_BROKERS not set, complaint events are not published")
	}

	return &d, nil
}

func newRedis(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func (d *Dependencies) Pool() *pgxpool.Pool {
	return d.DB.Pool()
}

func (d *Dependencies) Close() {
	if err := d.Events.Close(); err != nil {
		log.Println("[Deps]: closing kafka writer:", err)
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			log.Println("[Deps]: closing redis:", err)
		}
	}
	d.DB.Close()
}
