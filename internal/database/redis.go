package database

import (
	"context"
	"time"

	goRedis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type RedisSettings struct {
	DB         *int
	DBUser     *string
	DBPassword *string
	Host       *string
	Port       *string
}

const poolSize = 30

// RedisStore is the production KeyValueStore. Cache entries and quota
// counters share the connection but live under separate keys, so entry
// eviction never resets quota accounting.
type RedisStore struct {
	client *goRedis.Client
}

// Constructor to create an instance of redis backed store with connection pool setup
func NewRedisStore(settings RedisSettings) (*RedisStore, error) {
	ctx := context.Background()
	redisClient := goRedis.NewClient(&goRedis.Options{
		Addr:     *settings.Host + ":" + *settings.Port,
		DB:       *settings.DB,
		Username: *settings.DBUser,
		Password: *settings.DBPassword,
		PoolSize: poolSize,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	log.Infof("Connected to Redis - %s", redisClient)
	return &RedisStore{client: redisClient}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	storedValue, err := r.client.Get(ctx, key).Bytes()
	if err == goRedis.Nil {
		return nil, false
	} else if err != nil {
		log.Errorf("error getting value %v", err.Error())
		return nil, false
	}
	return storedValue, true
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, expiry time.Duration) error {
	if err := r.client.Set(ctx, key, value, expiry).Err(); err != nil {
		log.Errorf("Error caching %s: %v", key, err)
		return err
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisStore) IncrBy(ctx context.Context, key string, delta int64, expiry time.Duration) (int64, error) {
	total, err := r.client.IncrBy(ctx, key, delta).Result()
	if err != nil {
		return 0, err
	}
	if expiry > 0 {
		// Counter keys carry a generous expiry so stale windows clean
		// themselves up without a scheduler.
		if err := r.client.Expire(ctx, key, expiry).Err(); err != nil {
			log.Errorf("error setting expiry on %s: %v", key, err)
		}
	}
	return total, nil
}
