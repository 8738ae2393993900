package infra

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedis opens the client shared by the job queues, the dead letter lists,
// and the quote cache. The startup ping is deliberate: a server that cannot
// reach Redis should refuse to boot rather than silently drop report and
// email jobs later.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}
