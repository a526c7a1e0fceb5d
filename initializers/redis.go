package initializers

import (
	"context"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

// Redis stays nil when REDIS_ADDR is unset or unreachable; the product
// cache is skipped in that case.
var Redis *redis.Client

func ConnectToRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Println("Redis unreachable, product cache disabled:", err)
		return
	}
	Redis = client
}
