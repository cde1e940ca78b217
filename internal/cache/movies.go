package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cinescore/cinescore/internal/domain"
	"github.com/cinescore/cinescore/internal/repository"
)

// Movies is a read-through cache for the catalog's read path. A nil *Movies
// (or one built without a reachable redis) is a valid no-op cache, so the
// service runs unchanged when REDIS_ADDR is not configured.
type Movies struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

// Options configures the redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Logger   *log.Logger
}

// New connects to redis and verifies the connection with a ping.
func New(ctx context.Context, opts Options) (*Movies, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	logger.Printf("cache: connected to redis at %s", opts.Addr)
	return &Movies{client: client, ttl: opts.TTL, logger: logger}, nil
}

// Close releases the redis connection.
func (c *Movies) Close() {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Close()
}

func movieKey(id int64) string {
	return fmt.Sprintf("movie:%d", id)
}

// PageKey derives the cache key for one list query.
func PageKey(title string, page, size int) string {
	return fmt.Sprintf("movies:list:%s:%d:%d", title, page, size)
}

// GetMovie returns a cached movie, if present.
func (c *Movies) GetMovie(ctx context.Context, id int64) (domain.Movie, bool) {
	if c == nil || c.client == nil {
		return domain.Movie{}, false
	}
	payload, err := c.client.Get(ctx, movieKey(id)).Bytes()
	if err != nil {
		return domain.Movie{}, false
	}
	var movie domain.Movie
	if err := json.Unmarshal(payload, &movie); err != nil {
		return domain.Movie{}, false
	}
	return movie, true
}

// SetMovie stores a movie. Failures are logged, never surfaced; the cache is
// an optimization, not a source of truth.
func (c *Movies) SetMovie(ctx context.Context, movie domain.Movie) {
	if c == nil || c.client == nil {
		return
	}
	payload, err := json.Marshal(movie)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, movieKey(movie.ID), payload, c.ttl).Err(); err != nil {
		c.logger.Printf("cache: set %s failed: %v", movieKey(movie.ID), err)
	}
}

// GetPage returns a cached list page, if present.
func (c *Movies) GetPage(ctx context.Context, key string) (repository.MoviePage, bool) {
	if c == nil || c.client == nil {
		return repository.MoviePage{}, false
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return repository.MoviePage{}, false
	}
	var page repository.MoviePage
	if err := json.Unmarshal(payload, &page); err != nil {
		return repository.MoviePage{}, false
	}
	return page, true
}

// SetPage stores a list page.
func (c *Movies) SetPage(ctx context.Context, key string, page repository.MoviePage) {
	if c == nil || c.client == nil {
		return
	}
	payload, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Printf("cache: set %s failed: %v", key, err)
	}
}

// InvalidateMovie drops the cached entry for one movie and every cached list
// page, since any mutation can change list contents.
func (c *Movies) InvalidateMovie(ctx context.Context, id int64) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, movieKey(id)).Err(); err != nil {
		c.logger.Printf("cache: del %s failed: %v", movieKey(id), err)
	}
	c.InvalidateLists(ctx)
}

// InvalidateLists drops every cached list page.
func (c *Movies) InvalidateLists(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, "movies:list:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Printf("cache: del %s failed: %v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Printf("cache: list invalidation scan failed: %v", err)
	}
}
