// Package blocklist answers whether a contact email domain is banned.
package blocklist

import (
	"context"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"
)

const redisSetKey = "blocklist:domains"

// Checker combines a Redis set, editable at runtime by operators, with a
// static list from configuration.  Either source blocking a domain blocks
// it.  A nil Redis client or a Redis error degrades to the static list
// only, so contact ingestion keeps working through a cache outage.
type Checker struct {
	rdb    *redis.Client
	static map[string]struct{}
}

// New constructs a Checker.  rdb may be nil.
func New(rdb *redis.Client, staticDomains []string) *Checker {
	static := make(map[string]struct{}, len(staticDomains))
	for _, d := range staticDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			static[d] = struct{}{}
		}
	}
	return &Checker{rdb: rdb, static: static}
}

// IsBlocklisted reports whether the domain is banned.
func (c *Checker) IsBlocklisted(ctx context.Context, domain string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return false
	}
	if _, ok := c.static[domain]; ok {
		return true
	}
	if c.rdb == nil {
		return false
	}
	blocked, err := c.rdb.SIsMember(ctx, redisSetKey, domain).Result()
	if err != nil {
		log.Printf("blocklist: redis lookup for %s failed: %v", domain, err)
		return false
	}
	return blocked
}

// Block adds a domain to the Redis set.  Used by operational tooling.
func (c *Checker) Block(ctx context.Context, domain string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.SAdd(ctx, redisSetKey, strings.ToLower(strings.TrimSpace(domain))).Err()
}
