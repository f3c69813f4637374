package config

import (
	"log"
	"os"
	"strings"
	"time"
)

// SearchCluster identifies one search backend the indexer writes to.  Each
// cluster is addressed independently; an event document is written to every
// configured index version on every cluster.
type SearchCluster struct {
	Name     string // short cluster name used in logs, metrics and the health cache
	Endpoint string // base URL of the cluster's HTTP API
	Username string // optional basic-auth username
	Password string // optional basic-auth password
}

// SearchConfig bundles the indexing targets and the retry/backoff policy.
type SearchConfig struct {
	Clusters       []SearchCluster
	IndexVersions  []string      // index names, e.g. "events_v1,events_v2"
	MaxRetries     int           // attempts per (cluster, index) target
	InitialBackoff time.Duration // first retry delay; doubles per attempt
	HealthTTL      time.Duration // how long a cached cluster health entry is trusted
	RequestTimeout time.Duration // per-request HTTP timeout
}

// LoadSearchConfig parses search settings from the environment.
//
// SEARCH_CLUSTERS is a comma separated list of name=endpoint pairs, e.g.
//
//	SEARCH_CLUSTERS=primary=http://es-a:9200,replica=http://es-b:9200
//
// Credentials are shared across clusters via SEARCH_USERNAME/SEARCH_PASSWORD.
// An empty cluster list disables indexing; the rest of the pipeline is
// unaffected.  Malformed entries are fatal: a half-configured indexer would
// silently drop documents.
func LoadSearchConfig() SearchConfig {
	cfg := SearchConfig{
		IndexVersions:  splitCSV(envStr("SEARCH_INDEX_VERSIONS", "events_v1")),
		MaxRetries:     envInt("SEARCH_MAX_RETRIES", 3),
		InitialBackoff: envDur("SEARCH_INITIAL_BACKOFF", 500*time.Millisecond),
		HealthTTL:      envDur("SEARCH_HEALTH_TTL", 60*time.Second),
		RequestTimeout: envDur("SEARCH_REQUEST_TIMEOUT", 5*time.Second),
	}
	raw := os.Getenv("SEARCH_CLUSTERS")
	if raw == "" {
		return cfg
	}
	user := os.Getenv("SEARCH_USERNAME")
	pass := os.Getenv("SEARCH_PASSWORD")
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, endpoint, ok := strings.Cut(entry, "=")
		if !ok || name == "" || endpoint == "" {
			log.Fatalf("invalid SEARCH_CLUSTERS entry: %q (want name=endpoint)", entry)
		}
		cfg.Clusters = append(cfg.Clusters, SearchCluster{
			Name:     strings.TrimSpace(name),
			Endpoint: strings.TrimRight(strings.TrimSpace(endpoint), "/"),
			Username: user,
			Password: pass,
		})
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	return cfg
}
