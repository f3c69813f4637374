package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/fairgrid/fairgrid/internal/config"
)

// Target is one independent write destination: a (cluster, index version)
// pair.
type Target struct {
	Cluster string `json:"cluster"`
	Index   string `json:"index"`
}

// Report is the settled outcome of indexing one document into every
// configured target.  At least one successful target constitutes overall
// success.
type Report struct {
	Success           bool     `json:"success"`
	SuccessfulTargets []Target `json:"successful_targets"`
	FailedTargets     []Target `json:"failed_targets"`
}

// OutcomeRecorder receives per-target outcomes for metrics.  Nil is allowed.
type OutcomeRecorder interface {
	RecordIndexing(cluster, index string, err error)
}

// Indexer writes flat documents into every configured (cluster × index
// version) target over the cluster's JSON HTTP API.  Each target is
// retried with exponential backoff; after retries are exhausted the
// cluster is marked unhealthy in the shared cache so the next indexing
// attempt for any event skips it until the TTL expires.
type Indexer struct {
	cfg     config.SearchConfig
	client  *http.Client
	health  *HealthCache
	metrics OutcomeRecorder
}

// NewIndexer constructs an Indexer over the injected health cache.
func NewIndexer(cfg config.SearchConfig, health *HealthCache, metrics OutcomeRecorder) *Indexer {
	return &Indexer{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		health:  health,
		metrics: metrics,
	}
}

// Enabled reports whether any cluster is configured.
func (ix *Indexer) Enabled() bool {
	return len(ix.cfg.Clusters) > 0
}

// IndexDocument writes the document into every configured target and
// returns the per-target accounting.  Failures never propagate: the
// report is for logs, metrics and the reindex endpoint.
func (ix *Indexer) IndexDocument(ctx context.Context, doc Document) Report {
	var report Report
	body, err := json.Marshal(doc)
	if err != nil {
		// Can only happen with a broken Document type; fail every target.
		for _, cl := range ix.cfg.Clusters {
			for _, idx := range ix.cfg.IndexVersions {
				report.FailedTargets = append(report.FailedTargets, Target{Cluster: cl.Name, Index: idx})
			}
		}
		return report
	}

	for _, cl := range ix.cfg.Clusters {
		if !ix.clusterIndexable(ctx, cl) {
			for _, idx := range ix.cfg.IndexVersions {
				report.FailedTargets = append(report.FailedTargets, Target{Cluster: cl.Name, Index: idx})
				if ix.metrics != nil {
					ix.metrics.RecordIndexing(cl.Name, idx, fmt.Errorf("cluster unhealthy"))
				}
			}
			continue
		}
		clusterFailed := false
		for _, idx := range ix.cfg.IndexVersions {
			target := Target{Cluster: cl.Name, Index: idx}
			err := ix.putWithRetry(ctx, cl, idx, doc.ID(), body)
			if ix.metrics != nil {
				ix.metrics.RecordIndexing(cl.Name, idx, err)
			}
			if err != nil {
				log.Printf("search: index %s into %s/%s failed: %v", doc.ID(), cl.Name, idx, err)
				report.FailedTargets = append(report.FailedTargets, target)
				clusterFailed = true
				continue
			}
			report.SuccessfulTargets = append(report.SuccessfulTargets, target)
		}
		if clusterFailed {
			// Exhausted retries on at least one index: stop trusting the
			// cluster until the TTL lets a fresh probe through.
			ix.health.Set(cl.Name, ClusterHealth{Healthy: false, Status: "index_failures", CanIndex: false})
		}
	}
	report.Success = len(report.SuccessfulTargets) > 0
	return report
}

// clusterIndexable consults the health cache first and probes the
// cluster's health endpoint only when the cached entry is stale.
func (ix *Indexer) clusterIndexable(ctx context.Context, cl config.SearchCluster) bool {
	if h, ok := ix.health.Get(cl.Name); ok {
		return h.CanIndex
	}
	status, err := ix.probeHealth(ctx, cl)
	if err != nil {
		ix.health.Set(cl.Name, ClusterHealth{Healthy: false, Status: "unreachable", CanIndex: false})
		return false
	}
	canIndex := status != "red"
	ix.health.Set(cl.Name, ClusterHealth{Healthy: canIndex, Status: status, CanIndex: canIndex})
	return canIndex
}

// probeHealth asks the cluster for its health status.
func (ix *Indexer) probeHealth(ctx context.Context, cl config.SearchCluster) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cl.Endpoint+"/_cluster/health", nil)
	if err != nil {
		return "", err
	}
	ix.authorize(req, cl)
	resp, err := ix.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("health probe returned %d", resp.StatusCode)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.Status, nil
}

// putWithRetry PUTs the document into one index with exponential backoff
// between attempts.
func (ix *Indexer) putWithRetry(ctx context.Context, cl config.SearchCluster, index, docID string, body []byte) error {
	backoff := ix.cfg.InitialBackoff
	var lastErr error
	for attempt := 1; attempt <= ix.cfg.MaxRetries; attempt++ {
		lastErr = ix.put(ctx, cl, index, docID, body)
		if lastErr == nil {
			return nil
		}
		if attempt < ix.cfg.MaxRetries {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
		}
	}
	return lastErr
}

// put performs one document write.
func (ix *Indexer) put(ctx context.Context, cl config.SearchCluster, index, docID string, body []byte) error {
	url := fmt.Sprintf("%s/%s/_doc/%s", cl.Endpoint, index, docID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	ix.authorize(req, cl)
	resp, err := ix.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("put returned %d: %s", resp.StatusCode, snippet)
	}
	return nil
}

func (ix *Indexer) authorize(req *http.Request, cl config.SearchCluster) {
	if cl.Username != "" {
		req.SetBasicAuth(cl.Username, cl.Password)
	}
}
