// api/audit/repository.go
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const indexName = "audit-logs"

// Repository is the storage seam the per-agent serializer writes through.
// Append must not be called directly by callers that need chain linkage —
// use Service.Submit, which reads LatestForAgent and computes the hash
// under the per-agent lock before calling Append.
type Repository interface {
	Append(ctx context.Context, entry Entry) error
	LatestForAgent(ctx context.Context, agentID string) (*Entry, error)
	ListForAgent(ctx context.Context, agentID string) ([]Entry, error)
	Query(ctx context.Context, criteria QueryCriteria) ([]Entry, error)
}

type ElasticsearchRepository struct {
	esClient *elasticsearch.Client
}

// NewElasticsearchRepository creates a new repository with a given Elasticsearch client URL.
func NewElasticsearchRepository(esURL string) (*ElasticsearchRepository, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{esURL},
	}
	esClient, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &ElasticsearchRepository{esClient: esClient}, nil
}

// Append indexes a single entry, document-ID'd by log_id so a retried
// append after a crash is idempotent rather than duplicating the entry.
func (r *ElasticsearchRepository) Append(ctx context.Context, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      indexName,
		DocumentID: entry.LogID,
		Body:       strings.NewReader(string(data)),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, r.esClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing audit entry: %s", res.String())
	}
	return nil
}

// LatestForAgent returns the entry with the greatest (timestamp, log_id)
// for agentID, or nil if the agent has no entries yet.
func (r *ElasticsearchRepository) LatestForAgent(ctx context.Context, agentID string) (*Entry, error) {
	query := map[string]interface{}{
		"size":  1,
		"query": map[string]interface{}{"term": map[string]interface{}{"agent_id": agentID}},
		"sort": []interface{}{
			map[string]interface{}{"timestamp": "desc"},
			map[string]interface{}{"log_id": "desc"},
		},
	}

	entries, err := r.search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// ListForAgent returns every entry for agentID ordered oldest-first, for
// verify_chain to walk.
func (r *ElasticsearchRepository) ListForAgent(ctx context.Context, agentID string) ([]Entry, error) {
	query := map[string]interface{}{
		"size":  10000,
		"query": map[string]interface{}{"term": map[string]interface{}{"agent_id": agentID}},
		"sort": []interface{}{
			map[string]interface{}{"timestamp": "asc"},
			map[string]interface{}{"log_id": "asc"},
		},
	}
	return r.search(ctx, query)
}

// Query answers GET /logs with the optional filters of spec.md §6.
func (r *ElasticsearchRepository) Query(ctx context.Context, criteria QueryCriteria) ([]Entry, error) {
	must := []interface{}{}

	if criteria.AgentID != "" {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"agent_id": criteria.AgentID}})
	}
	if criteria.Action != "" {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"action": criteria.Action}})
	}
	if criteria.Allowed != nil {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"allowed": *criteria.Allowed}})
	}
	if criteria.From != nil || criteria.To != nil {
		rng := map[string]interface{}{}
		if criteria.From != nil {
			rng["gte"] = criteria.From.UTC().Format(time.RFC3339)
		}
		if criteria.To != nil {
			rng["lte"] = criteria.To.UTC().Format(time.RFC3339)
		}
		must = append(must, map[string]interface{}{"range": map[string]interface{}{"timestamp": rng}})
	}

	size := criteria.Limit
	if size <= 0 {
		size = 100
	}

	query := map[string]interface{}{
		"size": size,
		"sort": []interface{}{map[string]interface{}{"timestamp": "desc"}},
	}
	if len(must) > 0 {
		query["query"] = map[string]interface{}{"bool": map[string]interface{}{"must": must}}
	} else {
		query["query"] = map[string]interface{}{"match_all": map[string]interface{}{}}
	}

	return r.search(ctx, query)
}

func (r *ElasticsearchRepository) search(ctx context.Context, query map[string]interface{}) ([]Entry, error) {
	var buf strings.Builder
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, err
	}

	res, err := r.esClient.Search(
		r.esClient.Search.WithContext(ctx),
		r.esClient.Search.WithIndex(indexName),
		r.esClient.Search.WithBody(strings.NewReader(buf.String())),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == 404 {
			return nil, nil
		}
		return nil, fmt.Errorf("error searching audit entries: %s", res.String())
	}

	var rmap map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&rmap); err != nil {
		return nil, err
	}

	hitsWrapper, ok := rmap["hits"].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	hits, ok := hitsWrapper["hits"].([]interface{})
	if !ok {
		return nil, nil
	}

	entries := make([]Entry, len(hits))
	for i, hit := range hits {
		source := hit.(map[string]interface{})["_source"]
		data, _ := json.Marshal(source)
		if err := json.Unmarshal(data, &entries[i]); err != nil {
			return nil, err
		}
	}
	return entries, nil
}
