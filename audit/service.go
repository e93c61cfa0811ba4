// api/audit/service.go
package audit

import (
	"context"
	"sync"
	"time"

	errs "github.com/dev-mohitbeniwal/agentguard/errors"
	logger "github.com/dev-mohitbeniwal/agentguard/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service is the Audit Log component (spec.md §4.I): it assigns chain
// linkage under a per-agent serializer, then appends through Repository.
type Service interface {
	Submit(ctx context.Context, entry Entry) (Entry, error)
	Query(ctx context.Context, criteria QueryCriteria) ([]Entry, error)
	VerifyChain(ctx context.Context, agentID string) (VerifyResult, error)
}

type service struct {
	repo Repository

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewService(repo Repository) Service {
	return &service{repo: repo, locks: make(map[string]*sync.Mutex)}
}

// lockFor returns the per-agent mutex, creating it on first use. This is
// the in-process half of the serializer spec.md §4.I requires; it only
// protects a single process, which is sufficient for the deployment shape
// this service targets.
func (s *service) lockFor(agentID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[agentID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[agentID] = l
	}
	return l
}

// Submit implements spec.md §4.I steps 1-4: assign a log_id, take the
// per-agent lock, read the latest entry for chain linkage, compute the
// chain hash, append, and release.
func (s *service) Submit(ctx context.Context, entry Entry) (Entry, error) {
	if entry.LogID == "" {
		entry.LogID = "log_" + uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	lock := s.lockFor(entry.AgentID)
	lock.Lock()
	defer lock.Unlock()

	prev, err := s.repo.LatestForAgent(ctx, entry.AgentID)
	if err != nil {
		logger.Error("failed to read latest audit entry", zap.String("agentID", entry.AgentID), zap.Error(err))
		return Entry{}, errs.ErrAuditWriteFailed
	}

	prevChainHash := ""
	if prev != nil {
		prevLogID := prev.LogID
		entry.PrevLogID = &prevLogID
		prevChainHash = prev.ChainHash
	} else {
		entry.PrevLogID = nil
	}

	chainHash, err := ComputeChainHash(prevChainHash, entry)
	if err != nil {
		return Entry{}, err
	}
	entry.ChainHash = chainHash

	if err := s.repo.Append(ctx, entry); err != nil {
		logger.Error("failed to append audit entry", zap.String("agentID", entry.AgentID), zap.Error(err))
		return Entry{}, errs.ErrAuditWriteFailed
	}

	return entry, nil
}

func (s *service) Query(ctx context.Context, criteria QueryCriteria) ([]Entry, error) {
	return s.repo.Query(ctx, criteria)
}

// VerifyChain walks an agent's entries oldest-first, recomputing each
// chain_hash, per spec.md §4.I's verification contract.
func (s *service) VerifyChain(ctx context.Context, agentID string) (VerifyResult, error) {
	entries, err := s.repo.ListForAgent(ctx, agentID)
	if err != nil {
		return VerifyResult{}, err
	}

	prevChainHash := ""
	for i := range entries {
		e := entries[i]
		recomputed, err := ComputeChainHash(prevChainHash, Entry{
			LogID:     e.LogID,
			AgentID:   e.AgentID,
			Timestamp: e.Timestamp,
			Action:    e.Action,
			Resource:  e.Resource,
			Context:   e.Context,
			Allowed:   e.Allowed,
			Result:    e.Result,
			Metadata:  e.Metadata,
			RequestID: e.RequestID,
			PrevLogID: e.PrevLogID,
		})
		if err != nil {
			return VerifyResult{}, err
		}
		if recomputed != e.ChainHash {
			broken := e.LogID
			return VerifyResult{Valid: false, TotalEntries: len(entries), BrokenAt: &broken}, nil
		}
		prevChainHash = e.ChainHash
	}

	return VerifyResult{Valid: true, TotalEntries: len(entries), BrokenAt: nil}, nil
}
