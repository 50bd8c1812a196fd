// Package memory provides in-process repositories for development and tests.
// Every read and write copies values, so callers never share state with the
// store.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

// TxManager runs fn directly; the memory store has no transactions.
type TxManager struct{}

// RunInTx calls fn with ctx.
func (TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ---------------------------------------------------------------------------
// Profiles
// ---------------------------------------------------------------------------

// ProfileRepo stores learner profiles.
type ProfileRepo struct {
	mu       sync.RWMutex
	profiles map[string]*domain.LearnerProfile
}

// NewProfileRepo creates an empty profile store.
func NewProfileRepo() *ProfileRepo {
	return &ProfileRepo{profiles: make(map[string]*domain.LearnerProfile)}
}

// Get returns a copy of the profile or domain.ErrNotFound.
func (r *ProfileRepo) Get(_ context.Context, learnerID string) (*domain.LearnerProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[learnerID]
	if !ok {
		return nil, fmt.Errorf("learner_profile %s: %w", learnerID, domain.ErrNotFound)
	}
	return cloneProfile(p), nil
}

// Save upserts the profile fields and keeps stored concept records.
func (r *ProfileRepo) Save(_ context.Context, p *domain.LearnerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneProfile(p)
	stored.Concepts = make(map[string]*domain.ConceptRecord)
	if old, ok := r.profiles[p.LearnerID]; ok {
		stored.Concepts = old.Concepts
		stored.CreatedAt = old.CreatedAt
	}
	r.profiles[p.LearnerID] = stored
	return nil
}

// SaveConcept upserts one concept record of an existing profile.
func (r *ProfileRepo) SaveConcept(_ context.Context, learnerID string, rec *domain.ConceptRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[learnerID]
	if !ok {
		return fmt.Errorf("concept_record %s/%s: %w", learnerID, rec.ConceptID, domain.ErrNotFound)
	}
	p.Concepts[rec.ConceptID] = cloneConcept(rec)
	return nil
}

// Delete removes the profile or returns domain.ErrNotFound.
func (r *ProfileRepo) Delete(_ context.Context, learnerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[learnerID]; !ok {
		return fmt.Errorf("learner_profile %s: %w", learnerID, domain.ErrNotFound)
	}
	delete(r.profiles, learnerID)
	return nil
}

func cloneProfile(p *domain.LearnerProfile) *domain.LearnerProfile {
	out := *p
	out.WeakAreas = slices.Clone(p.WeakAreas)
	out.Streak.LastActivity = cloneTime(p.Streak.LastActivity)
	out.Concepts = make(map[string]*domain.ConceptRecord, len(p.Concepts))
	for id, rec := range p.Concepts {
		out.Concepts[id] = cloneConcept(rec)
	}
	return &out
}

func cloneConcept(rec *domain.ConceptRecord) *domain.ConceptRecord {
	out := *rec
	out.Interactions = slices.Clone(rec.Interactions)
	out.Mistakes = slices.Clone(rec.Mistakes)
	out.LastReviewed = cloneTime(rec.LastReviewed)
	out.NextReview = cloneTime(rec.NextReview)
	return &out
}

// ---------------------------------------------------------------------------
// Chunks
// ---------------------------------------------------------------------------

// ChunkRepo stores retrieval chunks per learner in insertion order.
type ChunkRepo struct {
	mu     sync.RWMutex
	chunks map[string][]domain.Chunk
}

// NewChunkRepo creates an empty chunk store.
func NewChunkRepo() *ChunkRepo {
	return &ChunkRepo{chunks: make(map[string][]domain.Chunk)}
}

// InsertChunks appends chunks. A duplicate id rejects the whole batch.
func (r *ChunkRepo) InsertChunks(_ context.Context, chunks []domain.Chunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool)
	for _, existing := range r.chunks {
		for _, c := range existing {
			seen[c.ID] = true
		}
	}
	for _, c := range chunks {
		if seen[c.ID] {
			return fmt.Errorf("chunk %s: %w", c.ID, domain.ErrAlreadyExists)
		}
		seen[c.ID] = true
	}

	for _, c := range chunks {
		r.chunks[c.LearnerID] = append(r.chunks[c.LearnerID], cloneChunk(c))
	}
	return nil
}

// ListChunks returns copies of the learner's chunks matching filter.
func (r *ChunkRepo) ListChunks(_ context.Context, learnerID string, filter domain.ChunkFilter) ([]domain.Chunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Chunk{}
	for _, c := range r.chunks[learnerID] {
		if filter.Type != "" && c.Metadata.Type != filter.Type {
			continue
		}
		if filter.Source != "" && c.Metadata.Source != filter.Source {
			continue
		}
		out = append(out, cloneChunk(c))
	}
	return out, nil
}

// DeleteChunks removes the learner's collection and reports its size.
func (r *ChunkRepo) DeleteChunks(_ context.Context, learnerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.chunks[learnerID])
	delete(r.chunks, learnerID)
	return n, nil
}

func cloneChunk(c domain.Chunk) domain.Chunk {
	c.Embedding = slices.Clone(c.Embedding)
	return c
}

// ---------------------------------------------------------------------------
// Validation sessions
// ---------------------------------------------------------------------------

// SessionRepo stores validation sessions.
type SessionRepo struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*domain.ValidationSession
}

// NewSessionRepo creates an empty session store.
func NewSessionRepo() *SessionRepo {
	return &SessionRepo{sessions: make(map[uuid.UUID]*domain.ValidationSession)}
}

// Create stores a new session or returns domain.ErrAlreadyExists.
func (r *SessionRepo) Create(_ context.Context, s *domain.ValidationSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.ID]; ok {
		return fmt.Errorf("validation_session %s: %w", s.ID, domain.ErrAlreadyExists)
	}
	r.sessions[s.ID] = cloneSession(s)
	return nil
}

// Get returns a copy of the session or domain.ErrNotFound.
func (r *SessionRepo) Get(_ context.Context, id uuid.UUID) (*domain.ValidationSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("validation_session %s: %w", id, domain.ErrNotFound)
	}
	return cloneSession(s), nil
}

// Update replaces a session owned by the same learner.
func (r *SessionRepo) Update(_ context.Context, s *domain.ValidationSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.sessions[s.ID]
	if !ok || old.LearnerID != s.LearnerID {
		return fmt.Errorf("validation_session %s: %w", s.ID, domain.ErrNotFound)
	}
	r.sessions[s.ID] = cloneSession(s)
	return nil
}

// DeleteByLearner removes every session of the learner.
func (r *SessionRepo) DeleteByLearner(_ context.Context, learnerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, s := range r.sessions {
		if s.LearnerID == learnerID {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

// ListByLearner returns up to limit sessions, most recent first.
func (r *SessionRepo) ListByLearner(_ context.Context, learnerID string, limit int) ([]*domain.ValidationSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.ValidationSession{}
	for _, s := range r.sessions {
		if s.LearnerID == learnerID {
			out = append(out, cloneSession(s))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func cloneSession(s *domain.ValidationSession) *domain.ValidationSession {
	out := *s
	out.Analysis.KeyConcepts = slices.Clone(s.Analysis.KeyConcepts)
	out.Analysis.PotentialWeaknesses = slices.Clone(s.Analysis.PotentialWeaknesses)
	out.Analysis.DecisionPoints = slices.Clone(s.Analysis.DecisionPoints)
	out.Analysis.Dependencies = slices.Clone(s.Analysis.Dependencies)
	out.Questions = slices.Clone(s.Questions)
	out.Answers = make([]domain.Answer, len(s.Answers))
	for i, a := range s.Answers {
		a.Evaluation.RedFlags = slices.Clone(a.Evaluation.RedFlags)
		out.Answers[i] = a
	}
	if s.Result != nil {
		r := *s.Result
		r.RedFlags = slices.Clone(r.RedFlags)
		r.Feedback = slices.Clone(r.Feedback)
		r.NextSteps = slices.Clone(r.NextSteps)
		out.Result = &r
	}
	out.FinalizedAt = cloneTime(s.FinalizedAt)
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
