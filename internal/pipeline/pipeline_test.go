// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

// pipeline_test.go holds the in-memory fakes shared by the stage and
// orchestrator tests. The fakes mirror the conditional-update semantics of
// the real stores; duplicate-delivery tests depend on that.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/michal-danieluk/adforge/internal/models"
	"github.com/michal-danieluk/adforge/internal/store"
)

type fakeBrandStore struct {
	brands map[uuid.UUID]*models.Brand
}

func newFakeBrandStore(brands ...*models.Brand) *fakeBrandStore {
	s := &fakeBrandStore{brands: make(map[uuid.UUID]*models.Brand)}
	for _, b := range brands {
		s.brands[b.ID] = b
	}
	return s
}

func (s *fakeBrandStore) FindByID(id uuid.UUID) (*models.Brand, error) {
	b, ok := s.brands[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := *b
	return &found, nil
}

type fakeCampaignStore struct {
	mu        sync.Mutex
	campaigns map[uuid.UUID]*models.Campaign
}

func newFakeCampaignStore(campaigns ...*models.Campaign) *fakeCampaignStore {
	s := &fakeCampaignStore{campaigns: make(map[uuid.UUID]*models.Campaign)}
	for _, c := range campaigns {
		s.campaigns[c.ID] = c
	}
	return s
}

func (s *fakeCampaignStore) FindByID(id uuid.UUID) (*models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := *c
	return &found, nil
}

func (s *fakeCampaignStore) Transition(id uuid.UUID, from, to models.CampaignStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !from.CanTransition(to) {
		return false, nil
	}
	c, ok := s.campaigns[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	return true, nil
}

func (s *fakeCampaignStore) status(id uuid.UUID) models.CampaignStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.campaigns[id].Status
}

type fakeCreativeStore struct {
	mu        sync.Mutex
	creatives map[uuid.UUID]*models.Creative
	batchErr  error
}

func newFakeCreativeStore(creatives ...*models.Creative) *fakeCreativeStore {
	s := &fakeCreativeStore{creatives: make(map[uuid.UUID]*models.Creative)}
	for _, c := range creatives {
		s.creatives[c.ID] = c
	}
	return s
}

func (s *fakeCreativeStore) CreateBatch(campaignID uuid.UUID, drafts []models.Creative) ([]models.Creative, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batchErr != nil {
		return nil, s.batchErr
	}
	created := make([]models.Creative, 0, len(drafts))
	for _, d := range drafts {
		d.ID = uuid.New()
		d.CampaignID = campaignID
		d.Status = models.CreativePending
		stored := d
		s.creatives[d.ID] = &stored
		created = append(created, d)
	}
	return created, nil
}

func (s *fakeCreativeStore) FindByID(id uuid.UUID) (*models.Creative, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.creatives[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := *c
	return &found, nil
}

func (s *fakeCreativeStore) ListByCampaign(campaignID uuid.UUID) ([]models.Creative, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Creative
	for _, c := range s.creatives {
		if c.CampaignID == campaignID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *fakeCreativeStore) ClaimForRender(id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.creatives[id]
	if !ok || c.Status != models.CreativePending {
		return false, nil
	}
	c.Status = models.CreativeGenerating
	return true, nil
}

func (s *fakeCreativeStore) ReleaseClaim(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.creatives[id]; ok && c.Status == models.CreativeGenerating {
		c.Status = models.CreativePending
	}
	return nil
}

func (s *fakeCreativeStore) MarkGenerated(id uuid.UUID, rawKey, finalKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.creatives[id]
	if !ok || c.Status != models.CreativeGenerating {
		return false, nil
	}
	c.Status = models.CreativeGenerated
	c.RawImageKey = &rawKey
	c.FinalImageKey = &finalKey
	return true, nil
}

func (s *fakeCreativeStore) MarkFailed(id uuid.UUID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.creatives[id]
	if !ok || c.Status.Resolved() {
		return store.ErrNotFound
	}
	c.Status = models.CreativeFailed
	c.Metadata.Error = message
	return nil
}

func (s *fakeCreativeStore) CountUnresolved(campaignID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, c := range s.creatives {
		if c.CampaignID == campaignID && !c.Status.Resolved() {
			count++
		}
	}
	return count, nil
}

func (s *fakeCreativeStore) DeleteByCampaign(campaignID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.creatives {
		if c.CampaignID == campaignID {
			delete(s.creatives, id)
		}
	}
	return nil
}

func (s *fakeCreativeStore) get(id uuid.UUID) *models.Creative {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := *s.creatives[id]
	return &found
}

type fakeConfigStore struct {
	config *models.AppConfig
	err    error
}

func (s *fakeConfigStore) Current() (*models.AppConfig, error) {
	return s.config, s.err
}

type uploadedAsset struct {
	key         string
	contentType string
	data        []byte
}

type fakeAssetStore struct {
	mu      sync.Mutex
	uploads []uploadedAsset
	err     error
}

func (s *fakeAssetStore) Upload(ctx context.Context, key, contentType string, data []byte) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, uploadedAsset{key: key, contentType: contentType, data: data})
	return nil
}

type enqueuedJob struct {
	jobType  string
	entityID uuid.UUID
}

type fakeEnqueuer struct {
	mu   sync.Mutex
	jobs []enqueuedJob
	err  error
}

func (e *fakeEnqueuer) Enqueue(ctx context.Context, jobType string, entityID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.jobs = append(e.jobs, enqueuedJob{jobType: jobType, entityID: entityID})
	return nil
}

func (e *fakeEnqueuer) ofType(jobType string) []enqueuedJob {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []enqueuedJob
	for _, j := range e.jobs {
		if j.jobType == jobType {
			out = append(out, j)
		}
	}
	return out
}

// noSleep replaces the orchestrator's retry pause in tests.
func noSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}
