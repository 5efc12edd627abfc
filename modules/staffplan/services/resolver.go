package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nusuk-platform/staffplan/modules/staffplan/domain"
	"github.com/nusuk-platform/staffplan/modules/staffplan/vocabulary"
	"github.com/nusuk-platform/staffplan/pkg/ids"
)

// TrackResolver maps raw track labels to track ids for one run. It is seeded
// from the store's existing tracks and creates missing canonical tracks on
// demand. Creations stay pending until Commit; Discard forgets them after a
// rolled back stage.
type TrackResolver struct {
	repo  domain.Repository
	vocab *vocabulary.Vocabulary
	ids   ids.Generator
	log   *logrus.Entry

	byKey    map[string]string
	nextSort int
	pending  []domain.Track
}

func NewTrackResolver(
	ctx context.Context,
	repo domain.Repository,
	vocab *vocabulary.Vocabulary,
	gen ids.Generator,
	log *logrus.Entry,
) (*TrackResolver, error) {
	tracks, err := repo.ListTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tracks: %w", err)
	}
	r := &TrackResolver{
		repo:  repo,
		vocab: vocab,
		ids:   gen,
		log:   log,
		byKey: make(map[string]string, len(tracks)),
	}
	for i, t := range tracks {
		if _, dup := r.byKey[t.Key]; !dup {
			r.byKey[t.Key] = t.ID
		}
		if i == 0 || t.SortOrder+1 > r.nextSort {
			r.nextSort = t.SortOrder + 1
		}
	}
	return r, nil
}

// EnsureAll creates every canonical key that has no track yet.
func (r *TrackResolver) EnsureAll(ctx context.Context) ([]domain.Track, error) {
	var created []domain.Track
	for _, key := range r.vocab.Keys() {
		if _, ok := r.byKey[key]; ok {
			continue
		}
		t, err := r.create(ctx, key)
		if err != nil {
			return created, err
		}
		created = append(created, t)
	}
	return created, nil
}

// ResolveOrCreate returns the id of the track raw names in vocabulary c, or
// nil when raw is nil or matches nothing.
func (r *TrackResolver) ResolveOrCreate(ctx context.Context, raw *string, c vocabulary.Context) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	key, ok := r.vocab.Match(c, *raw)
	if !ok {
		r.log.WithFields(logrus.Fields{"label": *raw, "vocabulary": c.String()}).Debug("track label not in vocabulary")
		return nil, nil
	}
	if id, ok := r.byKey[key]; ok {
		return &id, nil
	}
	t, err := r.create(ctx, key)
	if err != nil {
		return nil, err
	}
	return &t.ID, nil
}

// TrackID returns the id known for a canonical key.
func (r *TrackResolver) TrackID(key string) (string, bool) {
	id, ok := r.byKey[key]
	return id, ok
}

// Commit accepts the pending creations and returns them.
func (r *TrackResolver) Commit() []domain.Track {
	created := r.pending
	r.pending = nil
	return created
}

// Discard forgets the pending creations.
func (r *TrackResolver) Discard() {
	for _, t := range r.pending {
		delete(r.byKey, t.Key)
		r.nextSort--
	}
	r.pending = nil
}

func (r *TrackResolver) create(ctx context.Context, key string) (domain.Track, error) {
	t := domain.Track{
		ID:        r.ids.New(),
		Key:       key,
		NameAr:    r.vocab.NativeName(key),
		Color:     r.vocab.Color(key),
		SortOrder: r.nextSort,
		IsActive:  true,
	}
	if err := domain.Validate(t); err != nil {
		return domain.Track{}, err
	}
	if err := r.repo.InsertTrack(ctx, t); err != nil {
		return domain.Track{}, fmt.Errorf("create track %s: %w", key, err)
	}
	r.byKey[key] = t.ID
	r.nextSort++
	r.pending = append(r.pending, t)
	r.log.WithFields(logrus.Fields{"track": key, "track_id": t.ID, "sort_order": t.SortOrder}).Info("created track")
	return t, nil
}
