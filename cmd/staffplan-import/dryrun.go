package main

import (
	"context"
	"fmt"

	"github.com/nusuk-platform/staffplan/modules/staffplan/domain"
	"github.com/nusuk-platform/staffplan/modules/staffplan/infrastructure/persistence"
)

// dryRunRepository stages every write in memory. Reads that the store can
// answer better (existing employees) go to the store first.
type dryRunRepository struct {
	*persistence.MemoryRepository
	store domain.Repository
}

func newDryRunRepository(ctx context.Context, store domain.Repository) (*dryRunRepository, error) {
	tracks, err := store.ListTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tracks: %w", err)
	}
	adminID, err := store.FindAdminID(ctx)
	if err != nil {
		return nil, fmt.Errorf("find administrator: %w", err)
	}
	return &dryRunRepository{
		MemoryRepository: persistence.NewMemoryRepository(tracks, adminID),
		store:            store,
	}, nil
}

func (r *dryRunRepository) FindEmployeeIDByName(ctx context.Context, fullNameAr string) (*string, error) {
	id, err := r.store.FindEmployeeIDByName(ctx, fullNameAr)
	if err != nil || id != nil {
		return id, err
	}
	return r.MemoryRepository.FindEmployeeIDByName(ctx, fullNameAr)
}
