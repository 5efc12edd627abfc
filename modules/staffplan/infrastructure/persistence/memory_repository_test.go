package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nusuk-platform/staffplan/modules/staffplan/domain"
)

func seedTrack() domain.Track {
	return domain.Track{ID: "trk1", Key: "training", NameAr: "مسار التدريب", Color: "#14B8A6", IsActive: true}
}

func TestMemoryRepository_InTxRestoresOnFailure(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository([]domain.Track{seedTrack()}, nil)

	boom := errors.New("boom")
	err := repo.InTx(ctx, func(ctx context.Context) error {
		require.NoError(t, repo.InsertFinancialCost(ctx, domain.FinancialCost{ID: "c1", ItemDetail: "x"}))
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Empty(t, repo.FinancialCosts())

	// the rolled back id is free again
	require.NoError(t, repo.InTx(ctx, func(ctx context.Context) error {
		return repo.InsertFinancialCost(ctx, domain.FinancialCost{ID: "c1", ItemDetail: "x"})
	}))
	require.Len(t, repo.FinancialCosts(), 1)
}

func TestMemoryRepository_FailInsert(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(nil, nil)
	boom := errors.New("constraint violation")
	repo.FailInsert(domain.TableContracts, boom)

	err := repo.InsertContract(ctx, domain.Contract{ID: "k1", EmployeeName: "x"})
	require.ErrorIs(t, err, boom)
	require.NoError(t, repo.InsertFinancialCost(ctx, domain.FinancialCost{ID: "f1", ItemDetail: "x"}))
}

func TestMemoryRepository_Constraints(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository([]domain.Track{seedTrack()}, nil)

	dup := seedTrack()
	dup.ID = "trk2"
	require.ErrorIs(t, repo.InsertTrack(ctx, dup), ErrDuplicateTrackKey)

	err := repo.InsertDeliverable(ctx, domain.Deliverable{ID: "d1", TrackID: "missing", Name: "x", NameAr: "x"})
	require.ErrorIs(t, err, ErrUnknownTrack)

	require.NoError(t, repo.InsertReference(ctx, domain.ReferenceItem{ID: "r1", Kind: domain.ReferenceScope, TrackID: "trk1", Text: "a"}))
	err = repo.InsertReference(ctx, domain.ReferenceItem{ID: "r1", Kind: domain.ReferenceKPI, TrackID: "trk1", Text: "b"})
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestMemoryRepository_FindEmployeeIDByName_FirstCreatedWins(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(nil, nil)

	id, err := repo.FindEmployeeIDByName(ctx, "سارة")
	require.NoError(t, err)
	require.Nil(t, id)

	require.NoError(t, repo.InsertEmployee(ctx, domain.Employee{ID: "e1", FullName: "سارة", FullNameAr: "سارة"}))
	require.NoError(t, repo.InsertEmployee(ctx, domain.Employee{ID: "e2", FullName: "سارة", FullNameAr: "سارة"}))

	id, err = repo.FindEmployeeIDByName(ctx, "سارة")
	require.NoError(t, err)
	require.NotNil(t, id)
	require.Equal(t, "e1", *id)
}

func TestMemoryRepository_CountRows(t *testing.T) {
	ctx := context.Background()
	admin := "admin"
	repo := NewMemoryRepository([]domain.Track{seedTrack()}, &admin)
	require.NoError(t, repo.InsertReference(ctx, domain.ReferenceItem{ID: "k1", Kind: domain.ReferenceKPI, TrackID: "trk1", Text: "a"}))

	counts, err := repo.CountRows(ctx)
	require.NoError(t, err)
	require.Len(t, counts, len(domain.SummaryTables))
	require.Equal(t, domain.TableCount{Table: domain.TableTracks, Rows: 1}, counts[0])
	require.Equal(t, domain.TableCount{Table: domain.TableTrackKPIs, Rows: 1}, counts[4])

	got, err := repo.FindAdminID(ctx)
	require.NoError(t, err)
	require.Equal(t, "admin", *got)
}
