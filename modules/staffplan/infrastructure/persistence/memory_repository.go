package persistence

import (
	"context"
	"sync"

	gerrors "github.com/go-faster/errors"

	"github.com/nusuk-platform/staffplan/modules/staffplan/domain"
)

var (
	ErrDuplicateID       = gerrors.New("duplicate id")
	ErrDuplicateTrackKey = gerrors.New("duplicate track key")
	ErrUnknownTrack      = gerrors.New("unknown track")
)

type memoryState struct {
	tracks       []domain.Track
	employees    []domain.Employee
	records      []domain.Record
	deliverables []domain.Deliverable
	references   map[domain.ReferenceKind][]domain.ReferenceItem
	contracts    []domain.Contract
	costs        []domain.FinancialCost
}

func (s memoryState) clone() memoryState {
	refs := make(map[domain.ReferenceKind][]domain.ReferenceItem, len(s.references))
	for k, v := range s.references {
		refs[k] = append([]domain.ReferenceItem(nil), v...)
	}
	return memoryState{
		tracks:       append([]domain.Track(nil), s.tracks...),
		employees:    append([]domain.Employee(nil), s.employees...),
		records:      append([]domain.Record(nil), s.records...),
		deliverables: append([]domain.Deliverable(nil), s.deliverables...),
		references:   refs,
		contracts:    append([]domain.Contract(nil), s.contracts...),
		costs:        append([]domain.FinancialCost(nil), s.costs...),
	}
}

// MemoryRepository keeps the entity graph in process. InTx snapshots the
// state and restores it when the function fails, mirroring a rolled back
// transaction. It backs dry runs and tests.
type MemoryRepository struct {
	mu       sync.Mutex
	state    memoryState
	ids      map[string]struct{}
	adminID  *string
	failures map[string]error
}

func NewMemoryRepository(tracks []domain.Track, adminID *string) *MemoryRepository {
	m := &MemoryRepository{
		state:    memoryState{references: map[domain.ReferenceKind][]domain.ReferenceItem{}},
		ids:      map[string]struct{}{},
		adminID:  adminID,
		failures: map[string]error{},
	}
	for _, t := range tracks {
		m.state.tracks = append(m.state.tracks, t)
		m.ids[t.ID] = struct{}{}
	}
	return m
}

// FailInsert makes every following insert into table return err.
func (m *MemoryRepository) FailInsert(table string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[table] = err
}

func (m *MemoryRepository) InTx(ctx context.Context, fn func(context.Context) error) error {
	m.mu.Lock()
	snapshot := m.state.clone()
	ids := make(map[string]struct{}, len(m.ids))
	for id := range m.ids {
		ids[id] = struct{}{}
	}
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.state = snapshot
		m.ids = ids
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *MemoryRepository) ListTracks(_ context.Context) ([]domain.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Track(nil), m.state.tracks...), nil
}

func (m *MemoryRepository) FindAdminID(_ context.Context) (*string, error) {
	return m.adminID, nil
}

func (m *MemoryRepository) FindEmployeeIDByName(_ context.Context, fullNameAr string) (*string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.state.employees {
		if e.FullNameAr == fullNameAr {
			id := e.ID
			return &id, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) InsertTrack(_ context.Context, t domain.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.admit(domain.TableTracks, t.ID); err != nil {
		return err
	}
	for _, existing := range m.state.tracks {
		if existing.Key == t.Key {
			return gerrors.Wrapf(ErrDuplicateTrackKey, "insert track %q", t.Key)
		}
	}
	m.state.tracks = append(m.state.tracks, t)
	m.ids[t.ID] = struct{}{}
	return nil
}

func (m *MemoryRepository) InsertEmployee(_ context.Context, e domain.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.admit(domain.TableEmployees, e.ID); err != nil {
		return err
	}
	if e.TrackID != nil {
		if err := m.requireTrack(*e.TrackID); err != nil {
			return err
		}
	}
	m.state.employees = append(m.state.employees, e)
	m.ids[e.ID] = struct{}{}
	return nil
}

func (m *MemoryRepository) InsertRecord(_ context.Context, r domain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.admit(domain.TableRecords, r.ID); err != nil {
		return err
	}
	if err := m.requireTrack(r.TrackID); err != nil {
		return err
	}
	m.state.records = append(m.state.records, r)
	m.ids[r.ID] = struct{}{}
	return nil
}

func (m *MemoryRepository) InsertDeliverable(_ context.Context, d domain.Deliverable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.admit(domain.TableDeliverables, d.ID); err != nil {
		return err
	}
	if err := m.requireTrack(d.TrackID); err != nil {
		return err
	}
	m.state.deliverables = append(m.state.deliverables, d)
	m.ids[d.ID] = struct{}{}
	return nil
}

func (m *MemoryRepository) InsertReference(_ context.Context, item domain.ReferenceItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := item.Kind.Table()
	if table == "" {
		return gerrors.Wrapf(ErrUnknownReferenceKind, "insert reference %q", item.Kind)
	}
	if err := m.admit(table, item.ID); err != nil {
		return err
	}
	if err := m.requireTrack(item.TrackID); err != nil {
		return err
	}
	m.state.references[item.Kind] = append(m.state.references[item.Kind], item)
	m.ids[item.ID] = struct{}{}
	return nil
}

func (m *MemoryRepository) InsertContract(_ context.Context, c domain.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.admit(domain.TableContracts, c.ID); err != nil {
		return err
	}
	m.state.contracts = append(m.state.contracts, c)
	m.ids[c.ID] = struct{}{}
	return nil
}

func (m *MemoryRepository) InsertFinancialCost(_ context.Context, c domain.FinancialCost) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.admit(domain.TableFinancialCosts, c.ID); err != nil {
		return err
	}
	m.state.costs = append(m.state.costs, c)
	m.ids[c.ID] = struct{}{}
	return nil
}

func (m *MemoryRepository) CountRows(_ context.Context) ([]domain.TableCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sizes := map[string]int{
		domain.TableTracks:         len(m.state.tracks),
		domain.TableEmployees:      len(m.state.employees),
		domain.TableContracts:      len(m.state.contracts),
		domain.TableDeliverables:   len(m.state.deliverables),
		domain.TableTrackKPIs:      len(m.state.references[domain.ReferenceKPI]),
		domain.TablePenalties:      len(m.state.references[domain.ReferencePenalty]),
		domain.TableScopes:         len(m.state.references[domain.ReferenceScope]),
		domain.TableFinancialCosts: len(m.state.costs),
		domain.TableRecords:        len(m.state.records),
	}
	out := make([]domain.TableCount, 0, len(domain.SummaryTables))
	for _, table := range domain.SummaryTables {
		out = append(out, domain.TableCount{Table: table, Rows: int64(sizes[table])})
	}
	return out, nil
}

func (m *MemoryRepository) Tracks() []domain.Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Track(nil), m.state.tracks...)
}

func (m *MemoryRepository) Employees() []domain.Employee {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Employee(nil), m.state.employees...)
}

func (m *MemoryRepository) Records() []domain.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Record(nil), m.state.records...)
}

func (m *MemoryRepository) Deliverables() []domain.Deliverable {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Deliverable(nil), m.state.deliverables...)
}

func (m *MemoryRepository) References(kind domain.ReferenceKind) []domain.ReferenceItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ReferenceItem(nil), m.state.references[kind]...)
}

func (m *MemoryRepository) Contracts() []domain.Contract {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Contract(nil), m.state.contracts...)
}

func (m *MemoryRepository) FinancialCosts() []domain.FinancialCost {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.FinancialCost(nil), m.state.costs...)
}

func (m *MemoryRepository) admit(table, id string) error {
	if err := m.failures[table]; err != nil {
		return gerrors.Wrapf(err, "insert into %s", table)
	}
	if _, ok := m.ids[id]; ok {
		return gerrors.Wrapf(ErrDuplicateID, "insert into %s: %s", table, id)
	}
	return nil
}

func (m *MemoryRepository) requireTrack(id string) error {
	for _, t := range m.state.tracks {
		if t.ID == id {
			return nil
		}
	}
	return gerrors.Wrapf(ErrUnknownTrack, "track %s", id)
}
