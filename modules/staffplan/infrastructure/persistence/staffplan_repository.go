package persistence

import (
	"context"
	"encoding/json"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/nusuk-platform/staffplan/modules/staffplan/domain"
	"github.com/nusuk-platform/staffplan/pkg/composables"
)

const (
	trackListQuery = `
		SELECT id, name, name_ar, color, COALESCE(sort_order, 0), COALESCE(is_active, true)
		FROM tracks
		ORDER BY sort_order, name`

	adminFindQuery = `SELECT id FROM users WHERE role = 'admin' LIMIT 1`

	employeeFindByNameQuery = `
		SELECT id FROM employees
		WHERE full_name_ar = $1
		ORDER BY created_at, id
		LIMIT 1`

	trackInsertQuery = `
		INSERT INTO tracks (id, name, name_ar, color, sort_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`

	employeeInsertQuery = `
		INSERT INTO employees (
			id, track_id, full_name, full_name_ar, position_ar, sub_track,
			direct_manager, contract_status, job_description, kpi_text, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())`

	recordInsertQuery = `
		INSERT INTO records (
			id, track_id, title, title_ar, status, priority, owner,
			progress, extra_fields, version, created_by_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())`

	deliverableInsertQuery = `
		INSERT INTO deliverables (id, track_id, name, name_ar, outputs, delivery_indicators, sort_order, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`

	kpiInsertQuery = `
		INSERT INTO track_kpis (id, track_id, name, name_ar, sort_order, created_at)
		VALUES ($1, $2, $3, $3, $4, NOW())`

	penaltyInsertQuery = `
		INSERT INTO penalties (id, track_id, violation, violation_ar, sort_order, created_at)
		VALUES ($1, $2, $3, $3, $4, NOW())`

	scopeInsertQuery = `
		INSERT INTO scopes (id, track_id, title, title_ar, sort_order, created_at)
		VALUES ($1, $2, $3, $3, $4, NOW())`

	contractInsertQuery = `
		INSERT INTO contracts (
			id, employee_id, employee_name, position, track_name,
			contract_type, monthly_salary, months, total_value, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())`

	financialCostInsertQuery = `
		INSERT INTO financial_costs (id, track_name, item_detail, tasks, type, months, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`
)

var ErrUnknownReferenceKind = gerrors.New("unknown reference kind")

var referenceInsertQueries = map[domain.ReferenceKind]string{
	domain.ReferenceKPI:     kpiInsertQuery,
	domain.ReferencePenalty: penaltyInsertQuery,
	domain.ReferenceScope:   scopeInsertQuery,
}

// StaffplanRepository reads and writes through the pgx transaction carried
// by ctx, falling back to the pool.
type StaffplanRepository struct{}

func NewStaffplanRepository() domain.Repository {
	return &StaffplanRepository{}
}

func (r *StaffplanRepository) ListTracks(ctx context.Context) ([]domain.Track, error) {
	q, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, trackListQuery)
	if err != nil {
		return nil, gerrors.Wrap(err, "list tracks")
	}
	defer rows.Close()

	var out []domain.Track
	for rows.Next() {
		var (
			t      domain.Track
			nameAr *string
			color  *string
		)
		if err := rows.Scan(&t.ID, &t.Key, &nameAr, &color, &t.SortOrder, &t.IsActive); err != nil {
			return nil, gerrors.Wrap(err, "scan track")
		}
		if nameAr != nil {
			t.NameAr = *nameAr
		}
		if color != nil {
			t.Color = *color
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, gerrors.Wrap(err, "list tracks")
	}
	return out, nil
}

func (r *StaffplanRepository) FindAdminID(ctx context.Context) (*string, error) {
	return r.findID(ctx, "find admin", adminFindQuery)
}

func (r *StaffplanRepository) FindEmployeeIDByName(ctx context.Context, fullNameAr string) (*string, error) {
	return r.findID(ctx, "find employee", employeeFindByNameQuery, fullNameAr)
}

func (r *StaffplanRepository) findID(ctx context.Context, op, query string, args ...any) (*string, error) {
	q, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var id string
	if err := q.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, gerrors.Wrap(err, op)
	}
	return &id, nil
}

func (r *StaffplanRepository) InsertTrack(ctx context.Context, t domain.Track) error {
	return r.exec(ctx, "insert track", trackInsertQuery,
		t.ID, t.Key, t.NameAr, t.Color, t.SortOrder, t.IsActive)
}

func (r *StaffplanRepository) InsertEmployee(ctx context.Context, e domain.Employee) error {
	return r.exec(ctx, "insert employee", employeeInsertQuery,
		e.ID, e.TrackID, e.FullName, e.FullNameAr, e.PositionAr, e.SubTrack,
		e.DirectManager, e.ContractStatus, e.JobDescription, e.KPIText)
}

func (r *StaffplanRepository) InsertRecord(ctx context.Context, rec domain.Record) error {
	if !json.Valid(rec.ExtraFields) {
		return gerrors.Errorf("insert record %s: extra fields are not valid JSON", rec.ID)
	}
	return r.exec(ctx, "insert record", recordInsertQuery,
		rec.ID, rec.TrackID, rec.Title, rec.TitleAr, string(rec.Status), rec.Priority, rec.Owner,
		rec.Progress, string(rec.ExtraFields), rec.Version, rec.CreatedByID)
}

func (r *StaffplanRepository) InsertDeliverable(ctx context.Context, d domain.Deliverable) error {
	return r.exec(ctx, "insert deliverable", deliverableInsertQuery,
		d.ID, d.TrackID, d.Name, d.NameAr, d.Outputs, d.DeliveryIndicators, d.SortOrder)
}

func (r *StaffplanRepository) InsertReference(ctx context.Context, item domain.ReferenceItem) error {
	query, ok := referenceInsertQueries[item.Kind]
	if !ok {
		return gerrors.Wrapf(ErrUnknownReferenceKind, "insert reference %q", item.Kind)
	}
	return r.exec(ctx, "insert "+item.Kind.Table(), query,
		item.ID, item.TrackID, item.Text, item.SortOrder)
}

func (r *StaffplanRepository) InsertContract(ctx context.Context, c domain.Contract) error {
	return r.exec(ctx, "insert contract", contractInsertQuery,
		c.ID, c.EmployeeID, c.EmployeeName, c.Position, c.TrackName,
		c.ContractType, c.MonthlySalary, c.Months, c.TotalValue)
}

func (r *StaffplanRepository) InsertFinancialCost(ctx context.Context, c domain.FinancialCost) error {
	return r.exec(ctx, "insert financial cost", financialCostInsertQuery,
		c.ID, c.TrackName, c.ItemDetail, c.Tasks, c.Type, c.Months, c.Quantity)
}

func (r *StaffplanRepository) CountRows(ctx context.Context) ([]domain.TableCount, error) {
	q, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.TableCount, 0, len(domain.SummaryTables))
	for _, table := range domain.SummaryTables {
		var n int64
		sql := "SELECT COUNT(*) FROM " + pgx.Identifier{table}.Sanitize()
		if err := q.QueryRow(ctx, sql).Scan(&n); err != nil {
			return nil, gerrors.Wrapf(err, "count %s", table)
		}
		out = append(out, domain.TableCount{Table: table, Rows: n})
	}
	return out, nil
}

func (r *StaffplanRepository) exec(ctx context.Context, op, query string, args ...any) error {
	q, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return gerrors.Wrap(err, op)
	}
	return nil
}
