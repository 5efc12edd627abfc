package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nusuk-platform/staffplan/modules/staffplan/domain"
	"github.com/nusuk-platform/staffplan/modules/staffplan/vocabulary"
	"github.com/nusuk-platform/staffplan/pkg/ids"
	"github.com/nusuk-platform/staffplan/pkg/workbook"
)

var ErrSheetMissing = errors.New("required sheet missing")

type Stage string

const (
	StageTracks         Stage = "tracks"
	StageMainPlan       Stage = "main_plan"
	StageTrackSheets    Stage = "track_sheets"
	StageCameras        Stage = "cameras"
	StageContracts      Stage = "contracts"
	StageFinancialCosts Stage = "financial_costs"
)

// Stages is the commit order of a run.
var Stages = []Stage{
	StageTracks,
	StageMainPlan,
	StageTrackSheets,
	StageCameras,
	StageContracts,
	StageFinancialCosts,
}

const (
	StatusCommitted = "committed"
	StatusFailed    = "failed"
	StatusNotRun    = "not_run"
)

const (
	skipBlankName     = "blank_name"
	skipSentinelName  = "sentinel_name"
	skipBlankItem     = "blank_item"
	skipRecordNoTrack = "record_without_track"
	skipRecordNoAdmin = "record_without_admin"
	skipMissingSheet  = "missing_sheet"
	skipShape         = "unrecognized_shape"
	skipMalformed     = "malformed_numeric"

	unresolvedTrack    = "track_label"
	unresolvedEmployee = "employee_name"
)

// StageError reports the stage whose transaction was rolled back. Stages
// before it stay committed; stages after it did not run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// TxFunc runs fn in one store transaction and commits it when fn succeeds.
type TxFunc func(ctx context.Context, fn func(context.Context) error) error

type StageReport struct {
	Stage      Stage          `json:"stage"`
	Status     string         `json:"status"`
	Inserted   map[string]int `json:"inserted,omitempty"`
	Skipped    map[string]int `json:"skipped,omitempty"`
	Unresolved map[string]int `json:"unresolved,omitempty"`
	DurationMS int64          `json:"duration_ms"`
	Error      string         `json:"error,omitempty"`
}

type Report struct {
	Stages []StageReport
	// Manifest lists the committed ids per stage and table.
	Manifest      map[Stage]map[string][]string
	ContractTotal decimal.Decimal
	Warnings      []string
}

// Inserted sums the committed rows of table across stages.
func (r *Report) Inserted(table string) int {
	n := 0
	for _, s := range r.Stages {
		n += s.Inserted[table]
	}
	return n
}

// Importer materializes a staffing-plan workbook into the store, one
// transaction per stage.
type Importer struct {
	repo  domain.Repository
	inTx  TxFunc
	ids   ids.Generator
	vocab *vocabulary.Vocabulary
	log   *logrus.Entry
}

func NewImporter(
	repo domain.Repository,
	inTx TxFunc,
	gen ids.Generator,
	vocab *vocabulary.Vocabulary,
	log *logrus.Entry,
) *Importer {
	return &Importer{repo: repo, inTx: inTx, ids: gen, vocab: vocab, log: log}
}

type run struct {
	*Importer
	wb       workbook.Workbook
	gen      generator
	resolver *TrackResolver
	adminID  *string
	report   *Report

	mainPlan       *workbook.Sheet
	contracts      *workbook.Sheet
	financialCosts *workbook.Sheet

	employeeNames []string
}

// Run imports wb. Missing required sheets and unrecognized required shapes
// fail before anything is written. A failing stage is returned as
// *StageError together with the partial report.
func (i *Importer) Run(ctx context.Context, wb workbook.Workbook) (*Report, error) {
	r := &run{
		Importer: i,
		wb:       wb,
		gen:      generator{ids: i.ids, signedPhrase: i.vocab.SignedPhrase},
		report:   &Report{Manifest: map[Stage]map[string][]string{}},
	}
	if err := r.precheck(); err != nil {
		return r.report, err
	}

	resolver, err := NewTrackResolver(ctx, i.repo, i.vocab, i.ids, i.log)
	if err != nil {
		return r.report, err
	}
	r.resolver = resolver

	adminID, err := i.repo.FindAdminID(ctx)
	if err != nil {
		return r.report, fmt.Errorf("find administrator: %w", err)
	}
	if adminID == nil {
		i.log.Warn("no administrator found; records will not be created")
	}
	r.adminID = adminID

	steps := map[Stage]func(context.Context, *stageRun) error{
		StageTracks:         r.ensureTracks,
		StageMainPlan:       r.importMainPlan,
		StageTrackSheets:    r.importTrackSheets,
		StageCameras:        r.importCameras,
		StageContracts:      r.importContracts,
		StageFinancialCosts: r.importFinancialCosts,
	}
	for idx, stage := range Stages {
		if err := r.runStage(ctx, stage, steps[stage]); err != nil {
			for _, rest := range Stages[idx+1:] {
				r.report.Stages = append(r.report.Stages, StageReport{Stage: rest, Status: StatusNotRun})
			}
			return r.report, err
		}
	}
	return r.report, nil
}

func (r *run) precheck() error {
	required := []struct {
		name   string
		layout LayoutKind
		dst    **workbook.Sheet
	}{
		{r.vocab.Sheets.MainPlan, MainPlanLayout, &r.mainPlan},
		{r.vocab.Sheets.Contracts, ContractsLayout, &r.contracts},
		{r.vocab.Sheets.FinancialCosts, FinancialCostsLayout, &r.financialCosts},
	}
	for _, req := range required {
		sheet, err := r.wb.Sheet(req.name)
		if errors.Is(err, workbook.ErrSheetNotFound) {
			return fmt.Errorf("%w: %q", ErrSheetMissing, req.name)
		}
		if err != nil {
			return err
		}
		if err := LayoutFor(req.layout).Check(sheet); err != nil {
			return err
		}
		*req.dst = sheet
	}
	return nil
}

type stageRun struct {
	stage         Stage
	log           *logrus.Entry
	inserted      map[string][]string
	skipped       map[string]int
	unresolved    map[string]int
	contractTotal decimal.Decimal
}

func (s *stageRun) insert(table, id string) {
	s.inserted[table] = append(s.inserted[table], id)
}

func (s *stageRun) skip(reason string, n int) {
	if n > 0 {
		s.skipped[reason] += n
	}
}

func (s *stageRun) unresolvedRef(kind string) {
	s.unresolved[kind]++
}

func (r *run) runStage(ctx context.Context, stage Stage, fn func(context.Context, *stageRun) error) error {
	ctx, span := tracer.Start(ctx, "staffplan.import."+string(stage),
		trace.WithAttributes(attribute.String("stage", string(stage))))
	defer span.End()

	st := &stageRun{
		stage:      stage,
		log:        r.log.WithField("stage", string(stage)),
		inserted:   map[string][]string{},
		skipped:    map[string]int{},
		unresolved: map[string]int{},
	}
	start := time.Now()
	err := r.inTx(ctx, func(ctx context.Context) error {
		return fn(ctx, st)
	})
	elapsed := time.Since(start)

	rep := StageReport{Stage: stage, DurationMS: elapsed.Milliseconds()}
	if err != nil {
		r.resolver.Discard()
		rep.Status = StatusFailed
		rep.Error = err.Error()
		r.report.Stages = append(r.report.Stages, rep)
		recordStage(stage, StatusFailed, elapsed.Seconds())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		st.log.WithError(err).Error("stage rolled back")
		return &StageError{Stage: stage, Err: err}
	}

	for _, t := range r.resolver.Commit() {
		st.insert(domain.TableTracks, t.ID)
	}
	rep.Status = StatusCommitted
	rep.Inserted = make(map[string]int, len(st.inserted))
	total := 0
	for table, rows := range st.inserted {
		rep.Inserted[table] = len(rows)
		total += len(rows)
	}
	if len(st.skipped) > 0 {
		rep.Skipped = st.skipped
	}
	if len(st.unresolved) > 0 {
		rep.Unresolved = st.unresolved
	}
	r.report.Stages = append(r.report.Stages, rep)
	r.report.Manifest[stage] = st.inserted
	r.report.ContractTotal = r.report.ContractTotal.Add(st.contractTotal)

	recordCommitted(st.inserted, st.skipped, stage)
	recordStage(stage, StatusCommitted, elapsed.Seconds())
	span.SetAttributes(attribute.Int("rows_inserted", total))
	st.log.WithFields(logrus.Fields{"rows_inserted": total, "duration_ms": rep.DurationMS}).Info("stage committed")
	return nil
}

func (r *run) ensureTracks(ctx context.Context, _ *stageRun) error {
	_, err := r.resolver.EnsureAll(ctx)
	return err
}

func (r *run) importMainPlan(ctx context.Context, st *stageRun) error {
	rows, err := LayoutFor(MainPlanLayout).Rows(r.mainPlan)
	if err != nil {
		return err
	}
	for _, row := range rows {
		name := row.Get(FieldEmployee)
		if name == nil {
			st.skip(skipBlankName, 1)
			continue
		}
		if !IsEmployeeName(name, r.vocab.SentinelName) {
			st.skip(skipSentinelName, 1)
			continue
		}

		label := row.Get(FieldMainTrack)
		trackID, err := r.resolver.ResolveOrCreate(ctx, label, vocabulary.MainPlan)
		if err != nil {
			return err
		}
		if trackID == nil && label != nil {
			st.unresolvedRef(unresolvedTrack)
		}

		e := r.gen.employee(row, trackID)
		if err := domain.Validate(e); err != nil {
			return err
		}
		if err := r.repo.InsertEmployee(ctx, e); err != nil {
			return err
		}
		st.insert(domain.TableEmployees, e.ID)
		r.employeeNames = append(r.employeeNames, e.FullNameAr)

		switch {
		case trackID == nil:
			st.skip(skipRecordNoTrack, 1)
		case r.adminID == nil:
			st.skip(skipRecordNoAdmin, 1)
		default:
			rec, err := r.gen.record(e, row.Get(FieldTrackLead), *trackID, *r.adminID)
			if err != nil {
				return err
			}
			if err := domain.Validate(rec); err != nil {
				return err
			}
			if err := r.repo.InsertRecord(ctx, rec); err != nil {
				return err
			}
			st.insert(domain.TableRecords, rec.ID)
		}
	}
	return nil
}

func (r *run) importTrackSheets(ctx context.Context, st *stageRun) error {
	for _, entry := range r.vocab.TrackSheets() {
		label := entry.Label
		if err := r.importTrackSheet(ctx, st, label, TrackSheetLayout); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) importCameras(ctx context.Context, st *stageRun) error {
	return r.importTrackSheet(ctx, st, r.vocab.Sheets.Cameras, CamerasLayout)
}

// importTrackSheet imports deliverables and the deduplicated KPIs, penalties
// and scopes of one optional track sheet.
func (r *run) importTrackSheet(ctx context.Context, st *stageRun, title string, kind LayoutKind) error {
	log := st.log.WithField("sheet", title)
	sheet, err := r.wb.Sheet(title)
	if errors.Is(err, workbook.ErrSheetNotFound) {
		st.skip(skipMissingSheet, 1)
		log.Info("sheet not in workbook")
		return nil
	}
	if err != nil {
		return err
	}
	rows, err := LayoutFor(kind).Rows(sheet)
	if errors.Is(err, ErrUnrecognizedShape) {
		st.skip(skipShape, 1)
		r.report.Warnings = append(r.report.Warnings, err.Error())
		log.WithError(err).Warn("sheet skipped")
		return nil
	}
	if err != nil {
		return err
	}

	trackID, err := r.resolver.ResolveOrCreate(ctx, &title, vocabulary.SheetTitles)
	if err != nil {
		return err
	}
	if trackID == nil {
		st.unresolvedRef(unresolvedTrack)
		log.Warn("sheet title is not a known track")
		return nil
	}

	kpis, penalties, scopes := NewCollector(), NewCollector(), NewCollector()
	for _, row := range rows {
		kpis.Add(row.Get(FieldKPI))
		penalties.Add(row.Get(FieldPenalty))
		scopes.Add(row.Get(FieldScope))

		name := row.Get(FieldDeliverable)
		if name == nil {
			continue
		}
		d := r.gen.deliverable(*trackID, *name, row.Get(FieldOutputs), row.Get(FieldIndicators), row.Index)
		if err := domain.Validate(d); err != nil {
			return err
		}
		if err := r.repo.InsertDeliverable(ctx, d); err != nil {
			return err
		}
		st.insert(domain.TableDeliverables, d.ID)
	}

	for _, group := range []struct {
		kind domain.ReferenceKind
		c    *Collector
	}{
		{domain.ReferenceKPI, kpis},
		{domain.ReferencePenalty, penalties},
		{domain.ReferenceScope, scopes},
	} {
		for _, item := range r.gen.references(group.kind, *trackID, group.c) {
			if err := domain.Validate(item); err != nil {
				return err
			}
			if err := r.repo.InsertReference(ctx, item); err != nil {
				return err
			}
			st.insert(group.kind.Table(), item.ID)
		}
	}
	log.WithFields(logrus.Fields{
		"kpis":      kpis.Len(),
		"penalties": penalties.Len(),
		"scopes":    scopes.Len(),
	}).Debug("sheet imported")
	return nil
}

func (r *run) importContracts(ctx context.Context, st *stageRun) error {
	rows, err := LayoutFor(ContractsLayout).Rows(r.contracts)
	if err != nil {
		return err
	}
	for _, row := range rows {
		name := row.Get(FieldName)
		if name == nil {
			st.skip(skipBlankName, 1)
			continue
		}
		employeeID, err := r.repo.FindEmployeeIDByName(ctx, *name)
		if err != nil {
			return err
		}
		if employeeID == nil {
			st.unresolvedRef(unresolvedEmployee)
			r.hintEmployee(st.log, *name)
		}
		if track := row.Get(FieldTrack); track != nil {
			if _, ok := r.vocab.Match(vocabulary.Contracts, *track); !ok {
				st.unresolvedRef(unresolvedTrack)
			}
		}

		c, malformed := r.gen.contract(row, employeeID)
		if malformed > 0 {
			st.skip(skipMalformed, malformed)
			st.log.WithField("row", row.Index).Debug("malformed numeric cell")
		}
		if err := domain.Validate(c); err != nil {
			return err
		}
		if err := r.repo.InsertContract(ctx, c); err != nil {
			return err
		}
		st.insert(domain.TableContracts, c.ID)
		if c.TotalValue != nil {
			st.contractTotal = st.contractTotal.Add(decimal.NewFromFloat(*c.TotalValue))
		}
	}
	return nil
}

// hintEmployee logs the in-run employee names closest to an unmatched
// contract name. The contract itself stays unlinked.
func (r *run) hintEmployee(log *logrus.Entry, name string) {
	ranks := fuzzy.RankFindNormalizedFold(name, r.employeeNames)
	if len(ranks) == 0 {
		log.WithField("employee_name", name).Debug("contract has no matching employee")
		return
	}
	sort.Sort(ranks)
	var candidates []string
	for _, rank := range ranks {
		if len(candidates) == 3 {
			break
		}
		candidates = append(candidates, rank.Target)
	}
	log.WithFields(logrus.Fields{
		"employee_name": name,
		"candidates":    candidates,
	}).Info("contract has no exact employee match")
}

func (r *run) importFinancialCosts(ctx context.Context, st *stageRun) error {
	rows, err := LayoutFor(FinancialCostsLayout).Rows(r.financialCosts)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if row.Get(FieldItemDetail) == nil {
			st.skip(skipBlankItem, 1)
			continue
		}
		c, malformed := r.gen.financialCost(row)
		if malformed > 0 {
			st.skip(skipMalformed, malformed)
			st.log.WithField("row", row.Index).Debug("malformed numeric cell")
		}
		if err := domain.Validate(c); err != nil {
			return err
		}
		if err := r.repo.InsertFinancialCost(ctx, c); err != nil {
			return err
		}
		st.insert(domain.TableFinancialCosts, c.ID)
	}
	return nil
}
