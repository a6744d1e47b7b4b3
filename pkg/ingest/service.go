// Package ingest loads already-parsed dataset rows into the fact tables.
// Each load replaces its period atomically: delete, chunked insert,
// derivation pass and audit record run in one transaction.
package ingest

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	appcontext "github.com/qinyiguo/volvo-ops-platform/pkg/context"
	"github.com/qinyiguo/volvo-ops-platform/pkg/database"
	"github.com/qinyiguo/volvo-ops-platform/pkg/metrics"
	"github.com/qinyiguo/volvo-ops-platform/pkg/models"
	"github.com/qinyiguo/volvo-ops-platform/pkg/tracing"
)

// PartsLedger is the parts_sales write surface
type PartsLedger interface {
	DeleteByPeriod(ctx context.Context, tx database.Tx, period string, branch *string) error
	InsertBatch(ctx context.Context, tx database.Tx, rows []models.PartsSale, batchSize int) (int, error)
}

// BusinessLedger is the business_query write surface
type BusinessLedger interface {
	DeleteByPeriod(ctx context.Context, tx database.Tx, period string, branch *string) error
	InsertBatch(ctx context.Context, tx database.Tx, rows []models.BusinessOrder, batchSize int) (int, error)
}

// RepairIncomeStore is the repair_income write surface
type RepairIncomeStore interface {
	DeleteByPeriodBranch(ctx context.Context, tx database.Tx, period, branch string) error
	InsertBatch(ctx context.Context, tx database.Tx, rows []models.RepairIncome, batchSize int) (int, error)
}

// TechPerformanceStore is the tech_performance write surface
type TechPerformanceStore interface {
	DeleteByPeriodBranch(ctx context.Context, tx database.Tx, period, branch string) error
	InsertBatch(ctx context.Context, tx database.Tx, rows []models.TechPerformance, batchSize int) (int, error)
}

// CatalogStore upserts parts catalog entries
type CatalogStore interface {
	UpsertBatch(ctx context.Context, tx database.Tx, rows []models.PartsCatalogEntry) (int, error)
}

// History records completed loads
type History interface {
	Record(ctx context.Context, tx database.Tx, record models.UploadRecord) error
}

// Deriver runs the post-load enrichment pass
type Deriver interface {
	RepairIncome(ctx context.Context, tx database.Tx, period, branch string) (models.DeriveSummary, error)
	PartsSales(ctx context.Context, tx database.Tx, period string, branch *string) (models.DeriveSummary, error)
	TechPerformance(ctx context.Context, tx database.Tx, period, branch string) (models.DeriveSummary, error)
}

// Service coordinates dataset loads
type Service struct {
	db        database.DB
	parts     PartsLedger
	business  BusinessLedger
	repair    RepairIncomeStore
	tech      TechPerformanceStore
	catalog   CatalogStore
	history   History
	deriver   Deriver
	batchSize int
	logger    ectologger.Logger
}

func NewService(db database.DB, parts PartsLedger, business BusinessLedger,
	repair RepairIncomeStore, tech TechPerformanceStore, catalog CatalogStore,
	history History, deriver Deriver, batchSize int, logger ectologger.Logger) *Service {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Service{
		db:        db,
		parts:     parts,
		business:  business,
		repair:    repair,
		tech:      tech,
		catalog:   catalog,
		history:   history,
		deriver:   deriver,
		batchSize: batchSize,
		logger:    logger,
	}
}

// LoadPartsSales replaces one period of the parts ledger. The source export
// merges all branches, so the delete is always period-wide.
func (s *Service) LoadPartsSales(ctx context.Context, req models.IngestPartsSalesRequest) (*models.IngestResult, error) {
	ctx, span := tracing.StartSpan(ctx, "ingest.Service.LoadPartsSales")
	defer span.End()

	start := time.Now()

	ctx, tx, err := s.db.GetTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.parts.DeleteByPeriod(ctx, tx, req.Period, nil); err != nil {
		s.observeLoad(models.DatasetPartsSales, start, 0, err)
		return nil, err
	}

	count, err := s.parts.InsertBatch(ctx, tx, req.Rows, s.batchSize)
	if err != nil {
		s.observeLoad(models.DatasetPartsSales, start, 0, err)
		return nil, err
	}

	derived, err := s.deriver.PartsSales(ctx, tx, req.Period, req.Branch)
	if err != nil {
		s.observeLoad(models.DatasetPartsSales, start, 0, err)
		return nil, err
	}

	if err := s.recordLoad(ctx, tx, req.FileName, models.DatasetPartsSales, req.Branch, &req.Period, count, derived); err != nil {
		s.observeLoad(models.DatasetPartsSales, start, 0, err)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		s.observeLoad(models.DatasetPartsSales, start, 0, err)
		return nil, err
	}

	s.observeLoad(models.DatasetPartsSales, start, count, nil)
	return &models.IngestResult{
		Dataset:  models.DatasetPartsSales,
		Period:   &req.Period,
		Branch:   req.Branch,
		RowCount: count,
		Derived:  derived,
	}, nil
}

// LoadBusinessOrders replaces one period of the business ledger, narrowed to
// a branch when the caller supplies one.
func (s *Service) LoadBusinessOrders(ctx context.Context, req models.IngestBusinessOrdersRequest) (*models.IngestResult, error) {
	ctx, span := tracing.StartSpan(ctx, "ingest.Service.LoadBusinessOrders")
	defer span.End()

	start := time.Now()

	ctx, tx, err := s.db.GetTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.business.DeleteByPeriod(ctx, tx, req.Period, req.Branch); err != nil {
		s.observeLoad(models.DatasetBusinessQuery, start, 0, err)
		return nil, err
	}

	count, err := s.business.InsertBatch(ctx, tx, req.Rows, s.batchSize)
	if err != nil {
		s.observeLoad(models.DatasetBusinessQuery, start, 0, err)
		return nil, err
	}

	if err := s.recordLoad(ctx, tx, req.FileName, models.DatasetBusinessQuery, req.Branch, &req.Period, count, models.DeriveSummary{}); err != nil {
		s.observeLoad(models.DatasetBusinessQuery, start, 0, err)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		s.observeLoad(models.DatasetBusinessQuery, start, 0, err)
		return nil, err
	}

	s.observeLoad(models.DatasetBusinessQuery, start, count, nil)
	return &models.IngestResult{
		Dataset:  models.DatasetBusinessQuery,
		Period:   &req.Period,
		Branch:   req.Branch,
		RowCount: count,
	}, nil
}

// LoadRepairIncome replaces one period and branch of repair income
func (s *Service) LoadRepairIncome(ctx context.Context, req models.IngestRepairIncomeRequest) (*models.IngestResult, error) {
	ctx, span := tracing.StartSpan(ctx, "ingest.Service.LoadRepairIncome")
	defer span.End()

	start := time.Now()

	ctx, tx, err := s.db.GetTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.repair.DeleteByPeriodBranch(ctx, tx, req.Period, req.Branch); err != nil {
		s.observeLoad(models.DatasetRepairIncome, start, 0, err)
		return nil, err
	}

	count, err := s.repair.InsertBatch(ctx, tx, req.Rows, s.batchSize)
	if err != nil {
		s.observeLoad(models.DatasetRepairIncome, start, 0, err)
		return nil, err
	}

	derived, err := s.deriver.RepairIncome(ctx, tx, req.Period, req.Branch)
	if err != nil {
		s.observeLoad(models.DatasetRepairIncome, start, 0, err)
		return nil, err
	}

	if err := s.recordLoad(ctx, tx, req.FileName, models.DatasetRepairIncome, &req.Branch, &req.Period, count, derived); err != nil {
		s.observeLoad(models.DatasetRepairIncome, start, 0, err)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		s.observeLoad(models.DatasetRepairIncome, start, 0, err)
		return nil, err
	}

	s.observeLoad(models.DatasetRepairIncome, start, count, nil)
	return &models.IngestResult{
		Dataset:  models.DatasetRepairIncome,
		Period:   &req.Period,
		Branch:   &req.Branch,
		RowCount: count,
		Derived:  derived,
	}, nil
}

// LoadTechPerformance replaces one period and branch of technician work lines
func (s *Service) LoadTechPerformance(ctx context.Context, req models.IngestTechPerformanceRequest) (*models.IngestResult, error) {
	ctx, span := tracing.StartSpan(ctx, "ingest.Service.LoadTechPerformance")
	defer span.End()

	start := time.Now()

	ctx, tx, err := s.db.GetTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.tech.DeleteByPeriodBranch(ctx, tx, req.Period, req.Branch); err != nil {
		s.observeLoad(models.DatasetTechPerformance, start, 0, err)
		return nil, err
	}

	count, err := s.tech.InsertBatch(ctx, tx, req.Rows, s.batchSize)
	if err != nil {
		s.observeLoad(models.DatasetTechPerformance, start, 0, err)
		return nil, err
	}

	derived, err := s.deriver.TechPerformance(ctx, tx, req.Period, req.Branch)
	if err != nil {
		s.observeLoad(models.DatasetTechPerformance, start, 0, err)
		return nil, err
	}

	if err := s.recordLoad(ctx, tx, req.FileName, models.DatasetTechPerformance, &req.Branch, &req.Period, count, derived); err != nil {
		s.observeLoad(models.DatasetTechPerformance, start, 0, err)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		s.observeLoad(models.DatasetTechPerformance, start, 0, err)
		return nil, err
	}

	s.observeLoad(models.DatasetTechPerformance, start, count, nil)
	return &models.IngestResult{
		Dataset:  models.DatasetTechPerformance,
		Period:   &req.Period,
		Branch:   &req.Branch,
		RowCount: count,
		Derived:  derived,
	}, nil
}

// LoadPartsCatalog upserts catalog entries by part number. Nothing is
// deleted; the catalog only grows or refreshes.
func (s *Service) LoadPartsCatalog(ctx context.Context, req models.IngestPartsCatalogRequest) (*models.IngestResult, error) {
	ctx, span := tracing.StartSpan(ctx, "ingest.Service.LoadPartsCatalog")
	defer span.End()

	start := time.Now()

	ctx, tx, err := s.db.GetTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	count, err := s.catalog.UpsertBatch(ctx, tx, req.Rows)
	if err != nil {
		s.observeLoad(models.DatasetPartsCatalog, start, 0, err)
		return nil, err
	}

	if err := s.recordLoad(ctx, tx, req.FileName, models.DatasetPartsCatalog, nil, nil, count, models.DeriveSummary{}); err != nil {
		s.observeLoad(models.DatasetPartsCatalog, start, 0, err)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		s.observeLoad(models.DatasetPartsCatalog, start, 0, err)
		return nil, err
	}

	s.observeLoad(models.DatasetPartsCatalog, start, count, nil)
	return &models.IngestResult{
		Dataset:  models.DatasetPartsCatalog,
		RowCount: count,
	}, nil
}

func (s *Service) recordLoad(ctx context.Context, tx database.Tx, fileName string, dataset models.Dataset, branch, period *string, count int, derived models.DeriveSummary) error {
	return s.history.Record(ctx, tx, models.UploadRecord{
		FileName:   fileName,
		FileType:   string(dataset),
		Branch:     branch,
		Period:     period,
		RowCount:   count,
		Status:     "success",
		UploadedBy: appcontext.GetUserID(ctx),
		Details:    database.JSONB[models.DeriveSummary]{Data: derived},
	})
}

func (s *Service) observeLoad(dataset models.Dataset, start time.Time, count int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.IngestLoadsTotal.WithLabelValues(string(dataset), status).Inc()
	metrics.IngestDuration.WithLabelValues(string(dataset)).Observe(time.Since(start).Seconds())
	if count > 0 {
		metrics.IngestRowsTotal.WithLabelValues(string(dataset)).Add(float64(count))
	}
}
