package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	dbschema "github.com/feral-file/ff-13f-indexer/db"
	"github.com/feral-file/ff-13f-indexer/internal/domain"
	"github.com/feral-file/ff-13f-indexer/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// Migrate creates the holdings schema if it does not exist
func Migrate(ctx context.Context, gdb *gorm.DB) error {
	if err := gdb.WithContext(ctx).Exec(dbschema.InitPGSchema).Error; err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// If any of the pool settings are 0, defaults are used:
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps MaxIdleConns to MaxOpenConns
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// upsertHoldingQuery reports inserted=true only when no row with the natural key existed.
// xmax is zero on a freshly inserted tuple and set to the locking transaction on the update path.
const upsertHoldingQuery = `
INSERT INTO holdings (
	id, issuer_name, security_class, cusip, value_thousands, option_type,
	investment_discretion, other_managers, share_or_par_amount, share_or_par_type,
	voting_sole, voting_shared, voting_none, company_name, company_cik,
	report_date, filing_date, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, now(), now())
ON CONFLICT (issuer_name, cusip, company_cik, option_type, share_or_par_amount, report_date)
DO UPDATE SET
	security_class = EXCLUDED.security_class,
	value_thousands = EXCLUDED.value_thousands,
	investment_discretion = EXCLUDED.investment_discretion,
	other_managers = EXCLUDED.other_managers,
	share_or_par_type = EXCLUDED.share_or_par_type,
	voting_sole = EXCLUDED.voting_sole,
	voting_shared = EXCLUDED.voting_shared,
	voting_none = EXCLUDED.voting_none,
	company_name = EXCLUDED.company_name,
	filing_date = EXCLUDED.filing_date,
	updated_at = now()
RETURNING (xmax = 0) AS inserted`

func (s *pgStore) UpsertHolding(ctx context.Context, record domain.HoldingRecord) (domain.UpsertOutcome, error) {
	row := toSchema(record)

	var result struct {
		Inserted bool
	}
	err := s.db.WithContext(ctx).Raw(upsertHoldingQuery,
		row.ID, row.IssuerName, row.SecurityClass, row.CUSIP, row.ValueThousands, row.OptionType,
		row.InvestmentDiscretion, row.OtherManagers, row.ShareOrParAmount, row.ShareOrParType,
		row.VotingSole, row.VotingShared, row.VotingNone, row.CompanyName, row.CompanyCIK,
		row.ReportDate, row.FilingDate,
	).Scan(&result).Error
	if err != nil {
		return "", fmt.Errorf("%w: failed to upsert holding %s: %v", domain.ErrPersistenceUnavailable, record.Key(), err)
	}

	if result.Inserted {
		return domain.UpsertInserted, nil
	}
	return domain.UpsertOverwritten, nil
}

func (s *pgStore) FindHoldings(ctx context.Context, filter HoldingFilter) ([]domain.HoldingRecord, int64, error) {
	query := s.db.WithContext(ctx).Model(&schema.Holding{})

	if filter.ReportDate != nil {
		query = query.Where("report_date = ?", datatypes.Date(domain.TruncateToDate(*filter.ReportDate)))
	}
	if filter.CompanyCIK != "" {
		query = query.Where("company_cik = ?", filter.CompanyCIK)
	}
	if filter.FiledBefore != nil {
		query = query.Where("filing_date < ?", datatypes.Date(domain.TruncateToDate(*filter.FiledBefore)))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count holdings: %w", err)
	}

	query = query.Order("company_name ASC").Order("issuer_name ASC").Order("id ASC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []schema.Holding
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find holdings: %w", err)
	}

	records := make([]domain.HoldingRecord, len(rows))
	for i, row := range rows {
		records[i] = fromSchema(row)
	}

	return records, total, nil
}

func (s *pgStore) DeleteHoldingsFiledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("filing_date < ?", datatypes.Date(domain.TruncateToDate(cutoff))).
		Delete(&schema.Holding{})
	if result.Error != nil {
		return 0, fmt.Errorf("%w: failed to delete holdings filed before %s: %v",
			domain.ErrPersistenceUnavailable, cutoff.Format(domain.DATE_LAYOUT), result.Error)
	}
	return result.RowsAffected, nil
}

func (s *pgStore) DeleteReport(ctx context.Context, companyCIK string, reportDate, filingDate time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("company_cik = ? AND report_date = ? AND filing_date = ?",
			companyCIK,
			datatypes.Date(domain.TruncateToDate(reportDate)),
			datatypes.Date(domain.TruncateToDate(filingDate)),
		).
		Delete(&schema.Holding{})
	if result.Error != nil {
		return 0, fmt.Errorf("%w: failed to delete report: %v", domain.ErrPersistenceUnavailable, result.Error)
	}
	return result.RowsAffected, nil
}

func (s *pgStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func toSchema(r domain.HoldingRecord) schema.Holding {
	return schema.Holding{
		ID:                   uuid.New(),
		IssuerName:           r.IssuerName,
		SecurityClass:        r.SecurityClass,
		CUSIP:                r.CUSIP,
		ValueThousands:       r.ValueThousands,
		OptionType:           string(r.OptionType),
		InvestmentDiscretion: r.InvestmentDiscretion,
		OtherManagers:        r.OtherManagers,
		ShareOrParAmount:     r.ShareOrParAmount,
		ShareOrParType:       string(r.ShareOrParType),
		VotingSole:           r.VotingSole,
		VotingShared:         r.VotingShared,
		VotingNone:           r.VotingNone,
		CompanyName:          r.CompanyName,
		CompanyCIK:           r.CompanyCIK,
		ReportDate:           datatypes.Date(domain.TruncateToDate(r.ReportDate)),
		FilingDate:           datatypes.Date(domain.TruncateToDate(r.FilingDate)),
	}
}

func fromSchema(h schema.Holding) domain.HoldingRecord {
	return domain.HoldingRecord{
		Holding: domain.Holding{
			IssuerName:           h.IssuerName,
			SecurityClass:        h.SecurityClass,
			CUSIP:                h.CUSIP,
			ValueThousands:       h.ValueThousands,
			OptionType:           domain.OptionType(h.OptionType),
			InvestmentDiscretion: h.InvestmentDiscretion,
			OtherManagers:        h.OtherManagers,
			ShareOrParAmount:     h.ShareOrParAmount,
			ShareOrParType:       domain.ShareType(h.ShareOrParType),
			VotingSole:           h.VotingSole,
			VotingShared:         h.VotingShared,
			VotingNone:           h.VotingNone,
		},
		CompanyName: h.CompanyName,
		CompanyCIK:  h.CompanyCIK,
		ReportDate:  domain.TruncateToDate(time.Time(h.ReportDate)),
		FilingDate:  domain.TruncateToDate(time.Time(h.FilingDate)),
	}
}
