package schema

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Holding represents the holdings table - one line item of a 13F information table
// together with the filer and dates it was reported with
type Holding struct {
	// ID is a surrogate key; identity is the natural key below
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid"`

	IssuerName           string `gorm:"column:issuer_name;not null;type:text;uniqueIndex:idx_holdings_natural_key,priority:1"`
	SecurityClass        string `gorm:"column:security_class;not null;type:text"`
	CUSIP                string `gorm:"column:cusip;not null;type:text;uniqueIndex:idx_holdings_natural_key,priority:2"`
	ValueThousands       int64  `gorm:"column:value_thousands;not null"`
	OptionType           string `gorm:"column:option_type;not null;type:text;uniqueIndex:idx_holdings_natural_key,priority:4"`
	InvestmentDiscretion string `gorm:"column:investment_discretion;not null;type:text"`
	OtherManagers        string `gorm:"column:other_managers;not null;type:text"`
	ShareOrParAmount     int64  `gorm:"column:share_or_par_amount;not null;uniqueIndex:idx_holdings_natural_key,priority:5"`
	ShareOrParType       string `gorm:"column:share_or_par_type;not null;type:text"`
	VotingSole           int64  `gorm:"column:voting_sole;not null"`
	VotingShared         int64  `gorm:"column:voting_shared;not null"`
	VotingNone           int64  `gorm:"column:voting_none;not null"`

	// CompanyName and CompanyCIK identify the filer, not the issuer
	CompanyName string `gorm:"column:company_name;not null;type:text"`
	CompanyCIK  string `gorm:"column:company_cik;not null;type:text;uniqueIndex:idx_holdings_natural_key,priority:3"`

	ReportDate datatypes.Date `gorm:"column:report_date;not null;uniqueIndex:idx_holdings_natural_key,priority:6"`
	FilingDate datatypes.Date `gorm:"column:filing_date;not null;index:idx_holdings_filing_date"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Holding model
func (Holding) TableName() string {
	return "holdings"
}
