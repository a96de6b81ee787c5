package rest

import (
	"fmt"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-13f-indexer/internal/domain"
	"github.com/feral-file/ff-13f-indexer/internal/store"
)

const MAX_PAGE_SIZE = 1000

var cikPattern = regexp.MustCompile(`^\d{1,10}$`)

// ListHoldingsQueryParams holds query parameters for GET /holdings
type ListHoldingsQueryParams struct {
	// Filters
	ReportDate string `form:"report_date"`
	CompanyCIK string `form:"company_cik"`

	// Pagination
	Limit  int `form:"limit,default=100"`
	Offset int `form:"offset,default=0"`

	reportDate time.Time
}

// ParseListHoldingsQuery parses query parameters for GET /holdings
func ParseListHoldingsQuery(c *gin.Context) (*ListHoldingsQueryParams, error) {
	var params ListHoldingsQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	// Cap limits
	if params.Limit > MAX_PAGE_SIZE {
		params.Limit = MAX_PAGE_SIZE
	}

	return &params, nil
}

// Validate validates the query parameters and parses the report date
func (p *ListHoldingsQueryParams) Validate() error {
	if p.ReportDate == "" {
		return fmt.Errorf("report_date is required")
	}
	reportDate, err := domain.ParseDate(p.ReportDate)
	if err != nil {
		return fmt.Errorf("report_date must be formatted as YYYY-MM-DD")
	}
	p.reportDate = reportDate

	if p.CompanyCIK != "" && !cikPattern.MatchString(p.CompanyCIK) {
		return fmt.Errorf("company_cik must be numeric")
	}
	if p.Limit < 1 {
		return fmt.Errorf("limit must be at least 1")
	}
	if p.Offset < 0 {
		return fmt.Errorf("offset must not be negative")
	}

	return nil
}

// Filter converts validated parameters to a store filter
func (p *ListHoldingsQueryParams) Filter() store.HoldingFilter {
	reportDate := p.reportDate
	return store.HoldingFilter{
		ReportDate: &reportDate,
		CompanyCIK: p.CompanyCIK,
		Limit:      p.Limit,
		Offset:     p.Offset,
	}
}
