package dto

import "github.com/feral-file/ff-13f-indexer/internal/domain"

// HoldingResponse represents one holding of a filer's report
type HoldingResponse struct {
	IssuerName           string `json:"issuer_name"`
	SecurityClass        string `json:"security_class"`
	CUSIP                string `json:"cusip"`
	ValueThousands       int64  `json:"value_thousands"`
	OptionType           string `json:"option_type"`
	InvestmentDiscretion string `json:"investment_discretion"`
	OtherManagers        string `json:"other_managers"`
	ShareOrParAmount     int64  `json:"share_or_par_amount"`
	ShareOrParType       string `json:"share_or_par_type"`
	VotingSole           int64  `json:"voting_sole"`
	VotingShared         int64  `json:"voting_shared"`
	VotingNone           int64  `json:"voting_none"`
	CompanyName          string `json:"company_name"`
	CompanyCIK           string `json:"company_cik"`
	ReportDate           string `json:"report_date"`
	FilingDate           string `json:"filing_date"`
}

// HoldingListResponse represents a page of holdings
type HoldingListResponse struct {
	Holdings   []HoldingResponse `json:"holdings"`
	Total      int64             `json:"total"`
	Offset     int               `json:"offset"`
	NextOffset *int              `json:"next_offset,omitempty"` // nil on the last page
}

// MapHoldingToDTO maps a domain record to its response
func MapHoldingToDTO(r domain.HoldingRecord) HoldingResponse {
	return HoldingResponse{
		IssuerName:           r.IssuerName,
		SecurityClass:        r.SecurityClass,
		CUSIP:                r.CUSIP,
		ValueThousands:       r.ValueThousands,
		OptionType:           r.OptionType.String(),
		InvestmentDiscretion: r.InvestmentDiscretion,
		OtherManagers:        r.OtherManagers,
		ShareOrParAmount:     r.ShareOrParAmount,
		ShareOrParType:       string(r.ShareOrParType),
		VotingSole:           r.VotingSole,
		VotingShared:         r.VotingShared,
		VotingNone:           r.VotingNone,
		CompanyName:          r.CompanyName,
		CompanyCIK:           r.CompanyCIK,
		ReportDate:           r.ReportDate.Format(domain.DATE_LAYOUT),
		FilingDate:           r.FilingDate.Format(domain.DATE_LAYOUT),
	}
}

// MapHoldingsToDTO maps a page of records, with next_offset set when more remain
func MapHoldingsToDTO(records []domain.HoldingRecord, total int64, offset int) HoldingListResponse {
	resp := HoldingListResponse{
		Holdings: make([]HoldingResponse, 0, len(records)),
		Total:    total,
		Offset:   offset,
	}
	for _, r := range records {
		resp.Holdings = append(resp.Holdings, MapHoldingToDTO(r))
	}

	if next := offset + len(records); len(records) > 0 && int64(next) < total {
		resp.NextOffset = &next
	}
	return resp
}
