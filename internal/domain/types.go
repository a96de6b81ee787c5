package domain

import (
	"fmt"
	"strings"
	"time"
)

// OptionType represents the put/call marker of a holding
type OptionType string

const (
	OptionNone OptionType = ""
	OptionPut  OptionType = "PUT"
	OptionCall OptionType = "CALL"
)

// ParseOptionType normalizes the putCall text of a holdings document.
// An empty value means the holding is not an option.
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NONE":
		return OptionNone, nil
	case "PUT":
		return OptionPut, nil
	case "CALL":
		return OptionCall, nil
	default:
		return OptionNone, fmt.Errorf("%w: unknown option type %q", ErrMalformedRecord, s)
	}
}

// String returns the option type, using "NONE" for non-option holdings
func (o OptionType) String() string {
	if o == OptionNone {
		return "NONE"
	}
	return string(o)
}

// ShareType represents whether an amount is a share count or a principal amount
type ShareType string

const (
	ShareTypeShares    ShareType = "SH"
	ShareTypePrincipal ShareType = "PRN"
)

// ParseShareType normalizes the sshPrnamtType text of a holdings document
func ParseShareType(s string) (ShareType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SH":
		return ShareTypeShares, nil
	case "PRN":
		return ShareTypePrincipal, nil
	default:
		return "", fmt.Errorf("%w: unknown share type %q", ErrMalformedRecord, s)
	}
}

// DATE_LAYOUT is the layout of every date exchanged with the feed, the store and the staging artifact
const DATE_LAYOUT = "2006-01-02"

// ParseDate parses a calendar date and returns it as midnight UTC
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DATE_LAYOUT, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t.UTC(), nil
}

// TruncateToDate drops the clock part of t in UTC
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FilingReference is one entry of the filing-index feed
type FilingReference struct {
	Link         string    // landing page of the filing
	Title        string    // entry title as published by the feed
	DiscoveredAt time.Time // when the pager saw the entry
}

// FilingContext is the filer metadata extracted from a filing landing page
type FilingContext struct {
	CompanyName         string
	CompanyCIK          string
	FilingDate          time.Time
	ReportDate          time.Time
	HoldingsDocumentURL string
}

// Holding is one parsed entry of a holdings table, before filer metadata is attached
type Holding struct {
	IssuerName           string
	SecurityClass        string
	CUSIP                string // passed through unvalidated
	ValueThousands       int64
	OptionType           OptionType
	InvestmentDiscretion string
	OtherManagers        string
	ShareOrParAmount     int64
	ShareOrParType       ShareType
	VotingSole           int64
	VotingShared         int64
	VotingNone           int64
}

// HoldingRecord is the persisted unit: a holding plus the filer and dates it came from
type HoldingRecord struct {
	Holding
	CompanyName string
	CompanyCIK  string
	ReportDate  time.Time
	FilingDate  time.Time
}

// NewHoldingRecord attaches filer metadata to a parsed holding
func NewHoldingRecord(h Holding, fc FilingContext) HoldingRecord {
	return HoldingRecord{
		Holding:     h,
		CompanyName: fc.CompanyName,
		CompanyCIK:  fc.CompanyCIK,
		ReportDate:  TruncateToDate(fc.ReportDate),
		FilingDate:  TruncateToDate(fc.FilingDate),
	}
}

// NaturalKey identifies a holding record in lieu of an upstream record ID.
// Two holdings differing only in share amount are distinct records.
type NaturalKey struct {
	IssuerName       string
	CUSIP            string
	CompanyCIK       string
	OptionType       OptionType
	ShareOrParAmount int64
	ReportDate       string // DATE_LAYOUT
}

// Key returns the natural key of the record
func (r HoldingRecord) Key() NaturalKey {
	return NaturalKey{
		IssuerName:       r.IssuerName,
		CUSIP:            r.CUSIP,
		CompanyCIK:       r.CompanyCIK,
		OptionType:       r.OptionType,
		ShareOrParAmount: r.ShareOrParAmount,
		ReportDate:       r.ReportDate.UTC().Format(DATE_LAYOUT),
	}
}

// String renders the key for logs and hashing
func (k NaturalKey) String() string {
	return fmt.Sprintf("%s|%s|%s|%s|%d|%s",
		k.IssuerName, k.CUSIP, k.CompanyCIK, k.OptionType.String(), k.ShareOrParAmount, k.ReportDate)
}

// UpsertOutcome reports whether an upsert created or replaced a record
type UpsertOutcome string

const (
	UpsertInserted    UpsertOutcome = "inserted"
	UpsertOverwritten UpsertOutcome = "overwritten"
)
