package staging

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/feral-file/ff-13f-indexer/internal/domain"
)

const (
	// DELIMITER separates staging columns; commas and semicolons are common in issuer names
	DELIMITER = '^'
	// ARTIFACT_EXT is the extension of staging artifacts
	ARTIFACT_EXT = ".csv"
	// ARTIFACT_DATE_LAYOUT names one artifact per day
	ARTIFACT_DATE_LAYOUT = "20060102"
)

// Columns is the header row of a staging artifact
var Columns = []string{
	"nameOfIssuer",
	"titleOfClass",
	"cusip",
	"value",
	"putCall",
	"investmentDiscretion",
	"otherManager",
	"sshPrnamt",
	"sshPrnamtType",
	"votingSole",
	"votingShared",
	"votingNone",
	"companyName",
	"companyCIK",
	"reportDate",
	"filingDate",
}

// ArtifactPath returns the artifact of the day of t inside dir
func ArtifactPath(dir string, t time.Time) string {
	return filepath.Join(dir, t.UTC().Format(ARTIFACT_DATE_LAYOUT)+ARTIFACT_EXT)
}

func toRow(r domain.HoldingRecord) []string {
	opt := ""
	if r.OptionType != domain.OptionNone {
		opt = string(r.OptionType)
	}

	return []string{
		r.IssuerName,
		r.SecurityClass,
		r.CUSIP,
		strconv.FormatInt(r.ValueThousands, 10),
		opt,
		r.InvestmentDiscretion,
		r.OtherManagers,
		strconv.FormatInt(r.ShareOrParAmount, 10),
		string(r.ShareOrParType),
		strconv.FormatInt(r.VotingSole, 10),
		strconv.FormatInt(r.VotingShared, 10),
		strconv.FormatInt(r.VotingNone, 10),
		r.CompanyName,
		r.CompanyCIK,
		r.ReportDate.UTC().Format(domain.DATE_LAYOUT),
		r.FilingDate.UTC().Format(domain.DATE_LAYOUT),
	}
}

// fromRow rebuilds a record from a row, with index mapping column names to positions
func fromRow(index map[string]int, row []string) (domain.HoldingRecord, error) {
	get := func(col string) string {
		return row[index[col]]
	}
	num := func(col string) (int64, error) {
		n, err := strconv.ParseInt(get(col), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s %q", domain.ErrMalformedRecord, col, get(col))
		}
		return n, nil
	}

	var (
		r   domain.HoldingRecord
		err error
	)
	r.IssuerName = get("nameOfIssuer")
	r.SecurityClass = get("titleOfClass")
	r.CUSIP = get("cusip")
	r.InvestmentDiscretion = get("investmentDiscretion")
	r.OtherManagers = get("otherManager")
	r.CompanyName = get("companyName")
	r.CompanyCIK = get("companyCIK")

	if r.OptionType, err = domain.ParseOptionType(get("putCall")); err != nil {
		return r, err
	}
	if r.ShareOrParType, err = domain.ParseShareType(get("sshPrnamtType")); err != nil {
		return r, err
	}
	if r.ValueThousands, err = num("value"); err != nil {
		return r, err
	}
	if r.ShareOrParAmount, err = num("sshPrnamt"); err != nil {
		return r, err
	}
	if r.VotingSole, err = num("votingSole"); err != nil {
		return r, err
	}
	if r.VotingShared, err = num("votingShared"); err != nil {
		return r, err
	}
	if r.VotingNone, err = num("votingNone"); err != nil {
		return r, err
	}
	if r.ReportDate, err = domain.ParseDate(get("reportDate")); err != nil {
		return r, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}
	if r.FilingDate, err = domain.ParseDate(get("filingDate")); err != nil {
		return r, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}

	return r, nil
}
