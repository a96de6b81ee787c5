package filing

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/feral-file/ff-13f-indexer/internal/domain"
)

// PRIMARY_DOC_MARKER identifies the cover-page XML listed next to the holdings table
const PRIMARY_DOC_MARKER = "primary_doc"

var (
	filerMarker       = regexp.MustCompile(`\s*\(Filer\)\s*$`)
	parentheticalTail = regexp.MustCompile(`\s*\(.*?\)`)
)

// Extractor pulls filer metadata and the holdings document link out of a filing landing page
//
//go:generate mockgen -source=extractor.go -destination=../mocks/extractor.go -package=mocks -mock_names=Extractor=MockExtractor
type Extractor interface {
	Extract(pageURL string, page []byte) (domain.FilingContext, error)
}

// edgarIndexExtractor reads the EDGAR filing index layout.
// Filing and report dates are taken by position: the first form grouping holds the filing date,
// the second holds the period of report.
type edgarIndexExtractor struct{}

// NewEdgarIndexExtractor creates the extractor for EDGAR filing index pages
func NewEdgarIndexExtractor() Extractor {
	return &edgarIndexExtractor{}
}

func (e *edgarIndexExtractor) Extract(pageURL string, page []byte) (domain.FilingContext, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return domain.FilingContext{}, fmt.Errorf("%w: failed to read landing page: %v", domain.ErrParseFailed, err)
	}

	name, cik, err := extractFiler(doc)
	if err != nil {
		return domain.FilingContext{}, err
	}

	groupings := doc.Find("div.formGrouping")
	if groupings.Length() < 2 {
		return domain.FilingContext{}, fmt.Errorf("%w: expected 2 form groupings, found %d", domain.ErrParseFailed, groupings.Length())
	}

	filingDate, err := groupingDate(groupings.Eq(0))
	if err != nil {
		return domain.FilingContext{}, fmt.Errorf("%w: filing date: %v", domain.ErrParseFailed, err)
	}
	reportDate, err := groupingDate(groupings.Eq(1))
	if err != nil {
		return domain.FilingContext{}, fmt.Errorf("%w: report date: %v", domain.ErrParseFailed, err)
	}

	href := holdingsLink(doc)
	if href == "" {
		return domain.FilingContext{}, domain.ErrDocumentNotFound
	}

	documentURL, err := resolve(pageURL, href)
	if err != nil {
		return domain.FilingContext{}, fmt.Errorf("%w: %v", domain.ErrParseFailed, err)
	}

	return domain.FilingContext{
		CompanyName:         name,
		CompanyCIK:          cik,
		FilingDate:          filingDate,
		ReportDate:          reportDate,
		HoldingsDocumentURL: documentURL,
	}, nil
}

// extractFiler reads "NAME (Filer)" from the leading text of span.companyName
// and the CIK from its link, dropping the "(see all company filings)" suffix
func extractFiler(doc *goquery.Document) (string, string, error) {
	span := doc.Find("span.companyName").First()
	if span.Length() == 0 {
		return "", "", fmt.Errorf("%w: company name not found", domain.ErrParseFailed)
	}

	text := span.Contents().FilterFunction(func(_ int, s *goquery.Selection) bool {
		return goquery.NodeName(s) == "#text"
	}).First().Text()
	name := collapse(filerMarker.ReplaceAllString(strings.TrimSpace(text), ""))
	if name == "" {
		return "", "", fmt.Errorf("%w: empty company name", domain.ErrParseFailed)
	}

	cik := collapse(parentheticalTail.ReplaceAllString(span.Find("a").First().Text(), ""))
	if cik == "" {
		return "", "", fmt.Errorf("%w: company CIK not found", domain.ErrParseFailed)
	}

	return name, cik, nil
}

func groupingDate(grouping *goquery.Selection) (time.Time, error) {
	info := grouping.Find("div.info").First()
	if info.Length() == 0 {
		return time.Time{}, errors.New("no info field")
	}
	return domain.ParseDate(info.Text())
}

// holdingsLink returns the last link whose URL and text both indicate XML
// and whose URL is not the primary document
func holdingsLink(doc *goquery.Document) string {
	var found string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		text := strings.ToLower(a.Text())
		if strings.Contains(strings.ToLower(href), ".xml") &&
			strings.Contains(text, "xml") &&
			!strings.Contains(href, PRIMARY_DOC_MARKER) {
			found = href
		}
	})
	return found
}

func resolve(pageURL, href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("invalid holdings link %q: %w", href, err)
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page url %q: %w", pageURL, err)
	}
	return base.ResolveReference(ref).String(), nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
