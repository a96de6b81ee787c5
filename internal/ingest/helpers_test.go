package ingest_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/feral-file/ff-13f-indexer/internal/domain"
	"github.com/feral-file/ff-13f-indexer/internal/store"
)

// memStore is an in-memory store.Store keyed by natural key
type memStore struct {
	mu       sync.Mutex
	records  map[domain.NaturalKey]domain.HoldingRecord
	inFlight map[domain.NaturalKey]int
	failOn   func(domain.HoldingRecord) error
	overlap  bool // set when the same key was written concurrently
	delay    time.Duration
	upserts  int
}

func newMemStore() *memStore {
	return &memStore{
		records:  make(map[domain.NaturalKey]domain.HoldingRecord),
		inFlight: make(map[domain.NaturalKey]int),
	}
}

func (m *memStore) UpsertHolding(ctx context.Context, r domain.HoldingRecord) (domain.UpsertOutcome, error) {
	key := r.Key()

	m.mu.Lock()
	m.inFlight[key]++
	if m.inFlight[key] > 1 {
		m.overlap = true
	}
	m.mu.Unlock()

	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight[key]--

	if m.failOn != nil {
		if err := m.failOn(r); err != nil {
			return "", err
		}
	}

	m.upserts++
	_, exists := m.records[key]
	m.records[key] = r
	if exists {
		return domain.UpsertOverwritten, nil
	}
	return domain.UpsertInserted, nil
}

func (m *memStore) FindHoldings(ctx context.Context, filter store.HoldingFilter) ([]domain.HoldingRecord, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.HoldingRecord
	for _, r := range m.records {
		if filter.ReportDate != nil && !r.ReportDate.Equal(*filter.ReportDate) {
			continue
		}
		if filter.CompanyCIK != "" && r.CompanyCIK != filter.CompanyCIK {
			continue
		}
		if filter.FiledBefore != nil && !r.FilingDate.Before(*filter.FiledBefore) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompanyName != out[j].CompanyName {
			return out[i].CompanyName < out[j].CompanyName
		}
		return out[i].IssuerName < out[j].IssuerName
	})
	return out, int64(len(out)), nil
}

func (m *memStore) DeleteHoldingsFiledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for k, r := range m.records {
		if r.FilingDate.Before(cutoff) {
			delete(m.records, k)
			n++
		}
	}
	return n, nil
}

func (m *memStore) DeleteReport(ctx context.Context, cik string, reportDate, filingDate time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for k, r := range m.records {
		if r.CompanyCIK == cik && r.ReportDate.Equal(reportDate) && r.FilingDate.Equal(filingDate) {
			delete(m.records, k)
			n++
		}
	}
	return n, nil
}

func (m *memStore) Ping(ctx context.Context) error { return nil }

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// edgar serves a synthetic EDGAR: a paginated Atom feed of n filings whose
// landing pages and information tables are generated from the filing number
type edgar struct {
	filings  int
	pageSize int
	failing  map[int]bool // landing pages that cannot be fetched
}

const edgarHost = "https://www.sec.gov"

func (e *edgar) landingURL(i int) string {
	return fmt.Sprintf("%s/Archives/edgar/data/%d/0000%d-26-000001-index.htm", edgarHost, 1000+i, 1000+i)
}

// holdingsOf returns how many entries the information table of filing i has
func (e *edgar) holdingsOf(i int) int {
	return i%3 + 1
}

func (e *edgar) feedPage(start, count int) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="ISO-8859-1" ?>
<feed xmlns="http://www.w3.org/2005/Atom"><title>Latest Filings</title><updated>2026-10-13T16:00:00-04:00</updated>
`)
	for i := start; i < start+count && i < e.filings; i++ {
		fmt.Fprintf(&b, `<entry><title>13F-HR - FILER %d</title><link rel="alternate" type="text/html" href="%s"/><id>urn:%d</id><updated>2026-10-13T16:00:00-04:00</updated></entry>
`, i, e.landingURL(i), i)
	}
	b.WriteString(`</feed>`)
	return []byte(b.String())
}

func (e *edgar) landingPage(i int) []byte {
	return []byte(fmt.Sprintf(`<html><body>
<div class="formGrouping"><div class="infoHead">Filing Date</div><div class="info">2026-10-13</div></div>
<div class="formGrouping"><div class="infoHead">Period of Report</div><div class="info">2026-09-30</div></div>
<table class="tableFile">
<tr><td><a href="/Archives/edgar/data/%d/primary_doc.xml">primary_doc.xml</a></td></tr>
<tr><td><a href="/Archives/edgar/data/%d/infotable.xml">infotable.xml</a></td></tr>
</table>
<div class="companyInfo"><span class="companyName">FILER %d LLC (Filer)
 <acronym title="Central Index Key">CIK</acronym>: <a href="/cgi-bin/browse-edgar?CIK=%010d">%010d (see all company filings)</a></span></div>
</body></html>`, 1000+i, 1000+i, i, 1000+i, 1000+i))
}

func (e *edgar) infoTable(i int) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<informationTable xmlns="http://www.sec.gov/edgar/document/thirteenf/informationtable">`)
	for j := 0; j < e.holdingsOf(i); j++ {
		fmt.Fprintf(&b, `<infoTable><nameOfIssuer>ISSUER %d</nameOfIssuer><titleOfClass>COM</titleOfClass><cusip>%09d</cusip><value>%d</value>
<shrsOrPrnAmt><sshPrnamt>%d</sshPrnamt><sshPrnamtType>SH</sshPrnamtType></shrsOrPrnAmt><investmentDiscretion>SOLE</investmentDiscretion>
<votingAuthority><Sole>1</Sole><Shared>2</Shared><None>3</None></votingAuthority></infoTable>`, j, j, 10*(j+1), 100*(j+1))
	}
	b.WriteString(`</informationTable>`)
	return []byte(b.String())
}

// serve answers a GET for rawURL
func (e *edgar) serve(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.Contains(rawURL, "browse-edgar") {
		var start, count int
		for _, kv := range strings.Split(rawURL[strings.Index(rawURL, "?")+1:], "&") {
			if v, ok := strings.CutPrefix(kv, "start="); ok {
				_, _ = fmt.Sscanf(v, "%d", &start)
			}
			if v, ok := strings.CutPrefix(kv, "count="); ok {
				_, _ = fmt.Sscanf(v, "%d", &count)
			}
		}
		return e.feedPage(start, count), nil
	}

	var n int
	if _, err := fmt.Sscanf(rawURL, edgarHost+"/Archives/edgar/data/%d/", &n); err != nil {
		return nil, fmt.Errorf("unexpected status code 404: %s", rawURL)
	}
	i := n - 1000

	switch {
	case strings.HasSuffix(rawURL, "-index.htm"):
		if e.failing[i] {
			return nil, fmt.Errorf("request failed after retries: retryable status code 503")
		}
		return e.landingPage(i), nil
	case strings.HasSuffix(rawURL, "/infotable.xml"):
		return e.infoTable(i), nil
	default:
		return nil, fmt.Errorf("unexpected status code 404: %s", rawURL)
	}
}
