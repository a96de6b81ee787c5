package holdings

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/html/charset"

	"github.com/feral-file/ff-13f-indexer/internal/domain"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// MalformedEntry records a holding entry that was skipped
type MalformedEntry struct {
	Index int // position of the entry in the document
	Err   error
}

// Result is the outcome of parsing one holdings document.
// Malformed entries are skipped and reported; the rest of the document is kept.
type Result struct {
	Holdings  []domain.Holding
	Malformed []MalformedEntry
}

// Parser parses holdings table documents
//
//go:generate mockgen -source=parser.go -destination=../mocks/parser.go -package=mocks -mock_names=Parser=MockParser
type Parser interface {
	Parse(data []byte) (Result, error)
}

type parser struct{}

// NewParser creates a new holdings table parser
func NewParser() Parser {
	return &parser{}
}

func (p *parser) Parse(data []byte) (Result, error) {
	if !isXML(data) {
		return Result{}, fmt.Errorf("%w: holdings document is %s, not XML", domain.ErrParseFailed, mimetype.Detect(data).String())
	}

	t, err := decodeTable(data)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", domain.ErrParseFailed, err)
	}

	var result Result
	for i, entry := range t.entries() {
		h, err := normalize(entry)
		if err != nil {
			result.Malformed = append(result.Malformed, MalformedEntry{Index: i, Err: err})
			continue
		}
		result.Holdings = append(result.Holdings, h)
	}

	return result, nil
}

func isXML(data []byte) bool {
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/xml") {
			return true
		}
	}
	// documents without an XML declaration sniff as plain text
	return detected.Is("text/plain") && bytes.HasPrefix(bytes.TrimSpace(data), []byte("<"))
}

func decodeTable(data []byte) (table, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	var doc informationTable
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, fmt.Errorf("failed to decode information table: %w", err)
	}

	if doc.XMLName.Space != "" && doc.XMLName.Space != INFORMATION_TABLE_NAMESPACE {
		return nil, fmt.Errorf("unexpected namespace %q", doc.XMLName.Space)
	}

	if len(doc.Entries) == 1 {
		return oneEntry{entry: doc.Entries[0]}, nil
	}
	return manyEntries{list: doc.Entries}, nil
}

func normalize(e infoTable) (domain.Holding, error) {
	var err error
	h := domain.Holding{
		IssuerName:           clean(e.NameOfIssuer),
		SecurityClass:        clean(e.TitleOfClass),
		CUSIP:                clean(e.CUSIP),
		InvestmentDiscretion: clean(e.InvestmentDiscretion),
		OtherManagers:        clean(e.OtherManager),
	}

	if h.OptionType, err = domain.ParseOptionType(clean(e.PutCall)); err != nil {
		return domain.Holding{}, err
	}
	if h.ShareOrParType, err = domain.ParseShareType(e.ShrsOrPrnAmt.SshPrnamtType); err != nil {
		return domain.Holding{}, err
	}
	if h.ValueThousands, err = parseAmount("value", e.Value); err != nil {
		return domain.Holding{}, err
	}
	if h.ShareOrParAmount, err = parseAmount("sshPrnamt", e.ShrsOrPrnAmt.SshPrnamt); err != nil {
		return domain.Holding{}, err
	}
	if h.VotingSole, err = parseAmount("Sole", e.VotingAuthority.Sole); err != nil {
		return domain.Holding{}, err
	}
	if h.VotingShared, err = parseAmount("Shared", e.VotingAuthority.Shared); err != nil {
		return domain.Holding{}, err
	}
	if h.VotingNone, err = parseAmount("None", e.VotingAuthority.None); err != nil {
		return domain.Holding{}, err
	}

	if h.IssuerName == "" {
		return domain.Holding{}, fmt.Errorf("%w: missing nameOfIssuer", domain.ErrMalformedRecord)
	}

	return h, nil
}

func parseAmount(field, s string) (int64, error) {
	s = strings.ReplaceAll(clean(s), ",", "")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", domain.ErrMalformedRecord, field, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %s is negative", domain.ErrMalformedRecord, field)
	}
	return n, nil
}

// clean collapses whitespace and newline runs to a single space
func clean(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}
