package holdings

import "encoding/xml"

// INFORMATION_TABLE_NAMESPACE is the namespace of the 13F holdings table.
// Elements are matched by local name so prefixed and default-namespace documents decode the same.
const INFORMATION_TABLE_NAMESPACE = "http://www.sec.gov/edgar/document/thirteenf/informationtable"

type informationTable struct {
	XMLName xml.Name    `xml:"informationTable"`
	Entries []infoTable `xml:"infoTable"`
}

type infoTable struct {
	NameOfIssuer         string          `xml:"nameOfIssuer"`
	TitleOfClass         string          `xml:"titleOfClass"`
	CUSIP                string          `xml:"cusip"`
	Value                string          `xml:"value"`
	ShrsOrPrnAmt         shrsOrPrnAmt    `xml:"shrsOrPrnAmt"`
	PutCall              string          `xml:"putCall"`
	InvestmentDiscretion string          `xml:"investmentDiscretion"`
	OtherManager         string          `xml:"otherManager"`
	VotingAuthority      votingAuthority `xml:"votingAuthority"`
}

type shrsOrPrnAmt struct {
	SshPrnamt     string `xml:"sshPrnamt"`
	SshPrnamtType string `xml:"sshPrnamtType"`
}

type votingAuthority struct {
	Sole   string `xml:"Sole"`
	Shared string `xml:"Shared"`
	None   string `xml:"None"`
}

// table is the shape of the entry list as found in the document
type table interface {
	entries() []infoTable
}

type oneEntry struct{ entry infoTable }

type manyEntries struct{ list []infoTable }

func (o oneEntry) entries() []infoTable { return []infoTable{o.entry} }

func (m manyEntries) entries() []infoTable { return m.list }
