package domain

import (
	"fmt"
	"strings"
)

// DischargeType is how a facility releases its wastewater. Values are the
// strings persisted in company records.
type DischargeType string

const (
	Direct              DischargeType = "Direct Discharge"
	IndirectPre         DischargeType = "Indirect with Pre-treatment"
	ZLD                 DischargeType = "Zero Liquid Discharge (ZLD)"
	IndirectNoPre       DischargeType = "Indirect without Pre-treatment"
	IndirectPreNoSludge DischargeType = "Indirect with Pre-treatment without Sludge"
	NoDischarge         DischargeType = "No discharge"
)

// DischargeTypes lists every variant in display order.
var DischargeTypes = []DischargeType{
	Direct,
	IndirectPre,
	ZLD,
	IndirectNoPre,
	IndirectPreNoSludge,
	NoDischarge,
}

var dischargeCodes = map[DischargeType]string{
	Direct:              "DIRECT",
	IndirectPre:         "INDIRECT_PRE",
	ZLD:                 "ZLD",
	IndirectNoPre:       "INDIRECT_NO_PRE",
	IndirectPreNoSludge: "INDIRECT_PRE_NO_SLUDGE",
	NoDischarge:         "NO_DISCHARGE",
}

// Code returns the short upper-case identifier, e.g. "INDIRECT_PRE".
func (d DischargeType) Code() string { return dischargeCodes[d] }

func (d DischargeType) Valid() bool {
	_, ok := dischargeCodes[d]
	return ok
}

// ParseDischargeType accepts either the short code or the persisted value,
// case-insensitively.
func ParseDischargeType(s string) (DischargeType, error) {
	s = strings.TrimSpace(s)
	for d, code := range dischargeCodes {
		if strings.EqualFold(s, code) || strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown discharge type %q", s)
}

// DocStatus is the state of one required document.
type DocStatus string

const (
	DocPending  DocStatus = "PENDING"
	DocReceived DocStatus = "RECEIVED"
	DocIssue    DocStatus = "ISSUE"
	DocNA       DocStatus = "NA"
)

var DocStatuses = []DocStatus{DocPending, DocReceived, DocIssue, DocNA}

var docStatusLabels = map[DocStatus]string{
	DocPending:  "Bekliyor",
	DocReceived: "Tamamlandı",
	DocIssue:    "Eksik/Hatalı",
	DocNA:       "Muaf / Yok",
}

func (s DocStatus) Label() string { return docStatusLabels[s] }

func (s DocStatus) Valid() bool {
	_, ok := docStatusLabels[s]
	return ok
}

// Satisfied reports whether the document counts toward completion.
func (s DocStatus) Satisfied() bool { return s == DocReceived || s == DocNA }

// Outstanding reports whether the document still has to be chased.
func (s DocStatus) Outstanding() bool { return s == DocPending || s == DocIssue }

func ParseDocStatus(s string) (DocStatus, error) {
	st := DocStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown document status %q", s)
	}
	return st, nil
}

// CompanyStatus is the company-level audit lifecycle state.
type CompanyStatus string

const (
	StatusNoDocs        CompanyStatus = "NO_DOCS"
	StatusMissingShared CompanyStatus = "MISSING_SHARED"
	StatusReadyToClose  CompanyStatus = "READY_TO_CLOSE"
	StatusClosed        CompanyStatus = "CLOSED"
)

var CompanyStatuses = []CompanyStatus{StatusNoDocs, StatusMissingShared, StatusReadyToClose, StatusClosed}

var companyStatusLabels = map[CompanyStatus]string{
	StatusNoDocs:        "Hiç Evrak İletilmedi",
	StatusMissingShared: "Eksik Evrak Paylaşıldı",
	StatusReadyToClose:  "Kapatılmaya Hazır",
	StatusClosed:        "Denetim Kapatıldı",
}

func (s CompanyStatus) Label() string { return companyStatusLabels[s] }

func (s CompanyStatus) Valid() bool {
	_, ok := companyStatusLabels[s]
	return ok
}

func ParseCompanyStatus(s string) (CompanyStatus, error) {
	st := CompanyStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown audit status %q", s)
	}
	return st, nil
}
