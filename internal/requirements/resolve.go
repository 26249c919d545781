package requirements

import "audittrack-engine/internal/domain"

// entry places one catalog definition on a company under a stable document id.
type entry struct {
	id        string
	key       string
	augmented bool
}

var (
	connectionPermit = entry{id: "1.1", key: keyConnectionPermit}
	dischargePermit  = entry{id: "1.1", key: keyDischargePermit}
	gsmOpinion       = entry{id: "1.1", key: keyGSMOpinion}
	records          = entry{id: "1.2", key: keyDischargeRecords}
	recordsMandatory = entry{id: "1.2", key: keyRecordsMandatory}
	waterdataGeneral = entry{id: "1.3", key: keyWaterdataGeneral}
	waterdataDetail  = entry{id: "1.4", key: keyWaterdataDetail}
	analysisDirect   = entry{id: "1.6", key: keyAnalysisDirect, augmented: true}
	analysis         = entry{id: "1.8", key: keyAnalysis, augmented: true}
	sludgeDisposal   = entry{id: "2.3", key: keySludgeDisposal}
	disposalContract = entry{id: "2.4", key: keyDisposalContract}
)

// Resolve returns the documents required for the given configuration, all
// PENDING with empty text fields, in checklist order. Unknown discharge types
// yield an empty list.
func Resolve(d domain.DischargeType, lowVolume bool) []domain.DocumentItem {
	return materialize(plan(d, lowVolume))
}

func plan(d domain.DischargeType, lowVolume bool) []entry {
	if lowVolume {
		if p, ok := lowVolumePlan(d); ok {
			return p
		}
	}
	return standardPlan(d)
}

// lowVolumePlan reports ok=false for types without a dedicated low-volume
// rule; those use the standard table.
func lowVolumePlan(d domain.DischargeType) ([]entry, bool) {
	switch d {
	case domain.IndirectPre, domain.IndirectNoPre, domain.IndirectPreNoSludge:
		return []entry{connectionPermit, recordsMandatory, analysis}, true
	case domain.ZLD:
		return []entry{connectionPermit, recordsMandatory}, true
	case domain.Direct, domain.NoDischarge:
		return nil, false
	}
	return nil, false
}

func standardPlan(d domain.DischargeType) []entry {
	switch d {
	case domain.Direct:
		return []entry{dischargePermit, records, waterdataGeneral, waterdataDetail, analysisDirect, sludgeDisposal, disposalContract}
	case domain.IndirectPre, domain.ZLD:
		return []entry{connectionPermit, records, waterdataGeneral, waterdataDetail, analysis, sludgeDisposal, disposalContract}
	case domain.IndirectNoPre, domain.IndirectPreNoSludge:
		return []entry{connectionPermit, records, waterdataGeneral, waterdataDetail, analysis}
	case domain.NoDischarge:
		return []entry{gsmOpinion}
	}
	return nil
}

func materialize(entries []entry) []domain.DocumentItem {
	out := make([]domain.DocumentItem, 0, len(entries))
	for _, e := range entries {
		def := catalog[e.key]
		desc := def.Description
		if e.augmented {
			desc += "\n" + LegalParametersNote
		}
		out = append(out, domain.DocumentItem{
			ID:          e.id,
			Title:       def.Title,
			Description: desc,
			Status:      domain.DocPending,
		})
	}
	return out
}

// Reconcile recomputes the document list for a new configuration, carrying
// over status, notes, finding and corrective action of documents whose id
// survives. Documents not in the new set are dropped. Order follows Resolve.
func Reconcile(existing []domain.DocumentItem, d domain.DischargeType, lowVolume bool) []domain.DocumentItem {
	prev := make(map[string]domain.DocumentItem, len(existing))
	for _, doc := range existing {
		prev[doc.ID] = doc
	}
	next := Resolve(d, lowVolume)
	for i, doc := range next {
		old, ok := prev[doc.ID]
		if !ok {
			continue
		}
		next[i].Status = old.Status
		next[i].Notes = old.Notes
		next[i].Finding = old.Finding
		next[i].CorrectiveAction = old.CorrectiveAction
	}
	return next
}
