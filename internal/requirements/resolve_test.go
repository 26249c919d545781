package requirements

import (
	"reflect"
	"strings"
	"testing"

	"audittrack-engine/internal/domain"
)

func ids(docs []domain.DocumentItem) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestResolveTable(t *testing.T) {
	full := []string{"1.1", "1.2", "1.3", "1.4", "1.8", "2.3", "2.4"}
	cases := []struct {
		typ  domain.DischargeType
		low  bool
		want []string
	}{
		{domain.Direct, false, []string{"1.1", "1.2", "1.3", "1.4", "1.6", "2.3", "2.4"}},
		{domain.Direct, true, []string{"1.1", "1.2", "1.3", "1.4", "1.6", "2.3", "2.4"}},
		{domain.IndirectPre, false, full},
		{domain.IndirectPre, true, []string{"1.1", "1.2", "1.8"}},
		{domain.ZLD, false, full},
		{domain.ZLD, true, []string{"1.1", "1.2"}},
		{domain.IndirectNoPre, false, []string{"1.1", "1.2", "1.3", "1.4", "1.8"}},
		{domain.IndirectNoPre, true, []string{"1.1", "1.2", "1.8"}},
		{domain.IndirectPreNoSludge, false, []string{"1.1", "1.2", "1.3", "1.4", "1.8"}},
		{domain.IndirectPreNoSludge, true, []string{"1.1", "1.2", "1.8"}},
		{domain.NoDischarge, false, []string{"1.1"}},
		{domain.NoDischarge, true, []string{"1.1"}},
	}
	if len(cases) != 2*len(domain.DischargeTypes) {
		t.Fatalf("table covers %d cases, want %d", len(cases), 2*len(domain.DischargeTypes))
	}
	for _, tc := range cases {
		got := Resolve(tc.typ, tc.low)
		if !reflect.DeepEqual(ids(got), tc.want) {
			t.Errorf("Resolve(%s, %v) = %v, want %v", tc.typ.Code(), tc.low, ids(got), tc.want)
		}
		again := Resolve(tc.typ, tc.low)
		if !reflect.DeepEqual(got, again) {
			t.Errorf("Resolve(%s, %v) is not deterministic", tc.typ.Code(), tc.low)
		}
		for _, d := range got {
			if d.Status != domain.DocPending || d.Notes != "" || d.Finding != "" || d.CorrectiveAction != "" {
				t.Errorf("Resolve(%s, %v) item %s not fresh: %+v", tc.typ.Code(), tc.low, d.ID, d)
			}
		}
	}
}

func TestEveryDischargeTypeIsMapped(t *testing.T) {
	for _, d := range domain.DischargeTypes {
		if len(standardPlan(d)) == 0 {
			t.Errorf("no standard rule for %s", d.Code())
		}
		if _, ok := lowVolumePlan(d); !ok && d != domain.Direct && d != domain.NoDischarge {
			t.Errorf("no low-volume rule for %s", d.Code())
		}
	}
	if got := Resolve(domain.DischargeType("lagoon"), false); len(got) != 0 {
		t.Errorf("unknown type resolved to %v", ids(got))
	}
}

func TestResolveVariantsAndAugmentation(t *testing.T) {
	direct := Resolve(domain.Direct, false)
	if direct[0].Title != "1.1 Atıksu Deşarj İzin Belgesi" {
		t.Errorf("direct 1.1 title = %q", direct[0].Title)
	}
	gsm := Resolve(domain.NoDischarge, false)
	if gsm[0].Title != "1.1 GSMR Görüşü" {
		t.Errorf("no-discharge 1.1 title = %q", gsm[0].Title)
	}
	low := Resolve(domain.ZLD, true)
	if !strings.Contains(low[1].Description, "Zorunlu") {
		t.Errorf("low-volume 1.2 should be mandatory variant, got %q", low[1].Description)
	}
	std := Resolve(domain.ZLD, false)
	if !strings.Contains(std[1].Description, "Opsiyonel") {
		t.Errorf("standard 1.2 should be optional variant, got %q", std[1].Description)
	}

	wantSuffix := "\n" + LegalParametersNote
	for _, typ := range domain.DischargeTypes {
		for _, lowVol := range []bool{false, true} {
			for _, d := range Resolve(typ, lowVol) {
				augmented := strings.HasSuffix(d.Description, wantSuffix)
				isReport := d.ID == "1.6" || d.ID == "1.8"
				if augmented != isReport {
					t.Errorf("%s/%v doc %s augmented=%v", typ.Code(), lowVol, d.ID, augmented)
				}
			}
		}
	}
}

func TestReconcilePreservesOverlappingDocuments(t *testing.T) {
	existing := Resolve(domain.IndirectPre, false)
	existing[0].Status = domain.DocIssue
	existing[0].Finding = "X"
	existing[0].Notes = "eksik imza"
	existing[5].Status = domain.DocReceived // 2.3, absent after switch

	got := Reconcile(existing, domain.IndirectNoPre, true)
	if !reflect.DeepEqual(ids(got), []string{"1.1", "1.2", "1.8"}) {
		t.Fatalf("ids = %v", ids(got))
	}
	if got[0].Status != domain.DocIssue || got[0].Finding != "X" || got[0].Notes != "eksik imza" {
		t.Errorf("1.1 not preserved: %+v", got[0])
	}
	if !strings.Contains(got[1].Description, "Zorunlu") {
		t.Errorf("1.2 should take the new description, got %q", got[1].Description)
	}
	for _, d := range got {
		if d.ID == "2.3" {
			t.Error("2.3 should be dropped")
		}
	}
}

func TestReconcileNewDocumentsStartPending(t *testing.T) {
	existing := Resolve(domain.NoDischarge, false)
	existing[0].Status = domain.DocReceived
	existing[0].CorrectiveAction = "tamam"

	got := Reconcile(existing, domain.Direct, false)
	if got[0].ID != "1.1" || got[0].Status != domain.DocReceived || got[0].CorrectiveAction != "tamam" {
		t.Errorf("1.1 not carried over: %+v", got[0])
	}
	for _, d := range got[1:] {
		if d.Status != domain.DocPending || d.Notes != "" || d.Finding != "" || d.CorrectiveAction != "" {
			t.Errorf("new doc %s not fresh: %+v", d.ID, d)
		}
	}
}

func TestCatalogLookup(t *testing.T) {
	if _, ok := Lookup("EXTRA_PARAMS"); !ok {
		t.Error("EXTRA_PARAMS missing from catalog")
	}
	if len(Catalog()) != len(catalog) {
		t.Error("Catalog() incomplete")
	}
}
