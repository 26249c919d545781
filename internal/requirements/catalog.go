// Package requirements decides which compliance documents a facility must
// provide for its discharge type and volume class.
package requirements

import "sort"

// Definition is an immutable catalog entry. Key identifies the entry in the
// catalog; several document ids may be rendered from variants of one title.
type Definition struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// LegalParametersNote is appended to periodic analysis report descriptions.
const LegalParametersNote = "(Yasal olarak zorunlu olmasına rağmen test ettirmediğiniz parametreler varsa beyan mektubu eklenmelidir)."

const (
	keyConnectionPermit = "1.1"
	keyDischargePermit  = "1.1_DIRECT"
	keyGSMOpinion       = "1.1_GSM"
	keyDischargeRecords = "1.2"
	keyRecordsMandatory = "1.2_MANDATORY"
	keyWaterdataGeneral = "1.3"
	keyWaterdataDetail  = "1.4"
	keyAnalysisDirect   = "1.6"
	keyAnalysis         = "1.8"
	keySludgeDisposal   = "2.3"
	keyDisposalContract = "2.4"
	keyExtraParams      = "EXTRA_PARAMS"
)

var catalog = map[string]Definition{
	keyConnectionPermit: {
		Key:         keyConnectionPermit,
		Title:       "1.1 Atıksu Bağlantı İzin Belgesi",
		Description: "İlgili kurumdan alınmış geçerli bağlantı izni.",
	},
	keyDischargePermit: {
		Key:         keyDischargePermit,
		Title:       "1.1 Atıksu Deşarj İzin Belgesi",
		Description: "Direct discharge ise AAT Kimlik Belgesi zorunludur.",
	},
	keyGSMOpinion: {
		Key:         keyGSMOpinion,
		Title:       "1.1 GSMR Görüşü",
		Description: "Atıksuyun evsel nitelikli olduğuna dair resmi görüş.",
	},
	keyDischargeRecords: {
		Key:         keyDischargeRecords,
		Title:       "1.2 Atıksu Deşarj Kayıtları",
		Description: "Düzenli deşarj kayıtları (Opsiyonel).",
	},
	keyRecordsMandatory: {
		Key:         keyRecordsMandatory,
		Title:       "1.2 Atıksu Deşarj Kayıtları",
		Description: "Düzenli deşarj kayıtları (Zorunlu - <15m3 olduğu için).",
	},
	keyWaterdataGeneral: {
		Key:         keyWaterdataGeneral,
		Title:       `1.3 ZDHC Gateway "Waterdata"`,
		Description: "Gateway Waterdata ekran görüntüsü (Genel).",
	},
	keyWaterdataDetail: {
		Key:         keyWaterdataDetail,
		Title:       `1.4 ZDHC Gateway "Waterdata"`,
		Description: "Gateway Waterdata ekran görüntüsü (Detay).",
	},
	keyAnalysisDirect: {
		Key:         keyAnalysisDirect,
		Title:       "1.6 Periyodik Atık Su Analiz Raporları",
		Description: "Son 12 aya ait, yasal limitlere göre yapılmış raporlar.",
	},
	keyAnalysis: {
		Key:         keyAnalysis,
		Title:       "1.8 Periyodik Atık Su Analiz Raporları",
		Description: "Son 12 aya ait, yasal limitlere göre yapılmış raporlar.",
	},
	keySludgeDisposal: {
		Key:         keySludgeDisposal,
		Title:       "2.3 Çamur Bertaraf Yolu Beyannamesi",
		Description: "Oluşan arıtma çamurunun nasıl bertaraf edildiğine dair beyan.",
	},
	keyDisposalContract: {
		Key:         keyDisposalContract,
		Title:       "2.4 Bertaraf Firması Sözleşmesi",
		Description: "Bertaraf firması ile tesis arasındaki anlaşma, MoTAT kayıtları vb.",
	},
	keyExtraParams: {
		Key:         keyExtraParams,
		Title:       "Ek Parametre Muafiyet Beyanı",
		Description: "Yasal olarak zorunlu olmasına rağmen test edilmeyen parametreler (ZSF, Fenol vb.) için beyan.",
	},
}

// Lookup returns the catalog entry for key.
func Lookup(key string) (Definition, bool) {
	d, ok := catalog[key]
	return d, ok
}

// Catalog returns every definition ordered by key.
func Catalog() []Definition {
	out := make([]Definition, 0, len(catalog))
	for _, d := range catalog {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
