// Package followup drafts reminder emails for audits with outstanding documents.
package followup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"audittrack-engine/internal/audit"
	"audittrack-engine/internal/domain"
	"audittrack-engine/internal/llm"
)

// Display-safe strings returned instead of a draft.
const (
	MsgNoAPIKey     = "Hata: API Anahtarı bulunamadı."
	MsgNothingToAsk = "Tüm belgeler tamamlanmış görünüyor. Hatırlatma mailine gerek yok."
	MsgEmptyDraft   = "Taslak oluşturulamadı."
	MsgFailed       = "Hata: Taslak oluşturulurken bir sorun oluştu. Lütfen daha sonra tekrar deneyin."
)

const (
	DefaultModel = "gemini:gemini-3-flash-preview"
	Subject      = "Inditex Atıksu Analizi - Eksik Belge Bildirimi"
)

// Draft is the outcome of a drafting request. Fallback is set when Text is one
// of the Msg* strings rather than generated content.
type Draft struct {
	CompanyID string `json:"company_id"`
	Text      string `json:"text"`
	Subject   string `json:"subject,omitempty"`
	Body      string `json:"body,omitempty"`
	Model     string `json:"model,omitempty"`
	Fallback  bool   `json:"fallback"`
}

type ProviderFunc func(providerModel string, keys llm.KeySource) (llm.Provider, error)

type Options struct {
	Model             string
	Keys              llm.KeySource
	RequestsPerMinute int
	Timeout           time.Duration
	NewProvider       ProviderFunc
}

type Service struct {
	model       string
	keys        llm.KeySource
	timeout     time.Duration
	newProvider ProviderFunc
	limiter     *rate.Limiter
	group       singleflight.Group
}

func NewService(opts Options) *Service {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Keys == nil {
		opts.Keys = llm.EnvKey
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 10
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.NewProvider == nil {
		opts.NewProvider = llm.NewProvider
	}
	perSec := float64(opts.RequestsPerMinute) / 60
	return &Service{
		model:       opts.Model,
		keys:        opts.Keys,
		timeout:     opts.Timeout,
		newProvider: opts.NewProvider,
		limiter:     rate.NewLimiter(rate.Limit(perSec), 1),
	}
}

// Draft never fails: every problem degrades to one of the Msg* texts.
// Concurrent calls for the same company revision share one request.
func (s *Service) Draft(ctx context.Context, c domain.Company) Draft {
	key := c.ID + "@" + strconv.FormatInt(c.LastUpdated.UnixNano(), 10)
	v, _, _ := s.group.Do(key, func() (any, error) {
		return s.draft(ctx, c), nil
	})
	return v.(Draft)
}

func (s *Service) draft(ctx context.Context, c domain.Company) Draft {
	fallback := func(msg string) Draft {
		return Draft{CompanyID: c.ID, Text: msg, Fallback: true}
	}

	provider, err := s.newProvider(s.model, s.keys)
	if err != nil {
		if errors.Is(err, llm.ErrNoAPIKey) {
			return fallback(MsgNoAPIKey)
		}
		log.Printf("[followup] provider %s: %v", s.model, err)
		return fallback(MsgFailed)
	}

	missing := audit.MissingDocuments(c.Documents)
	if len(missing) == 0 {
		return fallback(MsgNothingToAsk)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.limiter.Wait(ctx); err != nil {
		log.Printf("[followup] company=%s rate wait: %v", c.ID, err)
		return fallback(MsgFailed)
	}

	start := time.Now()
	resp, err := provider.Complete(ctx, &llm.Request{UserPrompt: BuildPrompt(c, missing)})
	if err != nil {
		retry := false
		var apiErr *llm.APIError
		if errors.As(err, &apiErr) {
			retry = apiErr.Retryable()
		}
		log.Printf("[followup] company=%s generate failed after %s retryable=%v: %v", c.ID, time.Since(start).Round(time.Millisecond), retry, err)
		return fallback(MsgFailed)
	}
	text := strings.TrimSpace(PlainText(resp.Content))
	if text == "" {
		return fallback(MsgEmptyDraft)
	}
	log.Printf("[followup] company=%s model=%s docs=%d took=%s", c.ID, resp.Model, len(missing), time.Since(start).Round(time.Millisecond))

	subject, body := SplitSubject(text)
	return Draft{
		CompanyID: c.ID,
		Text:      text,
		Subject:   subject,
		Body:      body,
		Model:     resp.Model,
	}
}

// BuildPrompt renders the drafting instructions for the given outstanding documents.
func BuildPrompt(c domain.Company, missing []domain.DocumentItem) string {
	var docs strings.Builder
	for i, d := range missing {
		if i > 0 {
			docs.WriteByte('\n')
		}
		note := ""
		if d.Status == domain.DocIssue {
			if d.Notes != "" {
				note = fmt.Sprintf("(Hata Notu: %s)", d.Notes)
			} else {
				note = "(Belge hatalı veya eksik gönderilmiş)"
			}
		}
		if d.Finding != "" {
			note += " - Tespit: " + d.Finding
		}
		fmt.Fprintf(&docs, "- %s: %s %s", d.Title, d.Description, note)
	}

	volume := ""
	if c.IsLowVolume {
		volume = "(<15 m3/gün - Düşük Kapasite)"
	}

	var b strings.Builder
	b.WriteString("Sen profesyonel bir denetim asistanısın. Aşağıdaki bilgilere göre bir firmaya atıksu denetimi için eksik belgeleri isteyen kibar, resmi ve Türkçe bir e-posta taslağı hazırla.\n\n")
	fmt.Fprintf(&b, "Firma Adı: %s\n", c.Name)
	fmt.Fprintf(&b, "Tesis Deşarj Tipi: %s %s\n", c.DischargeType, volume)
	fmt.Fprintf(&b, "Konu: %s\n\n", Subject)
	b.WriteString("Durum: Firma belirtilen deşarj tipine göre denetlenmektedir. Aşağıdaki belgeler henüz teslim edilmedi veya gönderilenlerde sorun var. Lütfen bunları net bir şekilde listele ve en kısa sürede iletmelerini rica et.\n\n")
	b.WriteString("Eksik/Hatalı Belgeler Listesi:\n")
	b.WriteString(docs.String())
	b.WriteString("\n\nE-posta sadece metin gövdesini içermeli, konu satırını en başa yaz.\n")
	return b.String()
}
