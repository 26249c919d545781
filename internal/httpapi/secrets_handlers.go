package httpapi

import (
	"net/http"
	"strings"

	"audittrack-engine/internal/llm"
	"audittrack-engine/internal/secrets"
)

type SecretsHandler struct {
	Deps
}

type setSecretReq struct {
	Secret string `json:"secret"`
}

// SetGenerationKey stores the API key for the configured model's provider.
func (h SecretsHandler) SetGenerationKey(w http.ResponseWriter, r *http.Request) {
	var req setSecretReq
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	provider, _, err := llm.ParseModel(h.config().Generation.Model)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_config", err.Error())
		return
	}
	if err := secrets.SetAPIKey(provider, strings.TrimSpace(req.Secret)); err != nil {
		WriteError(w, r, http.StatusBadRequest, "keyring_failed", "failed to store api key: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) SetIMAPPassword(w http.ResponseWriter, r *http.Request) {
	var req setSecretReq
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	cfg := h.config()
	if err := secrets.SetIMAPPassword(secrets.IMAPKeyringAccount(cfg.Email), req.Secret); err != nil {
		WriteError(w, r, http.StatusBadRequest, "keyring_failed", "failed to store password: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
