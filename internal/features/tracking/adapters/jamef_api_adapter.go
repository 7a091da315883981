package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"jamef-tracker/internal/core/config"
	"jamef-tracker/internal/core/httpclient"
	"jamef-tracker/internal/core/logger"
	authports "jamef-tracker/internal/features/auth/ports"
	"jamef-tracker/internal/features/tracking/domain"

	"go.uber.org/zap"
)

// trackingQueryPath is the Jamef REST endpoint for invoice lookups.
const trackingQueryPath = "/rastreamento/v1/consultar"

// JamefAPIAdapter implements the structured-data fetch strategy: one
// bearer-authenticated query against the Jamef REST API, mapped into the
// canonical result shape.
type JamefAPIAdapter struct {
	client *http.Client
	tokens authports.TokenSource
	config config.JamefConfig
	logger *zap.Logger
}

// NewJamefAPIAdapter creates a new JamefAPIAdapter.
func NewJamefAPIAdapter(cfg config.JamefConfig, tokens authports.TokenSource) *JamefAPIAdapter {
	return &JamefAPIAdapter{
		client: httpclient.NewClient(30 * time.Second),
		tokens: tokens,
		config: cfg,
		logger: logger.Get(),
	}
}

// jamefQueryRequest is the JSON body of the tracking query.
type jamefQueryRequest struct {
	// DocumentoResponsavelPagamento is the payer CNPJ.
	DocumentoResponsavelPagamento string `json:"documentoResponsavelPagamento"`
	// NumeroNotaFiscal is the invoice number being tracked.
	NumeroNotaFiscal string `json:"numeroNotaFiscal"`
}

// jamefQueryResponse represents the JSON structure from the Jamef API.
type jamefQueryResponse struct {
	Conhecimentos []struct {
		Origem          string `json:"origem"`
		Destino         string `json:"destino"`
		PrevisaoEntrega string `json:"previsaoEntrega"`
		Historico       []struct {
			DataAtualizacao  string `json:"dataAtualizacao"`
			Status           string `json:"status"`
			EstadoOrigem     string `json:"estadoOrigem"`
			MunicipioOrigem  string `json:"municipioOrigem"`
			EstadoDestino    string `json:"estadoDestino"`
			MunicipioDestino string `json:"municipioDestino"`
		} `json:"historico"`
	} `json:"conhecimentos"`
}

// Fetch queries the Jamef API for the invoice/payer pair.
func (a *JamefAPIAdapter) Fetch(ctx context.Context, invoice, payerID string) (*domain.TrackingResult, error) {
	token, err := a.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("carrier authentication failed: %w", err)
	}

	body, err := json.Marshal(jamefQueryRequest{
		DocumentoResponsavelPagamento: payerID,
		NumeroNotaFiscal:              invoice,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode tracking query: %w", err)
	}

	url := a.config.APIURL + trackingQueryPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create tracking request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tracking request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fallthrough to decoding
	case http.StatusNotFound:
		return nil, fmt.Errorf("invoice %s: %w", invoice, domain.ErrNotFound)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("carrier rejected credentials with status %d", resp.StatusCode)
	default:
		return nil, fmt.Errorf("jamef API returned status: %d", resp.StatusCode)
	}

	var query jamefQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&query); err != nil {
		return nil, fmt.Errorf("failed to parse carrier response: %w", err)
	}

	return a.mapResponseToDomain(invoice, query)
}

// mapResponseToDomain converts the Jamef response to the canonical result.
// Event order is preserved exactly as reported; the API lists the most
// recent update first, matching the domain ordering contract.
func (a *JamefAPIAdapter) mapResponseToDomain(invoice string, resp jamefQueryResponse) (*domain.TrackingResult, error) {
	if len(resp.Conhecimentos) == 0 {
		return nil, fmt.Errorf("invoice %s: %w", invoice, domain.ErrNotFound)
	}

	// A lookup by invoice/payer resolves to a single waybill.
	c := resp.Conhecimentos[0]
	if len(resp.Conhecimentos) > 1 {
		a.logger.Warn("Jamef returned multiple waybills for one invoice, using the first",
			zap.String("invoice", invoice),
			zap.Int("count", len(resp.Conhecimentos)),
		)
	}

	historico := make([]domain.TrackingEvent, 0, len(c.Historico))
	for _, item := range c.Historico {
		historico = append(historico, domain.TrackingEvent{
			Data:             item.DataAtualizacao,
			Status:           item.Status,
			EstadoOrigem:     item.EstadoOrigem,
			MunicipioOrigem:  item.MunicipioOrigem,
			EstadoDestino:    item.EstadoDestino,
			MunicipioDestino: item.MunicipioDestino,
		})
	}

	return domain.NewResult(invoice, c.Origem, c.Destino, c.PrevisaoEntrega, historico), nil
}
