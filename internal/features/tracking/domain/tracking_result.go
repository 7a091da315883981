package domain

// TrackingEvent represents a single status update in a shipment's history.
// Timestamps are kept as source-formatted strings: Jamef reports dates in
// several layouts and the API contract makes no parseability promise.
type TrackingEvent struct {
	// Data is the event timestamp as reported by the source.
	Data string `json:"data,omitempty"`
	// Status is the status label for this update.
	Status string `json:"status,omitempty"`
	// EstadoOrigem is the origin state (UF).
	EstadoOrigem string `json:"estado_origem,omitempty"`
	// MunicipioOrigem is the origin municipality.
	MunicipioOrigem string `json:"municipio_origem,omitempty"`
	// EstadoDestino is the destination state (UF).
	EstadoDestino string `json:"estado_destino,omitempty"`
	// MunicipioDestino is the destination municipality.
	MunicipioDestino string `json:"municipio_destino,omitempty"`
}

// IsEmpty reports whether no field of the event was populated.
func (e TrackingEvent) IsEmpty() bool {
	return e == TrackingEvent{}
}

// TrackingResult is the canonical, source-agnostic output of a lookup.
// Events are ordered exactly as the source reports them; position 0 is the
// most recent update.
type TrackingResult struct {
	// NF is the invoice (nota fiscal) number the lookup was keyed on.
	NF string `json:"nf"`
	// Origem is the shipment origin location.
	Origem string `json:"origem,omitempty"`
	// Destino is the shipment destination location.
	Destino string `json:"destino,omitempty"`
	// PrevisaoEntrega is the carrier's estimated-delivery label.
	PrevisaoEntrega string `json:"previsao_entrega,omitempty"`
	// StatusAtual is the current status, always the status of Historico[0].
	StatusAtual string `json:"status_atual,omitempty"`
	// Historico is the ordered event history, most recent first.
	Historico []TrackingEvent `json:"historico"`
}

// NewResult assembles a TrackingResult. StatusAtual is derived from the
// first history event and is never set independently.
func NewResult(nf, origem, destino, previsaoEntrega string, historico []TrackingEvent) *TrackingResult {
	if historico == nil {
		historico = []TrackingEvent{}
	}

	var statusAtual string
	if len(historico) > 0 {
		statusAtual = historico[0].Status
	}

	return &TrackingResult{
		NF:              nf,
		Origem:          origem,
		Destino:         destino,
		PrevisaoEntrega: previsaoEntrega,
		StatusAtual:     statusAtual,
		Historico:       historico,
	}
}
