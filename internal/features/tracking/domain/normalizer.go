package domain

// FieldPair is one label/value pair extracted from a semi-structured source,
// such as the paragraphs of the Jamef history popup.
type FieldPair struct {
	Label string
	Value string
}

// labelSetters maps the labels Jamef uses in its history listing onto
// TrackingEvent fields. Labels outside this table are ignored.
var labelSetters = map[string]func(*TrackingEvent, string){
	"Data":              func(e *TrackingEvent, v string) { e.Data = v },
	"Status":            func(e *TrackingEvent, v string) { e.Status = v },
	"Estado origem":     func(e *TrackingEvent, v string) { e.EstadoOrigem = v },
	"Município origem":  func(e *TrackingEvent, v string) { e.MunicipioOrigem = v },
	"Estado destino":    func(e *TrackingEvent, v string) { e.EstadoDestino = v },
	"Município destino": func(e *TrackingEvent, v string) { e.MunicipioDestino = v },
}

// BuildHistory folds an ordered flat list of label/value pairs into tracking
// events. A "Data" label starts a new event, flushing the previous one if it
// has any populated field; a trailing in-progress event is flushed at the
// end. The scan is deterministic: output depends only on pair order.
func BuildHistory(pairs []FieldPair) []TrackingEvent {
	events := make([]TrackingEvent, 0, len(pairs)/2)

	var current TrackingEvent
	for _, pair := range pairs {
		if pair.Label == "Data" {
			if !current.IsEmpty() {
				events = append(events, current)
			}
			current = TrackingEvent{}
		}
		if set, ok := labelSetters[pair.Label]; ok {
			set(&current, pair.Value)
		}
	}

	if !current.IsEmpty() {
		events = append(events, current)
	}

	return events
}
