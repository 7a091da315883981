package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// Standalone one-shot Jamef lookup: scrapes the public tracking site for a
// single invoice and prints the raw history as JSON. Useful for probing
// selector changes without running the API service.

const defaultCNPJ = "48775191000190"

type event struct {
	Data             string `json:"data,omitempty"`
	Status           string `json:"status,omitempty"`
	EstadoOrigem     string `json:"estado_origem,omitempty"`
	MunicipioOrigem  string `json:"municipio_origem,omitempty"`
	EstadoDestino    string `json:"estado_destino,omitempty"`
	MunicipioDestino string `json:"municipio_destino,omitempty"`
}

type output struct {
	NF              string  `json:"nf"`
	PrevisaoEntrega string  `json:"previsao_entrega,omitempty"`
	Historico       []event `json:"historico"`
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println(`{"error": "Please provide an invoice number as an argument"}`)
		return
	}
	invoice := os.Args[1]

	cnpj := defaultCNPJ
	if len(os.Args) > 2 {
		cnpj = os.Args[2]
	}

	u := launcher.New().Headless(true).NoSandbox(true).MustLaunch()
	browser := rod.New().ControlURL(u).MustConnect()
	defer browser.MustClose()

	page := browser.MustPage("https://www.jamef.com.br/")
	page.MustWaitDOMStable()

	// Invoice, search, CNPJ, search again.
	page.Timeout(10 * time.Second).MustElement(`input[placeholder*="nota"]`).MustInput(invoice)
	page.MustElement(`button[type="submit"]`).MustClick()

	page.Timeout(10 * time.Second).MustElement(`input[placeholder*="CPF"]`).MustInput(cnpj)
	page.MustElement(`button[type="submit"]`).MustClick()

	page.Timeout(15 * time.Second).MustWait(`() => window.location.href.includes('/rastrear/')`)
	page.MustWaitDOMStable()

	previsao := page.MustEval(`() => {
		for (const el of document.querySelectorAll('*')) {
			if (el.childElementCount === 1 && el.textContent.includes('Previsão de Entrega:')) {
				const span = el.querySelector('span');
				if (span) return span.textContent.trim();
			}
		}
		return '';
	}`).Str()

	// Open the history popup and scan its label/value paragraphs.
	page.MustElement(`button.button.bg-red`).MustClick()
	page.Timeout(8 * time.Second).MustElement(`.popup-content .content`)

	raw := page.MustEval(`() => {
		const content = document.querySelector('.popup-content .content');
		if (!content) return [];
		const pairs = [];
		for (const p of content.querySelectorAll('p')) {
			const bold = p.querySelector('b');
			if (!bold) continue;
			pairs.push({
				label: bold.textContent.replace(':', '').trim(),
				value: p.textContent.replace(bold.textContent, '').trim(),
			});
		}
		return pairs;
	}`)

	setters := map[string]func(*event, string){
		"Data":              func(e *event, v string) { e.Data = v },
		"Status":            func(e *event, v string) { e.Status = v },
		"Estado origem":     func(e *event, v string) { e.EstadoOrigem = v },
		"Município origem":  func(e *event, v string) { e.MunicipioOrigem = v },
		"Estado destino":    func(e *event, v string) { e.EstadoDestino = v },
		"Município destino": func(e *event, v string) { e.MunicipioDestino = v },
	}

	historico := []event{}
	var current event
	for _, item := range raw.Arr() {
		label := item.Get("label").Str()
		if label == "Data" {
			if current != (event{}) {
				historico = append(historico, current)
			}
			current = event{}
		}
		if set, ok := setters[label]; ok {
			set(&current, item.Get("value").Str())
		}
	}
	if current != (event{}) {
		historico = append(historico, current)
	}

	out, _ := json.MarshalIndent(output{
		NF:              invoice,
		PrevisaoEntrega: previsao,
		Historico:       historico,
	}, "", "  ")
	fmt.Println(string(out))
}
