package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jamef-tracker/internal/core/logger"
	"jamef-tracker/internal/core/proxy"
	"jamef-tracker/internal/features/tracking/domain"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"go.uber.org/zap"
)

// Per-step wait budgets, mirroring the timeouts the tracking site needs in
// practice. Exceeding any of them surfaces as domain.ErrPageTimeout.
const (
	inputWait   = 10 * time.Second
	resultsWait = 15 * time.Second
	popupWait   = 8 * time.Second
)

// summaryJS extracts the delivery forecast and the origin/destination
// headings from the results page. Missing pieces come back as empty strings;
// the page has no stable ids so the scan walks headings and label text.
const summaryJS = `() => {
	let previsao = '';
	for (const el of document.querySelectorAll('*')) {
		if (el.childElementCount === 1 && el.textContent.includes('Previsão de Entrega:')) {
			const span = el.querySelector('span');
			if (span) { previsao = span.textContent.trim(); break; }
		}
	}

	const headings = [...document.querySelectorAll('h3, h4, strong, b')];
	let origem = '', destino = '';
	for (const h of headings) {
		if (h.textContent.trim() === 'Origem')
			origem = h.nextElementSibling?.textContent.trim() ?? '';
		if (h.textContent.trim() === 'Destino')
			destino = h.nextElementSibling?.textContent.trim() ?? '';
	}

	return { previsao, origem, destino };
}`

// historyPairsJS returns the raw label/value pairs of the history popup in
// document order. Interpretation of the labels happens in Go, in the
// domain normalizer, so the page script stays a dumb extractor.
const historyPairsJS = `() => {
	const content = document.querySelector('.popup-content .content');
	if (!content) return [];

	const pairs = [];
	for (const p of content.querySelectorAll('p')) {
		const bold = p.querySelector('b');
		if (!bold) continue;
		const label = bold.textContent.replace(':', '').trim();
		const value = p.textContent.replace(bold.textContent, '').trim();
		pairs.push({ label, value });
	}
	return pairs;
}`

// JamefScraperAdapter implements the presentation-scraping fetch strategy:
// it drives a headless browser through the public Jamef tracking flow and
// normalizes the history popup into the canonical result.
type JamefScraperAdapter struct {
	siteURL string
	proxy   proxy.Settings
	logger  *zap.Logger
}

// NewJamefScraperAdapter creates a new JamefScraperAdapter.
func NewJamefScraperAdapter(siteURL string, proxySettings proxy.Settings) *JamefScraperAdapter {
	return &JamefScraperAdapter{
		siteURL: siteURL,
		proxy:   proxySettings,
		logger:  logger.Get(),
	}
}

// Fetch runs the fixed navigation sequence: enter invoice, submit, enter
// payer document, submit, wait for the results page, extract the summary,
// open the history popup and extract the event list.
func (a *JamefScraperAdapter) Fetch(ctx context.Context, invoice, payerID string) (*domain.TrackingResult, error) {
	// Start a local proxy forwarder when the upstream proxy needs
	// credentials, since Chromium cannot take them on the command line.
	var localProxyAddr string
	if a.proxy.HasProxy() && a.proxy.HasCredentials() {
		forwarder, err := proxy.NewForwardingProxy(a.proxy.FullURL(), "jamef.com.br")
		if err != nil {
			return nil, fmt.Errorf("failed to create proxy forwarder: %w", err)
		}
		localProxyAddr, err = forwarder.Start(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to start proxy forwarder: %w", err)
		}
		defer forwarder.Stop()
		a.logger.Debug("Local proxy forwarder started", zap.String("local_addr", localProxyAddr))
	} else if a.proxy.HasProxy() {
		localProxyAddr = a.proxy.HostPort()
	}

	a.logger.Debug("Launching browser...",
		zap.String("invoice", invoice),
		zap.Bool("proxy_enabled", a.proxy.HasProxy()),
	)

	l := launcher.New().
		Context(ctx).
		Headless(true).
		NoSandbox(true)

	if localProxyAddr != "" {
		l = l.Proxy(localProxyAddr)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().Context(ctx).ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.Close()

	var origem, destino, previsao string
	var pairs []domain.FieldPair

	navErr := rod.Try(func() {
		page := browser.MustPage(a.siteURL)
		page.MustWaitDOMStable()

		// Invoice number, then first search submit.
		page.Timeout(inputWait).
			MustElement(`input[placeholder*="nota"]`).
			MustInput(invoice)
		page.MustElement(`button[type="submit"]`).MustClick()

		// Payer document on the follow-up form, then second submit.
		page.Timeout(inputWait).
			MustElement(`input[placeholder*="CPF"]`).
			MustInput(payerID)
		page.MustElement(`button[type="submit"]`).MustClick()

		// The site routes to /rastrear/... once results are ready.
		page.Timeout(resultsWait).
			MustWait(`() => window.location.href.includes('/rastrear/')`)
		page.MustWaitDOMStable()

		summary := page.MustEval(summaryJS)
		previsao = summary.Get("previsao").Str()
		origem = summary.Get("origem").Str()
		destino = summary.Get("destino").Str()

		// The event history lives behind the red "Histórico" button.
		page.MustElement(`button.button.bg-red`).MustClick()
		page.Timeout(popupWait).MustElement(`.popup-content .content`)

		for _, item := range page.MustEval(historyPairsJS).Arr() {
			pairs = append(pairs, domain.FieldPair{
				Label: item.Get("label").Str(),
				Value: item.Get("value").Str(),
			})
		}
	})
	if navErr != nil {
		return nil, a.classifyNavError(invoice, navErr)
	}

	historico := domain.BuildHistory(pairs)

	a.logger.Debug("Scrape finished",
		zap.String("invoice", invoice),
		zap.Int("events", len(historico)),
	)

	// A results page with an empty summary still yields a usable (partially
	// populated) result as long as the history popup rendered.
	return domain.NewResult(invoice, origem, destino, previsao, historico), nil
}

// classifyNavError maps browser failures onto the fetch error taxonomy:
// exceeded wait budgets become the timeout-specific page error, everything
// else stays a generic navigation failure.
func (a *JamefScraperAdapter) classifyNavError(invoice string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("invoice %s: %w: %v", invoice, domain.ErrPageTimeout, err)
	}
	return fmt.Errorf("invoice %s: page navigation failed: %w", invoice, err)
}
