// Package automation drives a headless browser to print documents.
package automation

import (
	"context"
	"fmt"
	"io"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// Printer turns HTML into PDF with Chrome. BrowserBin may be empty, in
// which case rod looks up or downloads a browser.
type Printer struct {
	BrowserBin string
	Log        *zap.Logger
}

func NewPrinter(browserBin string, log *zap.Logger) *Printer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Printer{BrowserBin: browserBin, Log: log.Named("automation")}
}

// PDF renders html in a fresh headless browser and returns the printed
// document.
func (p *Printer) PDF(ctx context.Context, html string) ([]byte, error) {
	// Leakless(false) keeps antivirus software from quarantining the helper.
	l := launcher.New().Context(ctx).Headless(true).Leakless(false)
	if p.BrowserBin != "" {
		l = l.Bin(p.BrowserBin)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer l.Kill()

	browser := rod.New().Context(ctx).ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed waiting for document: %w", err)
	}

	r, err := page.PDF(&proto.PagePrintToPDF{PrintBackground: true})
	if err != nil {
		return nil, fmt.Errorf("failed to print pdf: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf stream: %w", err)
	}
	p.Log.Debug("document printed", zap.Int("bytes", len(data)))
	return data, nil
}
