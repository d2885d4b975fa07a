// Package browser provides the serialized headless-browser capability
// used as the slow fallback extraction path. All page-lifecycle
// operations run behind one mutex so at most one page is alive at a
// time, with a minimum interval between browser launches to avoid
// relaunch storms.
package browser

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/playwright-community/playwright-go"
)

// Session is the exclusive browser capability consumed by the scraper.
type Session interface {
	// ExtractIframeURL loads pageURL in a real browser and returns the
	// src of the first player iframe it renders.
	ExtractIframeURL(ctx context.Context, pageURL string) (string, error)
	Close() error
}

const (
	minLaunchInterval = 10 * time.Second
	pageLoadTimeout   = 20 * time.Second
)

type playwrightSession struct {
	mu         sync.Mutex
	pw         *playwright.Playwright
	browser    playwright.Browser
	lastLaunch time.Time
}

// NewPlaywrightSession starts the playwright driver. The browser itself
// launches lazily on first use.
func NewPlaywrightSession() (Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, errors.Wrap(err, "failed to start playwright")
	}
	return &playwrightSession{pw: pw}, nil
}

func (s *playwrightSession) ExtractIframeURL(ctx context.Context, pageURL string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := s.ensureBrowser(); err != nil {
		return "", err
	}

	page, err := s.browser.NewPage()
	if err != nil {
		return "", errors.Wrap(err, "failed to open page")
	}
	defer func() { _ = page.Close() }()

	_, err = page.Goto(pageURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(pageLoadTimeout.Milliseconds())),
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to load %s", pageURL)
	}

	frame := page.Locator("iframe").First()
	src, err := frame.GetAttribute("src")
	if err != nil || src == "" {
		if src, err = frame.GetAttribute("data-src"); err != nil || src == "" {
			return "", errors.Errorf("no iframe rendered on %s", pageURL)
		}
	}
	return src, nil
}

// ensureBrowser launches (or relaunches) the browser, honoring the
// minimum inter-launch interval.
func (s *playwrightSession) ensureBrowser() error {
	if s.browser != nil && s.browser.IsConnected() {
		return nil
	}

	if wait := minLaunchInterval - time.Since(s.lastLaunch); wait > 0 {
		time.Sleep(wait)
	}

	browser, err := s.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		return errors.Wrap(err, "failed to launch browser")
	}
	s.browser = browser
	s.lastLaunch = time.Now()
	return nil
}

func (s *playwrightSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser != nil {
		_ = s.browser.Close()
		s.browser = nil
	}
	return s.pw.Stop()
}
