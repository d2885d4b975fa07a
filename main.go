package main

import (
	"net/http"

	"anistream/internal/browser"
	"anistream/internal/cache"
	"anistream/internal/config"
	"anistream/internal/scraper"
	"anistream/internal/server"
	"anistream/internal/util"
)

func main() {
	cfg := config.Load()

	util.IsDebug = cfg.Debug
	util.InitLogger()

	store := cache.New()
	defer store.Close()

	opts := []scraper.Option{}
	if cfg.BrowserFallback {
		session, err := browser.NewPlaywrightSession()
		if err != nil {
			util.Warn("browser fallback unavailable", "error", err)
		} else {
			defer func() { _ = session.Close() }()
			opts = append(opts, scraper.WithBrowser(session))
		}
	}

	sc := scraper.New(cfg, store, opts...)
	srv := server.New(cfg, sc, store)

	util.Info("server starting", "port", cfg.Port, "upstream", cfg.BaseURL)
	if err := http.ListenAndServe(":"+cfg.Port, srv.Handler()); err != nil {
		util.Fatal("server stopped", "error", err)
	}
}
