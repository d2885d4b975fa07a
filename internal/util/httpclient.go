// Package util provides the shared logger and pooled HTTP clients.
package util

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"
)

var (
	sharedClient     *http.Client
	sharedClientOnce sync.Once

	// fastClient is used for probe and candidate fetches where a quick
	// failure matters more than completeness.
	fastClient     *http.Client
	fastClientOnce sync.Once
)

// maxRedirects bounds transparent redirect following on upstream fetches.
const maxRedirects = 10

type httpClientConfig struct {
	timeout             time.Duration
	maxIdleConns        int
	maxIdleConnsPerHost int
	maxConnsPerHost     int
	idleConnTimeout     time.Duration
	tlsHandshakeTimeout time.Duration
	expectContinue      time.Duration
	keepAlive           time.Duration
	dialTimeout         time.Duration
}

func defaultConfig() httpClientConfig {
	return httpClientConfig{
		timeout:             30 * time.Second,
		maxIdleConns:        100,
		maxIdleConnsPerHost: 20,
		maxConnsPerHost:     40,
		idleConnTimeout:     120 * time.Second,
		tlsHandshakeTimeout: 5 * time.Second,
		expectContinue:      1 * time.Second,
		keepAlive:           30 * time.Second,
		dialTimeout:         5 * time.Second,
	}
}

func fastConfig() httpClientConfig {
	cfg := defaultConfig()
	cfg.timeout = 8 * time.Second
	cfg.expectContinue = 500 * time.Millisecond
	return cfg
}

func createTransport(cfg httpClientConfig) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.dialTimeout,
			KeepAlive: cfg.keepAlive,
		}).DialContext,
		MaxIdleConns:          cfg.maxIdleConns,
		MaxIdleConnsPerHost:   cfg.maxIdleConnsPerHost,
		MaxConnsPerHost:       cfg.maxConnsPerHost,
		IdleConnTimeout:       cfg.idleConnTimeout,
		TLSHandshakeTimeout:   cfg.tlsHandshakeTimeout,
		ExpectContinueTimeout: cfg.expectContinue,
		ForceAttemptHTTP2:     true,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
}

func buildClient(cfg httpClientConfig) *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{
		Transport: createTransport(cfg),
		Timeout:   cfg.timeout,
		Jar:       jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// GetSharedClient returns the shared HTTP client with connection pooling
// and cookie persistence. Use this for primary page scrapes.
func GetSharedClient() *http.Client {
	sharedClientOnce.Do(func() {
		sharedClient = buildClient(defaultConfig())
	})
	return sharedClient
}

// GetFastClient returns an HTTP client with a short timeout for URL-shape
// probes and embed race candidates.
func GetFastClient() *http.Client {
	fastClientOnce.Do(func() {
		fastClient = buildClient(fastConfig())
	})
	return fastClient
}
