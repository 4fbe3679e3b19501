package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"grocery/internal/interfaces/scheduler"
	"grocery/internal/shared/config"
	"grocery/internal/shared/middleware"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Handler      http.Handler
	Addr         string
	TLSEnabled   bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
	AllowedHosts []string
}

// Servers are the listeners started by StartServers. Errors receives at most
// one error per server if it stops for any reason other than Shutdown.
type Servers struct {
	Main     *http.Server
	Redirect *http.Server
	Errors   <-chan error
}

// NewServerConfigFromConfig creates ServerConfig from application config.
func NewServerConfigFromConfig(handler http.Handler, cfg *config.Config) ServerConfig {
	return ServerConfig{
		Handler:      handler,
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		TLSEnabled:   cfg.TLS.Enabled,
		CertPath:     cfg.TLS.CertPath,
		KeyPath:      cfg.TLS.KeyPath,
		RedirectHTTP: cfg.TLS.RedirectHTTP,
		AllowedHosts: cfg.Server.AllowedHosts,
	}
}

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// StartServers starts the API server and, with TLS redirect enabled, a plain
// HTTP server on :80 that redirects to HTTPS.
func StartServers(scfg ServerConfig) *Servers {
	errs := make(chan error, 2)
	servers := &Servers{
		Main:   newHTTPServer(scfg.Addr, scfg.Handler),
		Errors: errs,
	}

	if scfg.TLSEnabled && scfg.RedirectHTTP {
		servers.Redirect = newHTTPServer(":80", redirectHandler(scfg.AllowedHosts))
		go serve("HTTP redirect", servers.Redirect, errs, servers.Redirect.ListenAndServe)
	}

	if scfg.TLSEnabled {
		go serve("HTTPS", servers.Main, errs, func() error {
			return servers.Main.ListenAndServeTLS(scfg.CertPath, scfg.KeyPath)
		})
	} else {
		go serve("HTTP", servers.Main, errs, servers.Main.ListenAndServe)
	}

	return servers
}

func serve(name string, srv *http.Server, errs chan<- error, listen func() error) {
	log.Printf("%s server starting on %s", name, srv.Addr)
	if err := listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errs <- fmt.Errorf("%s server: %w", name, err)
	}
}

// GracefulShutdown stops accepting requests, then waits for the scheduler to
// finish any sweep in progress.
func GracefulShutdown(servers *Servers, sched *scheduler.Scheduler, timeout time.Duration) {
	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := servers.Main.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down main server: %v", err)
	}

	if servers.Redirect != nil {
		if err := servers.Redirect.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down HTTP redirect server: %v", err)
		}
	}

	if sched != nil {
		sched.Shutdown(timeout)
	}

	log.Println("Server stopped")
}

// redirectHandler sends every request to the same path over HTTPS, refusing
// hosts outside allowedHosts.
func redirectHandler(allowedHosts []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Header.Get("X-Forwarded-Host")
		if host == "" {
			host = r.Host
		}

		if !middleware.IsHostAllowed(host, allowedHosts) {
			http.Error(w, "Invalid host", http.StatusBadRequest)
			return
		}

		target := host
		if h, _, err := net.SplitHostPort(host); err == nil {
			target = h
		}
		if strings.Contains(target, ":") {
			target = "[" + target + "]"
		}

		http.Redirect(w, r, "https://"+target+r.RequestURI, http.StatusMovedPermanently)
	})
}
