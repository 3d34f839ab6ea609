package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tokencap/gateway/internal/config"
	"github.com/tokencap/gateway/internal/ledger"
	"github.com/tokencap/gateway/internal/server"
	gatewaytls "github.com/tokencap/gateway/internal/tls"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file (optional; defaults + env vars apply otherwise)")
	devTLS := flag.Bool("dev-tls", false, "serve over HTTPS with a generated self-signed certificate")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("Warning: failed to load config, using defaults: %v", err)
		cfg = config.DefaultConfig()
	}

	server.InitCORS()

	store, err := ledger.Open(cfg.Ledger.DatabasePath)
	if err != nil {
		log.Fatalf("tokencap: open ledger store: %v", err)
	}
	defer store.Close()

	srv := server.NewServer(store, cfg)
	router := server.NewRouter()
	server.SetupRoutes(srv, router)

	handler := server.RequestLogMiddleware(server.CORSMiddleware(router))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{Addr: addr, Handler: handler}

	go func() {
		<-stop
		log.Println("tokencap: shutting down")
		os.Exit(0)
	}()

	if *devTLS {
		certPath, keyPath, err := gatewaytls.GenerateAndSaveCert()
		if err != nil {
			log.Fatalf("tokencap: generate dev certificate: %v", err)
		}
		log.Printf("tokencap: listening on https://%s (self-signed dev certificate)", addr)
		if err := httpServer.ListenAndServeTLS(certPath, keyPath); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
		return
	}

	log.Printf("tokencap: listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
