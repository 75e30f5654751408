package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voxelview/internal/chunkapi"
	"voxelview/internal/chunkgen"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "listen address")
	flag.Parse()

	logger := log.New(os.Stdout, "[chunkserver] ", log.LstdFlags|log.Lmicroseconds)

	h, err := chunkgen.NewHandler(logger)
	if err != nil {
		logger.Fatalf("handler: %v", err)
	}
	defer h.Close()

	mux := http.NewServeMux()
	mux.Handle(chunkapi.Path, h)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Printf("listening on %s%s", *addr, chunkapi.Path)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("serve: %v", err)
	}
}
