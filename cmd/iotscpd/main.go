// Command iotscpd runs the IOTSCP device runtime: an HTTP control plane,
// an event dispatcher, and a multicast discovery responder, all serving
// the device built in internal/presentation/exampledevice.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"iotscp/internal/application"
	domaincert "iotscp/internal/domain/certificate"
	"iotscp/internal/infrastructure/certificate"
	"iotscp/internal/infrastructure/config"
	"iotscp/internal/infrastructure/devicehub"
	"iotscp/internal/infrastructure/discovery"
	"iotscp/internal/infrastructure/dispatcher"
	"iotscp/internal/infrastructure/httpengine"
	"iotscp/internal/infrastructure/logging"
	"iotscp/internal/infrastructure/serializer"
	"iotscp/internal/presentation/certgen"
	"iotscp/internal/presentation/console"
	"iotscp/internal/presentation/exampledevice"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	switch cfg.Action {
	case config.ActionGetCert:
		if err := certgen.Run(cfg.CertPath, cfg.CertSegments, cfg.CertSegmentLength); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case config.ActionStart:
		if err := start(cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

func start(cfg config.Config) error {
	out := os.Stdout
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer func() { _ = f.Close() }()
		log := logging.New(f, string(cfg.LogLvl))
		return run(cfg, log)
	}
	log := logging.New(out, string(cfg.LogLvl))
	return run(cfg, log)
}

func run(cfg config.Config, log application.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dev, poll := exampledevice.New()

	disp := dispatcher.New(log, ctx.Done())
	for _, svc := range dev.Services() {
		svc.AddDispatcher(disp)
	}

	if err := serializer.Serialize(log, dev, cfg.WebRoot); err != nil {
		log.Printf("serializer: %v", err)
	}

	certLoader := func(uuid string) (*domaincert.Certificate, error) {
		return certificate.Load(cfg.CertPath, certificate.DefaultSegmentLength, uuid)
	}
	hub := devicehub.New(log, dev, certLoader, cfg.WebRoot, disp)
	server := httpengine.NewServer(log, hub.Handlers())

	go func() {
		if err := server.ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.Port)); err != nil {
			log.Printf("http server: %v", err)
		}
	}()

	responder := discovery.New(log, cfg.Port, "")
	go func() {
		if err := responder.Serve(ctx); err != nil {
			log.Printf("discovery: %v", err)
		}
	}()

	go poll(ctx)

	console.Run(ctx, log, os.Stdin, os.Stdout, cancel)
	<-ctx.Done()
	return nil
}
