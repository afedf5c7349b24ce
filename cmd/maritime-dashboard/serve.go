package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/mr1hm/go-maritime-dashboard/internal/api"
	"github.com/mr1hm/go-maritime-dashboard/internal/dashboard"
	internalgrpc "github.com/mr1hm/go-maritime-dashboard/internal/grpc"
	"github.com/mr1hm/go-maritime-dashboard/internal/live"
	"github.com/mr1hm/go-maritime-dashboard/internal/logging"
	"github.com/mr1hm/go-maritime-dashboard/internal/mapview"
	"github.com/mr1hm/go-maritime-dashboard/internal/notify"
	"github.com/mr1hm/go-maritime-dashboard/internal/web"
)

var listenAddr string

// Per-client limits for map and panel interactions.
const (
	interactRPS   = 10
	interactBurst = 20
)

func addServeCmd(rootCmd *cobra.Command) {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (overrides SERVER_HOST and SERVER_PORT)")

	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	client, err := newClient()
	if err != nil {
		return err
	}

	addr := listenAddr
	if addr == "" {
		addr = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	slog.Info("Dashboard starting", "addr", addr, "api", client.BaseURL())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := live.NewBroadcaster()

	// Start gRPC health server
	grpcServer := internalgrpc.NewServer()
	go func() {
		grpcAddr := fmt.Sprintf(":%d", cfg.GRPC.Port)
		if err := grpcServer.Start(grpcAddr); err != nil {
			logging.Fatalf("gRPC server error: %v", err)
		}
	}()

	var (
		notifier  dashboard.Notifier
		notices   *notify.Notifier
		publisher *notify.MQTTPublisher
	)
	if cfg.MQTT.Enabled {
		publisher, err = notify.NewMQTTPublisher(cfg.MQTT)
		if err != nil {
			slog.Warn("mqtt notifications disabled", "error", err)
		} else {
			notices = notify.NewNotifier(publisher, cfg.MQTT.TopicPrefix, cfg.Worker.Count, cfg.Worker.BufferSize)
			notices.Start(ctx)
			notifier = notices
		}
	}

	panels, list := newPanels()
	dash := dashboard.New(dashboard.Deps{
		Source:          client,
		Map:             mapview.New(cfg.Dashboard.MapWidth, cfg.Dashboard.MapHeight),
		Panels:          panels,
		Reporter:        grpcServer,
		Notifier:        notifier,
		Live:            hub,
		ETAInterval:     cfg.Dashboard.ETAInterval,
		RefreshInterval: min(cfg.Dashboard.PortsInterval, cfg.Dashboard.StormsInterval),
		AutoRefresh:     cfg.Dashboard.ShipAutoRefresh,
	})

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))

	webServer := web.NewServer(dash, list, hub)
	webServer.RegisterRoutes(router, api.ClientRateLimitMiddleware(interactRPS, interactBurst))

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	dash.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	dash.Stop()
	if notices != nil {
		notices.Stop()
	}
	if publisher != nil {
		publisher.Close()
	}
	hub.Close() // Close all websocket streams gracefully
	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
