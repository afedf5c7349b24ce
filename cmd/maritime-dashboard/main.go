package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mr1hm/go-maritime-dashboard/internal/config"
	"github.com/mr1hm/go-maritime-dashboard/internal/dashboard"
	"github.com/mr1hm/go-maritime-dashboard/internal/fetcher"
	"github.com/mr1hm/go-maritime-dashboard/internal/logging"
	"github.com/mr1hm/go-maritime-dashboard/internal/mapview"
	"github.com/mr1hm/go-maritime-dashboard/internal/models"
	"github.com/mr1hm/go-maritime-dashboard/internal/render"
	"github.com/mr1hm/go-maritime-dashboard/internal/web"
)

var (
	cfg        *config.Config
	apiURL     string
	verbose    bool
	outputFile string
	interval   int
	watchMode  bool
	shipName   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "maritime-dashboard",
		Short: "Live maritime dashboard for ships, ports and storms",
		Long: `Maritime Dashboard polls the shipping API for vessel ETAs, seaports
and storm alerts, and shows them on a map with live panels.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if apiURL != "" {
				loaded.Dashboard.APIBaseURL = apiURL
			}
			if verbose {
				loaded.Logging.Level = "debug"
			}
			logging.Setup(loaded.Logging.Level)
			cfg = loaded
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Shipping API base URL (overrides DASHBOARD_API_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	addServeCmd(rootCmd)
	addRenderCmd(rootCmd)
	addListCmd(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newPanels builds the four dashboard containers.
func newPanels() (dashboard.Panels, []*render.Panel) {
	eta := render.NewPanel(dashboard.StreamETA)
	ports := render.NewPanel(dashboard.StreamPorts)
	alerts := render.NewPanel("alerts")
	detail := render.NewPanel(dashboard.StreamPortDetail)

	return dashboard.Panels{ETA: eta, Ports: ports, Alerts: alerts, PortDetail: detail},
		[]*render.Panel{eta, ports, alerts, detail}
}

func newClient() (*fetcher.Client, error) {
	return fetcher.New(cfg.Dashboard.APIBaseURL, cfg.Dashboard.RequestTimeout)
}

// addRenderCmd adds a 'render' subcommand that writes a static snapshot page
func addRenderCmd(rootCmd *cobra.Command) {
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render the dashboard to a static HTML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			panels, list := newPanels()
			dash := dashboard.New(dashboard.Deps{
				Source: client,
				Map:    mapview.New(cfg.Dashboard.MapWidth, cfg.Dashboard.MapHeight),
				Panels: panels,
				// Only the first load is needed; the deferred refresh never fires.
				RefreshInterval: 24 * time.Hour,
			})
			srv := web.NewServer(dash, list, nil)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			dash.Start(ctx)
			defer dash.Stop()

			if err := writePage(cmd, srv); err != nil {
				return err
			}
			if !watchMode {
				return nil
			}

			// Enforce minimum interval
			if interval < 30 {
				interval = 30
			}
			cmd.Println(fmt.Sprintf("Watch mode activated. Updating every %d seconds. Press Ctrl+C to stop.", interval))

			ticker := time.NewTicker(time.Duration(interval) * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					dash.LoadStorms(ctx)
					dash.LoadPorts(ctx)
					dash.LoadETA(ctx)
					if err := writePage(cmd, srv); err != nil {
						cmd.PrintErrln(fmt.Errorf("update failed: %w", err))
					}
				}
			}
		},
	}

	renderCmd.Flags().StringVarP(&outputFile, "output", "o", "dashboard.html", "Output HTML file path")
	renderCmd.Flags().IntVarP(&interval, "interval", "i", 300, "Update interval in seconds (minimum 30)")
	renderCmd.Flags().BoolVar(&watchMode, "watch", false, "Continuously update the dashboard HTML")

	rootCmd.AddCommand(renderCmd)
}

func writePage(cmd *cobra.Command, srv *web.Server) error {
	if verbose {
		cmd.Println(fmt.Sprintf("Generating HTML to %s...", outputFile))
	}
	if err := web.WriteStatic(outputFile, srv.Page(false)); err != nil {
		return fmt.Errorf("failed to generate HTML: %w", err)
	}
	cmd.Println(fmt.Sprintf("Dashboard saved to %s", outputFile))
	return nil
}

// addListCmd adds a 'list' subcommand to show vessel ETAs without a page
func addListCmd(rootCmd *cobra.Command) {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List vessel ETAs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			var records []models.ETA
			if shipName != "" {
				record, err := client.FetchShipETA(cmd.Context(), shipName)
				if err != nil {
					return fmt.Errorf("failed to fetch eta for %s: %w", shipName, err)
				}
				records = append(records, *record)
			} else {
				records, err = client.FetchETA(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to fetch eta: %w", err)
				}
			}

			if len(records) == 0 {
				cmd.Println(render.MsgETAEmpty)
				return nil
			}

			cmd.Println("Vessel ETAs:")
			for _, e := range records {
				cmd.Println("---")
				cmd.Println(fmt.Sprintf("Ship: %s", e.ShipName))
				cmd.Println(fmt.Sprintf("Route: %s → %s", e.PortFrom, e.PortTo))
				if e.ETAExpected != "" {
					cmd.Println(fmt.Sprintf("ETA: %s", e.ETAExpected))
				}
				cmd.Println(fmt.Sprintf("Delay: %s", render.DelayText(e.Delay())))
				cmd.Println(fmt.Sprintf("Status: %s", render.StatusFor(e).Text))
				if e.Reason != "" {
					cmd.Println(fmt.Sprintf("Reason: %s", e.Reason))
				}
			}
			return nil
		},
	}

	listCmd.Flags().StringVarP(&shipName, "ship", "s", "", "Only show the latest ETA for this ship")

	rootCmd.AddCommand(listCmd)
}
