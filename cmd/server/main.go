package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/po-scanner/backend/internal/api"
	"github.com/po-scanner/backend/internal/config"
	"github.com/po-scanner/backend/internal/export"
	"github.com/po-scanner/backend/internal/extractor"
	"github.com/po-scanner/backend/internal/objectstore"
	"github.com/po-scanner/backend/internal/storage"
	"github.com/po-scanner/backend/internal/telemetry"
	"github.com/po-scanner/backend/internal/web"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const configFileName = "POScanner.config"

func main() {
	klog.InitFlags(nil)
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)

	var configPath string

	cmd := &cobra.Command{
		Use:   "po-scanner",
		Short: "purchase order scanner server",
		Long:  `Serves the upload page and extracts purchase orders from uploaded PDFs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				exePath, err := os.Executable()
				if err != nil {
					return fmt.Errorf("failed to get executable path: %w", err)
				}
				configPath = filepath.Join(filepath.Dir(exePath), configFileName)
			}
			return run(configPath, cmd.Flags().Changed("v"))
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to the XML configuration file")
	cmd.Flags().AddFlagSet(pflag.CommandLine)

	if err := cmd.Execute(); err != nil {
		klog.Fatalln(err)
	}
}

func run(configPath string, verbositySet bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if !verbositySet {
		if err := applyLogLevel(flag.CommandLine, cfg); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{
		Enabled:     cfg.Advanced.Tracing,
		Endpoint:    cfg.Advanced.TracingEndpoint,
		Insecure:    cfg.Advanced.TracingInsecure,
		ServiceName: "po-scanner",
		Version:     Version,
	})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			klog.Warningf("flushing traces: %v", err)
		}
	}()
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	fileStore, err := storage.NewLocalStore(cfg.GetUploadDir())
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	client := extractor.NewClient(cfg.Extraction.Endpoint, cfg.Extraction.APIKey, cfg.ExtractionTimeout())
	scanner, err := extractor.NewScanner(client)
	if err != nil {
		return fmt.Errorf("failed to initialize scanner: %w", err)
	}

	var publisher export.Publisher
	if cfg.ObjectStore.Enabled {
		store, err := objectstore.NewClient(objectstore.Options{
			Endpoint:  cfg.ObjectStore.Endpoint,
			AccessKey: cfg.ObjectStore.AccessKey,
			SecretKey: cfg.ObjectStore.SecretKey,
			UseSSL:    cfg.ObjectStore.UseSSL,
			Bucket:    cfg.ObjectStore.Bucket,
			Prefix:    cfg.ObjectStore.Prefix,
			Region:    cfg.ObjectStore.Region,
		})
		if err != nil {
			return err
		}
		publisher = store
		klog.Infof("mirroring outputs to %s/%s", cfg.ObjectStore.Endpoint, cfg.ObjectStore.Bucket)
	}
	exporter := export.NewExporter(cfg.GetOutputDir(), publisher)

	e := echo.New()
	e.HideBanner = true

	api.SetupMiddleware(e, api.MiddlewareOptions{
		RequestLogging: cfg.Advanced.EnableRequestLogging,
		BodyLimit:      cfg.Server.BodyLimit,
		EnableCORS:     cfg.Server.EnableCORS,
		AllowOrigins:   cfg.Server.AllowOrigins,
	})
	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Store:             fileStore,
		Scanner:           scanner,
		Exporter:          exporter,
		ExtractionTimeout: cfg.ExtractionTimeout(),
		DeleteUploads:     cfg.Storage.DeleteAfterScan,
		ExtractorEndpoint: cfg.Extraction.Endpoint,
		Version:           Version,
	}))

	if err := web.RegisterStaticRoutes(e); err != nil {
		klog.Warningf("failed to register static routes: %v", err)
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Purchase Order Scanner                          ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Extractor: %-46s║\n", cfg.Extraction.Endpoint)
	fmt.Printf("║  Outputs:   %-46s║\n", cfg.GetOutputDir())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.StartServer(s)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	klog.Info("po-scanner shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// applyLogLevel sets klog's -v from the configured LogLevel.
func applyLogLevel(fs *flag.FlagSet, cfg *config.AppConfig) error {
	if err := fs.Set("v", strconv.Itoa(cfg.Verbosity())); err != nil {
		return fmt.Errorf("setting log verbosity: %w", err)
	}
	return nil
}
