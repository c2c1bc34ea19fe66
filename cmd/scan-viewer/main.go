// Command scan-viewer polls a scan data origin and replays the samples as a
// sliding top-down plot. Frames are drawn in the terminal, served over HTTP
// (/api/frame, /plot, /plot.png) and streamed over gRPC.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"google.golang.org/grpc"

	"github.com/banshee-data/scanview/internal/api"
	"github.com/banshee-data/scanview/internal/config"
	"github.com/banshee-data/scanview/internal/monitoring"
	"github.com/banshee-data/scanview/internal/playback"
	"github.com/banshee-data/scanview/internal/render"
	"github.com/banshee-data/scanview/internal/source"
	"github.com/banshee-data/scanview/internal/stream"
	"github.com/banshee-data/scanview/internal/version"
)

var (
	configFile  = flag.String("config", "", "Path to a .json or .yaml viewer config")
	sourceURL   = flag.String("source", config.DefaultSourceURL, "Data origin URL")
	pollEvery   = flag.String("poll", playback.DefaultPollInterval.String(), "Interval between data-origin fetches")
	tickPeriod  = flag.String("tick", playback.DefaultTickPeriod.String(), "Time between playback steps")
	distUnits   = flag.String("units", config.DefaultUnits, "Odometry distance units (m, ft, yd)")
	timezone    = flag.String("tz", config.DefaultTimezone, "Timezone for the capture time readout")
	listen      = flag.String("listen", config.DefaultListen, "HTTP listen address; empty disables the HTTP server")
	grpcListen  = flag.String("grpc-listen", config.DefaultGRPCListen, "gRPC listen address; empty disables streaming")
	tui         = flag.Bool("tui", false, "Draw the plot in the terminal")
	logFile     = flag.String("log", "", "Log file; with -tui, logs are discarded unless set")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// flagKeys maps command-line flags to the config keys they override.
var flagKeys = map[string]string{
	"source":      "source_url",
	"poll":        "poll_interval",
	"tick":        "tick_period",
	"units":       "units",
	"tz":          "timezone",
	"listen":      "listen",
	"grpc-listen": "grpc_listen",
}

// loadConfig reads the config file, if any, and applies the flags that were
// set explicitly on top of it.
func loadConfig(path string, fs *flag.FlagSet) (*config.ViewerConfig, error) {
	cfg := config.EmptyViewerConfig()
	if path != "" {
		var err error
		if cfg, err = config.LoadViewerConfig(path); err != nil {
			return nil, err
		}
	}

	var setErr error
	fs.Visit(func(f *flag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || setErr != nil {
			return
		}
		setErr = cfg.SetString(key, f.Value.String())
	})
	if setErr != nil {
		return nil, setErr
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newEngine(cfg *config.ViewerConfig, metrics *monitoring.Metrics) *playback.Engine {
	src := source.NewHTTPSource(cfg.GetSourceURL(), cfg.GetRequestTimeout())
	return playback.NewEngine(src, playback.NewSettings(cfg.ViewConfig()), playback.Options{
		PollInterval: cfg.GetPollInterval(),
		Metrics:      metrics,
	})
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := loadConfig(*configFile, flag.CommandLine)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	} else if *tui {
		log.SetOutput(io.Discard)
	}

	metrics := monitoring.NewMetrics()
	engine := newEngine(cfg, metrics)
	units, tz := cfg.GetUnits(), cfg.GetTimezone()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	if *tui {
		screen, err := tcell.NewScreen()
		if err != nil {
			log.Fatalf("Failed to create terminal screen: %v", err)
		}
		if err := screen.Init(); err != nil {
			log.Fatalf("Failed to initialise terminal screen: %v", err)
		}
		defer screen.Fini()

		term := render.NewTerminal(screen, units, tz)
		engine.AddSink(term)
		wg.Add(1)
		go func() {
			defer wg.Done()
			term.HandleKeys(ctx, engine.Settings(), stop)
		}()
	}

	if addr := cfg.GetListen(); addr != "" {
		server := &http.Server{
			Addr:              addr,
			Handler:           api.LoggingMiddleware("viewer")(api.NewViewerServer(engine, metrics, units, tz).ServeMux()),
			ReadHeaderTimeout: 5 * time.Second,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			go func() {
				log.Printf("viewer HTTP listening on %s", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Printf("failed to start HTTP server: %v", err)
					stop()
				}
			}()

			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Printf("HTTP server shutdown error: %v", err)
				if err := server.Close(); err != nil {
					log.Printf("HTTP server force close error: %v", err)
				}
			}
			log.Printf("HTTP server routine stopped")
		}()
	}

	if addr := cfg.GetGRPCListen(); addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			log.Fatalf("Failed to listen for gRPC on %s: %v", addr, err)
		}
		gs := grpc.NewServer()
		stream.Register(gs, stream.NewServer(engine, units, tz))
		wg.Add(1)
		go func() {
			defer wg.Done()
			go func() {
				log.Printf("[gRPC] Playback service listening on %s", addr)
				if err := gs.Serve(lis); err != nil {
					log.Printf("[gRPC] serve error: %v", err)
				}
			}()
			<-ctx.Done()
			gs.Stop()
			log.Printf("[gRPC] server stopped")
		}()
	}

	if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("playback stopped: %v", err)
	}
	stop()
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
