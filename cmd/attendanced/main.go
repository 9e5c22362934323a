package main

import (
	"flag"
	"log/slog"

	"attendance-backend/lib/browser"
	"attendance-backend/lib/configutil"
	"attendance-backend/lib/telemetry"
	"attendance-backend/lib/util/serviceutil"
	"attendance-backend/services/attendance"
	"attendance-backend/services/attendance/server"

	"github.com/gin-gonic/gin"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	shutdown := InitTelemetry(ctx, *verbose)
	defer shutdown()

	cfg, err := configutil.ReadOptional[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("read config", err)
	}

	opts, err := cfg.Attendance().Options()
	if err != nil {
		serviceutil.Fatal("read attendance options", err)
	}
	opts.Debug = cfg.Server.Debug

	if cfg.Browser.Install {
		err = browser.EnsureInstalled()
		if err != nil {
			serviceutil.Fatal("install browser", err)
		}
	}
	driver, err := browser.NewDriver(cfg.Attendance().BrowserConfig())
	if err != nil {
		serviceutil.Fatal("create browser driver", err)
	}

	tel := telemetry.SlogAPI{}
	service := attendance.NewService(driver, opts, tel)
	probe := attendance.NewProbe(opts.PortalURL, cfg.ProbeTimeout(), tel)

	if !*verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	api := server.NewServer(service, probe, server.Options{
		Threshold:    opts.Threshold,
		AllowOrigins: cfg.Server.AllowOrigins,
	}, tel)

	slog.Info(
		"serving attendance api",
		"portal", opts.PortalURL,
		"driver", cfg.Attendance().BrowserConfig().Driver,
		"settle", opts.Settle.Mode,
	)
	serviceutil.StartHttpServer(ctx, cfg.Port(), api.Handler())
}
