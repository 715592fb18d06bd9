package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/your-org/docrouter/internal/actionlog"
	"github.com/your-org/docrouter/internal/app"
	"github.com/your-org/docrouter/internal/config"
	"github.com/your-org/docrouter/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	command := os.Args[1]
	if command == "-v" || command == "--version" || command == "version" {
		fmt.Println(version.String())
		return
	}

	cfg := config.FromEnv()
	path := ""
	if len(os.Args) > 2 {
		path = os.Args[2]
	}

	switch command {
	case "route":
		requirePath(path)
		if err := app.RouteFile(cfg, path, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "cli route failed: %v\n", err)
			os.Exit(1)
		}
	case "batch":
		requirePath(path)
		if err := app.BatchFile(cfg, path, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "cli batch failed: %v\n", err)
			os.Exit(1)
		}
	case "validate":
		requirePath(path)
		if err := app.ValidateFile(cfg, path, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "cli validate failed: %v\n", err)
			os.Exit(1)
		}
	case "email":
		requirePath(path)
		if err := app.EmailFile(cfg, path, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "cli email failed: %v\n", err)
			os.Exit(1)
		}
	case "serve":
		a, err := app.Build(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cli serve failed: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = a.Close(context.Background()) }()
		if err := app.StartServer(context.Background(), cfg.Addr, a.Handler()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "cli serve failed: %v\n", err)
			os.Exit(1)
		}
	case "export-csv":
		requirePath(path)
		outputPath := "actions.csv"
		if len(os.Args) > 3 {
			outputPath = os.Args[3]
		}
		if err := actionlog.ExportJSONLToCSV(path, outputPath); err != nil {
			fmt.Fprintf(os.Stderr, "cli export-csv failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("action log export complete: %s -> %s\n", path, outputPath)
	default:
		usage()
		os.Exit(1)
	}
}

func requirePath(path string) {
	if path == "" {
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: docrouter <route|batch|validate|email|serve|export-csv|version> [path] [output_csv]")
}
