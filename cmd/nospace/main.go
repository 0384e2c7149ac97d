package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/codeSantiago/nospace/internal/ids"
	"github.com/codeSantiago/nospace/internal/logger"
	"github.com/codeSantiago/nospace/pkg/config"
	"github.com/codeSantiago/nospace/pkg/drive"
	"github.com/codeSantiago/nospace/pkg/engine"
	"github.com/codeSantiago/nospace/pkg/store"
	"github.com/codeSantiago/nospace/pkg/tasks"
)

const usageText = `nospace - metadata/physical folder synchronization engine

Usage:
  nospace [flags] <command> [args]

Commands:
  init [path]                   Write a starter config file (default path if omitted)
  mkroot <username>             Provision an owner's root folder
  mkdir <parent-id> <name>      Create a folder under a parent
  rename <folder-id> <name>     Rename a folder and cascade its file routes
  rm <folder-id>                Delete a folder and its whole subtree
  export <folder-id> <out.zip>  Export a folder's files as a flat archive
  stat <folder-id>              Print one folder record
  stat <depth> <name> <user>    Look a folder up by location

Flags:
`

// rootOwners resolves owners from their provisioned root folders. The store
// keeps no separate owner records; the depth-0 folder carries the owner id
// and username, so it doubles as the owner directory for this binary.
type rootOwners struct {
	store store.MetadataStore
}

func (r *rootOwners) OwnerByUsername(ctx context.Context, username string) (drive.Owner, error) {
	root, err := r.store.FindFolderAt(ctx, 0, username, username)
	if err != nil {
		return drive.Owner{}, err
	}
	return drive.Owner{ID: root.OwnerID, Username: root.OwnerUsername}, nil
}

func main() {
	configPath := flag.String("config", "", "Path to config file (default: "+config.GetDefaultConfigPath()+")")
	logLevel := flag.String("log-level", "", "Override the configured log level (DEBUG, INFO, WARN, ERROR, NONE)")
	force := flag.Bool("force", false, "Overwrite an existing config file (init only)")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usageText)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	verb := args[0]

	// init runs before any config is loaded; it writes the file the other
	// commands will read.
	if verb == "init" {
		runInit(args[1:], *force)
		return
	}

	path := *configPath
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Configure logger
	level := cfg.Logging.Level
	if *logLevel != "" {
		level = *logLevel
	}
	logger.SetLevel(level)
	logger.SetFormat(cfg.Logging.Format)
	switch cfg.Logging.Output {
	case "", "stdout":
		// default writer
	case "stderr":
		logger.SetOutput(os.Stderr)
	default:
		logFile, err := os.OpenFile(cfg.Logging.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatalf("Failed to open log output %s: %v", cfg.Logging.Output, err)
		}
		defer func() { _ = logFile.Close() }()
		logger.SetOutput(logFile)
	}

	logger.Debug("Config loaded from %s", path)
	logger.Debug("Store: %s, mirror: %s, workers: %d", cfg.Store.Type, cfg.Mirror.Type, cfg.Tasks.Workers)

	// Create cancellable context so an interrupt aborts in-flight work
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Warn("Interrupt received, cancelling...")
		cancel()
	}()

	// Metrics (noop implementations when disabled)
	metricsResult := config.InitializeMetrics(cfg)
	if metricsResult.Server != nil {
		go func() {
			if err := metricsResult.Server.Start(ctx); err != nil {
				logger.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Wire store -> mirror -> runner -> engine
	metadataStore, err := config.CreateMetadataStore(ctx, &cfg.Store)
	if err != nil {
		log.Fatalf("Failed to create metadata store: %v", err)
	}

	physicalMirror, err := config.CreateMirror(ctx, &cfg.Mirror)
	if err != nil {
		_ = metadataStore.Close()
		log.Fatalf("Failed to create mirror: %v", err)
	}

	runner := tasks.NewRunner(cfg.Tasks, metricsResult.Tasks)

	eng, err := engine.New(metadataStore, physicalMirror, runner, &rootOwners{store: metadataStore}, metricsResult.Engine, cfg.Engine)
	if err != nil {
		_ = physicalMirror.Close()
		_ = metadataStore.Close()
		log.Fatalf("Failed to create engine: %v", err)
	}

	opErr := dispatch(ctx, eng, verb, args[1:])

	// Drain queued physical work before exiting, even after a failed
	// command; fire-and-forget tasks are lost otherwise.
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelDrain()
	if err := runner.Stop(drainCtx); err != nil {
		logger.Warn("Background tasks did not drain cleanly: %v", err)
	}
	logger.Debug("Task runner: %s", runner.Stats().Summary())

	if err := physicalMirror.Close(); err != nil {
		logger.Warn("Mirror close: %v", err)
	}
	if err := metadataStore.Close(); err != nil {
		logger.Warn("Metadata store close: %v", err)
	}

	if opErr != nil {
		logger.Error("%s: %v", verb, opErr)
		os.Exit(1)
	}
}

// runInit writes a starter config file and exits.
func runInit(args []string, force bool) {
	if len(args) > 1 {
		log.Fatalf("Usage: nospace init [path]")
	}

	var written string
	var err error
	if len(args) == 1 {
		written = args[0]
		err = config.InitConfigToPath(written, force)
	} else {
		written, err = config.InitConfig(force)
	}
	if err != nil {
		log.Fatalf("Failed to write config: %v", err)
	}

	fmt.Printf("Config written to %s\n", written)
	fmt.Println("Edit it, then provision an owner with: nospace mkroot <username>")
}

// dispatch runs one engine operation per invocation.
func dispatch(ctx context.Context, eng *engine.Engine, verb string, args []string) error {
	switch verb {
	case "mkroot":
		if len(args) != 1 {
			return fmt.Errorf("usage: nospace mkroot <username>")
		}
		return cmdMkroot(ctx, eng, args[0])

	case "mkdir":
		if len(args) != 2 {
			return fmt.Errorf("usage: nospace mkdir <parent-id> <name>")
		}
		folder, err := eng.CreateFolder(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Created folder %s at %s\n", folder.ID, folder.Route)
		return nil

	case "rename":
		if len(args) != 2 {
			return fmt.Errorf("usage: nospace rename <folder-id> <new-name>")
		}
		folder, err := eng.RenameFolder(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Renamed folder %s to %s\n", folder.ID, folder.Route)
		return nil

	case "rm":
		if len(args) != 1 {
			return fmt.Errorf("usage: nospace rm <folder-id>")
		}
		if err := eng.DeleteFolder(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted folder %s and its subtree\n", args[0])
		return nil

	case "export":
		if len(args) != 2 {
			return fmt.Errorf("usage: nospace export <folder-id> <out.zip>")
		}
		data, err := eng.ExportFolder(ctx, args[0])
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[1], data, 0644); err != nil {
			return fmt.Errorf("failed to write archive: %w", err)
		}
		fmt.Printf("Wrote %d bytes to %s\n", len(data), args[1])
		return nil

	case "stat":
		return cmdStat(ctx, eng, args)

	default:
		return fmt.Errorf("unknown command %q (run nospace without arguments for usage)", verb)
	}
}

// cmdMkroot provisions an owner's root folder. The root folder doubles as
// the owner record, so repeat provisioning is refused rather than minting a
// second owner id for the same username.
func cmdMkroot(ctx context.Context, eng *engine.Engine, username string) error {
	if _, err := eng.FindFolderAt(ctx, 0, username, username); err == nil {
		return fmt.Errorf("root folder for %q already exists", username)
	} else if !store.IsNotFound(err) {
		return err
	}

	owner := drive.Owner{ID: ids.New(), Username: username}
	if err := eng.CreateRootFolder(ctx, owner); err != nil {
		return err
	}

	fmt.Printf("Provisioned root folder /%s/ (owner id %s)\n", username, owner.ID)
	return nil
}

// cmdStat prints one folder record, looked up by id or by location.
func cmdStat(ctx context.Context, eng *engine.Engine, args []string) error {
	var folder *drive.Folder
	var err error

	switch len(args) {
	case 1:
		folder, err = eng.FindFolder(ctx, args[0])
	case 3:
		var depth int
		depth, err = strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("depth must be a number, got %q", args[0])
		}
		folder, err = eng.FindFolderAt(ctx, depth, args[1], args[2])
	default:
		return fmt.Errorf("usage: nospace stat <folder-id> | nospace stat <depth> <name> <username>")
	}
	if err != nil {
		return err
	}

	fmt.Printf("id:      %s\n", folder.ID)
	fmt.Printf("name:    %s\n", folder.Name)
	fmt.Printf("route:   %s\n", folder.Route)
	fmt.Printf("depth:   %d\n", folder.Depth)
	if folder.ParentID != "" {
		fmt.Printf("parent:  %s\n", folder.ParentID)
	}
	fmt.Printf("owner:   %s (%s)\n", folder.OwnerUsername, folder.OwnerID)
	fmt.Printf("created: %s\n", folder.CreatedAt.Format(time.RFC3339))
	return nil
}
