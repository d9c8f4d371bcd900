package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/authors"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/logging"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/uploads"
)

// SweepUploadsCommand removes uploads that no author or book references.
type SweepUploadsCommand struct {
	DatabasePath string
	UploadsDir   string
	Grace        time.Duration
	Verbose      bool
}

// NewSweepUploadsCommand creates a SweepUploadsCommand seeded from cfg.
func NewSweepUploadsCommand(cfg *config.Config) *SweepUploadsCommand {
	return &SweepUploadsCommand{
		DatabasePath: cfg.Database.Path,
		UploadsDir:   cfg.Uploads.Dir,
		Grace:        cfg.UploadSweep.Grace,
	}
}

// ParseFlags parses command line flags
func (cmd *SweepUploadsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("sweep-uploads", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cmd.DatabasePath, "Path to the catalog database")
	fs.StringVar(&cmd.UploadsDir, "uploads", cmd.UploadsDir, "Uploads directory")
	fs.DurationVar(&cmd.Grace, "grace", cmd.Grace, "Keep files younger than this")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sweep-uploads [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Remove uploaded photos and covers that are no longer referenced.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes one sweep.
func (cmd *SweepUploadsCommand) Run(ctx context.Context) error {
	level := "warn"
	if cmd.Verbose {
		level = "debug"
	}
	logging.Setup(level, "console")

	db, err := database.NewDatabase(cmd.DatabasePath, logging.GormLevel(level))
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := uploads.NewStore(cmd.UploadsDir)
	if err != nil {
		return err
	}

	sweeper := scheduler.NewUploadSweeper(store, scheduler.SweepConfig{Grace: cmd.Grace},
		authors.NewRepository(db.DB), books.NewRepository(db.DB))
	result, err := sweeper.RunOnce(ctx)
	if err != nil {
		return err
	}

	log.Debug().Int("scanned", result.Scanned).Msg("sweep complete")
	fmt.Printf("Scanned %d files, removed %d, failed %d\n", result.Scanned, result.Removed, result.Failed)
	if result.Failed > 0 {
		return fmt.Errorf("%d uploads could not be removed", result.Failed)
	}
	return nil
}
