package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gyeh/intake-recon/internal/cloud"
	"github.com/gyeh/intake-recon/internal/config"
	"github.com/gyeh/intake-recon/internal/dataset"
	"github.com/gyeh/intake-recon/internal/document"
	"github.com/gyeh/intake-recon/internal/extract"
	"github.com/gyeh/intake-recon/internal/logging"
	"github.com/gyeh/intake-recon/internal/lookup"
	"github.com/gyeh/intake-recon/internal/npi"
	"github.com/gyeh/intake-recon/internal/output"
	"github.com/gyeh/intake-recon/internal/progress"
	"github.com/gyeh/intake-recon/internal/source"
	"github.com/gyeh/intake-recon/internal/worker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "intake-recon",
		Short:        "Reconcile patient intake documents against a reference patient dataset",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newReconcileCmd())
	rootCmd.AddCommand(newExtractCmd())

	return rootCmd
}

func newReconcileCmd() *cobra.Command {
	var (
		configPath      string
		reference       string
		sheet           string
		docsDir         string
		docsFile        string
		outputPath      string
		noProgress      bool
		logProgress     bool
		verifyReferrers bool
		npiState        string
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Extract fields from each document and reconcile them with the matching patient record",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			// Flags override file and environment values only when set.
			flags := cmd.Flags()
			if flags.Changed("reference") {
				cfg.Reference.Path = reference
			}
			if flags.Changed("sheet") {
				cfg.Reference.Sheet = sheet
			}
			if flags.Changed("docs") {
				cfg.Documents.Dir = docsDir
			}
			if flags.Changed("docs-file") {
				cfg.Documents.ListFile = docsFile
			}
			if flags.Changed("output") {
				cfg.Output.Path = outputPath
			}
			if logProgress {
				cfg.Progress.Mode = config.ProgressLog
			}
			if noProgress {
				cfg.Progress.Mode = config.ProgressNone
			}
			if verifyReferrers {
				cfg.Referrer.Verify = true
			}
			if flags.Changed("npi-state") {
				cfg.Referrer.State = npiState
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger, err := logging.New(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer logging.Sync(logger)

			ctx, stop := withSignals(cmd.Context(), logger)
			defer stop()

			return runReconcile(ctx, cfg, logger, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	cmd.Flags().StringVar(&reference, "reference", "", "Reference dataset (.xlsx, .csv, .tsv, .jsonl, .json; local, s3:// or https://)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Workbook sheet to read (default: first sheet)")
	cmd.Flags().StringVar(&docsDir, "docs", "", "Directory or s3:// prefix containing documents")
	cmd.Flags().StringVar(&docsFile, "docs-file", "", "File listing document locations (one per line)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "results.json", "Report path (use '-' for stdout, s3://bucket/key for S3)")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable progress output")
	cmd.Flags().BoolVar(&logProgress, "log-progress", false, "Use line-based progress output (for non-TTY environments)")
	cmd.Flags().BoolVar(&verifyReferrers, "verify-referrers", false, "Check referring physicians against the NPI Registry")
	cmd.Flags().StringVar(&npiState, "npi-state", "", "2-letter state code narrowing NPI Registry searches")

	return cmd
}

func runReconcile(ctx context.Context, cfg *config.Config, logger *zap.Logger, progressOut io.Writer) error {
	s3Client, err := newS3Client(ctx, cfg.AWS.Region, cfg.Reference.Path, cfg.Documents.Dir, cfg.Output.Path)
	if err != nil {
		return err
	}
	opener := &source.Opener{UseStdGzip: cfg.Documents.StdGzip}
	if s3Client != nil {
		opener.Store = s3Client
	}

	// A reference that cannot be loaded aborts the run before any document.
	data, err := opener.ReadAll(ctx, cfg.Reference.Path)
	if err != nil {
		return fmt.Errorf("reading reference dataset: %w", err)
	}
	refs, err := dataset.Load(source.Name(cfg.Reference.Path), data, dataset.Options{
		Sheet:  cfg.Reference.Sheet,
		TmpDir: cfg.Reference.TmpDir,
	})
	if err != nil {
		return fmt.Errorf("loading reference dataset: %w", err)
	}
	idx := lookup.Build(refs)
	logger.Info(fmt.Sprintf("Created index for %d patients", idx.Len()),
		zap.String("reference", cfg.Reference.Path),
		zap.Int("letters", len(idx.Letters())))

	var locations []string
	if cfg.Documents.ListFile != "" {
		locations, err = source.ReadLocations(cfg.Documents.ListFile)
	} else {
		locations, err = opener.List(ctx, cfg.Documents.Dir, cfg.Documents.Extensions)
	}
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	extractor, err := extract.New(nil)
	if err != nil {
		return err
	}

	var mgr progress.Manager
	switch cfg.Progress.Mode {
	case config.ProgressNone:
		mgr = &progress.NoopManager{}
	case config.ProgressLog:
		mgr = progress.NewLogManager(progressOut)
	default:
		mgr = progress.NewMPBManager()
	}

	batch := &worker.Batch{
		Opener:    opener,
		Extractor: extractor,
		Index:     idx,
		Logger:    logger,
		Progress:  mgr,
	}
	if cfg.Referrer.Verify {
		batch.Verifier = &npi.Verifier{State: cfg.Referrer.State}
	}

	startTime := time.Now()
	results := batch.Run(ctx, locations)
	mgr.Wait()
	summary := worker.Summarize(len(locations), results, time.Since(startTime))

	logger.Info(fmt.Sprintf("Processing complete. %d documents processed out of %d found.", summary.Processed, summary.Found),
		zap.Int("attempted", summary.Attempted),
		zap.Int("reconciled", summary.Reconciled),
		zap.Int("no_match", summary.NoMatch),
		zap.Int("empty_identity", summary.EmptyIdentity),
		zap.Int("failed", summary.Failed),
		zap.Int("mismatched", summary.Mismatched),
		zap.Int("needing_update", summary.NeedingUpdate),
		zap.Duration("duration", summary.Duration))

	// The partial report is still written after an interrupt.
	var uploader output.Uploader
	if s3Client != nil {
		uploader = s3Client
	}
	report := output.NewReport(summary, results)
	if err := output.WriteReport(context.WithoutCancel(ctx), cfg.Output.Path, report, uploader); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if cfg.Output.Path != "-" {
		logger.Info("Results written", zap.String("output", cfg.Output.Path))
	}

	return nil
}

func newExtractCmd() *cobra.Command {
	var (
		docPath string
		region  string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Print the fields extracted from a single document",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logging.Config{Level: "warn", Format: "console"}, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer logging.Sync(logger)

			ctx := cmd.Context()
			s3Client, err := newS3Client(ctx, region, docPath)
			if err != nil {
				return err
			}
			opener := &source.Opener{}
			if s3Client != nil {
				opener.Store = s3Client
			}

			data, err := opener.ReadAll(ctx, docPath)
			if err != nil {
				return fmt.Errorf("reading document: %w", err)
			}
			text, err := document.Decode(source.Name(docPath), data)
			if err != nil {
				return err
			}
			extractor, err := extract.New(nil)
			if err != nil {
				return err
			}
			fields, err := extractor.Extract(text, logging.Observer(logger, docPath))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(fields)
		},
	}

	cmd.Flags().StringVar(&docPath, "doc", "", "Document to extract (.pdf or .txt; local, s3:// or https://)")
	cmd.Flags().StringVar(&region, "region", "us-east-1", "AWS region for s3:// locations")
	cmd.MarkFlagRequired("doc")

	return cmd
}

// newS3Client returns a client only when one of locs is an s3:// URI.
func newS3Client(ctx context.Context, region string, locs ...string) (*cloud.S3Client, error) {
	for _, loc := range locs {
		if cloud.IsS3(loc) {
			c, err := cloud.NewS3Client(ctx, region)
			if err != nil {
				return nil, fmt.Errorf("creating S3 client: %w", err)
			}
			return c, nil
		}
	}
	return nil, nil
}

// withSignals cancels the returned context on SIGINT or SIGTERM.
func withSignals(parent context.Context, logger *zap.Logger) (context.Context, func()) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("Interrupted, finishing the current document")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}
