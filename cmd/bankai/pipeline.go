package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/google/uuid"

	"github.com/bankai-project/bankai/internal/domain/classify"
	"github.com/bankai-project/bankai/internal/domain/extraction"
	"github.com/bankai-project/bankai/internal/domain/normalizer"
	"github.com/bankai-project/bankai/internal/domain/parser"
	"github.com/bankai-project/bankai/internal/domain/reconcile"
	"github.com/bankai-project/bankai/pkg/config"
	"github.com/bankai-project/bankai/pkg/export"
	"github.com/bankai-project/bankai/pkg/ollama"
)

// monthDirRe matches statement folders laid out as statements/YYYY-MM.
var monthDirRe = regexp.MustCompile(`^20\d{2}-\d{2}$`)

// Dependencies holds every wired component for one processing run.
type Dependencies struct {
	Config     *config.Config
	Logger     *slog.Logger
	Store      *normalizer.Store
	Normalizer *normalizer.Normalizer
	Reconciler *reconcile.Reconciler
	Classifier *classify.Classifier
}

// InitDependencies wires the pipeline. The model service is probed once
// here; when it is down the whole run falls back to rule-based cleaning
// and keyword-only classification.
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) *Dependencies {
	var client *ollama.Client
	if cfg.LLM.Enabled {
		c := ollama.NewClient(cfg.LLM.BaseURL, cfg.LLM.CallTimeout, cfg.LLM.ProbeTimeout, logger)
		if c.Probe(ctx) {
			client = c
		} else {
			logger.Warn("model service unreachable, using rule-based cleaning only", "url", cfg.LLM.BaseURL)
		}
	}

	store := normalizer.NewStore(filepath.Join(cfg.Paths.ConfigDir, "merchant_cache.json"), logger)
	store.RescanCSVs(cfg.Paths.StatementsDir)

	var norm *normalizer.Normalizer
	if client != nil {
		norm = normalizer.New(store, client, cfg.LLM, logger)
	} else {
		norm = normalizer.New(store, nil, cfg.LLM, logger)
	}

	p := parser.New(norm, logger)

	structured := extraction.NewStructured(logger)
	var ocr extraction.Extractor
	if o := extraction.NewOCR(cfg.OCR, logger); o.Available() {
		ocr = o
	} else {
		logger.Warn("pdftoppm or tesseract not installed, skipping ocr extraction")
	}

	keywords := classify.LoadKeywords(cfg.Paths.ConfigDir, logger)
	var gen classify.Generator
	if client != nil {
		gen = client
	}

	return &Dependencies{
		Config:     cfg,
		Logger:     logger,
		Store:      store,
		Normalizer: norm,
		Reconciler: reconcile.New(structured, ocr, p, norm, logger),
		Classifier: classify.New(keywords, gen, cfg.LLM.PrimaryModel, logger),
	}
}

func run(ctx context.Context, cfg *config.Config, month string, logger *slog.Logger) error {
	months, err := monthDirs(cfg.Paths.StatementsDir, month)
	if err != nil {
		return err
	}
	if len(months) == 0 {
		return fmt.Errorf("no statement folders found under %s", cfg.Paths.StatementsDir)
	}

	deps := InitDependencies(ctx, cfg, logger)

	for _, dir := range months {
		if err := processMonth(ctx, deps, dir); err != nil {
			logger.Error("month failed", "dir", filepath.Base(dir), "error", err)
		}
	}

	if err := deps.Normalizer.Flush(); err != nil {
		logger.Warn("failed to persist merchant cache", "error", err)
	}
	return nil
}

// monthDirs lists the YYYY-MM folders to process. month may be a folder
// name, "latest", or empty for all of them.
func monthDirs(statementsDir, month string) ([]string, error) {
	entries, err := os.ReadDir(statementsDir)
	if err != nil {
		return nil, fmt.Errorf("read statements dir: %w", err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() && monthDirRe.MatchString(e.Name()) {
			dirs = append(dirs, filepath.Join(statementsDir, e.Name()))
		}
	}
	sort.Strings(dirs)

	switch month {
	case "":
		return dirs, nil
	case "latest":
		if len(dirs) == 0 {
			return nil, nil
		}
		return dirs[len(dirs)-1:], nil
	default:
		for _, d := range dirs {
			if filepath.Base(d) == month {
				return []string{d}, nil
			}
		}
		return nil, fmt.Errorf("no statement folder named %s", month)
	}
}

func processMonth(ctx context.Context, deps *Dependencies, dir string) error {
	pdfs, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil {
		return fmt.Errorf("list pdfs: %w", err)
	}
	if len(pdfs) == 0 {
		deps.Logger.Info("no statements in folder", "dir", filepath.Base(dir))
		return nil
	}
	sort.Strings(pdfs)

	deps.Logger.Info("processing month", "dir", filepath.Base(dir), "statements", len(pdfs))

	var income, expenses []export.Record
	for _, pdf := range pdfs {
		in, ex, perr := processStatement(ctx, deps, pdf)
		if perr != nil {
			deps.Logger.Error("statement failed", "file", filepath.Base(pdf), "error", perr)
			continue
		}
		income = append(income, in...)
		expenses = append(expenses, ex...)
	}

	if err := export.WriteCSV(filepath.Join(dir, "income.csv"), income); err != nil {
		return fmt.Errorf("write income.csv: %w", err)
	}
	if err := export.WriteCSV(filepath.Join(dir, "expenses.csv"), expenses); err != nil {
		return fmt.Errorf("write expenses.csv: %w", err)
	}

	deps.Logger.Info("month complete",
		"dir", filepath.Base(dir),
		"income", len(income), "income_total", export.DisplayAmount(export.Total(income)),
		"expenses", len(expenses), "expense_total", export.DisplayAmount(export.Total(expenses)))
	return nil
}

// processStatement runs one PDF through extraction, reconciliation and
// classification, and returns its rows ready for the month's CSVs.
func processStatement(ctx context.Context, deps *Dependencies, pdfPath string) (income, expenses []export.Record, err error) {
	docID := uuid.NewString()
	logger := deps.Logger.With("file", filepath.Base(pdfPath), "document_id", docID)

	out, err := deps.Reconciler.Process(ctx, pdfPath)
	if err != nil {
		return nil, nil, fmt.Errorf("process %s: %w", pdfPath, err)
	}

	bank := parser.DetectBankName(out.Text)
	isBank := !parser.IsCreditCard(out.Text)

	kept, transfers := deps.Classifier.FilterTransfers(out.Transactions)
	incomeTxs, expenseTxs := deps.Classifier.Classify(ctx, kept, isBank)

	logger.Info("statement processed",
		"bank", bank,
		"method", out.Method,
		"quality", out.Quality.Score,
		"transactions", len(out.Transactions),
		"transfers_skipped", len(transfers),
		"income", len(incomeTxs),
		"expenses", len(expenseTxs))
	for _, issue := range out.Quality.Issues {
		logger.Warn("quality issue", "issue", issue)
	}

	return export.FromTransactions(incomeTxs, bank, ""),
		export.FromTransactions(expenseTxs, bank, ""),
		nil
}
