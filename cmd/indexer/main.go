package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"jotha-be/internal/bootstrap"
	"jotha-be/internal/config"
	"jotha-be/internal/dto"
	"jotha-be/internal/pkg/logger"
	"jotha-be/internal/service"
	"jotha-be/pkg/database"
	"jotha-be/pkg/events"
	pktNats "jotha-be/pkg/nats"
	"jotha-be/pkg/store"
	"jotha-be/pkg/utils"

	"github.com/fatih/color"
)

var (
	dataDir = flag.String("data", "data", "Directory holding faq.pdf, leis/ and planos/")
	only    = flag.String("only", "", "Index a single corpus: faq, legal or planos")
)

type corpusSource struct {
	corpus string
	load   func() ([]dto.PassageDraft, error)
}

func main() {
	flag.Parse()

	cfg := config.Load()
	log := logger.NewIsolatedLogger(filepath.Join(filepath.Dir(cfg.App.LogFilePath), "indexer.log"))
	defer log.Sync()

	color.Cyan("📚 JOTHA indexer\n")

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.LogLevelFor(cfg.IsProduction()))
	if err != nil {
		color.Red("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	var eventPublisher events.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			color.Yellow("NATS unavailable, indexing without events: %v", err)
		} else {
			defer natsPub.Close()
			eventPublisher = natsPub
		}
	}

	var (
		mu      sync.Mutex
		reports []service.IndexReport
	)
	ingestion, err := bootstrap.NewIngestion(db, cfg, log, eventPublisher, func(r service.IndexReport) {
		mu.Lock()
		reports = append(reports, r)
		mu.Unlock()
	})
	if err != nil {
		color.Red("Failed to build ingestion: %v", err)
		os.Exit(1)
	}
	defer ingestion.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := ingestion.Consumer.Consume(ctx); err != nil {
		color.Red("Failed to start consumer: %v", err)
		os.Exit(1)
	}

	sources := []corpusSource{
		{store.CorpusFAQ, func() ([]dto.PassageDraft, error) { return loadFAQ(filepath.Join(*dataDir, "faq.pdf")) }},
		{store.CorpusLegal, func() ([]dto.PassageDraft, error) { return loadDir(filepath.Join(*dataDir, "leis"), false) }},
		{store.CorpusCurriculum, func() ([]dto.PassageDraft, error) { return loadDir(filepath.Join(*dataDir, "planos"), true) }},
	}

	failed := false
	for _, src := range sources {
		if *only != "" && *only != src.corpus {
			continue
		}

		color.Yellow("\n[%s] Reading documents", src.corpus)
		drafts, err := src.load()
		if err != nil {
			color.Red("[%s] Skipped: %v", src.corpus, err)
			failed = true
			continue
		}
		if len(drafts) == 0 {
			color.Red("[%s] Skipped: no text extracted", src.corpus)
			failed = true
			continue
		}
		fmt.Printf("[%s] %d passages, embedding...\n", src.corpus, len(drafts))

		// Blocks until the consumer acked, so the report is already collected.
		if err := ingestion.Publisher.PublishCorpus(ctx, src.corpus, drafts); err != nil {
			color.Red("[%s] Publish failed: %v", src.corpus, err)
			failed = true
		}
	}

	mu.Lock()
	defer mu.Unlock()
	fmt.Println()
	for _, r := range reports {
		if r.Err != nil {
			color.Red("✗ %s: %v", r.Corpus, r.Err)
			failed = true
			continue
		}
		color.Green("✓ %s: %d passages indexed", r.Corpus, r.Passages)
	}

	if failed {
		os.Exit(1)
	}
}

func loadFAQ(path string) ([]dto.PassageDraft, error) {
	text, err := utils.ReadPDFFile(path)
	if err != nil {
		return nil, err
	}
	return service.FAQPassages(text, filepath.Base(path)), nil
}

// loadDir chunks every PDF of a directory. Curriculum plans take their
// course from the file name; legal texts are general.
func loadDir(dir string, perCourse bool) ([]dto.PassageDraft, error) {
	files, err := utils.ListPDFs(dir)
	if err != nil {
		return nil, err
	}

	var drafts []dto.PassageDraft
	for _, path := range files {
		text, err := utils.ReadPDFFile(path)
		if err != nil {
			color.Red("  %s: %v", filepath.Base(path), err)
			continue
		}

		courseName := ""
		if perCourse {
			courseName = utils.CourseFromFileName(path)
		}
		chunks := service.DocumentPassages(text, filepath.Base(path), courseName)
		fmt.Printf("  %s: %d chunks\n", filepath.Base(path), len(chunks))
		drafts = append(drafts, chunks...)
	}
	return drafts, nil
}
