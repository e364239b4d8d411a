// Package pipeline runs the baseline evaluation end to end: read both
// corpora, normalize, vectorize over the training vocabulary, fit naive Bayes
// on the training set and score it on the test set.
package pipeline

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	classifier "github.com/samuel/nbbaseline"
	"github.com/samuel/nbbaseline/internal/config"
	"github.com/samuel/nbbaseline/internal/logger"
	"github.com/samuel/nbbaseline/internal/metrics"
)

// Result summarizes a completed run.
type Result struct {
	RunID          string
	TrainDocuments int
	TestDocuments  int
	VocabularySize int
	Labels         []string
	Accuracy       float64
}

// Run executes one evaluation with cfg. Every stage completes before the
// next starts; the first error aborts the run. m may be nil.
func Run(cfg *config.Config, m *metrics.Metrics) (*Result, error) {
	runID := uuid.New().String()
	log := logger.WithComponent("pipeline").With("run_id", runID)
	if m == nil {
		m = metrics.New()
	}
	stage := func(name string, start time.Time) {
		d := time.Since(start)
		m.StageDuration.WithLabelValues(name).Set(d.Seconds())
		log.Debug("stage complete", "stage", name, "duration", d)
	}

	start := time.Now()
	train, err := readCorpus(log, m, "train", cfg.Corpus.Train)
	if err != nil {
		return nil, err
	}
	test, err := readCorpus(log, m, "test", cfg.Corpus.Test)
	if err != nil {
		return nil, err
	}
	stage("read", start)

	start = time.Now()
	trainDocs := classifier.NormalizeAll(train.Documents, cfg.Workers)
	testDocs := classifier.NormalizeAll(test.Documents, cfg.Workers)
	stage("normalize", start)

	start = time.Now()
	cv := classifier.NewCountVectorizer(cfg.Vectorizer.MinDF, classifier.WhitespaceTokenizer)
	cv.Workers = cfg.Workers
	xTrain, err := cv.FitTransform(trainDocs)
	if err != nil {
		return nil, fmt.Errorf("vectorizing train corpus: %w", err)
	}
	xTest, err := cv.Transform(testDocs)
	if err != nil {
		return nil, fmt.Errorf("vectorizing test corpus: %w", err)
	}
	vocabSize := len(cv.Vocabulary())
	m.VocabularySize.Set(float64(vocabSize))
	log.Info("vocabulary fitted", "tokens", vocabSize, "min_df", cv.MinDF)
	stage("vectorize", start)

	start = time.Now()
	store, closeStore, err := OpenStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	defer closeLogged(log, "store", cfg.Store.Driver, closeStore)
	nb, err := classifier.NewMultinomialNB(store, cfg.Classifier.Smoothing)
	if err != nil {
		return nil, err
	}
	if err := nb.Fit(xTrain, train.Labels); err != nil {
		return nil, fmt.Errorf("fitting classifier: %w", err)
	}
	labels := nb.Labels()
	m.Labels.Set(float64(len(labels)))
	log.Info("classifier fitted", "labels", len(labels), "smoothing", nb.Smoothing(), "store", cfg.Store.Driver)
	stage("fit", start)

	start = time.Now()
	accuracy, err := nb.Score(xTest, test.Labels)
	if err != nil {
		return nil, fmt.Errorf("scoring test corpus: %w", err)
	}
	m.TestAccuracy.Set(accuracy)
	stage("score", start)
	log.Info("run complete", "accuracy", accuracy)

	return &Result{
		RunID:          runID,
		TrainDocuments: train.Len(),
		TestDocuments:  test.Len(),
		VocabularySize: vocabSize,
		Labels:         labels,
		Accuracy:       accuracy,
	}, nil
}

func readCorpus(log *slog.Logger, m *metrics.Metrics, name, path string) (*classifier.Corpus, error) {
	c, err := classifier.ReadCorpusFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s corpus: %w", name, err)
	}
	m.DocumentsRead.WithLabelValues(name).Add(float64(c.Len()))
	log.Info("corpus read", "corpus", name, "path", path, "documents", c.Len())
	return c, nil
}

// closeLogged calls closeFn and logs a failure at debug level. The run's
// result is already decided by the time it is called.
func closeLogged(log *slog.Logger, what, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		log.Debug("close failed", what, name, "error", err)
	}
}

// OpenStore returns the count store selected by cfg and a function that
// releases it.
func OpenStore(cfg config.StoreConfig) (classifier.Store, func() error, error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		return classifier.NewLocalStore(), func() error { return nil }, nil
	case config.DriverSQLite:
		db, err := sql.Open(config.DriverSQLite, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		// every connection to ":memory:" is a separate database
		db.SetMaxOpenConns(1)
		if err := classifier.CreateSQLTables(db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("creating sqlite tables: %w", err)
		}
		store, err := classifier.NewSQLStore(db)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("preparing sqlite store: %w", err)
		}
		return store, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
