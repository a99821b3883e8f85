// Package wire provides dependency injection for the UPSHOT application.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"io"
	"log"
	"os"
	"sync"

	"go.uber.org/zap"

	cliadapter "github.com/example/upshot/internal/adapters/cli"
	"github.com/example/upshot/internal/adapters/filesystem"
	"github.com/example/upshot/internal/adapters/sqlite"
	"github.com/example/upshot/internal/adapters/xlsx"
	"github.com/example/upshot/internal/app"
	"github.com/example/upshot/internal/config"
	"github.com/example/upshot/internal/db"
	"github.com/example/upshot/internal/logger"
	"github.com/example/upshot/internal/ports/primary"
)

var (
	configPath string

	cfg               *config.Config
	zapLogger         *zap.Logger
	database          *sql.DB
	rosterService     primary.RosterService
	syllabusService   primary.SyllabusService
	importService     primary.ImportService
	evaluationService primary.EvaluationService
	once              sync.Once
)

// SetConfigPath selects the config file used on first initialization.
// An empty path searches ./upshot.yaml and ~/.upshot/upshot.yaml.
func SetConfigPath(path string) {
	configPath = path
}

// Config returns the loaded configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// Logger returns the application logger.
func Logger() *zap.Logger {
	once.Do(initServices)
	return zapLogger
}

// DB returns the initialized database connection.
func DB() *sql.DB {
	once.Do(initServices)
	return database
}

// RosterService returns the singleton RosterService instance.
func RosterService() primary.RosterService {
	once.Do(initServices)
	return rosterService
}

// SyllabusService returns the singleton SyllabusService instance.
func SyllabusService() primary.SyllabusService {
	once.Do(initServices)
	return syllabusService
}

// ImportService returns the singleton ImportService instance.
func ImportService() primary.ImportService {
	once.Do(initServices)
	return importService
}

// EvaluationService returns the singleton EvaluationService instance.
func EvaluationService() primary.EvaluationService {
	once.Do(initServices)
	return evaluationService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zapLogger, err = logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	if cfg.Database.Path != "" {
		db.SetPath(cfg.Database.Path)
	}
	database, err = db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Secondary adapters
	upgraderRepo := sqlite.NewUpgraderRepository(database)
	completionRepo := sqlite.NewCompletionRepository(database)
	syllabusRepo := sqlite.NewSyllabusRepository(database)
	dataSetRepo := sqlite.NewDataSetRepository(database)
	loader := filesystem.NewDocumentLoader()
	exporter := xlsx.NewCohortExporter()

	matcher := cfg.MatcherOptions()
	roster := app.NewRosterService(upgraderRepo, completionRepo, loader, matcher, zapLogger.Named("roster"))

	rosterService = roster
	syllabusService = app.NewSyllabusService(syllabusRepo, loader, zapLogger.Named("syllabus"))
	importService = app.NewImportService(upgraderRepo, completionRepo, dataSetRepo, loader, matcher,
		cfg.Engine.Concurrency, zapLogger.Named("import"))
	evaluationService = app.NewEvaluationService(roster, upgraderRepo, completionRepo, syllabusRepo, exporter,
		cfg.ToEngineConfig(), cfg.Engine.Concurrency, zapLogger.Named("evaluation"))
}

// RosterAdapter returns a new RosterAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func RosterAdapter() *cliadapter.RosterAdapter {
	return RosterAdapterWithOutput(os.Stdout)
}

// RosterAdapterWithOutput returns a new RosterAdapter writing to the given output.
func RosterAdapterWithOutput(out io.Writer) *cliadapter.RosterAdapter {
	return cliadapter.NewRosterAdapter(RosterService(), out)
}

// SyllabusAdapter returns a new SyllabusAdapter writing to stdout.
func SyllabusAdapter() *cliadapter.SyllabusAdapter {
	return cliadapter.NewSyllabusAdapter(SyllabusService(), os.Stdout)
}

// ImportAdapter returns a new ImportAdapter writing to stdout.
func ImportAdapter() *cliadapter.ImportAdapter {
	return cliadapter.NewImportAdapter(ImportService(), os.Stdout)
}

// EvaluationAdapter returns a new EvaluationAdapter writing to stdout.
func EvaluationAdapter() *cliadapter.EvaluationAdapter {
	return EvaluationAdapterWithOutput(os.Stdout)
}

// EvaluationAdapterWithOutput returns a new EvaluationAdapter writing to the given output.
func EvaluationAdapterWithOutput(out io.Writer) *cliadapter.EvaluationAdapter {
	return cliadapter.NewEvaluationAdapter(EvaluationService(), out)
}

// Sync flushes buffered log entries. Safe to call when nothing was initialized.
func Sync() {
	if zapLogger != nil {
		_ = zapLogger.Sync()
	}
}
