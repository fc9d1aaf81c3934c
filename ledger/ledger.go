// Package ledger records evaluation runs in a SQLite database.
package ledger

import (
	"context"
	"database/sql"
	"embed"
	"sort"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/hscells/tagpipe/eval"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// timeFormat sorts lexically in time order.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SplitRecord is what a run measured on one split.
type SplitRecord struct {
	Split string
	// Points is the length of the full precision-recall curve, Stride the step it was downsampled with.
	Points int
	Stride int
	Scores map[string]float64
}

// Run is one evaluation of a model.
type Run struct {
	ID           string
	CreatedAt    time.Time
	ModelPath    string
	FeaturesPath string
	MaxPoints    int
	Splits       []SplitRecord
}

// NewRun creates a run with a fresh id from the reports of an evaluation.
func NewRun(modelPath, featuresPath string, maxPoints int, reports []eval.Report) Run {
	r := Run{
		ID:           uuid.New().String(),
		CreatedAt:    time.Now().UTC(),
		ModelPath:    modelPath,
		FeaturesPath: featuresPath,
		MaxPoints:    maxPoints,
	}
	for _, report := range reports {
		r.Splits = append(r.Splits, SplitRecord{
			Split:  report.Split,
			Points: report.Points,
			Stride: report.Stride,
			Scores: report.Scores,
		})
	}
	return r
}

// Ledger is an open run database.
type Ledger struct {
	db *sql.DB
	m  *migrate.Migrate
}

// Open opens the database at path, creating it and applying pending migrations.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	l := &Ledger{db: db}
	if err := l.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	log.Debug().Msgf("[migrate] "+format, v...)
}

func (migrateLogger) Verbose() bool {
	return false
}

func (l *Ledger) migrateUp() error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return errors.Wrap(err, "loading migrations")
	}
	driver, err := sqlite.WithInstance(l.db, &sqlite.Config{})
	if err != nil {
		return errors.Wrap(err, "creating sqlite driver")
	}
	// Closing m would close the database, so it lives as long as the ledger.
	l.m, err = migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return errors.Wrap(err, "creating migrate instance")
	}
	l.m.Log = migrateLogger{}
	if err := l.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "migration up failed")
	}
	return nil
}

// Version returns the schema version of the database.
func (l *Ledger) Version() (uint, error) {
	v, dirty, err := l.m.Version()
	if err != nil {
		return 0, err
	}
	if dirty {
		return v, errors.Errorf("schema version %d is dirty", v)
	}
	return v, nil
}

// Record stores a run.
func (l *Ledger) Record(ctx context.Context, r Run) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, created_at, model_path, features_path, max_points) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt.UTC().Format(timeFormat), r.ModelPath, r.FeaturesPath, r.MaxPoints)
	if err != nil {
		return errors.Wrapf(err, "recording run %s", r.ID)
	}
	for _, s := range r.Splits {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_splits (run_id, split, prc_points, prc_stride) VALUES (?, ?, ?, ?)`,
			r.ID, s.Split, s.Points, s.Stride)
		if err != nil {
			return errors.Wrapf(err, "recording split %s", s.Split)
		}
		for measure, value := range s.Scores {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO run_scores (run_id, split, measure, value) VALUES (?, ?, ?, ?)`,
				r.ID, s.Split, measure, value)
			if err != nil {
				return errors.Wrapf(err, "recording %s of split %s", measure, s.Split)
			}
		}
	}
	return tx.Commit()
}

// Runs returns every recorded run, oldest first. Splits keep the order they were recorded in.
func (l *Ledger) Runs(ctx context.Context) ([]Run, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT run_id, created_at, model_path, features_path, max_points FROM runs ORDER BY created_at, run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	index := make(map[string]int)
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &created, &r.ModelPath, &r.FeaturesPath, &r.MaxPoints); err != nil {
			return nil, err
		}
		if r.CreatedAt, err = time.Parse(timeFormat, created); err != nil {
			return nil, errors.Wrapf(err, "run %s", r.ID)
		}
		index[r.ID] = len(runs)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := l.loadSplits(ctx, runs, index); err != nil {
		return nil, err
	}
	return runs, nil
}

func (l *Ledger) loadSplits(ctx context.Context, runs []Run, index map[string]int) error {
	rows, err := l.db.QueryContext(ctx, `SELECT run_id, split, prc_points, prc_stride FROM run_splits ORDER BY rowid`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		s := SplitRecord{Scores: make(map[string]float64)}
		if err := rows.Scan(&id, &s.Split, &s.Points, &s.Stride); err != nil {
			return err
		}
		if i, ok := index[id]; ok {
			runs[i].Splits = append(runs[i].Splits, s)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	scores, err := l.db.QueryContext(ctx, `SELECT run_id, split, measure, value FROM run_scores`)
	if err != nil {
		return err
	}
	defer scores.Close()
	for scores.Next() {
		var id, split, measure string
		var value float64
		if err := scores.Scan(&id, &split, &measure, &value); err != nil {
			return err
		}
		i, ok := index[id]
		if !ok {
			continue
		}
		for _, s := range runs[i].Splits {
			if s.Split == split {
				s.Scores[measure] = value
			}
		}
	}
	return scores.Err()
}

// Best returns the run with the highest value of measure on split, if any run measured it.
func Best(runs []Run, split, measure string) (Run, bool) {
	var candidates []Run
	value := func(r Run) float64 {
		for _, s := range r.Splits {
			if s.Split == split {
				return s.Scores[measure]
			}
		}
		return 0
	}
	for _, r := range runs {
		for _, s := range r.Splits {
			if _, ok := s.Scores[measure]; ok && s.Split == split {
				candidates = append(candidates, r)
				break
			}
		}
	}
	if len(candidates) == 0 {
		return Run{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return value(candidates[i]) > value(candidates[j])
	})
	return candidates[0], true
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}
