package pattern

import (
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ezoic/vipattern/core/dataset"
	"github.com/ezoic/vipattern/core/model"
	"github.com/ezoic/vipattern/metrics"
	"github.com/ezoic/vipattern/pkg/log"
	"github.com/ezoic/vipattern/preprocessing"
)

// Engine discovers patterns in one dataset at a time.
type Engine struct {
	state  *model.StateManager
	logger log.Logger

	binSize int
	src     rand.Source
	workers int

	binner *preprocessing.Binner
	scorer *metrics.Scorer

	mu   sync.RWMutex
	data *snapshotState
}

// snapshotState is replaced as a whole by Init and never mutated after,
// except for the pattern cache, which is guarded by Engine.mu.
type snapshotState struct {
	snap       *dataset.Snapshot
	generation uuid.UUID
	patterns   []Pattern
}

// NewEngine creates an engine in the Uninitialized state.
//
// Parameters:
//   - options: WithBinSize, WithSeed / WithRandomSource, WithWorkers, WithLogger
//
// Returns:
//   - *Engine: an engine whose discovery calls return empty results until Init
//
// Example:
//
//	engine := pattern.NewEngine(pattern.WithBinSize(16), pattern.WithWorkers(4))
func NewEngine(options ...Option) *Engine {
	e := &Engine{
		state:   model.NewStateManager(),
		binSize: preprocessing.DefaultBinSize,
	}
	for _, opt := range options {
		opt(e)
	}

	if e.logger == nil {
		e.logger = log.GetLoggerWithName("pattern")
	}
	e.logger = e.logger.With(log.ComponentKey, "pattern.Engine")

	if e.workers <= 0 {
		e.workers = runtime.GOMAXPROCS(0)
	}

	binner, err := preprocessing.NewBinner(e.binSize, e.src)
	if err != nil {
		e.logger.Warn("Invalid bin size, using default",
			log.BinSizeKey, e.binSize,
			log.ErrorKey, err.Error(),
		)
		e.binSize = preprocessing.DefaultBinSize
		binner, _ = preprocessing.NewBinner(e.binSize, e.src)
	}
	e.binner = binner
	e.scorer = metrics.NewScorer(binner)
	e.data = &snapshotState{snap: dataset.Empty()}
	return e
}

// BinSize returns the number of bins in use.
func (e *Engine) BinSize() int { return e.binSize }

// State returns the lifecycle state.
func (e *Engine) State() model.State { return e.state.State() }

// Generation returns the id of the dataset loaded by the latest Init, or
// uuid.Nil before the first Init.
func (e *Engine) Generation() uuid.UUID { return e.state.Generation() }

// Init replaces the dataset and clears cached patterns.
//
// The new snapshot is built before the engine lock is taken; readers see
// either the old dataset or the new one, never a mix. An empty dataset or
// field list is accepted and makes every discovery call return an empty
// result.
//
// Parameters:
//   - rows: records keyed by field id
//   - fields: field metadata; ids must be unique
//
// Returns:
//   - error: FieldError if two fields share an id; the previous dataset is kept
func (e *Engine) Init(rows []dataset.Row, fields []dataset.FieldMeta) error {
	start := time.Now()
	snap, err := dataset.NewSnapshot(rows, fields)
	if err != nil {
		e.logger.Error("Init rejected", log.OperationKey, log.OperationInit, log.ErrorKey, err)
		return err
	}

	e.mu.Lock()
	gen := e.state.SetReady()
	e.data = &snapshotState{snap: snap, generation: gen}
	e.mu.Unlock()

	e.logger.Info("Dataset loaded",
		log.OperationKey, log.OperationInit,
		log.GenerationKey, gen.String(),
		log.RowsKey, snap.Len(),
		log.MeasuresKey, len(snap.Measures()),
		log.DimensionsKey, len(snap.Dimensions()),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// current returns the dataset to analyse. ok is false when there is
// nothing to analyse: before Init, or with no rows.
func (e *Engine) current() (*snapshotState, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	d := e.data
	return d, e.state.IsReady() && d.snap.Len() > 0
}

// begin logs the start of an operation and returns a function that logs
// its completion.
func (e *Engine) begin(op string, d *snapshotState) func(kv ...interface{}) {
	start := time.Now()
	logger := e.logger.With(log.OperationKey, op, log.GenerationKey, d.generation.String())
	logger.Debug("Operation started")
	return func(kv ...interface{}) {
		kv = append(kv, log.DurationMsKey, time.Since(start).Milliseconds())
		logger.Info("Operation completed", kv...)
	}
}
