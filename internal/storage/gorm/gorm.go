// Package gormstorage implements the storage.Backend interface on GORM with
// internal queues and a background DB writer goroutine. The sqlite and
// postgres backends wrap it with their own connection handling.
package gormstorage

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nixta/mapanimations/internal/model"
	"github.com/nixta/mapanimations/internal/model/convert"
	"github.com/nixta/mapanimations/internal/queue"
	"github.com/nixta/mapanimations/pkg/core"

	"gorm.io/gorm"
)

const (
	// DefaultFlushInterval is how often queued rows are written.
	DefaultFlushInterval = 2 * time.Second

	batchSize  = 2000
	queueLimit = 1_000_000
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB
	Logger        *slog.Logger
	FlushInterval time.Duration
}

// queues holds all the write queues for batch DB insertion.
type queues struct {
	Graphics     *queue.Queue[model.Graphic]
	MarkerStates *queue.Queue[model.MarkerState]
	LineStates   *queue.Queue[model.LineState]
}

func newQueues() *queues {
	return &queues{
		Graphics:     queue.New[model.Graphic](),
		MarkerStates: queue.NewBounded[model.MarkerState](queueLimit),
		LineStates:   queue.NewBounded[model.LineState](queueLimit),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
// Without a DB it only queues.
type Backend struct {
	deps      Dependencies
	log       *slog.Logger
	queues    *queues
	session   *core.Session
	sessionID atomic.Uint64
	lastID    atomic.Uint64

	// serializes queue drains between the writer goroutine and EndSession
	writeMu sync.Mutex

	stopChan chan struct{}
	done     chan struct{}
	once     sync.Once
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = DefaultFlushInterval
	}
	return &Backend{
		deps: deps,
		log:  deps.Logger.With("component", "gormstorage"),
	}
}

// DB returns the underlying connection, nil in queue-only mode.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init creates internal queues, runs schema migration, and starts the DB writer goroutine.
func (b *Backend) Init() error {
	b.queues = newQueues()
	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})

	if b.deps.DB == nil {
		close(b.done)
		return nil
	}

	b.log.Info("Migrating schema")
	if err := b.deps.DB.AutoMigrate(model.DatabaseModels...); err != nil {
		close(b.done)
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	b.log.Info("Database setup complete")

	go b.writerLoop()
	return nil
}

// Close stops the DB writer goroutine after a final drain.
func (b *Backend) Close() error {
	if b.stopChan == nil {
		return nil
	}
	b.once.Do(func() { close(b.stopChan) })
	<-b.done
	return nil
}

// StartSession inserts the session row and assigns its ID.
func (b *Backend) StartSession(s *core.Session) error {
	if b.deps.DB == nil {
		s.ID = uint(b.lastID.Add(1))
	} else {
		row := convert.CoreToSession(*s)
		if err := b.deps.DB.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to insert new session: %w", err)
		}
		s.ID = row.ID
	}
	b.session = s
	b.sessionID.Store(uint64(s.ID))
	b.log.Info("Session started", "session", s.ID, "scenario", s.Scenario)
	return nil
}

// EndSession writes everything still queued and stamps the session end time.
func (b *Backend) EndSession() error {
	if b.session == nil {
		return nil
	}
	if b.session.EndTime.IsZero() {
		b.session.EndTime = time.Now()
	}

	if b.deps.DB != nil {
		b.flush()
		err := b.deps.DB.Model(&model.Session{}).
			Where("id = ?", b.session.ID).
			Update("end_time", b.session.EndTime).Error
		if err != nil {
			return fmt.Errorf("failed to update session end time: %w", err)
		}
	}

	if dropped := b.queues.MarkerStates.Dropped() + b.queues.LineStates.Dropped(); dropped > 0 {
		b.log.Warn("Frames dropped by full write queue", "count", dropped)
	}
	b.log.Info("Session ended", "session", b.session.ID)
	b.session = nil
	return nil
}

// AddGraphic converts a core graphic to GORM and pushes to the write queue.
func (b *Backend) AddGraphic(g *core.Graphic) error {
	row := convert.CoreToGraphic(*g)
	row.SessionID = b.currentSession()
	b.queues.Graphics.Push(row)
	return nil
}

// RecordMarkerState converts and queues a marker state.
func (b *Backend) RecordMarkerState(s *core.MarkerState) error {
	row := convert.CoreToMarkerState(*s)
	row.SessionID = b.currentSession()
	b.queues.MarkerStates.Push(row)
	return nil
}

// RecordLineState converts and queues a line state.
func (b *Backend) RecordLineState(s *core.LineState) error {
	row := convert.CoreToLineState(*s)
	row.SessionID = b.currentSession()
	b.queues.LineStates.Push(row)
	return nil
}

// Pending returns the number of queued, unwritten rows.
func (b *Backend) Pending() int {
	if b.queues == nil {
		return 0
	}
	return b.queues.Graphics.Len() + b.queues.MarkerStates.Len() + b.queues.LineStates.Len()
}

func (b *Backend) currentSession() uint {
	return uint(b.sessionID.Load())
}

// writeQueue writes all items from a queue to the database, one transaction
// per batch. A failed batch goes back to the head of the queue for the next
// cycle.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log *slog.Logger) {
	for !q.Empty() {
		items := q.Take(batchSize)

		tx := db.Begin()
		if err := tx.Create(&items).Error; err != nil {
			log.Error("Error creating rows", "table", name, "count", len(items), "error", err)
			tx.Rollback()
			q.PushFront(items...)
			return
		}
		if err := tx.Commit().Error; err != nil {
			log.Error("Error committing rows", "table", name, "count", len(items), "error", err)
			q.PushFront(items...)
			return
		}
		log.Debug("Wrote rows", "table", name, "count", len(items))
	}
}

func (b *Backend) flush() {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	// graphics first so states never precede their graphic
	writeQueue(b.deps.DB, b.queues.Graphics, "graphics", b.log)
	writeQueue(b.deps.DB, b.queues.MarkerStates, "marker states", b.log)
	writeQueue(b.deps.DB, b.queues.LineStates, "line states", b.log)
}

// writerLoop periodically drains the queues into the DB.
func (b *Backend) writerLoop() {
	defer close(b.done)

	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			b.flush()
			return
		case <-ticker.C:
			b.flush()
		}
	}
}
