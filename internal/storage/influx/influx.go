// Package influx records frames as InfluxDB points. When the server cannot
// be reached, points are written as gzipped line protocol to a backup file
// that can be replayed later.
package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/nixta/mapanimations/internal/config"
	"github.com/nixta/mapanimations/pkg/core"
)

const (
	measurementSession = "session"
	measurementGraphic = "graphic"
	measurementMarker  = "marker_state"
	measurementLine    = "line_state"

	retentionSeconds = 60 * 60 * 24 * 90 // 90 days
	pingTimeout      = 5 * time.Second
)

// ErrNotInitialized is returned when writing before Init.
var ErrNotInitialized = errors.New("influx backend not initialized")

// Backend writes frames to one InfluxDB bucket, or to a gzip backup file.
type Backend struct {
	cfg config.InfluxConfig
	log *slog.Logger

	client influxdb2.Client
	writer influxdb2_api.WriteAPI

	mu         sync.Mutex
	backupFile *os.File
	backup     *gzip.Writer
	backupPath string

	sessionID uint
	nextID    uint
}

// New creates an InfluxDB backend. No connection is made until Init.
func New(cfg config.InfluxConfig, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		cfg: cfg,
		log: logger.With("component", "influx"),
	}
}

// ServerURL is the base URL built from protocol, host and port.
func ServerURL(cfg config.InfluxConfig) string {
	protocol := cfg.Protocol
	if protocol == "" {
		protocol = "http"
	}
	return fmt.Sprintf("%s://%s:%s", protocol, cfg.Host, cfg.Port)
}

// Init connects to InfluxDB, ensuring the org and bucket exist. If the
// server does not answer a ping, a backup file is opened instead.
func (b *Backend) Init() error {
	b.client = influxdb2.NewClientWithOptions(
		ServerURL(b.cfg),
		b.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	running, err := b.client.Ping(ctx)
	if err != nil || !running {
		b.log.Warn("InfluxDB not reachable, writing to backup file", "url", ServerURL(b.cfg), "error", err)
		b.client.Close()
		b.client = nil
		return b.openBackup()
	}

	if err := b.setupOrganizationAndBucket(context.Background()); err != nil {
		return err
	}

	b.writer = b.client.WriteAPI(b.cfg.Org, b.cfg.Bucket)
	go func(errorsCh <-chan error) {
		for writeErr := range errorsCh {
			b.log.Error("Error sending data to InfluxDB", "bucket", b.cfg.Bucket, "error", writeErr)
		}
	}(b.writer.Errors())

	b.log.Info("InfluxDB client initialized", "bucket", b.cfg.Bucket)
	return nil
}

func (b *Backend) setupOrganizationAndBucket(ctx context.Context) error {
	orgs := b.client.OrganizationsAPI()
	org, err := orgs.FindOrganizationByName(ctx, b.cfg.Org)
	if err != nil {
		b.log.Info("Organization not found, creating", "org", b.cfg.Org)
		org, err = orgs.CreateOrganizationWithName(ctx, b.cfg.Org)
		if err != nil {
			return fmt.Errorf("error creating organization %s: %w", b.cfg.Org, err)
		}
	}

	buckets := b.client.BucketsAPI()
	if _, err := buckets.FindBucketByName(ctx, b.cfg.Bucket); err != nil {
		b.log.Info("Bucket not found, creating", "bucket", b.cfg.Bucket)
		rule := domain.RetentionRuleTypeExpire
		_, err = buckets.CreateBucketWithName(ctx, org, b.cfg.Bucket, domain.RetentionRule{
			Type:         &rule,
			EverySeconds: retentionSeconds,
		})
		if err != nil {
			return fmt.Errorf("error creating bucket %s: %w", b.cfg.Bucket, err)
		}
	}
	return nil
}

func (b *Backend) openBackup() error {
	dir := b.cfg.BackupDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.lp.gz", b.cfg.Bucket, time.Now().Format("20060102_150405")))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	b.backupFile = f
	b.backup = gzip.NewWriter(f)
	b.backupPath = path
	return nil
}

// Online reports whether points go to the server rather than the backup file.
func (b *Backend) Online() bool {
	return b.writer != nil
}

// BackupPath returns the backup file path, empty when online.
func (b *Backend) BackupPath() string {
	return b.backupPath
}

// Close flushes pending points and releases the client or backup file.
func (b *Backend) Close() error {
	if b.writer != nil {
		b.writer.Flush()
	}
	if b.client != nil {
		b.client.Close()
		b.client = nil
		b.writer = nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.backup == nil {
		return nil
	}
	err := errors.Join(b.backup.Close(), b.backupFile.Close())
	b.backup, b.backupFile = nil, nil
	return err
}

// writePoint sends a point to InfluxDB or appends it to the backup file.
func (b *Backend) writePoint(p *influxdb2_write.Point) error {
	if b.writer != nil {
		b.writer.WritePoint(p)
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.backup == nil {
		return ErrNotInitialized
	}
	line := influxdb2_write.PointToLineProtocol(p, time.Nanosecond)
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	if _, err := b.backup.Write([]byte(line)); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

func (b *Backend) flush() error {
	if b.writer != nil {
		b.writer.Flush()
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.backup == nil {
		return nil
	}
	return b.backup.Flush()
}

// StartSession assigns the session ID and records a session start point.
func (b *Backend) StartSession(s *core.Session) error {
	b.nextID++
	s.ID = b.nextID
	b.sessionID = s.ID

	return b.writePoint(sessionPoint(s, "start", s.StartTime))
}

// EndSession records a session end point and flushes.
func (b *Backend) EndSession() error {
	if b.sessionID == 0 {
		return nil
	}
	end := time.Now()
	p := influxdb2_write.NewPoint(measurementSession,
		map[string]string{"session": b.sessionKey()},
		map[string]any{"event": "end"},
		end,
	)
	b.sessionID = 0
	if err := b.writePoint(p); err != nil {
		return err
	}
	return b.flush()
}

func (b *Backend) AddGraphic(g *core.Graphic) error {
	return b.writePoint(graphicPoint(b.sessionKey(), g))
}

func (b *Backend) RecordMarkerState(s *core.MarkerState) error {
	return b.writePoint(markerPoint(b.sessionKey(), s))
}

func (b *Backend) RecordLineState(s *core.LineState) error {
	return b.writePoint(linePoint(b.sessionKey(), s))
}

func (b *Backend) sessionKey() string {
	return strconv.FormatUint(uint64(b.sessionID), 10)
}

func pointTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

func sessionPoint(s *core.Session, event string, at time.Time) *influxdb2_write.Point {
	return influxdb2_write.NewPoint(measurementSession,
		map[string]string{
			"session":  strconv.FormatUint(uint64(s.ID), 10),
			"scenario": s.Scenario,
		},
		map[string]any{
			"event":            event,
			"origin":           s.Origin,
			"fps":              s.FPS,
			"spatialReference": s.SpatialReference,
		},
		pointTime(at),
	)
}

func graphicPoint(session string, g *core.Graphic) *influxdb2_write.Point {
	return influxdb2_write.NewPoint(measurementGraphic,
		map[string]string{
			"session": session,
			"graphic": strconv.FormatUint(uint64(g.ID), 10),
			"overlay": g.Overlay,
			"kind":    string(g.Kind),
		},
		map[string]any{"name": g.Name},
		pointTime(g.CreatedAt),
	)
}

func markerPoint(session string, s *core.MarkerState) *influxdb2_write.Point {
	return influxdb2_write.NewPoint(measurementMarker,
		map[string]string{
			"session": session,
			"graphic": strconv.FormatUint(uint64(s.GraphicID), 10),
		},
		map[string]any{
			"frame":   s.Frame,
			"x":       s.Position.X,
			"y":       s.Position.Y,
			"z":       s.Position.Z,
			"heading": s.Heading,
			"visible": s.Visible,
		},
		pointTime(s.Time),
	)
}

func linePoint(session string, s *core.LineState) *influxdb2_write.Point {
	fields := map[string]any{
		"frame":   s.Frame,
		"points":  len(s.Points),
		"visible": s.Visible,
	}
	if n := len(s.Points); n > 0 {
		head := s.Points[n-1]
		fields["x"] = head.X
		fields["y"] = head.Y
		fields["z"] = head.Z
	}
	return influxdb2_write.NewPoint(measurementLine,
		map[string]string{
			"session": session,
			"graphic": strconv.FormatUint(uint64(s.GraphicID), 10),
		},
		fields,
		pointTime(s.Time),
	)
}
