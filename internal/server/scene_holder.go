package server

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"gdp-chart/internal/features/gdp_chart"
	"gdp-chart/internal/infra/log"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type snapshot struct {
	scene    *gdp_chart.Scene
	loadedAt time.Time
}

// SceneHolder publishes the current scene to concurrent readers.
// Scenes are immutable, so a reader keeps a consistent view for the whole request.
type SceneHolder struct {
	cur atomic.Pointer[snapshot]
}

func (h *SceneHolder) Store(scene *gdp_chart.Scene, at time.Time) {
	h.cur.Store(&snapshot{scene: scene, loadedAt: at})
}

// Current returns the scene and its load time; ok is false until the first Store.
func (h *SceneHolder) Current() (scene *gdp_chart.Scene, loadedAt time.Time, ok bool) {
	s := h.cur.Load()
	if s == nil {
		return nil, time.Time{}, false
	}
	return s.scene, s.loadedAt, true
}

// SceneLoader builds a fresh scene; chart_pipeline.Pipeline implements it.
type SceneLoader interface {
	Load(ctx context.Context) (*gdp_chart.Scene, error)
}

// Refresher reloads the scene on a cron schedule. A failed reload keeps the previous scene.
type Refresher struct {
	loader  SceneLoader
	holder  *SceneHolder
	timeout time.Duration
}

func NewRefresher(loader SceneLoader, holder *SceneHolder, timeout time.Duration) *Refresher {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Refresher{loader: loader, holder: holder, timeout: timeout}
}

// Refresh loads once and swaps the scene on success.
func (r *Refresher) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	scene, err := r.loader.Load(ctx)
	if err != nil {
		if _, _, ok := r.holder.Current(); ok {
			log.LogWarn("Scene refresh failed, keeping previous scene", zap.Error(err))
		} else {
			log.LogError("Initial scene load failed", zap.Error(err))
		}
		return err
	}
	r.holder.Store(scene, time.Now())
	log.LogSuccess("Scene refreshed",
		zap.Int("bars", len(scene.Bars)),
		zap.Int64("durationMs", time.Since(start).Milliseconds()))
	return nil
}

// Start schedules Refresh on a cron schedule ("@every 1h", "0 */6 * * *", ...). Jobs stop with ctx.
func (r *Refresher) Start(ctx context.Context, schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { _ = r.Refresh(ctx) }); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	c.Start()
	log.LogInfo("Scene refresh scheduled", zap.String("schedule", schedule))

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return nil
}
