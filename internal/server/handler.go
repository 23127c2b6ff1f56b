package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"gdp-chart/internal/features/chart_pipeline"
	"gdp-chart/internal/features/gdp_chart"
	"gdp-chart/internal/infra/log"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Renderer produces an artifact for a scene; chart_pipeline.Pipeline implements it.
type Renderer interface {
	Bytes(scene *gdp_chart.Scene, format chart_pipeline.Format) ([]byte, error)
}

// ChartHandler serves the current scene.
type ChartHandler struct {
	holder   *SceneHolder
	renderer Renderer
}

func NewChartHandler(holder *SceneHolder, renderer Renderer) *ChartHandler {
	return &ChartHandler{holder: holder, renderer: renderer}
}

func (h *ChartHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.page)
	e.GET("/chart.svg", h.artifact(chart_pipeline.FormatSVG))
	e.GET("/chart.png", h.artifact(chart_pipeline.FormatPNG))
	e.GET("/api/dataset", h.dataset)
	e.GET("/api/bars/:index/hover", h.hover)
	e.GET("/healthz", h.health)
}

var errNotLoaded = echo.NewHTTPError(http.StatusServiceUnavailable, "chart data is not loaded yet")

func (h *ChartHandler) scene() (*gdp_chart.Scene, time.Time, error) {
	scene, at, ok := h.holder.Current()
	if !ok {
		return nil, time.Time{}, errNotLoaded
	}
	return scene, at, nil
}

func (h *ChartHandler) page(c echo.Context) error {
	return h.artifact(chart_pipeline.FormatHTML)(c)
}

func (h *ChartHandler) artifact(format chart_pipeline.Format) echo.HandlerFunc {
	return func(c echo.Context) error {
		scene, at, err := h.scene()
		if err != nil {
			return err
		}
		body, err := h.renderer.Bytes(scene, format)
		if err != nil {
			log.LogError("Failed to render chart", zap.String("format", string(format)), zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to render chart")
		}
		c.Response().Header().Set(echo.HeaderLastModified, at.UTC().Format(http.TimeFormat))
		c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=300")
		return c.Blob(http.StatusOK, format.ContentType(), body)
	}
}

type datasetResponse struct {
	*gdp_chart.Dataset
	Points   int       `json:"points"`
	LoadedAt time.Time `json:"loaded_at"`
}

func (h *ChartHandler) dataset(c echo.Context) error {
	scene, at, err := h.scene()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, datasetResponse{
		Dataset:  scene.Dataset,
		Points:   len(scene.Bars),
		LoadedAt: at.UTC(),
	})
}

type hoverResponse struct {
	Enter gdp_chart.HoverState `json:"enter"`
	Leave gdp_chart.HoverState `json:"leave"`
}

// hover returns the enter state for one bar and the state after the pointer leaves it.
func (h *ChartHandler) hover(c echo.Context) error {
	scene, _, err := h.scene()
	if err != nil {
		return err
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "bar index must be an integer")
	}
	enter, leave, err := scene.Hover(index)
	if err != nil {
		if errors.Is(err, gdp_chart.ErrBarOutOfRange) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(http.StatusOK, hoverResponse{Enter: enter, Leave: leave})
}

type healthResponse struct {
	Status   string     `json:"status"`
	Ready    bool       `json:"ready"`
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
}

func (h *ChartHandler) health(c echo.Context) error {
	_, at, ok := h.holder.Current()
	resp := healthResponse{Status: "ok", Ready: ok}
	if ok {
		t := at.UTC()
		resp.LoadedAt = &t
	}
	return c.JSON(http.StatusOK, resp)
}
