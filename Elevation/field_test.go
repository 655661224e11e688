package Elevation

import (
	"math"
	"testing"

	"github.com/GrainArc/EarthWork/Tin"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 平面 z = x 的规则采样网格
func slopedSamples(xmin, xmax, ymin, ymax, step float64) []Tin.Point3D {
	var points []Tin.Point3D
	id := 0
	for x := xmin; x <= xmax; x += step {
		for y := ymin; y <= ymax; y += step {
			points = append(points, Tin.Point3D{X: x, Y: y, Z: x, ID: id})
			id++
		}
	}
	return points
}

func TestEngineConstruction(t *testing.T) {
	t.Run("quantization keeps highest point per cell", func(t *testing.T) {
		points := []Tin.Point3D{
			{X: 0.2, Y: 0.2, Z: 5, ID: 0},
			{X: 0.3, Y: 0.3, Z: 9, ID: 1},
		}

		engine := NewSurfaceElevationEngine(points, 1.0)
		require.Equal(t, 1, engine.SampleCount())

		p := engine.QueryElevation(0.3, 0.3, MethodLinear)
		require.NotNil(t, p.Z)
		assert.InDelta(t, 9.0, *p.Z, 1e-9)
	})

	t.Run("empty input yields empty engine", func(t *testing.T) {
		engine := NewSurfaceElevationEngine(nil, 0)
		assert.True(t, engine.Empty())
		assert.Equal(t, 0, engine.SampleCount())
	})
}

func TestQueryElevation(t *testing.T) {
	engine := NewSurfaceElevationEngine(slopedSamples(0, 5, 0, 5, 1), 1.0)

	t.Run("exact hit returns sample without interpolation", func(t *testing.T) {
		p := engine.QueryElevation(3, 2, MethodLinear)
		require.NotNil(t, p.Z)
		assert.InDelta(t, 3.0, *p.Z, 1e-9)
		assert.False(t, p.Interpolated)
		require.NotNil(t, p.DistanceToNearest)
		assert.Less(t, *p.DistanceToNearest, 1e-6)
	})

	t.Run("linear interpolation recovers the plane", func(t *testing.T) {
		p := engine.QueryElevation(2.5, 2.5, MethodLinear)
		require.NotNil(t, p.Z)
		assert.True(t, p.Interpolated)
		assert.InDelta(t, 2.5, *p.Z, 1e-6)
	})

	t.Run("nearest returns nearest sample value", func(t *testing.T) {
		p := engine.QueryElevation(2.1, 2.1, MethodNearest)
		require.NotNil(t, p.Z)
		assert.InDelta(t, 2.0, *p.Z, 1e-9)
	})

	t.Run("point far outside falls back to a numeric value", func(t *testing.T) {
		p := engine.QueryElevation(1000, 1000, MethodLinear)
		require.NotNil(t, p.Z)
		assert.True(t, p.Interpolated)
		assert.False(t, math.IsNaN(*p.Z))
	})

	t.Run("empty engine returns nil elevation", func(t *testing.T) {
		empty := NewSurfaceElevationEngine(nil, 0)
		p := empty.QueryElevation(1, 1, MethodLinear)
		assert.Nil(t, p.Z)
	})
}

func TestInverseDistanceWeighting(t *testing.T) {
	// 查询点位于四个采样点的对称中心，反距离加权退化为算术平均
	points := []Tin.Point3D{
		{X: 0, Y: 0, Z: 2, ID: 0},
		{X: 10, Y: 0, Z: 4, ID: 1},
		{X: 10, Y: 10, Z: 6, ID: 2},
		{X: 0, Y: 10, Z: 8, ID: 3},
	}
	engine := NewSurfaceElevationEngine(points, 1.0)

	p := engine.QueryElevation(5, 5, MethodCubic)
	require.NotNil(t, p.Z)
	assert.True(t, p.Interpolated)
	assert.InDelta(t, 5.0, *p.Z, 1e-9)
}

func TestQueryElevationBatch(t *testing.T) {
	t.Run("statistics over queried points", func(t *testing.T) {
		engine := NewSurfaceElevationEngine(slopedSamples(0, 4, 0, 4, 1), 1.0)

		query := []Tin.Point2D{
			{X: 0, Y: 0},
			{X: 2, Y: 2},
			{X: 4, Y: 4},
			{X: 1.5, Y: 1.5},
		}

		result := engine.QueryElevationBatch(query, MethodLinear)
		require.True(t, result.Success)
		require.Len(t, result.Points, 4)

		assert.Equal(t, 4.0, result.Statistics["valid_points"])
		assert.Equal(t, 1.0, result.Statistics["interpolated_points"])
		assert.InDelta(t, 0.0, result.Statistics["min_elevation"], 1e-9)
		assert.InDelta(t, 4.0, result.Statistics["max_elevation"], 1e-9)
		assert.InDelta(t, 1.875, result.Statistics["mean_elevation"], 1e-6)
	})

	t.Run("empty engine fails cleanly", func(t *testing.T) {
		empty := NewSurfaceElevationEngine(nil, 0)
		result := empty.QueryElevationBatch([]Tin.Point2D{{X: 1, Y: 1}}, MethodLinear)
		assert.False(t, result.Success)
		assert.Equal(t, "未加载地表采样数据", result.Message)
	})
}

func TestCreateElevationGrid(t *testing.T) {
	engine := NewSurfaceElevationEngine(slopedSamples(-1, 5, -1, 5, 1), 1.0)

	bounds := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{2, 2}}
	grid, err := engine.CreateElevationGrid(bounds, 1.0)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 1, 2}, grid.Xs)
	assert.Equal(t, []float64{0, 1, 2}, grid.Ys)
	require.Len(t, grid.Z, 3)
	require.Len(t, grid.Z[0], 3)

	// 平面 z = x：每行沿X递增
	for i := range grid.Ys {
		for j, x := range grid.Xs {
			assert.InDelta(t, x, grid.Z[i][j], 1e-6)
		}
	}

	_, err = NewSurfaceElevationEngine(nil, 0).CreateElevationGrid(bounds, 1.0)
	assert.Error(t, err)
}
