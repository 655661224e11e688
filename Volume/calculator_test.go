package Volume

import (
	"testing"

	"github.com/GrainArc/EarthWork/Contour"
	"github.com/GrainArc/EarthWork/Elevation"
	"github.com/GrainArc/EarthWork/Tin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 50×30矩形轮廓，面积1500平方米
func rectContour(t *testing.T) *Contour.ExcavationContour {
	t.Helper()

	contour := Contour.NewExtractor().ExtractContour(Contour.Polyline{
		Points: []Tin.Point2D{
			{X: 0, Y: 0, ID: 0},
			{X: 50, Y: 0, ID: 1},
			{X: 50, Y: 30, ID: 2},
			{X: 0, Y: 30, ID: 3},
		},
		Layer:  "开挖",
		Closed: true,
	}, "rect")
	require.NotNil(t, contour)
	require.InDelta(t, 1500.0, contour.Area, 1e-9)
	return contour
}

// 覆盖矩形轮廓的平坦地表（z=0）
func flatEngine() *Elevation.SurfaceElevationEngine {
	var points []Tin.Point3D
	id := 0
	for x := -5.0; x <= 55; x += 5 {
		for y := -5.0; y <= 35; y += 5 {
			points = append(points, Tin.Point3D{X: x, Y: y, Z: 0, ID: id})
			id++
		}
	}
	return Elevation.NewSurfaceElevationEngine(points, 1.0)
}

func TestCalculateSimple(t *testing.T) {
	c := NewCalculator()

	result := c.Calculate(rectContour(t), flatEngine(), 5.0, MethodSimple)
	require.True(t, result.Success)

	assert.Equal(t, MethodSimple, result.CalculationMethod)
	assert.InDelta(t, 7500.0, result.TotalVolume, 1e-9)
	assert.InDelta(t, 1500.0, result.SurfaceArea, 1e-9)
	assert.Equal(t, 5.0, result.AvgDepth)
	assert.Equal(t, 1.0, result.Statistics["method_code"])
}

func TestCalculateTriangularPrism(t *testing.T) {
	c := NewCalculator()

	result := c.Calculate(rectContour(t), flatEngine(), 5.0, MethodTriangularPrism)
	require.True(t, result.Success)

	assert.Equal(t, MethodTriangularPrism, result.CalculationMethod)
	assert.InDelta(t, 7500.0, result.TotalVolume, 75.0)
	assert.InDelta(t, 1500.0, result.SurfaceArea, 15.0)
	assert.NotEmpty(t, result.Triangles)
	assert.Equal(t, 2.0, result.Statistics["method_code"])
	assert.Equal(t, float64(len(result.Triangles)), result.Statistics["triangle_count"])

	// 平坦地表：各三角形平均高程为0
	for _, tri := range result.Triangles {
		assert.InDelta(t, 0.0, tri.AvgSurfaceElevation, 1e-9)
	}
}

func TestCalculateGridIntegration(t *testing.T) {
	c := NewCalculator()

	result := c.Calculate(rectContour(t), flatEngine(), 5.0, MethodGridIntegration)
	require.True(t, result.Success)

	assert.Equal(t, MethodGridIntegration, result.CalculationMethod)
	assert.InDelta(t, 7500.0, result.TotalVolume, 75.0)
	assert.InDelta(t, 1.0, result.Statistics["coverage_ratio"], 0.02)
	assert.Equal(t, 3.0, result.Statistics["method_code"])
	assert.Greater(t, result.Statistics["grid_cells"], 0.0)
}

func TestCalculateFallback(t *testing.T) {
	c := NewCalculator()

	t.Run("unknown method falls through to the chain", func(t *testing.T) {
		result := c.Calculate(rectContour(t), flatEngine(), 5.0, "unknown")
		require.True(t, result.Success)
		assert.Equal(t, MethodTriangularPrism, result.CalculationMethod)
	})

	t.Run("collinear contour degrades past triangulation", func(t *testing.T) {
		contour := Contour.NewExtractor().ExtractContour(Contour.Polyline{
			Points: []Tin.Point2D{
				{X: 0, Y: 0, ID: 0},
				{X: 1, Y: 1, ID: 1},
				{X: 2, Y: 2, ID: 2},
			},
			Closed: true,
		}, "line")
		require.NotNil(t, contour)

		result := c.Calculate(contour, flatEngine(), 5.0, MethodTriangularPrism)
		require.True(t, result.Success)
		assert.Equal(t, MethodGridIntegration, result.CalculationMethod)
		assert.Equal(t, 0.0, result.TotalVolume)
	})

	t.Run("invalid contour fails", func(t *testing.T) {
		result := c.Calculate(nil, flatEngine(), 5.0, MethodSimple)
		assert.False(t, result.Success)
		assert.Equal(t, "轮廓无效：至少需要3个点", result.Message)
	})
}

func TestCalculateWithoutEngine(t *testing.T) {
	c := NewCalculator()

	// 无地表数据时三角柱法用高程提示兜底，体积仍为 面积×深度
	hint := 12.5
	contour := rectContour(t)
	contour.ElevationHint = &hint

	result := c.Calculate(contour, nil, 5.0, MethodTriangularPrism)
	require.True(t, result.Success)
	assert.InDelta(t, 7500.0, result.TotalVolume, 75.0)
	for _, tri := range result.Triangles {
		assert.InDelta(t, 12.5, tri.AvgSurfaceElevation, 1e-9)
	}
}

func TestPointInPolygon(t *testing.T) {
	square := []Tin.Point2D{
		{X: 0, Y: 0, ID: 0},
		{X: 10, Y: 0, ID: 1},
		{X: 10, Y: 10, ID: 2},
		{X: 0, Y: 10, ID: 3},
	}

	assert.True(t, PointInPolygon(5, 5, square))
	assert.False(t, PointInPolygon(20, 20, square))
	assert.False(t, PointInPolygon(-1, 5, square))

	// 非凸多边形（L形）
	lshape := []Tin.Point2D{
		{X: 0, Y: 0, ID: 0},
		{X: 10, Y: 0, ID: 1},
		{X: 10, Y: 4, ID: 2},
		{X: 4, Y: 4, ID: 3},
		{X: 4, Y: 10, ID: 4},
		{X: 0, Y: 10, ID: 5},
	}
	assert.True(t, PointInPolygon(2, 8, lshape))
	assert.False(t, PointInPolygon(8, 8, lshape))
}

func TestGenerateVolumeReport(t *testing.T) {
	c := NewCalculator()

	// 细分轮廓制造超过10个三角形，验证明细截断
	var points []Tin.Point2D
	id := 0
	for x := 0.0; x <= 50; x += 5 {
		points = append(points, Tin.Point2D{X: x, Y: 0, ID: id})
		id++
	}
	for x := 50.0; x >= 0; x -= 5 {
		points = append(points, Tin.Point2D{X: x, Y: 30, ID: id})
		id++
	}
	contour := Contour.NewExtractor().ExtractContour(Contour.Polyline{
		Points: points,
		Layer:  "开挖",
		Closed: true,
	}, "fine")
	require.NotNil(t, contour)

	result := c.Calculate(contour, flatEngine(), 5.0, MethodTriangularPrism)
	require.True(t, result.Success)
	require.Greater(t, len(result.Triangles), reportTriangleLimit)

	report := GenerateVolumeReport(result)
	assert.Contains(t, report.Summary, "总开挖体积")
	assert.Contains(t, report.Summary, "计算方法")
	assert.Contains(t, report.Details, "三角形数量")
	assert.Len(t, report.Triangles, reportTriangleLimit)
	assert.NotEmpty(t, report.Note)
}
