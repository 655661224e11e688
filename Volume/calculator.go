package Volume

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/GrainArc/EarthWork/Contour"
	"github.com/GrainArc/EarthWork/Elevation"
	"github.com/GrainArc/EarthWork/Tin"
	"github.com/GrainArc/EarthWork/config"
	"github.com/GrainArc/EarthWork/methods"
)

// 体积计算方法
const (
	MethodSimple          = "simple"
	MethodTriangularPrism = "triangular_prism"
	MethodGridIntegration = "grid_integration"
)

// VolumeTriangle 三角柱法的明细记录，其余方法不产生
type VolumeTriangle struct {
	Vertices            [3]Tin.Point2D
	SurfaceElevations   [3]float64
	Area                float64
	AvgSurfaceElevation float64
	Volume              float64
}

// VolumeCalculationResult 体积计算结果，三种方法共用同一结构便于交叉验证
type VolumeCalculationResult struct {
	Success           bool
	Message           string
	TotalVolume       float64
	SurfaceArea       float64
	AvgDepth          float64
	MaxDepth          float64
	MinDepth          float64
	Triangles         []VolumeTriangle
	CalculationMethod string
	CalculationTime   time.Duration
	Statistics        map[string]float64
}

// Calculator 开挖体积计算器。无内部状态，可并发使用。
type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// strategy 一种体积计算策略
type strategy struct {
	name string
	run  func() (*VolumeCalculationResult, error)
}

// Calculate 计算开挖体积。
// 请求的方法优先执行，失败后按 triangular_prism → grid_integration → simple
// 顺序降级；simple对有效轮廓必然成功。
func (c *Calculator) Calculate(contour *Contour.ExcavationContour, engine *Elevation.SurfaceElevationEngine, depth float64, method string) *VolumeCalculationResult {
	start := time.Now()

	if contour == nil || len(contour.Points) < 3 {
		return &VolumeCalculationResult{
			Success:           false,
			Message:           "轮廓无效：至少需要3个点",
			CalculationMethod: method,
			CalculationTime:   time.Since(start),
			Statistics:        map[string]float64{},
		}
	}

	result := tryEach(c.strategyChain(contour, engine, depth, method))
	result.CalculationTime = time.Since(start)
	return result
}

// strategyChain 构造降级顺序：请求的方法在前，其余按精度从高到低补齐
func (c *Calculator) strategyChain(contour *Contour.ExcavationContour, engine *Elevation.SurfaceElevationEngine, depth float64, method string) []strategy {
	all := map[string]strategy{
		MethodTriangularPrism: {MethodTriangularPrism, func() (*VolumeCalculationResult, error) {
			return c.calculateByTriangularPrism(contour, engine, depth)
		}},
		MethodGridIntegration: {MethodGridIntegration, func() (*VolumeCalculationResult, error) {
			return c.calculateByGridIntegration(contour, depth)
		}},
		MethodSimple: {MethodSimple, func() (*VolumeCalculationResult, error) {
			return c.calculateSimple(contour, depth)
		}},
	}

	order := []string{MethodTriangularPrism, MethodGridIntegration, MethodSimple}

	var chain []strategy
	if s, ok := all[method]; ok {
		chain = append(chain, s)
	}
	for _, name := range order {
		if name != method {
			chain = append(chain, all[name])
		}
	}
	return chain
}

// tryEach 依序执行策略，返回第一个成功结果
func tryEach(strategies []strategy) *VolumeCalculationResult {
	for _, s := range strategies {
		result, err := runSafe(s)
		if err != nil {
			log.Printf("体积计算策略%s失败，尝试下一策略: %v", s.name, err)
			continue
		}
		result.CalculationMethod = s.name
		return result
	}

	return &VolumeCalculationResult{
		Success:           false,
		Message:           "所有计算方法都失败",
		CalculationMethod: "failed",
		Statistics:        map[string]float64{},
	}
}

// runSafe 策略内的panic转换为错误，保证降级链继续
func runSafe(s strategy) (result *VolumeCalculationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return s.run()
}

// calculateByTriangularPrism 三角柱积分：对轮廓点集做Delaunay剖分，
// 逐三角形查询顶点地表高程并累计 面积×深度。
// 地形只通过剖分和明细记录影响结果，不做逐三角形的地形修正（近似方法）。
func (c *Calculator) calculateByTriangularPrism(contour *Contour.ExcavationContour, engine *Elevation.SurfaceElevationEngine, depth float64) (*VolumeCalculationResult, error) {
	points := make([]*Tin.Point3D, len(contour.Points))
	for i, p := range contour.Points {
		points[i] = &Tin.Point3D{X: p.X, Y: p.Y, ID: i}
	}

	triangles := Tin.DelaunayTriangulation(points)
	if len(triangles) == 0 {
		return nil, fmt.Errorf("轮廓三角剖分失败")
	}

	var detail []VolumeTriangle
	var avgElevations []float64
	totalVolume := 0.0
	totalArea := 0.0

	for _, t := range triangles {
		vertices := [3]Tin.Point2D{
			{X: t.P1.X, Y: t.P1.Y},
			{X: t.P2.X, Y: t.P2.Y},
			{X: t.P3.X, Y: t.P3.Y},
		}

		var elevations [3]float64
		for i, v := range vertices {
			elevations[i] = c.surfaceElevationAt(engine, contour, v.X, v.Y)
		}

		area := t.Area2D()
		avgElev := (elevations[0] + elevations[1] + elevations[2]) / 3.0
		volume := area * depth

		totalArea += area
		totalVolume += volume
		avgElevations = append(avgElevations, avgElev)

		detail = append(detail, VolumeTriangle{
			Vertices:            vertices,
			SurfaceElevations:   elevations,
			Area:                area,
			AvgSurfaceElevation: avgElev,
			Volume:              volume,
		})
	}

	statistics := map[string]float64{
		"method_code":        2.0,
		"triangle_count":     float64(len(detail)),
		"avg_triangle_area":  totalArea / float64(len(detail)),
		"elevation_variance": methods.Variance(avgElevations),
	}
	if totalArea > 0 {
		statistics["volume_per_area"] = totalVolume / totalArea
	} else {
		statistics["volume_per_area"] = 0.0
	}

	return &VolumeCalculationResult{
		Success:     true,
		Message:     fmt.Sprintf("使用%d个三角形计算完成", len(detail)),
		TotalVolume: math.Abs(totalVolume),
		SurfaceArea: totalArea,
		AvgDepth:    depth,
		MaxDepth:    depth,
		MinDepth:    depth,
		Triangles:   detail,
		Statistics:  statistics,
	}, nil
}

// calculateByGridIntegration 网格积分：对轮廓包围盒栅格化，
// 落在轮廓内的格心累计 格元面积×深度，并报告覆盖率作为质量信号。
func (c *Calculator) calculateByGridIntegration(contour *Contour.ExcavationContour, depth float64) (*VolumeCalculationResult, error) {
	xmin, ymin := contour.Points[0].X, contour.Points[0].Y
	xmax, ymax := xmin, ymin
	for _, p := range contour.Points {
		xmin = math.Min(xmin, p.X)
		xmax = math.Max(xmax, p.X)
		ymin = math.Min(ymin, p.Y)
		ymax = math.Max(ymax, p.Y)
	}

	resolution := config.VolumeGridResolution

	var xs, ys []float64
	for x := xmin; x < xmax+resolution; x += resolution {
		xs = append(xs, x)
	}
	for y := ymin; y < ymax+resolution; y += resolution {
		ys = append(ys, y)
	}

	totalVolume := 0.0
	totalArea := 0.0
	gridCount := 0
	cellArea := resolution * resolution

	for i := 0; i < len(xs)-1; i++ {
		for j := 0; j < len(ys)-1; j++ {
			xc := (xs[i] + xs[i+1]) / 2
			yc := (ys[j] + ys[j+1]) / 2

			if PointInPolygon(xc, yc, contour.Points) {
				totalVolume += cellArea * depth
				totalArea += cellArea
				gridCount++
			}
		}
	}

	statistics := map[string]float64{
		"method_code":     3.0,
		"grid_resolution": resolution,
		"grid_cells":      float64(gridCount),
	}
	if contour.Area != 0 {
		statistics["coverage_ratio"] = totalArea / contour.Area
	} else {
		statistics["coverage_ratio"] = 0.0
	}

	return &VolumeCalculationResult{
		Success:     true,
		Message:     fmt.Sprintf("使用%d个网格单元计算完成", gridCount),
		TotalVolume: totalVolume,
		SurfaceArea: totalArea,
		AvgDepth:    depth,
		MaxDepth:    depth,
		MinDepth:    depth,
		Statistics:  statistics,
	}, nil
}

// calculateSimple 简化计算（面积×深度），O(1)，作为最终兜底
func (c *Calculator) calculateSimple(contour *Contour.ExcavationContour, depth float64) (*VolumeCalculationResult, error) {
	area := contour.Area

	return &VolumeCalculationResult{
		Success:     true,
		Message:     "使用简化方法计算（面积×深度）",
		TotalVolume: area * depth,
		SurfaceArea: area,
		AvgDepth:    depth,
		MaxDepth:    depth,
		MinDepth:    depth,
		Statistics: map[string]float64{
			"method_code":    1.0,
			"contour_points": float64(len(contour.Points)),
			"contour_area":   area,
		},
	}, nil
}

// surfaceElevationAt 查询地表高程；无数据时退用轮廓高程提示或0
func (c *Calculator) surfaceElevationAt(engine *Elevation.SurfaceElevationEngine, contour *Contour.ExcavationContour, x, y float64) float64 {
	if engine != nil {
		p := engine.QueryElevation(x, y, Elevation.MethodLinear)
		if p.Z != nil {
			return *p.Z
		}
	}
	if contour.ElevationHint != nil {
		return *contour.ElevationHint
	}
	return 0.0
}

// PointInPolygon 射线法判断点是否在多边形内，支持非凸多边形。
// 落在边界上的点不保证一致的内外判定（浮点射线法固有特性）。
func PointInPolygon(x, y float64, polygon []Tin.Point2D) bool {
	n := len(polygon)
	inside := false

	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := polygon[i].X, polygon[i].Y
		xj, yj := polygon[j].X, polygon[j].Y

		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}

	return inside
}
