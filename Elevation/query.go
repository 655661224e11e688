package Elevation

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/GrainArc/EarthWork/Tin"
	"github.com/GrainArc/EarthWork/config"
	"github.com/GrainArc/EarthWork/methods"
	"github.com/paulmach/orb"
)

// 插值方法
const (
	MethodLinear  = "linear"
	MethodNearest = "nearest"
	MethodCubic   = "cubic"
)

// ElevationPoint 单点高程查询结果。Z为nil表示范围内无数据，区别于高程0。
type ElevationPoint struct {
	X, Y              float64
	Z                 *float64
	Interpolated      bool
	DistanceToNearest *float64
}

// SurfaceElevationQuery 批量高程查询结果
type SurfaceElevationQuery struct {
	Success             bool
	Message             string
	Points              []ElevationPoint
	InterpolationMethod string
	QueryTime           time.Duration
	Statistics          map[string]float64
}

// ElevationGrid 规则网格高程栅格，无数据格点为NaN
type ElevationGrid struct {
	Xs         []float64
	Ys         []float64
	Z          [][]float64
	Resolution float64
	Bounds     orb.Bound
	Statistics map[string]float64
}

// QueryElevation 查询单点地表高程。
// 查询点与采样点重合（距离<1e-6）时直接返回采样值，否则按method插值。
func (e *SurfaceElevationEngine) QueryElevation(x, y float64, method string) ElevationPoint {
	if e.Empty() {
		return ElevationPoint{X: x, Y: y}
	}

	nearest, dist := e.index.Nearest(x, y)
	if nearest == nil {
		return ElevationPoint{X: x, Y: y}
	}

	if dist < 1e-6 {
		z := nearest.z
		d := dist
		return ElevationPoint{X: x, Y: y, Z: &z, Interpolated: false, DistanceToNearest: &d}
	}

	z := e.interpolate(x, y, method)
	d := dist
	return ElevationPoint{X: x, Y: y, Z: &z, Interpolated: true, DistanceToNearest: &d}
}

// interpolate 插值链：局部TIN重心插值 → 最近采样点；cubic映射为3次幂反距离加权。
// 每级降级都可继续求值，不向上抛错。
func (e *SurfaceElevationEngine) interpolate(x, y float64, method string) float64 {
	switch method {
	case MethodNearest:
		nearest, _ := e.index.Nearest(x, y)
		return nearest.z
	case MethodCubic:
		return e.inverseDistanceWeighting(x, y, 3)
	}

	// linear：取最近的K个采样点构建局部TIN，用重心坐标插值
	neighbors := e.index.KNearest(x, y, config.InterpNeighbors)
	if len(neighbors) < 3 {
		return e.inverseDistanceWeighting(x, y, 2)
	}

	points := make([]*Tin.Point3D, len(neighbors))
	for i, s := range neighbors {
		points[i] = &Tin.Point3D{X: s.x, Y: s.y, Z: s.z, ID: i}
	}

	tin := &Tin.TIN3D{Points: points, Triangles: Tin.DelaunayTriangulation(points)}
	z, err := tin.GetElevationAt(x, y)
	if err != nil {
		// 查询点在局部凸包外，退用最近采样点
		log.Printf("局部TIN插值失败(%.2f, %.2f)，退用最近采样点: %v", x, y, err)
		nearest, _ := e.index.Nearest(x, y)
		return nearest.z
	}

	return z
}

// inverseDistanceWeighting 反距离加权插值，权重为1/max(d,1e-12)^power
func (e *SurfaceElevationEngine) inverseDistanceWeighting(x, y float64, power float64) float64 {
	neighbors := e.index.KNearest(x, y, config.IDWNeighbors)
	if len(neighbors) == 0 {
		return 0.0
	}

	weightSum := 0.0
	weighted := 0.0
	for _, s := range neighbors {
		d := math.Max(Tin.Distance2D(x, y, s.x, s.y), 1e-12)
		w := 1.0 / math.Pow(d, power)
		weightSum += w
		weighted += w * s.z
	}

	return weighted / weightSum
}

// QueryElevationBatch 批量查询地表高程，附带数据质量统计。
// 引擎无数据时返回失败结果而不是崩溃。
func (e *SurfaceElevationEngine) QueryElevationBatch(points []Tin.Point2D, method string) *SurfaceElevationQuery {
	start := time.Now()

	if e.Empty() {
		return &SurfaceElevationQuery{
			Success:             false,
			Message:             "未加载地表采样数据",
			InterpolationMethod: method,
		}
	}

	elevationPoints := make([]ElevationPoint, 0, len(points))
	for _, p := range points {
		elevationPoints = append(elevationPoints, e.QueryElevation(p.X, p.Y, method))
	}

	var elevations []float64
	interpolated := 0
	for _, p := range elevationPoints {
		if p.Z != nil {
			elevations = append(elevations, *p.Z)
			if p.Interpolated {
				interpolated++
			}
		}
	}

	statistics := make(map[string]float64)
	if len(elevations) > 0 {
		minZ, maxZ := methods.MinMax(elevations)
		statistics["min_elevation"] = minZ
		statistics["max_elevation"] = maxZ
		statistics["mean_elevation"] = methods.Mean(elevations)
		statistics["std_elevation"] = methods.Std(elevations)
		statistics["valid_points"] = float64(len(elevations))
		statistics["interpolated_points"] = float64(interpolated)
	}

	return &SurfaceElevationQuery{
		Success:             true,
		Message:             fmt.Sprintf("成功查询%d/%d个点的高程", len(elevations), len(points)),
		Points:              elevationPoints,
		InterpolationMethod: method,
		QueryTime:           time.Since(start),
		Statistics:          statistics,
	}
}

// CreateElevationGrid 创建指定区域的规则高程栅格
func (e *SurfaceElevationEngine) CreateElevationGrid(bounds orb.Bound, resolution float64) (*ElevationGrid, error) {
	if e.Empty() {
		return nil, fmt.Errorf("未加载地表采样数据")
	}
	if resolution <= 0 {
		resolution = config.SurfaceResolution
	}

	var xs, ys []float64
	for x := bounds.Min.X(); x < bounds.Max.X()+resolution; x += resolution {
		xs = append(xs, x)
	}
	for y := bounds.Min.Y(); y < bounds.Max.Y()+resolution; y += resolution {
		ys = append(ys, y)
	}

	queryPoints := make([]Tin.Point2D, 0, len(xs)*len(ys))
	for _, y := range ys {
		for _, x := range xs {
			queryPoints = append(queryPoints, Tin.Point2D{X: x, Y: y})
		}
	}

	result := e.QueryElevationBatch(queryPoints, MethodLinear)
	if !result.Success {
		return nil, fmt.Errorf("批量高程查询失败: %s", result.Message)
	}

	grid := make([][]float64, len(ys))
	for i := range ys {
		grid[i] = make([]float64, len(xs))
		for j := range xs {
			p := result.Points[i*len(xs)+j]
			if p.Z != nil {
				grid[i][j] = *p.Z
			} else {
				grid[i][j] = math.NaN()
			}
		}
	}

	return &ElevationGrid{
		Xs:         xs,
		Ys:         ys,
		Z:          grid,
		Resolution: resolution,
		Bounds:     bounds,
		Statistics: result.Statistics,
	}, nil
}
