package Elevation

import (
	"log"
	"math"
	"sort"

	"github.com/GrainArc/EarthWork/Tin"
	"github.com/GrainArc/EarthWork/config"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"
)

// surfaceSample 去重后的地表采样点
type surfaceSample struct {
	x, y, z float64
}

func (s *surfaceSample) Point() orb.Point {
	return orb.Point{s.x, s.y}
}

// spatialIndex 平面最近邻查询能力。构建后只读，可被并发查询。
type spatialIndex interface {
	Nearest(x, y float64) (*surfaceSample, float64)
	KNearest(x, y float64, k int) []*surfaceSample
	Len() int
}

// quadtreeIndex 基于orb四叉树的空间索引
type quadtreeIndex struct {
	tree  *quadtree.Quadtree
	count int
}

func newQuadtreeIndex(samples []*surfaceSample) (*quadtreeIndex, bool) {
	if len(samples) == 0 {
		return nil, false
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, s := range samples {
		minX = math.Min(minX, s.x)
		maxX = math.Max(maxX, s.x)
		minY = math.Min(minY, s.y)
		maxY = math.Max(maxY, s.y)
	}

	// 四叉树要求非退化边界
	padX := (maxX - minX) * 0.01
	padY := (maxY - minY) * 0.01
	if padX <= 0 {
		padX = 1.0
	}
	if padY <= 0 {
		padY = 1.0
	}

	tree := quadtree.New(orb.Bound{
		Min: orb.Point{minX - padX, minY - padY},
		Max: orb.Point{maxX + padX, maxY + padY},
	})

	for _, s := range samples {
		if err := tree.Add(s); err != nil {
			return nil, false
		}
	}

	return &quadtreeIndex{tree: tree, count: len(samples)}, true
}

func (q *quadtreeIndex) Nearest(x, y float64) (*surfaceSample, float64) {
	ptr := q.tree.Find(orb.Point{x, y})
	if ptr == nil {
		return nil, math.Inf(1)
	}
	s := ptr.(*surfaceSample)
	return s, Tin.Distance2D(x, y, s.x, s.y)
}

func (q *quadtreeIndex) KNearest(x, y float64, k int) []*surfaceSample {
	buf := q.tree.KNearest(nil, orb.Point{x, y}, k)
	samples := make([]*surfaceSample, 0, len(buf))
	for _, ptr := range buf {
		samples = append(samples, ptr.(*surfaceSample))
	}
	return samples
}

func (q *quadtreeIndex) Len() int {
	return q.count
}

// linearIndex 线性扫描索引，四叉树不可用时的兜底实现
type linearIndex struct {
	samples []*surfaceSample
}

func newLinearIndex(samples []*surfaceSample) *linearIndex {
	return &linearIndex{samples: samples}
}

func (l *linearIndex) Nearest(x, y float64) (*surfaceSample, float64) {
	if len(l.samples) == 0 {
		return nil, math.Inf(1)
	}

	minDist := math.Inf(1)
	var nearest *surfaceSample
	for _, s := range l.samples {
		dist := Tin.Distance2D(x, y, s.x, s.y)
		if dist < minDist {
			minDist = dist
			nearest = s
		}
	}
	return nearest, minDist
}

func (l *linearIndex) KNearest(x, y float64, k int) []*surfaceSample {
	sorted := make([]*surfaceSample, len(l.samples))
	copy(sorted, l.samples)
	sort.Slice(sorted, func(i, j int) bool {
		return Tin.Distance2D(x, y, sorted[i].x, sorted[i].y) < Tin.Distance2D(x, y, sorted[j].x, sorted[j].y)
	})
	if k > len(sorted) {
		k = len(sorted)
	}
	return sorted[:k]
}

func (l *linearIndex) Len() int {
	return len(l.samples)
}

// SurfaceElevationEngine 地表高程查询引擎。
// 由地表点云一次性构建，构建后只读。
type SurfaceElevationEngine struct {
	samples []*surfaceSample
	index   spatialIndex
}

// NewSurfaceElevationEngine 构建高程查询引擎。
// 采样点按分辨率量化到平面网格，每格只保留Z值最大的点（地表取上表面，忽略悬垂）。
// resolution非正时使用配置默认值。
func NewSurfaceElevationEngine(points []Tin.Point3D, resolution float64) *SurfaceElevationEngine {
	if resolution <= 0 {
		resolution = config.SurfaceResolution
	}

	cells := make(map[[2]int64]*surfaceSample)
	for _, p := range points {
		key := [2]int64{
			int64(math.Round(p.X / resolution)),
			int64(math.Round(p.Y / resolution)),
		}
		if cur, ok := cells[key]; !ok || p.Z > cur.z {
			cells[key] = &surfaceSample{x: p.X, y: p.Y, z: p.Z}
		}
	}

	samples := make([]*surfaceSample, 0, len(cells))
	for _, s := range cells {
		samples = append(samples, s)
	}

	engine := &SurfaceElevationEngine{samples: samples}

	if index, ok := newQuadtreeIndex(samples); ok {
		engine.index = index
	} else {
		if len(samples) > 0 {
			log.Printf("四叉树索引构建失败，退用线性扫描索引")
		}
		engine.index = newLinearIndex(samples)
	}

	return engine
}

// SampleCount 去重后的地表采样点数量
func (e *SurfaceElevationEngine) SampleCount() int {
	return len(e.samples)
}

// Empty 是否没有任何地表数据
func (e *SurfaceElevationEngine) Empty() bool {
	return len(e.samples) == 0
}
