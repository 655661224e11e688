package Solid

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/GrainArc/EarthWork/Contour"
	"github.com/GrainArc/EarthWork/Elevation"
	"github.com/GrainArc/EarthWork/Tin"
	"github.com/GrainArc/EarthWork/Volume"
	"github.com/google/uuid"
)

// ExcavationStage 开挖阶段，深度区间有序且不重叠
type ExcavationStage struct {
	StageNo   int
	Name      string
	DepthFrom float64
	DepthTo   float64
	Volume    *float64
}

// ExcavationGeometry 开挖几何体。构建完成后归调用方所有，构建器不保留引用。
type ExcavationGeometry struct {
	ID          string
	Name        string
	ContourID   string
	TotalDepth  float64
	Stages      []ExcavationStage
	TotalVolume float64
	SurfaceArea float64
	Bounds      Bounds
	CreatedAt   string
}

// ExcavationBuildResult 开挖构建结果
type ExcavationBuildResult struct {
	Success    bool
	Message    string
	Excavation *ExcavationGeometry
	Mesh       *TriMesh
	Warnings   []string
	BuildTime  time.Duration
}

// StageDef 外部传入的阶段定义，Depth为从地表算起挖至的累计深度
type StageDef struct {
	Name  string
	Depth float64
}

// PlacementMode 轮廓定位方式
type PlacementMode string

const (
	// PlacementCentroid 使用轮廓原始坐标
	PlacementCentroid PlacementMode = "centroid"
	// PlacementAutoCenter 将轮廓形心平移到土体域中心
	PlacementAutoCenter PlacementMode = "auto_center"
)

// BuildOptions 构建选项
type BuildOptions struct {
	Placement    PlacementMode
	DomainCenter *Tin.Point2D     // auto_center模式的土体域中心
	Subtractor   DomainSubtractor // 可选的父域布尔差集内核
}

// Builder 开挖几何构建器
type Builder struct {
	calculator *Volume.Calculator
}

func NewBuilder() *Builder {
	return &Builder{calculator: Volume.NewCalculator()}
}

// BuildFromContour 基于轮廓和地表高程构建3D开挖几何体。
// 顶面逐顶点取地表高程，底面整体下移totalDepth；
// 各阶段体积用 轮廓面积×阶段厚度 的平板近似，总体积由三角柱积分得到。
func (b *Builder) BuildFromContour(contour *Contour.ExcavationContour, engine *Elevation.SurfaceElevationEngine, totalDepth float64, stages []StageDef, opts *BuildOptions) *ExcavationBuildResult {
	start := time.Now()

	if engine == nil || engine.Empty() {
		return &ExcavationBuildResult{
			Success:   false,
			Message:   "无法加载地质模型：没有地表采样数据",
			BuildTime: time.Since(start),
		}
	}

	if contour == nil || len(contour.Points) < 3 {
		return &ExcavationBuildResult{
			Success:   false,
			Message:   "轮廓无效：至少需要3个点",
			BuildTime: time.Since(start),
		}
	}

	var warnings []string

	// 1. 定位
	workContour, err := b.placeContour(contour, opts)
	if err != nil {
		return &ExcavationBuildResult{
			Success:   false,
			Message:   fmt.Sprintf("轮廓定位失败: %v", err),
			BuildTime: time.Since(start),
		}
	}

	// 2. 查询轮廓顶点的地表高程
	elevations := engine.QueryElevationBatch(workContour.Points, Elevation.MethodLinear)
	if !elevations.Success {
		return &ExcavationBuildResult{
			Success:   false,
			Message:   fmt.Sprintf("查询地表高程失败: %s", elevations.Message),
			BuildTime: time.Since(start),
		}
	}

	// 3. 顶面/底面点列
	topPoints := make([]Tin.Point3D, len(workContour.Points))
	missing := 0
	for i, p := range workContour.Points {
		z := 0.0
		if elevations.Points[i].Z != nil {
			z = *elevations.Points[i].Z
		} else if contour.ElevationHint != nil {
			z = *contour.ElevationHint
			missing++
		} else {
			missing++
		}
		topPoints[i] = Tin.Point3D{X: p.X, Y: p.Y, Z: z, ID: i}
	}
	if missing > 0 {
		warnings = append(warnings, fmt.Sprintf("%d个轮廓顶点无高程数据，使用高程提示或0", missing))
	}

	// 4. 构建棱柱网格
	mesh, err := buildPrismMesh(topPoints, totalDepth)
	if err != nil {
		return &ExcavationBuildResult{
			Success:   false,
			Message:   fmt.Sprintf("构建开挖网格失败: %v", err),
			BuildTime: time.Since(start),
		}
	}

	// 5. 开挖阶段（平板近似，不逐阶段重积分地形）
	excavationStages := b.createStages(workContour, totalDepth, stages)

	// 6. 总体积由三角柱积分得到
	volumeResult := b.calculator.Calculate(workContour, engine, totalDepth, Volume.MethodTriangularPrism)
	totalVolume := volumeResult.TotalVolume

	// 7. 父域布尔差集，失败时返回未切割的开挖体
	finalMesh := mesh
	if opts != nil && opts.Subtractor != nil {
		cut, err := opts.Subtractor.Subtract(mesh)
		if err != nil || cut == nil {
			log.Printf("布尔运算失败，返回原始开挖体: %v", err)
			warnings = append(warnings, "父域布尔差集失败，返回未切割的开挖体")
		} else {
			finalMesh = cut
		}
	}

	excavation := &ExcavationGeometry{
		ID:          fmt.Sprintf("exc_%s", shortUUID()),
		Name:        fmt.Sprintf("开挖_%s", contour.Name),
		ContourID:   contour.ID,
		TotalDepth:  totalDepth,
		Stages:      excavationStages,
		TotalVolume: totalVolume,
		SurfaceArea: finalMesh.SurfaceArea(),
		Bounds:      finalMesh.GetBounds(),
		CreatedAt:   time.Now().Format("2006-01-02 15:04:05"),
	}

	return &ExcavationBuildResult{
		Success:    true,
		Message:    fmt.Sprintf("成功构建开挖几何体，体积: %.2fm³", totalVolume),
		Excavation: excavation,
		Mesh:       finalMesh,
		Warnings:   warnings,
		BuildTime:  time.Since(start),
	}
}

// placeContour 按定位方式处理轮廓坐标，auto_center时平移形心到土体域中心
func (b *Builder) placeContour(contour *Contour.ExcavationContour, opts *BuildOptions) (*Contour.ExcavationContour, error) {
	if opts == nil || opts.Placement == "" || opts.Placement == PlacementCentroid {
		return contour, nil
	}

	if opts.Placement != PlacementAutoCenter {
		return nil, fmt.Errorf("不支持的定位方式: %s", opts.Placement)
	}
	if opts.DomainCenter == nil {
		return nil, fmt.Errorf("自动居中模式需要提供土体域中心")
	}

	dx := opts.DomainCenter.X - contour.Centroid.X
	dy := opts.DomainCenter.Y - contour.Centroid.Y

	moved := *contour
	moved.Points = make([]Tin.Point2D, len(contour.Points))
	for i, p := range contour.Points {
		moved.Points[i] = Tin.Point2D{X: p.X + dx, Y: p.Y + dy, ID: p.ID}
	}
	moved.Centroid = Tin.Point2D{X: contour.Centroid.X + dx, Y: contour.Centroid.Y + dy}

	return &moved, nil
}

// createStages 构建开挖阶段序列。未给定阶段时为单阶段[0, totalDepth]；
// 给定时逐段推进，挖至深度裁剪到totalDepth。
func (b *Builder) createStages(contour *Contour.ExcavationContour, totalDepth float64, defs []StageDef) []ExcavationStage {
	var stages []ExcavationStage

	if len(defs) == 0 {
		v := contour.Area * totalDepth
		return []ExcavationStage{{
			StageNo:   1,
			Name:      "单阶段开挖",
			DepthFrom: 0,
			DepthTo:   totalDepth,
			Volume:    &v,
		}}
	}

	currentDepth := 0.0
	for i, def := range defs {
		depthTo := def.Depth
		if depthTo > totalDepth {
			depthTo = totalDepth
		}

		name := def.Name
		if name == "" {
			name = fmt.Sprintf("第%d阶段", i+1)
		}

		v := contour.Area * (depthTo - currentDepth)
		stages = append(stages, ExcavationStage{
			StageNo:   i + 1,
			Name:      name,
			DepthFrom: currentDepth,
			DepthTo:   depthTo,
			Volume:    &v,
		})

		currentDepth = depthTo
		if depthTo >= totalDepth {
			break
		}
	}

	return stages
}

func shortUUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
