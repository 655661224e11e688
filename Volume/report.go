package Volume

import (
	"fmt"

	"github.com/GrainArc/EarthWork/Tin"
)

// 报告中展示的三角形明细上限
const reportTriangleLimit = 10

// TriangleRow 报告中的单行三角形明细
type TriangleRow struct {
	Index    int
	Area     string
	AvgElev  string
	Volume   string
	Vertices [3]Tin.Point2D
}

// VolumeReport 面向人的体积计算报告，与原始数值结果分离
type VolumeReport struct {
	Summary   map[string]string
	Details   map[string]string
	Triangles []TriangleRow
	Note      string
}

// GenerateVolumeReport 生成详细的体积计算报告
func GenerateVolumeReport(result *VolumeCalculationResult) *VolumeReport {
	report := &VolumeReport{
		Summary: map[string]string{
			"总开挖体积": fmt.Sprintf("%.2f m³", result.TotalVolume),
			"开挖面积":  fmt.Sprintf("%.2f m²", result.SurfaceArea),
			"平均深度":  fmt.Sprintf("%.2f m", result.AvgDepth),
			"计算方法":  result.CalculationMethod,
			"计算耗时":  fmt.Sprintf("%.3f 秒", result.CalculationTime.Seconds()),
		},
		Details: map[string]string{
			"最大深度":    fmt.Sprintf("%.2f m", result.MaxDepth),
			"最小深度":    fmt.Sprintf("%.2f m", result.MinDepth),
			"三角形数量":   fmt.Sprintf("%d", len(result.Triangles)),
			"平均三角形面积": fmt.Sprintf("%.2f m²", result.Statistics["avg_triangle_area"]),
		},
	}

	limit := len(result.Triangles)
	if limit > reportTriangleLimit {
		limit = reportTriangleLimit
	}

	for i := 0; i < limit; i++ {
		t := result.Triangles[i]
		report.Triangles = append(report.Triangles, TriangleRow{
			Index:    i + 1,
			Area:     fmt.Sprintf("%.2f m²", t.Area),
			AvgElev:  fmt.Sprintf("%.2f m", t.AvgSurfaceElevation),
			Volume:   fmt.Sprintf("%.2f m³", t.Volume),
			Vertices: t.Vertices,
		})
	}

	if len(result.Triangles) > reportTriangleLimit {
		report.Note = fmt.Sprintf("... 还有 %d 个三角形", len(result.Triangles)-reportTriangleLimit)
	}

	return report
}
