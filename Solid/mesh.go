package Solid

import (
	"fmt"
	"math"

	"github.com/GrainArc/EarthWork/Tin"
)

// TriMesh 简单的顶点-面片网格。面片为顶点索引环，
// 顶面/底面是多边形面，侧面为三角形。
type TriMesh struct {
	Points []Tin.Point3D
	Faces  [][]int
}

// DomainSubtractor 上游几何内核提供的布尔差集能力。
// 实现方从父域实体（如整体土体）中减去传入的开挖体。
type DomainSubtractor interface {
	Subtract(mesh *TriMesh) (*TriMesh, error)
}

// Bounds 轴对齐包围盒
type Bounds struct {
	XMin, XMax float64
	YMin, YMax float64
	ZMin, ZMax float64
}

// buildPrismMesh 由顶面点列构建闭合棱柱网格：
// 顶面保持原始绕向，底面反向保证法向朝外，每条边两个三角形侧面。
// 轮廓自相交时产出的网格是退化的（已知限制）。
func buildPrismMesh(topPoints []Tin.Point3D, depth float64) (*TriMesh, error) {
	n := len(topPoints)
	if n < 3 {
		return nil, fmt.Errorf("顶面点数不足: %d", n)
	}

	points := make([]Tin.Point3D, 0, 2*n)
	points = append(points, topPoints...)
	for _, p := range topPoints {
		points = append(points, Tin.Point3D{X: p.X, Y: p.Y, Z: p.Z - depth, ID: p.ID + n})
	}

	var faces [][]int

	// 顶面
	top := make([]int, n)
	for i := 0; i < n; i++ {
		top[i] = i
	}
	faces = append(faces, top)

	// 底面（反向绕行）
	bottom := make([]int, n)
	for i := 0; i < n; i++ {
		bottom[i] = 2*n - 1 - i
	}
	faces = append(faces, bottom)

	// 侧面
	for i := 0; i < n; i++ {
		next := (i + 1) % n
		faces = append(faces, []int{i, next, n + i})
		faces = append(faces, []int{next, n + next, n + i})
	}

	return &TriMesh{Points: points, Faces: faces}, nil
}

// SurfaceArea 网格表面积。平面多边形面用Newell公式，三角形面用叉积。
func (m *TriMesh) SurfaceArea() float64 {
	total := 0.0
	for _, face := range m.Faces {
		total += m.faceArea(face)
	}
	return total
}

func (m *TriMesh) faceArea(face []int) float64 {
	if len(face) < 3 {
		return 0.0
	}

	// Newell公式：法向量模长的一半即平面多边形面积
	var nx, ny, nz float64
	for i := 0; i < len(face); i++ {
		p := m.Points[face[i]]
		q := m.Points[face[(i+1)%len(face)]]
		nx += (p.Y - q.Y) * (p.Z + q.Z)
		ny += (p.Z - q.Z) * (p.X + q.X)
		nz += (p.X - q.X) * (p.Y + q.Y)
	}

	return math.Sqrt(nx*nx+ny*ny+nz*nz) / 2.0
}

// GetBounds 网格轴对齐包围盒
func (m *TriMesh) GetBounds() Bounds {
	if len(m.Points) == 0 {
		return Bounds{}
	}

	b := Bounds{
		XMin: m.Points[0].X, XMax: m.Points[0].X,
		YMin: m.Points[0].Y, YMax: m.Points[0].Y,
		ZMin: m.Points[0].Z, ZMax: m.Points[0].Z,
	}

	for _, p := range m.Points {
		b.XMin = math.Min(b.XMin, p.X)
		b.XMax = math.Max(b.XMax, p.X)
		b.YMin = math.Min(b.YMin, p.Y)
		b.YMax = math.Max(b.YMax, p.Y)
		b.ZMin = math.Min(b.ZMin, p.Z)
		b.ZMax = math.Max(b.ZMax, p.Z)
	}

	return b
}
