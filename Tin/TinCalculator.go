package Tin

import (
	"fmt"
	"math"
)

// 判断二维点是否在三角形内部（基于重心坐标）
func pointInTriangle(px, py float64, t *Triangle3D) bool {
	x1, y1 := t.P1.X, t.P1.Y
	x2, y2 := t.P2.X, t.P2.Y
	x3, y3 := t.P3.X, t.P3.Y

	denominator := (y2-y3)*(x1-x3) + (x3-x2)*(y1-y3)
	if math.Abs(denominator) < 1e-10 {
		return false // 三角形退化
	}

	a := ((y2-y3)*(px-x3) + (x3-x2)*(py-y3)) / denominator
	b := ((y3-y1)*(px-x3) + (x1-x3)*(py-y3)) / denominator
	c := 1 - a - b

	// 点在三角形内当且仅当所有重心坐标都非负
	return a >= 0 && b >= 0 && c >= 0
}

// InterpolateInTriangle 使用重心坐标在三角形内插值高程。
// 三角形退化时返回三顶点平均高程。
func InterpolateInTriangle(px, py float64, t *Triangle3D) float64 {
	x1, y1, z1 := t.P1.X, t.P1.Y, t.P1.Z
	x2, y2, z2 := t.P2.X, t.P2.Y, t.P2.Z
	x3, y3, z3 := t.P3.X, t.P3.Y, t.P3.Z

	denominator := (y2-y3)*(x1-x3) + (x3-x2)*(y1-y3)
	if math.Abs(denominator) < 1e-10 {
		return (z1 + z2 + z3) / 3.0
	}

	a := ((y2-y3)*(px-x3) + (x3-x2)*(py-y3)) / denominator
	b := ((y3-y1)*(px-x3) + (x1-x3)*(py-y3)) / denominator
	c := 1 - a - b

	return a*z1 + b*z2 + c*z3
}

// GetElevationAt 获取二维点在TIN上的投影高程。
// 点不在任何三角形内时返回错误。
func (tin *TIN3D) GetElevationAt(x, y float64) (float64, error) {
	for _, triangle := range tin.Triangles {
		if pointInTriangle(x, y, triangle) {
			elevation := InterpolateInTriangle(x, y, triangle)
			return elevation, nil
		}
	}

	return 0, fmt.Errorf("point (%.2f, %.2f) is not inside any triangle of the TIN", x, y)
}

// GetElevationsAt 批量获取多个点的高程
func (tin *TIN3D) GetElevationsAt(points []Point2D) ([]float64, error) {
	elevations := make([]float64, len(points))

	for i, point := range points {
		elevation, err := tin.GetElevationAt(point.X, point.Y)
		if err != nil {
			return nil, fmt.Errorf("failed to get elevation for point %d: %v", i, err)
		}
		elevations[i] = elevation
	}

	return elevations, nil
}

// GetElevationGrid 获取指定区域内的高程网格，TIN外部的格点为NaN
func (tin *TIN3D) GetElevationGrid(minX, minY, maxX, maxY float64, stepX, stepY float64) ([][]float64, error) {
	if stepX <= 0 || stepY <= 0 {
		return nil, fmt.Errorf("step size must be positive")
	}

	nx := int(math.Ceil((maxX-minX)/stepX)) + 1
	ny := int(math.Ceil((maxY-minY)/stepY)) + 1

	grid := make([][]float64, ny)
	for i := range grid {
		grid[i] = make([]float64, nx)
	}

	for i := 0; i < ny; i++ {
		y := minY + float64(i)*stepY
		for j := 0; j < nx; j++ {
			x := minX + float64(j)*stepX

			elevation, err := tin.GetElevationAt(x, y)
			if err != nil {
				grid[i][j] = math.NaN()
			} else {
				grid[i][j] = elevation
			}
		}
	}

	return grid, nil
}

// GetSlopeAndAspect 计算指定点的坡度和坡向（弧度，坡向从北方向顺时针）
func (tin *TIN3D) GetSlopeAndAspect(x, y float64, delta float64) (slope, aspect float64, err error) {
	if delta <= 0 {
		delta = 0.1 // 默认采样间距
	}

	z0, err := tin.GetElevationAt(x, y)
	if err != nil {
		return 0, 0, err
	}

	zE, errE := tin.GetElevationAt(x+delta, y)
	zW, errW := tin.GetElevationAt(x-delta, y)
	zN, errN := tin.GetElevationAt(x, y+delta)
	zS, errS := tin.GetElevationAt(x, y-delta)

	// 边界点无法获取时退回中心点高程
	if errE != nil {
		zE = z0
	}
	if errW != nil {
		zW = z0
	}
	if errN != nil {
		zN = z0
	}
	if errS != nil {
		zS = z0
	}

	dzdx := (zE - zW) / (2 * delta)
	dzdy := (zN - zS) / (2 * delta)

	slope = math.Atan(math.Sqrt(dzdx*dzdx + dzdy*dzdy))

	if dzdx == 0 && dzdy == 0 {
		aspect = 0 // 平地
	} else {
		aspect = math.Atan2(dzdx, dzdy)
		if aspect < 0 {
			aspect += 2 * math.Pi
		}
	}

	return slope, aspect, nil
}
