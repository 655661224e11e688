package Tin

import (
	"fmt"
	"math"
)

// 计算三维点到二维点的水平距离
func distance3DTo2D(p3d *Point3D, p2d *Point2D) float64 {
	return Distance2D(p3d.X, p3d.Y, p2d.X, p2d.Y)
}

// 找到距离二维点最近的三维点，返回其高程值
func findNearestElevation(point2D *Point2D, points3D []*Point3D) float64 {
	if len(points3D) == 0 {
		return 0.0
	}

	minDistance := math.Inf(1)
	nearestZ := points3D[0].Z

	for _, p3d := range points3D {
		dist := distance3DTo2D(p3d, point2D)
		if dist < minDistance {
			minDistance = dist
			nearestZ = p3d.Z
		}
	}

	return nearestZ
}

// 计算三角形外接圆圆心和半径（基于XY平面投影）
func circumcircle3D(p1, p2, p3 *Point3D) (cx, cy, r float64) {
	ax, ay := p1.X, p1.Y
	bx, by := p2.X, p2.Y
	cx1, cy1 := p3.X, p3.Y

	d := 2 * (ax*(by-cy1) + bx*(cy1-ay) + cx1*(ay-by))
	if math.Abs(d) < 1e-10 {
		return 0, 0, math.Inf(1)
	}

	ux := (ax*ax+ay*ay)*(by-cy1) + (bx*bx+by*by)*(cy1-ay) + (cx1*cx1+cy1*cy1)*(ay-by)
	uy := (ax*ax+ay*ay)*(cx1-bx) + (bx*bx+by*by)*(ax-cx1) + (cx1*cx1+cy1*cy1)*(bx-ax)

	cx = ux / d
	cy = uy / d
	r = math.Sqrt((cx-ax)*(cx-ax) + (cy-ay)*(cy-ay))

	return cx, cy, r
}

// 判断点是否在三角形外接圆内（基于XY投影）
func inCircumcircle3D(p *Point3D, t *Triangle3D) bool {
	cx, cy, r := circumcircle3D(t.P1, t.P2, t.P3)
	if math.IsInf(r, 1) {
		return false
	}
	dist := math.Sqrt((p.X-cx)*(p.X-cx) + (p.Y-cy)*(p.Y-cy))
	return dist < r
}

// 创建超级三角形，包住全部输入点
func createSuperTriangle3D(points []*Point3D) *Triangle3D {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	for _, p := range points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	dx := maxX - minX
	dy := maxY - minY
	deltaMax := math.Max(dx, dy)
	midX := (minX + maxX) / 2
	midY := (minY + maxY) / 2

	p1 := &Point3D{X: midX - 20*deltaMax, Y: midY - deltaMax, Z: 0, ID: -1}
	p2 := &Point3D{X: midX, Y: midY + 20*deltaMax, Z: 0, ID: -2}
	p3 := &Point3D{X: midX + 20*deltaMax, Y: midY - deltaMax, Z: 0, ID: -3}

	return &Triangle3D{P1: p1, P2: p2, P3: p3, ID: -1}
}

// DelaunayTriangulation 对三维点集的XY投影做Delaunay三角剖分(Bowyer-Watson)。
// 输入点的ID必须非负，点数不足3时返回nil。
func DelaunayTriangulation(points []*Point3D) []*Triangle3D {
	if len(points) < 3 {
		return nil
	}

	superTriangle := createSuperTriangle3D(points)
	triangles := []*Triangle3D{superTriangle}

	for _, point := range points {
		var badTriangles []*Triangle3D

		// 找到外接圆包含当前点的三角形
		for _, triangle := range triangles {
			if inCircumcircle3D(point, triangle) {
				badTriangles = append(badTriangles, triangle)
			}
		}

		// 找到空腔多边形边界
		var polygon []*Edge3D
		for _, badTriangle := range badTriangles {
			edges := []*Edge3D{
				{badTriangle.P1, badTriangle.P2},
				{badTriangle.P2, badTriangle.P3},
				{badTriangle.P3, badTriangle.P1},
			}

			for _, edge := range edges {
				shared := false
				for _, otherBadTriangle := range badTriangles {
					if otherBadTriangle == badTriangle {
						continue
					}
					otherEdges := []*Edge3D{
						{otherBadTriangle.P1, otherBadTriangle.P2},
						{otherBadTriangle.P2, otherBadTriangle.P3},
						{otherBadTriangle.P3, otherBadTriangle.P1},
					}

					for _, otherEdge := range otherEdges {
						if (edge.P1 == otherEdge.P1 && edge.P2 == otherEdge.P2) ||
							(edge.P1 == otherEdge.P2 && edge.P2 == otherEdge.P1) {
							shared = true
							break
						}
					}
					if shared {
						break
					}
				}
				if !shared {
					polygon = append(polygon, edge)
				}
			}
		}

		// 移除坏三角形
		var newTriangles []*Triangle3D
		for _, triangle := range triangles {
			bad := false
			for _, badTriangle := range badTriangles {
				if triangle == badTriangle {
					bad = true
					break
				}
			}
			if !bad {
				newTriangles = append(newTriangles, triangle)
			}
		}
		triangles = newTriangles

		// 以空腔边界和当前点创建新三角形
		triangleID := len(triangles)
		for _, edge := range polygon {
			newTriangle := &Triangle3D{
				P1: edge.P1,
				P2: edge.P2,
				P3: point,
				ID: triangleID,
			}
			triangles = append(triangles, newTriangle)
			triangleID++
		}
	}

	// 移除包含超级三角形顶点的三角形
	var finalTriangles []*Triangle3D
	for _, triangle := range triangles {
		if triangle.P1.ID >= 0 && triangle.P2.ID >= 0 && triangle.P3.ID >= 0 {
			finalTriangles = append(finalTriangles, triangle)
		}
	}

	return finalTriangles
}

// CreateTIN3D 由二维轮廓与三维采样点构建TIN。
// 轮廓顶点的高程通过最近采样点获得。
func CreateTIN3D(polygon *Polygon2D, points3D []*Point3D) *TIN3D {
	var polygonPoints3D []*Point3D
	for i, p2d := range polygon.Points {
		z := findNearestElevation(p2d, points3D)
		polygonPoints3D = append(polygonPoints3D, &Point3D{
			X: p2d.X, Y: p2d.Y, Z: z, ID: i,
		})
	}

	// 合并轮廓顶点和采样点，重新分配ID避免冲突
	allPoints3D := make([]*Point3D, 0, len(polygonPoints3D)+len(points3D))
	allPoints3D = append(allPoints3D, polygonPoints3D...)

	baseID := len(polygonPoints3D)
	for i, p := range points3D {
		newPoint := &Point3D{X: p.X, Y: p.Y, Z: p.Z, ID: baseID + i}
		allPoints3D = append(allPoints3D, newPoint)
	}

	triangles := DelaunayTriangulation(allPoints3D)

	// 生成去重后的边集
	edgeMap := make(map[string]*Edge3D)
	for _, triangle := range triangles {
		edges := []*Edge3D{
			{triangle.P1, triangle.P2},
			{triangle.P2, triangle.P3},
			{triangle.P3, triangle.P1},
		}

		for _, edge := range edges {
			key1 := fmt.Sprintf("%d-%d", edge.P1.ID, edge.P2.ID)
			key2 := fmt.Sprintf("%d-%d", edge.P2.ID, edge.P1.ID)

			if _, exists := edgeMap[key1]; !exists {
				if _, exists := edgeMap[key2]; !exists {
					edgeMap[key1] = edge
				}
			}
		}
	}

	var edges []*Edge3D
	for _, edge := range edgeMap {
		edges = append(edges, edge)
	}

	return &TIN3D{
		Points:    allPoints3D,
		Triangles: triangles,
		Edges:     edges,
	}
}

// Area 计算三角形面积（三维，叉积模长的一半）
func (t *Triangle3D) Area() float64 {
	v1 := &Point3D{
		X: t.P2.X - t.P1.X,
		Y: t.P2.Y - t.P1.Y,
		Z: t.P2.Z - t.P1.Z,
	}
	v2 := &Point3D{
		X: t.P3.X - t.P1.X,
		Y: t.P3.Y - t.P1.Y,
		Z: t.P3.Z - t.P1.Z,
	}

	cross := &Point3D{
		X: v1.Y*v2.Z - v1.Z*v2.Y,
		Y: v1.Z*v2.X - v1.X*v2.Z,
		Z: v1.X*v2.Y - v1.Y*v2.X,
	}

	length := math.Sqrt(cross.X*cross.X + cross.Y*cross.Y + cross.Z*cross.Z)
	return length / 2.0
}

// Area2D 计算三角形XY投影面积
func (t *Triangle3D) Area2D() float64 {
	v1x := t.P2.X - t.P1.X
	v1y := t.P2.Y - t.P1.Y
	v2x := t.P3.X - t.P1.X
	v2y := t.P3.Y - t.P1.Y
	return math.Abs(v1x*v2y-v1y*v2x) / 2.0
}

// Normal 计算三角形单位法向量
func (t *Triangle3D) Normal() (float64, float64, float64) {
	v1 := &Point3D{
		X: t.P2.X - t.P1.X,
		Y: t.P2.Y - t.P1.Y,
		Z: t.P2.Z - t.P1.Z,
	}
	v2 := &Point3D{
		X: t.P3.X - t.P1.X,
		Y: t.P3.Y - t.P1.Y,
		Z: t.P3.Z - t.P1.Z,
	}

	nx := v1.Y*v2.Z - v1.Z*v2.Y
	ny := v1.Z*v2.X - v1.X*v2.Z
	nz := v1.X*v2.Y - v1.Y*v2.X

	length := math.Sqrt(nx*nx + ny*ny + nz*nz)
	if length > 0 {
		nx /= length
		ny /= length
		nz /= length
	}

	return nx, ny, nz
}
