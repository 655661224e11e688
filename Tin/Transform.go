package Tin

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// CoordsToPoint3D 将坐标数组转换为三维点，缺省Z为0
func CoordsToPoint3D(coords [][]float64) ([]*Point3D, error) {
	if len(coords) == 0 {
		return nil, fmt.Errorf("coords is empty")
	}

	points := make([]*Point3D, len(coords))

	for i, coord := range coords {
		if len(coord) < 2 {
			return nil, fmt.Errorf("coordinate at index %d has insufficient dimensions (need at least 2, got %d)", i, len(coord))
		}

		point := &Point3D{
			X:  coord[0],
			Y:  coord[1],
			Z:  0.0,
			ID: i,
		}

		if len(coord) >= 3 {
			point.Z = coord[2]
		}

		points[i] = point
	}

	return points, nil
}

// GeometryToPolygon2D 将orb几何对象转换为Polygon2D。
// 支持Polygon和MultiPolygon；MultiPolygon取第一个多边形，带洞多边形只取外环。
func GeometryToPolygon2D(geom orb.Geometry) (*Polygon2D, error) {
	switch g := geom.(type) {
	case orb.Polygon:
		if len(g) == 0 {
			return nil, fmt.Errorf("polygon has no rings")
		}
		return ringToPolygon2D(g[0])
	case orb.MultiPolygon:
		if len(g) == 0 {
			return nil, fmt.Errorf("multipolygon has no polygons")
		}
		if len(g[0]) == 0 {
			return nil, fmt.Errorf("first polygon has no rings")
		}
		return ringToPolygon2D(g[0][0])
	default:
		return nil, fmt.Errorf("unsupported geometry type: %s (only Polygon and MultiPolygon are supported)", geom.GeoJSONType())
	}
}

// GeometryStringToPolygon2D 将GeoJSON Geometry字符串转换为Polygon2D对象
func GeometryStringToPolygon2D(geometryStr string) (*Polygon2D, error) {
	geom, err := geojson.UnmarshalGeometry([]byte(geometryStr))
	if err != nil {
		return nil, fmt.Errorf("failed to parse geometry JSON: %v", err)
	}
	return GeometryToPolygon2D(geom.Geometry())
}

// ringToPolygon2D 将环坐标转换为Polygon2D
func ringToPolygon2D(ring orb.Ring) (*Polygon2D, error) {
	if len(ring) < 3 {
		return nil, fmt.Errorf("polygon outer ring must have at least 3 points")
	}

	points := make([]*Point2D, 0, len(ring))

	for i, coord := range ring {
		if math.IsNaN(coord[0]) || math.IsInf(coord[0], 0) ||
			math.IsNaN(coord[1]) || math.IsInf(coord[1], 0) {
			return nil, fmt.Errorf("invalid coordinate at index %d: [%f, %f]", i, coord[0], coord[1])
		}

		points = append(points, &Point2D{
			X:  coord[0],
			Y:  coord[1],
			ID: i,
		})
	}

	// 移除重复的闭合点（GeoJSON环的首尾点通常相同）
	if len(points) > 1 {
		first := points[0]
		last := points[len(points)-1]
		if math.Abs(first.X-last.X) < 1e-10 && math.Abs(first.Y-last.Y) < 1e-10 {
			points = points[:len(points)-1]
			for i := range points {
				points[i].ID = i
			}
		}
	}

	if len(points) < 3 {
		return nil, fmt.Errorf("polygon outer ring must have at least 3 points")
	}

	return &Polygon2D{Points: points}, nil
}

// PolygonInfo 多边形的基本信息
type PolygonInfo struct {
	PointCount int
	Bounds     orb.Bound
	Perimeter  float64
	Area       float64
}

// GetPolygonInfo 获取多边形的点数、边界框、周长和鞋带公式面积
func GetPolygonInfo(polygon *Polygon2D) *PolygonInfo {
	if polygon == nil || len(polygon.Points) == 0 {
		return &PolygonInfo{}
	}

	info := &PolygonInfo{PointCount: len(polygon.Points)}

	minX, maxX := polygon.Points[0].X, polygon.Points[0].X
	minY, maxY := polygon.Points[0].Y, polygon.Points[0].Y

	for _, point := range polygon.Points {
		if point.X < minX {
			minX = point.X
		}
		if point.X > maxX {
			maxX = point.X
		}
		if point.Y < minY {
			minY = point.Y
		}
		if point.Y > maxY {
			maxY = point.Y
		}
	}

	info.Bounds = orb.Bound{Min: orb.Point{minX, minY}, Max: orb.Point{maxX, maxY}}

	perimeter := 0.0
	for i := 0; i < len(polygon.Points); i++ {
		j := (i + 1) % len(polygon.Points)
		perimeter += Distance2D(polygon.Points[i].X, polygon.Points[i].Y, polygon.Points[j].X, polygon.Points[j].Y)
	}
	info.Perimeter = perimeter

	// 鞋带公式
	area := 0.0
	for i := 0; i < len(polygon.Points); i++ {
		j := (i + 1) % len(polygon.Points)
		area += polygon.Points[i].X * polygon.Points[j].Y
		area -= polygon.Points[j].X * polygon.Points[i].Y
	}
	info.Area = math.Abs(area) / 2.0

	return info
}
