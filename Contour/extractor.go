package Contour

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/GrainArc/EarthWork/Tin"
	"github.com/GrainArc/EarthWork/config"
	"github.com/GrainArc/EarthWork/methods"
	"github.com/google/uuid"
)

// Polyline 上游矢量解析器产出的一条折线
type Polyline struct {
	Points []Tin.Point2D
	Layer  string
	Closed bool
}

// ExcavationContour 开挖轮廓。由折线一次性创建，创建后不可变，
// 面积与质心始终由点列重新计算得到。
type ExcavationContour struct {
	ID            string
	Name          string
	Points        []Tin.Point2D
	IsClosed      bool
	Area          float64
	Centroid      Tin.Point2D
	LayerName     string
	ElevationHint *float64
}

// ExtractionResult 批量轮廓提取结果
type ExtractionResult struct {
	Success            bool
	Message            string
	Contours           []*ExcavationContour
	TotalContours      int
	RecommendedContour string
	Warnings           []string
	ProcessingTime     time.Duration
}

// ContourValidation 轮廓适用性校验结果
type ContourValidation struct {
	IsValid         bool
	Issues          []string
	Warnings        []string
	Recommendations []string
}

// 开挖相关的图层名称关键字
var excavationLayerKeywords = []string{
	"开挖", "基坑", "挖方", "excavation", "pit", "excavate",
	"基础", "foundation", "轮廓", "contour", "boundary",
}

// 图层名中的高程标注模式，如"开挖-标高2.5"、"excavation_elev_123.45"
var elevationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:elev|elevation|标高|高程)[-_]?(\d+\.?\d*)`),
	regexp.MustCompile(`[-_](\d+\.?\d*)(?:m|米)?$`),
	regexp.MustCompile(`(\d+\.?\d*)(?:标高|elev)`),
}

// Extractor 开挖轮廓提取器
type Extractor struct {
	layerKeywords []string
}

func NewExtractor() *Extractor {
	return &Extractor{layerKeywords: excavationLayerKeywords}
}

// ExtractContour 从单条折线提取轮廓。点数不足或输入退化时返回nil。
func (e *Extractor) ExtractContour(line Polyline, baseName string) *ExcavationContour {
	points := make([]Tin.Point2D, len(line.Points))
	copy(points, line.Points)

	if len(points) < 3 {
		return nil
	}

	isClosed := line.Closed

	// 未标记闭合但首尾点重合时视为闭合，并移除重复的末点
	if !isClosed {
		first := points[0]
		last := points[len(points)-1]
		if Tin.Distance2D(first.X, first.Y, last.X, last.Y) < 1e-6 {
			isClosed = true
			points = points[:len(points)-1]
		}
	}

	if len(points) < 3 {
		return nil
	}

	signedArea := signedPolygonArea(points)
	centroid := polygonCentroid(points, signedArea)
	elevationHint := extractElevationFromLayerName(line.Layer)

	id := fmt.Sprintf("%s_%s", baseName, shortUUID())
	name := e.generateContourName(line.Layer, math.Abs(signedArea))

	return &ExcavationContour{
		ID:            id,
		Name:          name,
		Points:        points,
		IsClosed:      isClosed,
		Area:          math.Abs(signedArea),
		Centroid:      centroid,
		LayerName:     line.Layer,
		ElevationHint: elevationHint,
	}
}

// ExtractContours 批量提取轮廓。单条折线失败只记入警告，不中断整批处理。
func (e *Extractor) ExtractContours(lines []Polyline) *ExtractionResult {
	start := time.Now()

	var contours []*ExcavationContour
	var warnings []string

	for i, line := range lines {
		contour, err := e.extractSafe(line, fmt.Sprintf("contour_%d", i))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("跳过折线%d: %v", i, err))
			continue
		}
		if contour == nil {
			warnings = append(warnings, fmt.Sprintf("跳过折线%d: 点数不足", i))
			continue
		}
		contours = append(contours, contour)
	}

	return &ExtractionResult{
		Success:            true,
		Message:            fmt.Sprintf("成功提取%d个开挖轮廓", len(contours)),
		Contours:           contours,
		TotalContours:      len(contours),
		RecommendedContour: e.RecommendBestContour(contours),
		Warnings:           warnings,
		ProcessingTime:     time.Since(start),
	}
}

// extractSafe 单条折线的提取隔离，意外panic转换为该条目的错误
func (e *Extractor) extractSafe(line Polyline, baseName string) (contour *ExcavationContour, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("提取轮廓失败: %v", r)
		}
	}()
	return e.ExtractContour(line, baseName), nil
}

// RecommendBestContour 按经验规则推荐最佳开挖轮廓，得分相同时保留先出现者。
// 评分规则：封闭+10，开挖图层+15，面积适中+10（次适中+5），有高程提示+5。
// 这是工程启发式而非严格最优。
func (e *Extractor) RecommendBestContour(contours []*ExcavationContour) string {
	if len(contours) == 0 {
		return ""
	}

	bestScore := -1
	bestID := ""

	for _, contour := range contours {
		score := 0

		if contour.IsClosed {
			score += 10
		}

		if methods.ContainsAnyKeyword(contour.LayerName, e.layerKeywords) {
			score += 15
		}

		// 面积评分（合理范围100-10000平方米）
		if contour.Area >= 100 && contour.Area <= 10000 {
			score += 10
		} else if contour.Area >= 10 && contour.Area <= 50000 {
			score += 5
		}

		if contour.ElevationHint != nil {
			score += 5
		}

		if score > bestScore {
			bestScore = score
			bestID = contour.ID
		}
	}

	return bestID
}

// ValidateForExcavation 校验轮廓是否适合用于开挖设计
func (e *Extractor) ValidateForExcavation(contour *ExcavationContour) *ContourValidation {
	validation := &ContourValidation{IsValid: true}

	if !contour.IsClosed {
		validation.Issues = append(validation.Issues, "轮廓未封闭")
		validation.IsValid = false
	}

	if contour.Area < 1.0 {
		validation.Issues = append(validation.Issues, "轮廓面积过小（<1㎡）")
		validation.IsValid = false
	}

	// 防止误选整张图纸边界
	if contour.Area > 100000 {
		validation.Warnings = append(validation.Warnings, "轮廓面积很大（>100,000㎡），请确认是否正确")
	}

	if len(contour.Points) < 3 {
		validation.Issues = append(validation.Issues, "轮廓点数量不足")
		validation.IsValid = false
	} else if len(contour.Points) > config.MaxContourPoints {
		validation.Warnings = append(validation.Warnings, "轮廓点数量过多，可能影响性能")
		validation.Recommendations = append(validation.Recommendations, "考虑简化轮廓")
	}

	return validation
}

// signedPolygonArea 鞋带公式计算带符号面积，逆时针为正
func signedPolygonArea(points []Tin.Point2D) float64 {
	if len(points) < 3 {
		return 0.0
	}

	area := 0.0
	n := len(points)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += points[i].X*points[j].Y - points[j].X*points[i].Y
	}

	return area / 2.0
}

// polygonCentroid 多边形质心（按各边带符号面积加权）。
// 面积退化时退回顶点算术平均。
func polygonCentroid(points []Tin.Point2D, signedArea float64) Tin.Point2D {
	n := len(points)
	if n == 0 {
		return Tin.Point2D{}
	}

	if math.Abs(signedArea) < 1e-12 {
		sx, sy := 0.0, 0.0
		for _, p := range points {
			sx += p.X
			sy += p.Y
		}
		return Tin.Point2D{X: sx / float64(n), Y: sy / float64(n)}
	}

	cx, cy := 0.0, 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := points[i].X*points[j].Y - points[j].X*points[i].Y
		cx += (points[i].X + points[j].X) * cross
		cy += (points[i].Y + points[j].Y) * cross
	}

	cx /= 6.0 * signedArea
	cy /= 6.0 * signedArea

	return Tin.Point2D{X: cx, Y: cy}
}

// extractElevationFromLayerName 从图层名中提取高程提示，提取不到不算错误
func extractElevationFromLayerName(layerName string) *float64 {
	lower := strings.ToLower(layerName)

	for _, pattern := range elevationPatterns {
		match := pattern.FindStringSubmatch(lower)
		if len(match) >= 2 {
			if value, err := strconv.ParseFloat(match[1], 64); err == nil {
				return &value
			}
		}
	}

	return nil
}

// generateContourName 生成轮廓名称，附带计算面积
func (e *Extractor) generateContourName(layerName string, area float64) string {
	var baseName string
	if methods.ContainsAnyKeyword(layerName, e.layerKeywords) {
		baseName = "开挖轮廓"
	} else {
		baseName = fmt.Sprintf("轮廓(%s)", layerName)
	}

	return fmt.Sprintf("%s-%.1f㎡", baseName, area)
}

func shortUUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
