package methods

import (
	"math"
	"strings"
)

// ContainsAnyKeyword 判断字符串是否包含任一关键字（不区分大小写）
func ContainsAnyKeyword(s string, keywords []string) bool {
	lower := strings.ToLower(s)
	for _, keyword := range keywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// Mean 计算均值，空切片返回0
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Std 计算总体标准差，空切片返回0
func Std(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// Variance 计算总体方差，空切片返回0
func Variance(values []float64) float64 {
	s := Std(values)
	return s * s
}

// MinMax 返回切片的最小值和最大值，空切片返回(0, 0)
func MinMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
