package config

import (
	"encoding/xml"
	"fmt"
	"os"
)

// 算法默认参数，可被earthwork.xml覆盖
var SurfaceResolution float64    // 地表点云量化分辨率(m)
var VolumeGridResolution float64 // 体积网格积分分辨率(m)
var InterpNeighbors int          // 散点插值邻居数
var IDWNeighbors int             // 反距离加权邻居数
var MaxContourPoints int         // 轮廓点数预警阈值
var MainConfig Config

type Config struct {
	XMLName              xml.Name `xml:"config"`
	SurfaceResolution    float64  `xml:"SurfaceResolution"`
	VolumeGridResolution float64  `xml:"VolumeGridResolution"`
	InterpNeighbors      int      `xml:"InterpNeighbors"`
	IDWNeighbors         int      `xml:"IDWNeighbors"`
	MaxContourPoints     int      `xml:"MaxContourPoints"`
}

func setDefaults() {
	SurfaceResolution = 1.0
	VolumeGridResolution = 0.5
	InterpNeighbors = 10
	IDWNeighbors = 5
	MaxContourPoints = 1000
}

func init() {
	setDefaults()

	xmlFile, err := os.Open("earthwork.xml")
	if err != nil {
		// 配置文件缺省时使用默认参数
		return
	}
	defer xmlFile.Close()

	xmlDecoder := xml.NewDecoder(xmlFile)
	err = xmlDecoder.Decode(&MainConfig)
	if err != nil {
		fmt.Println("Error  decoding  XML:", err)
		return
	}

	if MainConfig.SurfaceResolution > 0 {
		SurfaceResolution = MainConfig.SurfaceResolution
	}
	if MainConfig.VolumeGridResolution > 0 {
		VolumeGridResolution = MainConfig.VolumeGridResolution
	}
	if MainConfig.InterpNeighbors > 0 {
		InterpNeighbors = MainConfig.InterpNeighbors
	}
	if MainConfig.IDWNeighbors > 0 {
		IDWNeighbors = MainConfig.IDWNeighbors
	}
	if MainConfig.MaxContourPoints > 0 {
		MaxContourPoints = MainConfig.MaxContourPoints
	}
}
