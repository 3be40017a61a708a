package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/teris-io/shortid"

	"github.com/chenguan1/geoclass/mapstyle"
	"github.com/chenguan1/geoclass/model"
)

// Mapset 地图集定义结构
type Mapset struct {
	ID        string    `json:"id" gorm:"primary_key"`
	Name      string    `json:"name"`
	Tag       string    `json:"tag"`
	Layers    string    `json:"layers"` // 要素类 id 列表, 逗号分隔
	MapFile   string    `json:"-"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Generate 多图层合成一个 mapfile, bbox 取并集
func (ms *Mapset) Generate(fcs []FeatureClass) error {
	mc := mapstyle.MapConfig{}
	mc.Name = ms.Name
	mc.BBox = mapstyle.NewMapBound(-180, -90, 180, 90)
	mc.Layers = make([]mapstyle.MapLayer, 0, 128)

	for i, layer := range fcs {
		mcLayer := mapstyle.MapLayer{
			Table:   layer.DataTable(),
			Name:    layer.Name,
			Data:    layer.AbsPath(),
			Geotype: styleGeotype(layer.Geotype),
			Classes: []mapstyle.ClassStyle{{
				Name:         layer.Name,
				Color:        mapstyle.PaletteColor(i),
				OutlineColor: mapstyle.NewMapColor(255, 255, 255),
			}},
		}

		mc.Layers = append(mc.Layers, mcLayer)
		box2 := mapstyle.NewMapBound(layer.MinX, layer.MinY, layer.MaxX, layer.MaxY)
		if i == 0 {
			mc.BBox = box2
		} else {
			mc.BBox = mc.BBox.Union(&box2)
		}
	}

	wd, _ := os.Getwd()
	mapfile := filepath.Join(wd, "data/mapfiles", "ms_"+ms.ID+".map")
	err := mc.GenerateMapfile(mapfile)
	if err != nil {
		return fmt.Errorf("generate mapfile failed. error: %v", err)
	}
	ms.MapFile = mapfile
	ms.Version++
	return nil
}

// createMapset 组合要素类为地图集
func createMapset(c *gin.Context) {
	res := NewRes()
	spec := model.MapsetSpec{}
	if err := c.Bind(&spec); err != nil {
		log.Warnf("bind mapset spec failed, error: %v", err)
		res.FailErr(c, err)
		return
	}
	if len(spec.IDs) == 0 {
		res.FailMsg(c, "mapset needs at least one feature class")
		return
	}

	var fcs []FeatureClass
	for _, id := range spec.IDs {
		fc := FeatureClass{}
		if err := db.Where("id = ?", id).First(&fc).Error; err != nil {
			res.Fail(c, 4044)
			return
		}
		if fc.Geotype == Attribute {
			res.FailMsg(c, fmt.Sprintf("feature class %s is an attribute table", id))
			return
		}
		fcs = append(fcs, fc)
	}

	id, _ := shortid.Generate()
	ms := &Mapset{
		ID:     id,
		Name:   spec.Name,
		Tag:    spec.Tag,
		Layers: strings.Join(spec.IDs, ","),
	}
	if ms.Name == "" {
		ms.Name = "mapset_" + id
	}

	if err := ms.Generate(fcs); err != nil {
		log.Errorf("generate mapset mapfile failed, error: %v", err)
		res.Fail(c, 5005)
		return
	}

	if err := db.Create(ms).Error; err != nil {
		log.Warnf("save mapset failed, error: %v", err)
		res.Fail(c, 5001)
		return
	}

	res.DoneData(c, ms)
}

// wms 预览地图集
func wmsMapset(c *gin.Context) {
	res := NewRes()
	id := c.Param("id")
	ms := &Mapset{}
	err := db.Where("id = ?", id).First(ms).Error
	if err != nil {
		res.Fail(c, 4046)
		return
	}
	proxyMapfile(c, ms.MapFile)
}
