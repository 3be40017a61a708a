package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/chenguan1/geoclass/mapstyle"
	"github.com/chenguan1/geoclass/model"
)

// UNIQUEMAX unique 渲染的最大分类数
const UNIQUEMAX = 4096

// parseColor "r,g,b" 文本转颜色
func parseColor(s string, def mapstyle.MapColor) mapstyle.MapColor {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return def
	}
	var clr mapstyle.MapColor
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 || v > 255 {
			return def
		}
		clr[i] = uint8(v)
	}
	return clr
}

// styleGeotype mapfile 图层的几何大类
func styleGeotype(gt GeoType) string {
	s := string(gt)
	if strings.Contains(s, "Polygon") {
		return "Polygon"
	}
	if strings.Contains(s, "Line") {
		return "Line"
	}
	return "Point"
}

// buildMapfile 重新生成要素类的 mapfile
func (fc *FeatureClass) buildMapfile(classItem string, classes []mapstyle.ClassStyle) error {
	mc := mapstyle.MapConfig{}
	mc.Name = fc.Name
	mc.BBox = mapstyle.NewMapBound(fc.MinX, fc.MinY, fc.MaxX, fc.MaxY)
	mc.Layers = []mapstyle.MapLayer{{
		Table:     fc.DataTable(),
		Name:      fc.Name,
		Data:      fc.AbsPath(),
		Geotype:   styleGeotype(fc.Geotype),
		ClassItem: classItem,
		Classes:   classes,
	}}

	wd, _ := os.Getwd()
	mapfile := filepath.Join(wd, "data/mapfiles", fc.ID+".map")
	err := mc.GenerateMapfile(mapfile)
	if err != nil {
		return fmt.Errorf("generate mapfile failed. error: %v", err)
	}
	fc.Mapfile = mapfile
	return nil
}

// applySingle 单一符号
func (fc *FeatureClass) applySingle(clr, outline mapstyle.MapColor) error {
	classes := []mapstyle.ClassStyle{{
		Name:         fc.Name,
		Color:        clr,
		OutlineColor: outline,
	}}
	if err := fc.buildMapfile("", classes); err != nil {
		return err
	}
	fc.Renderer = RendererSingle
	fc.SymField = ""
	fc.Classes = 1
	return nil
}

// applyUnique 唯一值渲染
func (fc *FeatureClass) applyUnique(field string) error {
	if !fc.hasField(field) {
		return fmt.Errorf("field %s not found, fields: %s", field, fc.fieldNames())
	}
	tableName := fc.DataTable()
	st := fmt.Sprintf(`SELECT DISTINCT "%s" FROM "%s" WHERE "%s" IS NOT NULL ORDER BY "%s" LIMIT %d`,
		field, tableName, field, field, UNIQUEMAX+1)
	rows, err := db.Raw(st).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()
	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			log.Warnf(`applyUnique, scan value error, details:%s`, err)
			continue
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return fmt.Errorf("field %s has no values", field)
	}
	if len(values) > UNIQUEMAX {
		return fmt.Errorf("field %s has more than %d unique values", field, UNIQUEMAX)
	}

	outline := mapstyle.NewMapColor(255, 255, 255)
	classes := make([]mapstyle.ClassStyle, 0, len(values))
	for i, v := range values {
		classes = append(classes, mapstyle.ClassStyle{
			Name:         v,
			Expression:   `"` + strings.Replace(v, `"`, `\"`, -1) + `"`,
			Color:        mapstyle.PaletteColor(i),
			OutlineColor: outline,
		})
	}
	if err := fc.buildMapfile(field, classes); err != nil {
		return err
	}
	fc.Renderer = RendererUnique
	fc.SymField = field
	fc.Classes = len(classes)
	return nil
}

// applyGraduated 分级渲染, 等间距分级
func (fc *FeatureClass) applyGraduated(field string, num int, from, to mapstyle.MapColor) error {
	fields := fc.FieldList()
	var ftype FieldType
	found := false
	for _, f := range fields {
		if f.Name == field {
			ftype = f.Type
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("field %s not found, fields: %s", field, fc.fieldNames())
	}
	if ftype != Int && ftype != Float {
		return fmt.Errorf("graduated renderer needs a numeric field, %s is %s", field, ftype)
	}
	if num <= 0 {
		num = 5
	}

	tableName := fc.DataTable()
	st := fmt.Sprintf(`SELECT MIN("%s"), MAX("%s") FROM "%s" WHERE "%s" IS NOT NULL`,
		field, field, tableName, field)
	row := db.Raw(st).Row()
	var min, max float64
	if err := row.Scan(&min, &max); err != nil {
		return fmt.Errorf("field %s has no values, error: %v", field, err)
	}

	// 零值域退化为单类
	if min == max {
		num = 1
	}

	ramp := mapstyle.Ramp(from, to, num)
	outline := mapstyle.NewMapColor(255, 255, 255)
	width := (max - min) / float64(num)
	classes := make([]mapstyle.ClassStyle, 0, num)
	for i := 0; i < num; i++ {
		lo := min + width*float64(i)
		hi := lo + width
		var expr, name string
		if i == num-1 {
			// 末级闭区间
			expr = fmt.Sprintf(`(([%s] >= %g) AND ([%s] <= %g))`, field, lo, field, max)
			name = fmt.Sprintf("%g - %g", lo, max)
		} else {
			expr = fmt.Sprintf(`(([%s] >= %g) AND ([%s] < %g))`, field, lo, field, hi)
			name = fmt.Sprintf("%g - %g", lo, hi)
		}
		classes = append(classes, mapstyle.ClassStyle{
			Name:         name,
			Expression:   expr,
			Color:        ramp[i],
			OutlineColor: outline,
		})
	}
	if err := fc.buildMapfile("", classes); err != nil {
		return err
	}
	fc.Renderer = RendererGraduated
	fc.SymField = field
	fc.Classes = num
	return nil
}

func (fc *FeatureClass) hasField(name string) bool {
	for _, f := range fc.FieldList() {
		if f.Name == name {
			return true
		}
	}
	return false
}

func (fc *FeatureClass) fieldNames() string {
	var names []string
	for _, f := range fc.FieldList() {
		names = append(names, f.Name)
	}
	return strings.Join(names, ",")
}

// symbologyFeatureClass 应用符号化预设
func symbologyFeatureClass(c *gin.Context) {
	res := NewRes()
	id := c.Param("id")
	fc := &FeatureClass{}
	err := db.Where("id = ?", id).First(fc).Error
	if err != nil {
		res.Fail(c, 4044)
		return
	}
	fc.Fields = []byte(fc.Schema)
	if fc.Geotype == Attribute {
		res.FailMsg(c, "attribute table has no map layer")
		return
	}

	spec := model.SymbologySpec{}
	if err := c.Bind(&spec); err != nil {
		log.Warnf("bind symbology spec failed, error: %v", err)
		res.FailErr(c, err)
		return
	}

	switch spec.Renderer {
	case RendererSingle:
		clr := parseColor(spec.Color, mapstyle.NewMapColor(255, 0, 0))
		err = fc.applySingle(clr, mapstyle.NewMapColor(0, 0, 255))
	case RendererUnique:
		err = fc.applyUnique(spec.Field)
	case RendererGraduated:
		from := parseColor(spec.RampFrom, mapstyle.NewMapColor(255, 245, 240))
		to := parseColor(spec.RampTo, mapstyle.NewMapColor(165, 15, 21))
		err = fc.applyGraduated(spec.Field, spec.Classes, from, to)
	default:
		res.FailMsg(c, fmt.Sprintf("unknown renderer: %s, renderers: %s", spec.Renderer, strings.Join(Renderers, ",")))
		return
	}
	if err != nil {
		log.Errorf("apply symbology failed, error: %v", err)
		res.FailErr(c, err)
		return
	}

	if err := fc.Save(); err != nil {
		log.Warnf("save featureclass failed, error: %v", err)
		res.Fail(c, 5001)
		return
	}
	res.DoneData(c, fc)
}
