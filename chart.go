package main

import (
	"database/sql"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/chenguan1/geoclass/model"
)

// 制图缺省参数
const (
	HISTBINS = 16
	MAXBARS  = 12
)

// Category 分类计数
type Category struct {
	Name  string
	Count float64
}

// chartFieldType 制图字段类型, 先查 schema, 不在 schema 时扫描列值推断
func (fc *FeatureClass) chartFieldType(field string) (FieldType, error) {
	for _, f := range fc.FieldList() {
		if f.Name == field {
			return f.Type, nil
		}
	}
	// sqlite 把未知的双引号标识符当字符串字面量, 先核对真实列
	cols, err := fc.tableColumns()
	if err != nil {
		return "", err
	}
	found := false
	for _, c := range cols {
		if strings.EqualFold(c, field) {
			found = true
			break
		}
	}
	if !found {
		return "", fmt.Errorf("field %s not found, fields: %s", field, fc.fieldNames())
	}
	st := fmt.Sprintf(`SELECT CAST("%s" AS TEXT) FROM "%s" WHERE "%s" IS NOT NULL LIMIT 100`,
		field, fc.DataTable(), field)
	rows, err := db.Raw(st).Rows()
	if err != nil {
		return "", err
	}
	defer rows.Close()
	var sample []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			continue
		}
		sample = append(sample, v)
	}
	if len(sample) == 0 {
		return "", fmt.Errorf("field %s has no values", field)
	}
	return findType(sample), nil
}

// numericValues 数值列非空值
func (fc *FeatureClass) numericValues(field string) ([]float64, error) {
	st := fmt.Sprintf(`SELECT "%s" FROM "%s" WHERE "%s" IS NOT NULL`,
		field, fc.DataTable(), field)
	rows, err := db.Raw(st).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var vals []float64
	for rows.Next() {
		var v sql.NullFloat64
		if err := rows.Scan(&v); err != nil {
			log.Warnf(`numericValues, scan error, details:%s`, err)
			continue
		}
		if v.Valid {
			vals = append(vals, v.Float64)
		}
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("field %s has no values", field)
	}
	return vals, nil
}

// categoryCounts 分类频数, 按频数降序
func (fc *FeatureClass) categoryCounts(field string, maxBars int) ([]Category, error) {
	st := fmt.Sprintf(`SELECT CAST("%s" AS TEXT) AS v, COUNT(*) AS c FROM "%s" WHERE "%s" IS NOT NULL GROUP BY v ORDER BY c DESC, v ASC`,
		field, fc.DataTable(), field)
	rows, err := db.Raw(st).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cats []Category
	for rows.Next() {
		var v string
		var c int64
		if err := rows.Scan(&v, &c); err != nil {
			log.Warnf(`categoryCounts, scan error, details:%s`, err)
			continue
		}
		cats = append(cats, Category{Name: v, Count: float64(c)})
	}
	if len(cats) == 0 {
		return nil, fmt.Errorf("field %s has no values", field)
	}
	sortCategories(cats)
	if maxBars > 0 && len(cats) > maxBars {
		// 长尾折叠
		var other float64
		for _, c := range cats[maxBars-1:] {
			other += c.Count
		}
		cats = append(cats[:maxBars-1], Category{Name: "(other)", Count: other})
	}
	return cats, nil
}

var chartFill = color.RGBA{R: 31, G: 119, B: 180, A: 255}

// renderHist 直方图
func renderHist(title, field string, vals []float64, bins int) (*plot.Plot, error) {
	if bins <= 0 {
		bins = HISTBINS
	}
	min, max := vals[0], vals[0]
	for _, v := range vals {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	// 常量列退化为单箱
	if min == max {
		bins = 1
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = field
	p.Y.Label.Text = "count"
	h, err := plotter.NewHist(plotter.Values(vals), bins)
	if err != nil {
		return nil, err
	}
	h.FillColor = chartFill
	p.Add(h)
	return p, nil
}

// renderBar 条形图
func renderBar(title, field string, cats []Category) (*plot.Plot, error) {
	vals := make(plotter.Values, len(cats))
	names := make([]string, len(cats))
	for i, c := range cats {
		vals[i] = c.Count
		names[i] = c.Name
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = field
	p.Y.Label.Text = "count"
	bars, err := plotter.NewBarChart(vals, vg.Points(24))
	if err != nil {
		return nil, err
	}
	bars.Color = chartFill
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)
	return p, nil
}

// Chart 生成统计图并落盘为 png
// 数值字段画直方图, 分类字段画频数条形图
func (fc *FeatureClass) Chart(spec model.ChartSpec) (string, error) {
	if spec.Field == "" {
		return "", fmt.Errorf("chart field is empty")
	}
	ftype, err := fc.chartFieldType(spec.Field)
	if err != nil {
		return "", err
	}

	kind := spec.Kind
	if kind == "" || kind == "auto" {
		if ftype == Int || ftype == Float {
			kind = "hist"
		} else {
			kind = "bar"
		}
	}
	title := spec.Title
	if title == "" {
		title = fc.Name + " · " + spec.Field
	}

	var p *plot.Plot
	switch kind {
	case "hist":
		if ftype != Int && ftype != Float {
			return "", fmt.Errorf("histogram needs a numeric field, %s is %s", spec.Field, ftype)
		}
		vals, err := fc.numericValues(spec.Field)
		if err != nil {
			return "", err
		}
		p, err = renderHist(title, spec.Field, vals, spec.Bins)
		if err != nil {
			return "", err
		}
	case "bar":
		maxBars := spec.MaxBars
		if maxBars <= 0 {
			maxBars = MAXBARS
		}
		cats, err := fc.categoryCounts(spec.Field, maxBars)
		if err != nil {
			return "", err
		}
		p, err = renderBar(title, spec.Field, cats)
		if err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unknown chart kind: %s", kind)
	}

	wd, _ := os.Getwd()
	dir := filepath.Join(wd, "data/charts")
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}
	png := filepath.Join(dir, fmt.Sprintf("%s_%s_%s.png", fc.ID, spec.Field, kind))
	if err := p.Save(8*vg.Inch, 5*vg.Inch, png); err != nil {
		return "", fmt.Errorf("save chart failed, error: %v", err)
	}
	return png, nil
}

// chartFeatureClass 输出要素类某字段的统计图
func chartFeatureClass(c *gin.Context) {
	res := NewRes()
	id := c.Param("id")
	fc := &FeatureClass{}
	err := db.Where("id = ?", id).First(fc).Error
	if err != nil {
		res.Fail(c, 4044)
		return
	}
	fc.Fields = []byte(fc.Schema)

	spec := model.ChartSpec{}
	if err := c.Bind(&spec); err != nil {
		log.Warnf("bind chart spec failed, error: %v", err)
		res.FailErr(c, err)
		return
	}

	png, err := fc.Chart(spec)
	if err != nil {
		log.Errorf("chart failed, error: %v", err)
		res.FailErr(c, err)
		return
	}
	c.File(png)
}

// sortCategories 频数降序, 同频按名称, 与数据库排序规则无关
func sortCategories(cats []Category) {
	sort.SliceStable(cats, func(i, j int) bool {
		if cats[i].Count != cats[j].Count {
			return cats[i].Count > cats[j].Count
		}
		return cats[i].Name < cats[j].Name
	})
}
