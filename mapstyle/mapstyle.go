package mapstyle

import (
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
)

// DefaultTemplate 缺省模板路径
const DefaultTemplate = "static/tmpl/mapfile.tmpl"

type MapColor [3]uint8

func (clr MapColor) String() string {
	return fmt.Sprintf("%v %v %v", clr[0], clr[1], clr[2])
}

type MapBound [4]float64

func (bound MapBound) String() string {
	return fmt.Sprintf("%v %v %v %v", bound[0], bound[1], bound[2], bound[3])
}

func (bound *MapBound) Union(box2 *MapBound) MapBound {
	bd := *bound
	if bd[0] > box2[0] {
		bd[0] = box2[0]
	}
	if bd[1] > box2[1] {
		bd[1] = box2[1]
	}
	if bd[2] < box2[2] {
		bd[2] = box2[2]
	}
	if bd[3] < box2[3] {
		bd[3] = box2[3]
	}
	return bd
}

func NewMapColor(r, g, b uint8) MapColor {
	return MapColor{r, g, b}
}

func NewMapBound(minx, miny, maxx, maxy float64) MapBound {
	return MapBound{minx, miny, maxx, maxy}
}

// ClassStyle 一个渲染类: 名称+过滤表达式+填充/边线色
type ClassStyle struct {
	Name         string
	Expression   string
	Color        MapColor
	OutlineColor MapColor
}

type MapLayer struct {
	Name    string
	Table   string
	Data    string
	Geotype string

	// 分类渲染
	ClassItem string
	Classes   []ClassStyle
}

// MsType mapserver 图层类型
func (l *MapLayer) MsType() string {
	switch l.Geotype {
	case "Point":
		return "POINT"
	case "Line":
		return "LINE"
	case "Polygon":
		return "POLYGON"
	}
	return "POINT"
}

type MapConfig struct {
	Name     string
	BBox     MapBound
	Mapfile  string
	Mshost   string
	Template string

	Layers []MapLayer
}

// GenerateMapfile 生成 mapfile 文件
func (mc *MapConfig) GenerateMapfile(mapfile string) error {
	if mc == nil {
		return fmt.Errorf("mapfile is nil")
	}
	if mc.Name == "" {
		return fmt.Errorf("mapfile Name is empty")
	}
	if mapfile == "" {
		return fmt.Errorf("mapfile path is empty")
	}

	// \\ -> /
	mapfile = filepath.ToSlash(mapfile)

	// 更新路径
	mc.Mapfile = mapfile
	if mc.Mshost == "" {
		mc.Mshost = UrlMapServ
	}
	if mc.Template == "" {
		mc.Template = DefaultTemplate
	}

	for i, layer := range mc.Layers {
		if layer.Name == "" {
			mc.Layers[i].Name = mc.Name + "_layer" + strconv.Itoa(i)
		}
		if _, err := os.Stat(layer.Data); os.IsNotExist(err) {
			return fmt.Errorf("mapfile layer data is not exist: %s", layer.Data)
		}
		if layer.Geotype == "" {
			return fmt.Errorf("mapfile geotype is empty")
		}
		if len(layer.Classes) == 0 {
			// 至少一个缺省类
			mc.Layers[i].Classes = []ClassStyle{{
				Name:         mc.Layers[i].Name,
				Color:        NewMapColor(255, 0, 0),
				OutlineColor: NewMapColor(0, 0, 255),
			}}
		}

		mc.Layers[i].Data = filepath.ToSlash(layer.Data)
	}

	pt, _ := filepath.Split(mapfile)
	if _, err := os.Stat(pt); os.IsNotExist(err) {
		err = os.MkdirAll(pt, 0755)
		if err != nil {
			return fmt.Errorf("make dir failed, error: %v", err)
		}
	}

	var b = &strings.Builder{}
	tmpl, err := template.ParseFiles(mc.Template)
	if err != nil {
		return err
	}

	err = tmpl.Execute(b, mc)
	if err != nil {
		return fmt.Errorf("execute template failed, error: %v", err)
	}

	err = ioutil.WriteFile(mapfile, []byte(b.String()), 0644)
	if err != nil {
		return fmt.Errorf("save mapfile failed, error: %v", err)
	}

	return nil
}

//Palette 分类渲染的定性色板
var Palette = []MapColor{
	{31, 119, 180},
	{255, 127, 14},
	{44, 160, 44},
	{214, 39, 40},
	{148, 103, 189},
	{140, 86, 75},
	{227, 119, 194},
	{127, 127, 127},
	{188, 189, 34},
	{23, 190, 207},
}

// PaletteColor 取色, 超出长度时循环
func PaletteColor(i int) MapColor {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// LerpColor 两色线性插值, t in [0,1]
func LerpColor(a, b MapColor, t float64) MapColor {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	lerp := func(x, y uint8, t float64) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return MapColor{
		lerp(a[0], b[0], t),
		lerp(a[1], b[1], t),
		lerp(a[2], b[2], t),
	}
}

// Ramp n 个等距渐变色
func Ramp(from, to MapColor, n int) []MapColor {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []MapColor{from}
	}
	out := make([]MapColor, n)
	for i := 0; i < n; i++ {
		out[i] = LerpColor(from, to, float64(i)/float64(n-1))
	}
	return out
}
