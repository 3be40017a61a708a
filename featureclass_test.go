package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"testing"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/teris-io/shortid"
)

// openTestDB 打开测试库并建表
func openTestDB(t *testing.T, conn string) func() {
	os.Remove(conn)
	var err error
	db, err = gorm.Open("sqlite3", conn)
	if err != nil {
		t.Fatalf("init gorm db error, error: %s\n", err)
	}

	// 自动构建
	db.AutoMigrate(&FeatureClass{}, &Mapset{})

	return func() {
		db.Close()
		os.Remove(conn)
	}
}

const testGeoJSON = `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"name":"alpha","pop":120.0,"grade":"A"},"geometry":{"type":"Point","coordinates":[116.3,39.9]}},
{"type":"Feature","properties":{"name":"beta","pop":80.0,"grade":"B"},"geometry":{"type":"Point","coordinates":[117.2,39.1]}},
{"type":"Feature","properties":{"name":"gamma","pop":45.0,"grade":"B"},"geometry":{"type":"Point","coordinates":[121.5,31.2]}},
{"type":"Feature","properties":{"name":"delta","pop":260.0,"grade":"A"},"geometry":{"type":"Point","coordinates":[113.3,23.1]}},
{"type":"Feature","properties":{"name":"epsilon","pop":15.5,"grade":"C"},"geometry":{"type":"Point","coordinates":[104.1,30.6]}}
]}`

// writeTestGeoJSON 落一个测试 geojson, 返回相对路径
func writeTestGeoJSON(t *testing.T, name string) string {
	err := ioutil.WriteFile(name, []byte(testGeoJSON), 0644)
	if err != nil {
		t.Fatalf("write test geojson failed, error: %s\n", err)
	}
	return name
}

// newTestFC 载入并导入一个测试要素类
func newTestFC(t *testing.T, file string) *FeatureClass {
	id, _ := shortid.Generate()
	fc := &FeatureClass{
		ID:     id,
		Name:   "test_cities",
		Path:   file,
		Format: GEOJSONEXT,
	}
	if err := fc.LoadFromJSON(); err != nil {
		t.Fatalf("load from json failed, error: %s\n", err)
	}
	if err := fc.Import(); err != nil {
		t.Fatalf("import failed, error: %s\n", err)
	}
	return fc
}

func TestFeatureClassAddTake(t *testing.T) {
	clean := openTestDB(t, "geoclass_test.db")
	defer clean()

	id, _ := shortid.Generate()

	// 创建
	fc := &FeatureClass{
		ID:        id,
		Name:      id,
		Tag:       "",
		Path:      "data/test.geojson",
		Format:    ".geojson",
		Size:      12564,
		Geotype:   "Point",
		CreatedAt: time.Time{},
		UpdatedAt: time.Time{},
	}

	// 更新
	err := fc.Save()
	if err != nil {
		t.Errorf("insert featureclass falied, error: %s\n", err)
		return
	}

	// 取出
	tmp := &FeatureClass{}
	err = db.Where("id = ?", id).First(tmp).Error
	if err != nil {
		t.Errorf("take one featureclass failed, error: %s\n", err)
		return
	}

	if tmp.ID != fc.ID || tmp.Path != fc.Path {
		t.Errorf("data not correct same.")
		t.Errorf("fc=%#v", fc)
		t.Errorf("tm=%#v", tmp)
		return
	}
}

func TestLoadFromJSON(t *testing.T) {
	file := writeTestGeoJSON(t, "test_load.geojson")
	defer os.Remove(file)

	fc := &FeatureClass{
		ID:     "tload",
		Name:   "tload",
		Path:   file,
		Format: GEOJSONEXT,
	}
	err := fc.LoadFromJSON()
	if err != nil {
		t.Fatalf("load from json failed, error: %s\n", err)
	}

	if fc.Total != 5 {
		t.Errorf("expect 5 features, got %d", fc.Total)
	}
	if fc.Geotype != "Point" {
		t.Errorf("expect Point geotype, got %s", fc.Geotype)
	}
	if fc.MinX != 104.1 || fc.MaxX != 121.5 {
		t.Errorf("bad bbox x: %v %v", fc.MinX, fc.MaxX)
	}
	if fc.MinY != 23.1 || fc.MaxY != 39.9 {
		t.Errorf("bad bbox y: %v %v", fc.MinY, fc.MaxY)
	}

	var fields []Field
	if err := json.Unmarshal(fc.Fields, &fields); err != nil {
		t.Fatalf("unmarshal fields failed, error: %s\n", err)
	}
	types := map[string]FieldType{}
	for _, f := range fields {
		types[f.Name] = f.Type
	}
	if types["name"] != String {
		t.Errorf("field name should be string, got %s", types["name"])
	}
	if types["pop"] != Float {
		t.Errorf("field pop should be float, got %s", types["pop"])
	}
}

func TestLoadFromJSONEmpty(t *testing.T) {
	file := "test_empty.geojson"
	empty := `{"type":"FeatureCollection","features":[]}`
	if err := ioutil.WriteFile(file, []byte(empty), 0644); err != nil {
		t.Fatalf("write test geojson failed, error: %s\n", err)
	}
	defer os.Remove(file)

	fc := &FeatureClass{
		ID:     "tempty",
		Name:   "tempty",
		Path:   file,
		Format: GEOJSONEXT,
	}
	if err := fc.LoadFromJSON(); err == nil {
		t.Errorf("expect error for empty feature collection")
	}
}

func TestImportGeoJSONEmpty(t *testing.T) {
	clean := openTestDB(t, "geoclass_empty_test.db")
	defer clean()

	file := "test_empty_imp.geojson"
	empty := `{"type":"FeatureCollection","features":[]}`
	if err := ioutil.WriteFile(file, []byte(empty), 0644); err != nil {
		t.Fatalf("write test geojson failed, error: %s\n", err)
	}
	defer os.Remove(file)

	fc := &FeatureClass{
		ID:      "tempimp",
		Name:    "tempimp",
		Path:    file,
		Format:  GEOJSONEXT,
		Geotype: "Point",
	}
	fc.setFields([]Field{{Name: "name", Type: String}})

	if err := fc.Import(); err == nil {
		t.Errorf("expect error for importing empty feature collection")
	}
}

func TestImportGeoJSON(t *testing.T) {
	clean := openTestDB(t, "geoclass_import_test.db")
	defer clean()

	file := writeTestGeoJSON(t, "test_import.geojson")
	defer os.Remove(file)

	fc := newTestFC(t, file)

	var total int
	row := db.Raw(fmt.Sprintf(`SELECT COUNT(*) FROM "%s"`, fc.DataTable())).Row()
	if err := row.Scan(&total); err != nil {
		t.Fatalf("count rows failed, error: %s\n", err)
	}
	if total != 5 {
		t.Errorf("expect 5 rows imported, got %d", total)
	}

	// 几何存 geojson 文本
	var geom string
	row = db.Raw(fmt.Sprintf(`SELECT geom FROM "%s" WHERE CAST("name" AS TEXT) = 'alpha'`, fc.DataTable())).Row()
	if err := row.Scan(&geom); err != nil {
		t.Fatalf("select geom failed, error: %s\n", err)
	}
	g := struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	}{}
	if err := json.Unmarshal([]byte(geom), &g); err != nil {
		t.Fatalf("geom is not valid geojson: %s\n", geom)
	}
	if g.Type != "Point" || len(g.Coordinates) != 2 {
		t.Errorf("bad geom: %s", geom)
	}
}

func TestFindType(t *testing.T) {
	cases := []struct {
		arr  []string
		want FieldType
	}{
		{[]string{"1", "2", "3"}, Int},
		{[]string{"1.5", "2", ""}, Float},
		{[]string{"true", "false"}, Bool},
		{[]string{"1", "abc"}, String},
		{[]string{"", ""}, String},
	}
	for _, c := range cases {
		got := findType(c.arr)
		if got != c.want {
			t.Errorf("findType(%v) = %s, want %s", c.arr, got, c.want)
		}
	}
}

func TestLoadFromCSV(t *testing.T) {
	csv := "name,lon,lat,pop\nalpha,116.3,39.9,120\nbeta,117.2,39.1,80\n"
	file := "test_points.csv"
	if err := ioutil.WriteFile(file, []byte(csv), 0644); err != nil {
		t.Fatalf("write test csv failed, error: %s\n", err)
	}
	defer os.Remove(file)

	fc := &FeatureClass{
		ID:     "tcsv",
		Name:   "tcsv",
		Path:   file,
		Format: CSVEXT,
	}
	if err := fc.LoadFromCSV(); err != nil {
		t.Fatalf("load from csv failed, error: %s\n", err)
	}
	if fc.Total != 2 {
		t.Errorf("expect 2 rows, got %d", fc.Total)
	}
	if fc.Geotype != "lon,lat" {
		t.Errorf("expect lon,lat geotype, got %s", fc.Geotype)
	}
	if fc.MinX != 116.3 || fc.MaxX != 117.2 {
		t.Errorf("bad bbox x: %v %v", fc.MinX, fc.MaxX)
	}
}

func TestLoadFromCSVAttribute(t *testing.T) {
	// 没有坐标列, 作属性表
	csv := "code,label\n1001,foo\n1002,bar\n"
	file := "test_attrs.csv"
	if err := ioutil.WriteFile(file, []byte(csv), 0644); err != nil {
		t.Fatalf("write test csv failed, error: %s\n", err)
	}
	defer os.Remove(file)

	fc := &FeatureClass{
		ID:     "tattr",
		Name:   "tattr",
		Path:   file,
		Format: CSVEXT,
	}
	if err := fc.LoadFromCSV(); err != nil {
		t.Fatalf("load from csv failed, error: %s\n", err)
	}
	if fc.Geotype != Attribute {
		t.Errorf("expect attribute geotype, got %s", fc.Geotype)
	}
}
