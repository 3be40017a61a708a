package main

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/chenguan1/geoclass/model"
)

func isPNG(t *testing.T, path string) bool {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatalf("read chart file failed, error: %s\n", err)
	}
	return len(buf) > 8 && string(buf[1:4]) == "PNG"
}

func TestChartHist(t *testing.T) {
	clean := openTestDB(t, "geoclass_chart_test.db")
	defer clean()

	file := writeTestGeoJSON(t, "test_chart.geojson")
	defer os.Remove(file)
	defer os.RemoveAll("data/charts")

	fc := newTestFC(t, file)

	vals, err := fc.numericValues("pop")
	if err != nil {
		t.Fatalf("numeric values failed, error: %s\n", err)
	}
	if len(vals) != 5 {
		t.Errorf("expect 5 values, got %d", len(vals))
	}

	png, err := fc.Chart(model.ChartSpec{Field: "pop"})
	if err != nil {
		t.Fatalf("hist chart failed, error: %s\n", err)
	}
	if !isPNG(t, png) {
		t.Errorf("chart output is not a png: %s", png)
	}
}

func TestChartBar(t *testing.T) {
	clean := openTestDB(t, "geoclass_bar_test.db")
	defer clean()

	file := writeTestGeoJSON(t, "test_bar.geojson")
	defer os.Remove(file)
	defer os.RemoveAll("data/charts")

	fc := newTestFC(t, file)

	cats, err := fc.categoryCounts("grade", MAXBARS)
	if err != nil {
		t.Fatalf("category counts failed, error: %s\n", err)
	}
	// A:2 B:2 C:1, 频数降序同频按名称
	if len(cats) != 3 {
		t.Fatalf("expect 3 categories, got %d", len(cats))
	}
	if cats[0].Name != "A" || cats[0].Count != 2 {
		t.Errorf("expect A first, got %v", cats[0])
	}
	if cats[2].Name != "C" || cats[2].Count != 1 {
		t.Errorf("expect C last, got %v", cats[2])
	}

	png, err := fc.Chart(model.ChartSpec{Field: "grade"})
	if err != nil {
		t.Fatalf("bar chart failed, error: %s\n", err)
	}
	if !isPNG(t, png) {
		t.Errorf("chart output is not a png: %s", png)
	}
}

func TestChartBarFold(t *testing.T) {
	clean := openTestDB(t, "geoclass_fold_test.db")
	defer clean()

	file := writeTestGeoJSON(t, "test_fold.geojson")
	defer os.Remove(file)

	fc := newTestFC(t, file)

	// 5 个唯一值, 折叠到 3 条
	cats, err := fc.categoryCounts("name", 3)
	if err != nil {
		t.Fatalf("category counts failed, error: %s\n", err)
	}
	if len(cats) != 3 {
		t.Fatalf("expect 3 bars after fold, got %d", len(cats))
	}
	last := cats[len(cats)-1]
	if last.Name != "(other)" || last.Count != 3 {
		t.Errorf("expect (other) with 3 folded, got %v", last)
	}
}

func TestChartErrors(t *testing.T) {
	clean := openTestDB(t, "geoclass_chart_err_test.db")
	defer clean()

	file := writeTestGeoJSON(t, "test_chart_err.geojson")
	defer os.Remove(file)

	fc := newTestFC(t, file)

	// 未知字段不能被 sqlite 当成字符串字面量
	if ft, err := fc.chartFieldType("not_a_field"); err == nil {
		t.Errorf("expect error for unknown field, got type %s", ft)
	}
	if _, err := fc.Chart(model.ChartSpec{Field: "nope"}); err == nil {
		t.Errorf("expect error for unknown field")
	}
	// 分类字段画直方图
	if _, err := fc.Chart(model.ChartSpec{Field: "grade", Kind: "hist"}); err == nil {
		t.Errorf("expect error for hist on string field")
	}
}

func TestRenderHistConstant(t *testing.T) {
	// 常量列退化为单箱
	vals := []float64{7, 7, 7, 7}
	p, err := renderHist("t", "v", vals, 16)
	if err != nil {
		t.Fatalf("constant hist failed, error: %s\n", err)
	}
	if p == nil {
		t.Errorf("expect a plot")
	}
}
