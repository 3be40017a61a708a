package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"testing"

	"github.com/chenguan1/geoclass/model"
)

func TestJoinCSV(t *testing.T) {
	clean := openTestDB(t, "geoclass_join_test.db")
	defer clean()

	file := writeTestGeoJSON(t, "test_join.geojson")
	defer os.Remove(file)

	fc := newTestFC(t, file)

	// beta 故意缺席, 左连接语义下保持 null
	csv := "name,score,label\nalpha,98,big\ngamma,76,mid\ndelta,88,big\nepsilon,60,small\n"
	csvfile := "test_join_attr.csv"
	if err := ioutil.WriteFile(csvfile, []byte(csv), 0644); err != nil {
		t.Fatalf("write join csv failed, error: %s\n", err)
	}
	defer os.Remove(csvfile)

	result, err := fc.Join(csvfile, model.JoinSpec{JoinField: "name"})
	if err != nil {
		t.Fatalf("join failed, error: %s\n", err)
	}

	if result.CsvRows != 4 {
		t.Errorf("expect 4 csv rows, got %d", result.CsvRows)
	}
	if result.Matched != 4 {
		t.Errorf("expect 4 matched features, got %d", result.Matched)
	}
	if len(result.Added) != 2 {
		t.Errorf("expect 2 added columns, got %v", result.Added)
	}

	// 命中行取到值
	var score int
	row := db.Raw(fmt.Sprintf(`SELECT "score" FROM "%s" WHERE CAST("name" AS TEXT) = 'alpha'`, fc.DataTable())).Row()
	if err := row.Scan(&score); err != nil {
		t.Fatalf("select joined score failed, error: %s\n", err)
	}
	if score != 98 {
		t.Errorf("expect score 98, got %d", score)
	}

	// 未命中行保持 null
	var cnt int
	row = db.Raw(fmt.Sprintf(`SELECT COUNT(*) FROM "%s" WHERE CAST("name" AS TEXT) = 'beta' AND "score" IS NULL`, fc.DataTable())).Row()
	if err := row.Scan(&cnt); err != nil {
		t.Fatalf("count unmatched failed, error: %s\n", err)
	}
	if cnt != 1 {
		t.Errorf("unmatched feature should keep null score")
	}

	// schema 已更新
	if !fc.hasField("score") || !fc.hasField("label") {
		t.Errorf("joined fields missing from schema: %s", fc.fieldNames())
	}
}

func TestJoinMissingField(t *testing.T) {
	clean := openTestDB(t, "geoclass_join_miss_test.db")
	defer clean()

	file := writeTestGeoJSON(t, "test_join_miss.geojson")
	defer os.Remove(file)

	fc := newTestFC(t, file)

	csv := "name,score\nalpha,98\n"
	csvfile := "test_join_miss.csv"
	if err := ioutil.WriteFile(csvfile, []byte(csv), 0644); err != nil {
		t.Fatalf("write join csv failed, error: %s\n", err)
	}
	defer os.Remove(csvfile)

	// 要素类一侧无此字段
	if _, err := fc.Join(csvfile, model.JoinSpec{JoinField: "nope"}); err == nil {
		t.Errorf("expect error for missing feature class field")
	}

	// csv 一侧无此字段
	if _, err := fc.Join(csvfile, model.JoinSpec{JoinField: "name", CsvField: "nope"}); err == nil {
		t.Errorf("expect error for missing csv field")
	}
}

func TestJoinDuplicateKey(t *testing.T) {
	clean := openTestDB(t, "geoclass_join_dup_test.db")
	defer clean()

	file := writeTestGeoJSON(t, "test_join_dup.geojson")
	defer os.Remove(file)

	fc := newTestFC(t, file)

	// 重复键, 后者覆盖前者
	csv := "name,score\nalpha,10\nalpha,20\n"
	csvfile := "test_join_dup.csv"
	if err := ioutil.WriteFile(csvfile, []byte(csv), 0644); err != nil {
		t.Fatalf("write join csv failed, error: %s\n", err)
	}
	defer os.Remove(csvfile)

	if _, err := fc.Join(csvfile, model.JoinSpec{JoinField: "name"}); err != nil {
		t.Fatalf("join failed, error: %s\n", err)
	}

	var score int
	row := db.Raw(fmt.Sprintf(`SELECT "score" FROM "%s" WHERE CAST("name" AS TEXT) = 'alpha'`, fc.DataTable())).Row()
	if err := row.Scan(&score); err != nil {
		t.Fatalf("select joined score failed, error: %s\n", err)
	}
	if score != 20 {
		t.Errorf("expect last duplicate to win, got %d", score)
	}
}
