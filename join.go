package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/teris-io/shortid"

	"github.com/chenguan1/geoclass/model"
)

// JoinResult 连接结果统计
type JoinResult struct {
	JoinField string   `json:"join_field"`
	CsvField  string   `json:"csv_field"`
	CsvRows   int      `json:"csv_rows"`
	Matched   int64    `json:"matched"`
	Added     []string `json:"added"`
}

// fieldSQLType 字段类型对应的建列类型
func fieldSQLType(t FieldType) string {
	switch t {
	case Bool:
		return "BOOL"
	case Int:
		return "INT4"
	case Float:
		return "NUMERIC"
	case Date:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

// loadJoinCSV 全量读取 csv, 返回表头和所有行
func loadJoinCSV(path, encoding string) ([]string, [][]string, error) {
	if encoding == "" {
		encoding = likelyEncoding(path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()
	reader, err := csvReader(file, encoding)
	if err != nil {
		return nil, nil, err
	}
	headers, err := reader.Read()
	if err != nil {
		return nil, nil, err
	}
	var records [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if len(row) != len(headers) {
			continue
		}
		records = append(records, row)
	}
	return headers, records, nil
}

// Join 把 csv 属性连接到要素表
// 左连接语义: 未命中的要素保持 null, csv 中重复键后者覆盖前者
func (fc *FeatureClass) Join(csvPath string, spec model.JoinSpec) (*JoinResult, error) {
	if spec.JoinField == "" {
		return nil, fmt.Errorf("join_field is empty")
	}
	if spec.CsvField == "" {
		spec.CsvField = spec.JoinField
	}
	if !fc.hasField(spec.JoinField) {
		return nil, fmt.Errorf("join field %s not in feature class, fields: %s", spec.JoinField, fc.fieldNames())
	}

	headers, records, err := loadJoinCSV(csvPath, spec.Encoding)
	if err != nil {
		return nil, fmt.Errorf("read join csv failed, error: %v", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty csv file: %s", csvPath)
	}

	keyIdx := -1
	for i, h := range headers {
		if h == spec.CsvField {
			keyIdx = i
			break
		}
	}
	if keyIdx == -1 {
		return nil, fmt.Errorf("join field %s not in csv, headers: %s", spec.CsvField, strings.Join(headers, ","))
	}

	// 样本推断 csv 字段类型
	sample := records
	if len(sample) > PREROWNUM {
		sample = sample[:PREROWNUM]
	}
	csvFields := csvSchema(headers, sample)

	// 已有字段不覆盖
	exist := make(map[string]bool)
	for _, f := range fc.FieldList() {
		exist[strings.ToLower(f.Name)] = true
	}
	exist["gid"] = true
	exist["geom"] = true

	tableName := fc.DataTable()
	var added []Field
	colIdx := make(map[string]int)
	for i, f := range csvFields {
		if i == keyIdx {
			continue
		}
		if exist[strings.ToLower(f.Name)] {
			log.Warnf(`join, column %s already exists, skipped`, f.Name)
			continue
		}
		st := fmt.Sprintf(`ALTER TABLE "%s" ADD COLUMN "%s" %s;`, tableName, f.Name, fieldSQLType(f.Type))
		if err := db.Exec(st).Error; err != nil {
			return nil, fmt.Errorf("add column %s failed, error: %v", f.Name, err)
		}
		added = append(added, f)
		colIdx[f.Name] = i
	}
	if len(added) == 0 {
		return nil, fmt.Errorf("no joinable columns in csv, headers: %s", strings.Join(headers, ","))
	}

	// 后者覆盖前者
	keyed := make(map[string][]string, len(records))
	for _, row := range records {
		keyed[row[keyIdx]] = row
	}

	var matched int64
	tx := db.Begin()
	for key, row := range keyed {
		var sets []string
		for _, f := range added {
			v := stringFormat(fieldSQLType(f.Type), row[colIdx[f.Name]])
			sets = append(sets, fmt.Sprintf(`"%s" = %s`, f.Name, v))
		}
		// 键类型不一致时按文本比较
		st := fmt.Sprintf(`UPDATE "%s" SET %s WHERE CAST("%s" AS TEXT) = '%s';`,
			tableName, strings.Join(sets, ","), spec.JoinField, strings.Replace(key, "'", "''", -1))
		query := tx.Exec(st)
		if err := query.Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("join update failed, error: %v", err)
		}
		matched += query.RowsAffected
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	// 刷新字段列表
	fields := append(fc.FieldList(), added...)
	fc.setFields(fields)

	var names []string
	for _, f := range added {
		names = append(names, f.Name)
	}
	return &JoinResult{
		JoinField: spec.JoinField,
		CsvField:  spec.CsvField,
		CsvRows:   len(records),
		Matched:   matched,
		Added:     names,
	}, nil
}

// joinFeatureClass 上传 csv 并连接到要素表
func joinFeatureClass(c *gin.Context) {
	res := NewRes()
	id := c.Param("id")
	fc := &FeatureClass{}
	err := db.Where("id = ?", id).First(fc).Error
	if err != nil {
		res.Fail(c, 4044)
		return
	}
	fc.Fields = []byte(fc.Schema)

	spec := model.JoinSpec{}
	if err := c.Bind(&spec); err != nil {
		log.Warnf("bind join spec failed, error: %v", err)
		res.FailErr(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		log.Warnf(`joinFeatureClass, read upload file error, details: %s`, err)
		res.Fail(c, 4041)
		return
	}
	if strings.ToLower(filepath.Ext(file.Filename)) != CSVEXT {
		res.FailMsg(c, "join data must be a .csv file")
		return
	}

	wd, _ := os.Getwd()
	dir := filepath.Join(wd, "data/uploads")
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err = os.MkdirAll(dir, 0755); err != nil {
			res.Fail(c, 5003)
			return
		}
	}
	sid, _ := shortid.Generate()
	dst := filepath.Join(dir, strings.TrimSuffix(file.Filename, CSVEXT)+"_"+sid+CSVEXT)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		log.Errorf(`joinFeatureClass, saving uploaded file error, details: %s`, err)
		res.Fail(c, 5003)
		return
	}

	result, err := fc.Join(dst, spec)
	if err != nil {
		log.Errorf("join failed, error: %v", err)
		res.FailErr(c, err)
		return
	}

	if err := fc.Save(); err != nil {
		log.Warnf("save featureclass failed, error: %v", err)
		res.Fail(c, 5001)
		return
	}

	res.DoneData(c, result)
}
