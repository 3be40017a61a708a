package main

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/axgle/mahonia"
	"github.com/jinzhu/gorm"
	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/simplifiedchinese"
)

//BUFSIZE 16M
const (
	BUFSIZE   int64 = 1 << 24
	PREROWNUM       = 7
	INSERTNUM       = 1000
)

// Field 字段
type Field struct {
	Name  string    `json:"name"`
	Alias string    `json:"alias"`
	Type  FieldType `json:"type"`
	Index string    `json:"index"`
}

// FeatureClass 要素类定义结构
type FeatureClass struct {
	ID       string `json:"id" gorm:"primary_key"`
	Name     string `json:"name"` // 要素类名称,现用于更方便的ID
	Tag      string `json:"tag"`
	Path     string `json:"path"`
	Format   string `json:"format"`
	Encoding string `json:"encoding"`
	Size     int64  `json:"size"`
	Total    int    `json:"total"`

	MinX float64 `json:"minx"`
	MinY float64 `json:"miny"`
	MaxX float64 `json:"maxx"`
	MaxY float64 `json:"maxy"`

	Crs     string          `json:"crs"` //WGS84,CGCS2000,GCJ02,BD09
	Rows    [][]string      `json:"-" gorm:"-"`
	Geotype GeoType         `json:"geotype"`
	Fields  json.RawMessage `json:"fields" gorm:"-"`
	Schema  string          `json:"-"` // Fields 的持久化形式

	// 符号化状态
	Renderer string `json:"renderer"`
	SymField string `json:"sym_field"`
	Classes  int    `json:"classes"`
	Mapfile  string `json:"mapfile"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DataTable 要素表名
// 注意不能叫 TableName,会被 gorm 当作模型表名
func (fc *FeatureClass) DataTable() string {
	return "fc_" + strings.ToLower(fc.ID)
}

func (fc *FeatureClass) AbsPath() string {
	wd, _ := os.Getwd()
	abspath := filepath.Join(wd, fc.Path)
	return abspath
}

// FieldList 从 Fields/Schema 取出字段定义
func (fc *FeatureClass) FieldList() []Field {
	var fields []Field
	raw := fc.Fields
	if len(raw) == 0 && fc.Schema != "" {
		raw = json.RawMessage(fc.Schema)
	}
	err := json.Unmarshal(raw, &fields)
	if err != nil {
		log.Warnf(`FieldList, unmarshal fields error, details:%s`, err)
	}
	return fields
}

func (fc *FeatureClass) setFields(fields []Field) {
	flds, err := json.Marshal(fields)
	if err != nil {
		log.Errorf(`setFields, marshal fields error, details:%s`, err)
		return
	}
	fc.Fields = flds
	fc.Schema = string(flds)
}

// Save 更新/创建要素类记录
func (fc *FeatureClass) Save() error {
	if len(fc.Fields) > 0 {
		fc.Schema = string(fc.Fields)
	}
	tmp := &FeatureClass{}
	err := db.Where("id = ?", fc.ID).First(tmp).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			fc.CreatedAt = time.Time{}
			return db.Create(fc).Error
		}
		return err
	}
	// 结构体更新会跳过零值, 回退 single 清掉的分类字段也要落库, 统一用 map
	return db.Model(&FeatureClass{}).Where("id = ?", fc.ID).Updates(map[string]interface{}{
		"name":      fc.Name,
		"tag":       fc.Tag,
		"path":      fc.Path,
		"format":    fc.Format,
		"encoding":  fc.Encoding,
		"size":      fc.Size,
		"total":     fc.Total,
		"min_x":     fc.MinX,
		"min_y":     fc.MinY,
		"max_x":     fc.MaxX,
		"max_y":     fc.MaxY,
		"crs":       fc.Crs,
		"geotype":   string(fc.Geotype),
		"schema":    fc.Schema,
		"renderer":  fc.Renderer,
		"sym_field": fc.SymField,
		"classes":   fc.Classes,
		"mapfile":   fc.Mapfile,
	}).Error
}

// 载入数据
func (fc *FeatureClass) LoadFrom() error {
	switch fc.Format {
	case CSVEXT:
		return fc.LoadFromCSV()
	case GEOJSONEXT:
		return fc.LoadFromJSON()
	case SHPEXT:
		return fc.LoadFromShp()
	}
	return fmt.Errorf("unsupport format: %s", fc.Format)
}

func likelyEncoding(file string) string {
	stat, err := os.Stat(file)
	if err != nil {
		return ""
	}
	bufsize := BUFSIZE
	if stat.Size() < bufsize {
		bufsize = stat.Size()
	}
	r, err := os.Open(file)
	if err != nil {
		return ""
	}
	defer r.Close()
	buf := make([]byte, bufsize)
	rn, err := r.Read(buf)
	if err != nil {
		return ""
	}
	return Mostlike(buf[:rn])
}

func csvReader(r io.Reader, encoding string) (*csv.Reader, error) {
	switch encoding {
	case "gbk", "big5", "gb18030":
		decoder := mahonia.NewDecoder(encoding)
		if decoder == nil {
			return csv.NewReader(r), fmt.Errorf(`create %s encoder error`, encoding)
		}
		dreader := decoder.NewReader(r)
		return csv.NewReader(dreader), nil
	default:
		return csv.NewReader(r), nil
	}
}

// findType 按列值投票推断字段类型
func findType(arr []string) FieldType {
	var hasFloats, hasInts, hasBools, hasStrings bool
	for _, str := range arr {
		if str == "" {
			continue
		}
		if _, err := strconv.Atoi(str); err == nil {
			hasInts = true
			continue
		}
		if _, err := strconv.ParseFloat(str, 64); err == nil {
			hasFloats = true
			continue
		}
		if str == "true" || str == "false" {
			hasBools = true
			continue
		}
		hasStrings = true
	}
	switch {
	case hasStrings:
		return String
	case hasBools:
		return Bool
	case hasFloats:
		return Float
	case hasInts:
		return Int
	default: //all null or string data
		return String
	}
}

// csvSchema 表头+样本行推断字段列表
func csvSchema(headers []string, records [][]string) []Field {
	types := make([]FieldType, len(headers))
	for i := range headers {
		col := make([]string, len(records))
		for j := 0; j < len(records); j++ {
			col[j] = records[j][i]
		}
		types[i] = findType(col)
	}
	var fields []Field
	for i, name := range headers {
		fields = append(fields, Field{
			Name: name,
			Type: types[i]})
	}
	return fields
}

func (fc *FeatureClass) LoadFromCSV() error {
	if fc.Encoding == "" {
		fc.Encoding = likelyEncoding(fc.AbsPath())
	}
	file, err := os.Open(fc.AbsPath())
	if err != nil {
		return err
	}
	defer file.Close()
	reader, err := csvReader(file, fc.Encoding)
	if err != nil {
		return err
	}
	headers, err := reader.Read()
	if err != nil {
		return err
	}
	var records [][]string
	var rowNum, perNum int
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if perNum < PREROWNUM {
			records = append(records, row)
			perNum++
		}
		rowNum++
	}
	if rowNum == 0 {
		return fmt.Errorf("empty csv file: %s", fc.Path)
	}

	fields := csvSchema(headers, records)

	getColumn := func(cols []string, names []string) string {
		for _, c := range cols {
			for _, n := range names {
				if c == strings.ToLower(n) {
					return n
				}
			}
		}
		return ""
	}

	detechColumn := func(min float64, max float64) string {
		for i, name := range headers {
			num := 0
			for _, row := range records {
				f, err := strconv.ParseFloat(row[i], 64)
				if err != nil || f < min || f > max {
					break
				}
				num++
			}
			if num == len(records) {
				return name
			}
		}
		return ""
	}

	xcols := []string{"x", "lon", "longitude", "经度"}
	x := getColumn(xcols, headers)
	if x == "" {
		x = detechColumn(-180, 180)
	}
	ycols := []string{"y", "lat", "latitude", "纬度"}
	y := getColumn(ycols, headers)
	if y == "" {
		y = detechColumn(-90, 90)
	}

	// 查找
	findColIndex := func(name string, names []string) int {
		for i, n := range names {
			if n == name {
				return i
			}
		}
		return -1
	}

	// 最大最小值
	findMinMax := func(idx int) (float64, float64, error) {
		var min, max float64
		for r, row := range records {
			f, err := strconv.ParseFloat(row[idx], 64)
			if err != nil {
				return 0, 0, fmt.Errorf("parse position falied. error: %v", err)
			}
			if r == 0 {
				min = f
				max = f
			} else {
				if min > f {
					min = f
				}
				if max < f {
					max = f
				}
			}
		}
		return min, max, nil
	}

	// csv 没有坐标列时作属性表处理
	if x == "" || y == "" {
		fc.Geotype = Attribute
	} else {
		idxX := findColIndex(x, headers)
		idxY := findColIndex(y, headers)
		var bbox [4]float64
		bbox[0], bbox[2], err = findMinMax(idxX)
		if err != nil {
			return err
		}
		bbox[1], bbox[3], err = findMinMax(idxY)
		if err != nil {
			return err
		}
		fc.MinX = bbox[0]
		fc.MinY = bbox[1]
		fc.MaxX = bbox[2]
		fc.MaxY = bbox[3]
		fc.Geotype = GeoType(x + "," + y)
	}

	fc.Format = CSVEXT
	fc.Total = rowNum
	if fc.Crs == "" {
		fc.Crs = "WGS84"
	}
	fc.Rows = records
	fc.setFields(fields)

	return nil
}

func jsonDecoder(r io.Reader, encoding string) (*json.Decoder, error) {
	switch encoding {
	case "gbk", "big5", "gb18030": //buf reader convert
		mdec := mahonia.NewDecoder(encoding)
		if mdec == nil {
			return json.NewDecoder(r), fmt.Errorf(`create %s encoder error`, encoding)
		}
		mdreader := mdec.NewReader(r)
		return json.NewDecoder(mdreader), nil
	default:
		return json.NewDecoder(r), nil
	}
}

//movetoFeatures move decoder to features
func movetoFeatures(decoder *json.Decoder) error {
	_, err := decoder.Token()
	if err != nil {
		return err
	}
out:
	for {
		t, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		switch v := t.(type) {
		case string:
			if v == "features" {
				t, err := decoder.Token()
				if err != nil {
					return err
				}
				d, ok := t.(json.Delim)
				if ok {
					ds := d.String()
					if ds == "[" {
						break out
					}
				}
			}
		}
	}
	return nil
}

func mergeBBox(box1 orb.Bound, box2 orb.Bound) orb.Bound {
	box := box1
	if box.Min[0] > box2.Min[0] {
		box.Min[0] = box2.Min[0]
	}
	if box.Min[1] > box2.Min[1] {
		box.Min[1] = box2.Min[1]
	}
	if box.Max[0] < box2.Max[0] {
		box.Max[0] = box2.Max[0]
	}
	if box.Max[1] < box2.Max[1] {
		box.Max[1] = box2.Max[1]
	}
	return box
}

// prepAttrRow 按字段序取出属性值
func prepAttrRow(fields []Field, props geojson.Properties) []string {
	var row []string
	for _, field := range fields {
		var s string
		v, ok := props[field.Name]
		if ok {
			switch v.(type) {
			case bool:
				val, ok := v.(bool)
				if ok {
					s = strconv.FormatBool(val)
				} else {
					s = "null"
				}
			case float64:
				val, ok := v.(float64)
				if ok {
					s = strconv.FormatFloat(val, 'g', -1, 64)
				} else {
					s = "null"
				}
			case map[string]interface{}, []interface{}:
				buf, err := json.Marshal(v)
				if err == nil {
					s = string(buf)
				}
			default: //string/nil->对象/数组都作string处理
				if v == nil {
					s = ""
				} else {
					s, _ = v.(string)
				}
			}
		}
		row = append(row, s)
	}
	return row
}

func (fc *FeatureClass) LoadFromJSON() error {
	if fc.Encoding == "" {
		fc.Encoding = likelyEncoding(fc.AbsPath())
	}
	file, err := os.Open(fc.AbsPath())
	if err != nil {
		return err
	}
	defer file.Close()

	dec, err := jsonDecoder(file, fc.Encoding)
	if err != nil {
		return err
	}

	s := time.Now()
	err = movetoFeatures(dec)
	if err != nil {
		return err
	}

	var rows [][]string
	var rowNum, preNum int
	ft := &geojson.Feature{}
	err = dec.Decode(ft)
	if err != nil {
		log.Errorf(`geojson data format error, details:%s`, err)
		return err
	}

	// box
	bbox := ft.Geometry.Bound()

	rowNum++
	preNum++
	geoType := ft.Geometry.GeoJSONType()
	var fields []Field
	for k, v := range ft.Properties {
		var t FieldType
		switch v.(type) {
		case bool:
			t = Bool
		case float64:
			t = Float
		default: //string/map[string]interface{}/[]interface{}/nil->对象/数组都作string处理
			t = String
		}
		fields = append(fields, Field{
			Name: k,
			Type: t,
		})
	}
	row := prepAttrRow(fields, ft.Properties)
	rows = append(rows, row)

	for dec.More() {
		if preNum < PREROWNUM {
			ft := &geojson.Feature{}
			err := dec.Decode(ft)
			if err != nil {
				log.Errorf(`geojson data format error, details:%s`, err)
				continue
			}
			bbox = mergeBBox(bbox, ft.Geometry.Bound())
			rows = append(rows, prepAttrRow(fields, ft.Properties))
			preNum++
		} else {
			var ft struct {
				Type string `json:"type"`
			}
			err := dec.Decode(&ft)
			if err != nil {
				log.Errorf(`decode error, details:%s`, err)
				continue
			}
		}
		rowNum++
	}
	log.Infof("total features %d, takes: %v", rowNum, time.Since(s))

	fc.MinX = bbox.Min[0]
	fc.MinY = bbox.Min[1]
	fc.MaxX = bbox.Max[0]
	fc.MaxY = bbox.Max[1]

	fc.Format = GEOJSONEXT
	fc.Total = rowNum
	fc.Geotype = GeoType(geoType)
	if fc.Crs == "" {
		fc.Crs = "WGS84"
	}
	fc.Rows = rows
	fc.setFields(fields)

	return nil
}

func (fc *FeatureClass) LoadFromShp() error {
	size := valSizeShp(fc.AbsPath())
	if size == 0 {
		return fmt.Errorf("invalid shapefiles")
	}

	shape, err := shp.Open(fc.AbsPath())
	if err != nil {
		return err
	}
	defer shape.Close()

	bbox := shape.BBox()

	shpfield := shape.Fields()
	total := shape.AttributeCount()

	var fields []Field
	for _, v := range shpfield {
		var t FieldType
		switch v.Fieldtype {
		case 'C':
			t = String
		case 'N':
			t = Int
		case 'F':
			t = Float
		case 'D':
			t = Date
		}
		fn := v.String()
		ns, err := simplifiedchinese.GB18030.NewDecoder().String(fn)
		if err == nil {
			fn = ns
		}
		fields = append(fields, Field{
			Name: fn,
			Type: t,
		})
	}

	rowstxt := ""
	var rows [][]string
	preRowNum := 0
	for shape.Next() {
		if preRowNum > PREROWNUM {
			break
		}
		n, _ := shape.Shape()
		var row []string
		for k := range fields {
			v := shape.ReadAttribute(n, k)
			row = append(row, v)
			rowstxt += v
		}
		rows = append(rows, row)
		preRowNum++
	}

	if fc.Encoding == "" {
		fc.Encoding = Mostlike([]byte(rowstxt))
	}
	var mdec mahonia.Decoder
	switch fc.Encoding {
	case "gbk", "big5", "gb18030":
		mdec = mahonia.NewDecoder(fc.Encoding)
		if mdec != nil {
			var records [][]string
			for _, row := range rows {
				var record []string
				for _, v := range row {
					record = append(record, mdec.ConvertString(v))
				}
				records = append(records, record)
			}
			rows = records
		}
	}

	var geoType string
	switch shape.GeometryType {
	case 1: //POINT
		geoType = "Point"
	case 3: //POLYLINE
		geoType = "LineString"
	case 5: //POLYGON
		geoType = "MultiPolygon"
	case 8: //MULTIPOINT
		geoType = "MultiPoint"
	}

	fc.MinX = bbox.MinX
	fc.MinY = bbox.MinY
	fc.MaxX = bbox.MaxX
	fc.MaxY = bbox.MaxY

	fc.Format = SHPEXT
	fc.Size = size
	fc.Total = total
	fc.Geotype = GeoType(geoType)
	if fc.Crs == "" {
		fc.Crs = "WGS84"
	}
	fc.Rows = rows
	fc.setFields(fields)
	return nil
}

/////////////////////////////////////////////////////////////////
/////////////////////////// 导入数据库 ///////////////////////////

func (fc *FeatureClass) getCreateHeaders() []string {
	var fts []string
	fields := fc.FieldList()
	fts = append(fts, "gid INTEGER PRIMARY KEY AUTOINCREMENT")
	for _, v := range fields {
		if strings.ToLower(v.Name) == "gid" || strings.ToLower(v.Name) == "geom" {
			continue
		}
		var t string
		switch v.Type {
		case Bool:
			t = "BOOL"
		case Int:
			t = "INT4"
		case Float:
			t = "NUMERIC"
		case Date:
			t = "TIMESTAMPTZ"
		default:
			t = "TEXT"
		}
		fts = append(fts, `"`+v.Name+`" `+t)
	}
	if fc.Geotype != "" && fc.Geotype != Attribute {
		// 统一存 geojson 文本
		fts = append(fts, "geom TEXT")
	}
	return fts
}

func (fc *FeatureClass) createDataTable() error {
	tableName := fc.DataTable()
	err := db.Exec(fmt.Sprintf(`DROP TABLE if EXISTS "%s";`, tableName)).Error
	if err != nil {
		log.Errorf(`createDataTable, drop table error, details:%s`, err)
		return err
	}
	headers := fc.getCreateHeaders()
	st := fmt.Sprintf(`CREATE TABLE "%s" (%s);`, tableName, strings.Join(headers, ","))
	log.Infoln(st)
	err = db.Exec(st).Error
	if err != nil {
		log.Errorf(`createDataTable, create table error, details:%s`, err)
		return err
	}
	return nil

}

func interfaceFormat(t string, v interface{}) string {

	formatBool := func(v interface{}) string {
		if v == nil {
			return "null"
		}
		if b, ok := v.(bool); ok {
			return strconv.FormatBool(b)
		}
		//string
		str := strings.ToLower(v.(string))
		switch str {
		case "true", "false", "yes", "no", "1", "0":
		default:
			return "null"
		}
		return "'" + str + "'"
	}
	formatInt := func(v interface{}) string {
		if v == nil {
			return "null"
		}
		if i, ok := v.(int); ok {
			return strconv.FormatInt(int64(i), 10)
		}
		if f, ok := v.(float64); ok {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		//string
		s, ok := v.(string)
		if !ok {
			return "null"
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return "null"
		}
		return strconv.FormatInt(i, 10)
	}
	formatFloat := func(v interface{}) string {
		if v == nil {
			return "null"
		}
		if f, ok := v.(float64); ok {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		if i, ok := v.(int); ok {
			return strconv.FormatInt(int64(i), 10)
		}
		//string
		s, ok := v.(string)
		if !ok {
			return "null"
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return "null"
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	formatDate := func(v interface{}) string {
		if v == nil {
			return "null"
		}
		if i64, ok := v.(int64); ok {
			d := time.Unix(i64, 0).Format("2006-01-02 15:04:05")
			return "'" + d + "'"
		}
		if i, ok := v.(int); ok {
			d := time.Unix(int64(i), 0).Format("2006-01-02 15:04:05")
			return "'" + d + "'"
		}
		//string shoud filter the invalid time values
		if s, ok := v.(string); ok {
			return "'" + s + "'"
		}
		return "null"
	}
	formatString := func(v interface{}) string {
		if v == nil {
			return "null"
		}
		if s, ok := v.(string); ok {
			s = strings.Replace(s, "'", "''", -1)
			return "'" + s + "'"
		}
		if f, ok := v.(float64); ok {
			s := strconv.FormatFloat(f, 'g', -1, 64)
			return "'" + s + "'"
		}
		if i, ok := v.(int); ok {
			s := strconv.FormatInt(int64(i), 10)
			return "'" + s + "'"
		}
		if b, ok := v.(bool); ok {
			s := strconv.FormatBool(b)
			return "'" + s + "'"
		}
		return "null"
	}

	switch t {
	case "BOOL":
		return formatBool(v)
	case "INT4":
		return formatInt(v)
	case "NUMERIC":
		return formatFloat(v)
	case "TIMESTAMPTZ":
		return formatDate(v)
	default: //string->"TEXT"
		return formatString(v)
	}
}

func stringFormat(t, v string) string {

	formatBool := func(v string) string {
		if v == "" {
			return "null"
		}
		str := strings.ToLower(v)
		switch str {
		case "true", "false", "yes", "no", "1", "0":
		default:
			return "null"
		}
		return "'" + str + "'"
	}

	formatInt := func(v string) string {
		if v == "" {
			return "null"
		}
		i64, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return "null"
			}
			i64 = int64(f)
		}
		return strconv.FormatInt(i64, 10)
	}

	formatFloat := func(v string) string {
		if v == "" {
			return "null"
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "null"
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	}

	formatDate := func(v string) string {
		if v == "" {
			return "null"
		}
		//string shoud filter the invalid time values
		return "'" + v + "'"
	}

	formatString := func(v string) string {
		if v == "" {
			return "null"
		}
		v = strings.Replace(v, "'", "''", -1)
		return "'" + v + "'"
	}

	switch t {
	case "BOOL":
		return formatBool(v)
	case "INT4":
		return formatInt(v)
	case "NUMERIC": //number
		return formatFloat(v)
	case "TIMESTAMPTZ":
		return formatDate(v)
	default: //string->"TEXT"
		return formatString(v)
	}
}

func (fc *FeatureClass) getColumnTypes() ([]*sql.ColumnType, error) {
	tableName := fc.DataTable()
	var st string
	fields := fc.FieldList()
	if len(fields) == 0 {
		st = fmt.Sprintf(`SELECT * FROM "%s" LIMIT 0`, tableName)
	} else {
		var headers []string
		for _, v := range fields {
			headers = append(headers, `"`+v.Name+`"`)
		}
		st = fmt.Sprintf(`SELECT %s FROM "%s" LIMIT 0`, strings.Join(headers, ","), tableName)
	}

	rows, err := db.Raw(st).Rows() // (*sql.Rows, error)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cols, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	var pureColumns []*sql.ColumnType

	for _, col := range cols {
		switch col.Name() {
		case "gid", "geom":
			continue
		}
		pureColumns = append(pureColumns, col)
	}
	return pureColumns, nil
}

// tableColumns 要素表的真实列名
func (fc *FeatureClass) tableColumns() ([]string, error) {
	rows, err := db.Raw(fmt.Sprintf(`SELECT * FROM "%s" LIMIT 0`, fc.DataTable())).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return rows.Columns()
}

// insertRows 分批写入，避免单条 SQL 过长
func insertRows(tableName string, headers []string, vals []string) error {
	if len(vals) == 0 {
		return nil
	}
	t := time.Now()
	st := fmt.Sprintf(`INSERT INTO "%s" (%s) VALUES %s;`, tableName, strings.Join(headers, ","), strings.Join(vals, ","))
	query := db.Exec(st)
	if err := query.Error; err != nil {
		log.Errorf(`insertRows failed, details:%s`, err)
		return err
	}
	log.Infof("inserted %d rows, takes: %v", query.RowsAffected, time.Since(t))
	return nil
}

// geomValue 统一转 geojson 文本入库
func geomValue(g orb.Geometry) (string, error) {
	buf, err := geojson.NewGeometry(g).MarshalJSON()
	if err != nil {
		return "", err
	}
	return "'" + strings.Replace(string(buf), "'", "''", -1) + "'", nil
}

// Import 导入要素表
func (fc *FeatureClass) Import() error {
	tableName := fc.DataTable()
	switch fc.Format {
	case CSVEXT, GEOJSONEXT:
		err := fc.createDataTable()
		if err != nil {
			return fmt.Errorf("import createDataTable failed. error: %v", err)
		}
		cols, err := fc.getColumnTypes()
		if err != nil {
			return fmt.Errorf("import getColumnTypes failed. error: %v", err)
		}
		var headers []string
		headermap := make(map[string]int)
		for i, col := range cols {
			headers = append(headers, `"`+col.Name()+`"`)
			headermap[strings.ToLower(col.Name())] = i
		}
		switch fc.Format {
		case CSVEXT:
			return fc.importCSV(tableName, headers, cols)
		case GEOJSONEXT:
			return fc.importGeoJSON(tableName, headers, headermap, cols)
		}
	case SHPEXT:
		return fc.importShp(tableName)
	default:
		return fmt.Errorf(`import, importing unkown format data:%s`, fc.Format)
	}
	return nil
}

func (fc *FeatureClass) importCSV(tableName string, headers []string, cols []*sql.ColumnType) error {
	prepValues := func(row []string, cols []*sql.ColumnType) string {
		var vals []string
		for i, col := range cols {
			s := stringFormat(col.DatabaseTypeName(), row[i])
			vals = append(vals, s)
		}
		return strings.Join(vals, ",")
	}
	t := time.Now()
	file, err := os.Open(fc.AbsPath())
	if err != nil {
		return err
	}
	defer file.Close()
	reader, err := csvReader(file, fc.Encoding)
	if err != nil {
		return err
	}
	csvHeaders, err := reader.Read()
	if err != nil {
		return err
	}
	if len(cols) != len(csvHeaders) {
		log.Errorf(`importCSV, dbfield len(%d) != csvheader len(%d)`, len(cols), len(csvHeaders))
	}
	prepIndex := func(cols []*sql.ColumnType, name string) int {
		for i, col := range cols {
			if strings.ToLower(col.Name()) == strings.ToLower(name) {
				return i
			}
		}
		return -1
	}
	ix, iy := -1, -1
	xy := strings.Split(string(fc.Geotype), ",")
	if len(xy) == 2 {
		ix = prepIndex(cols, xy[0])
		iy = prepIndex(cols, xy[1])
	}
	isgeom := (ix != -1 && iy != -1)
	if isgeom {
		headers = append(headers, "geom")
	}
	log.Info(`process headers and get count, `, time.Since(t))

	var vals []string
	count := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		rval := prepValues(row, cols)
		if isgeom {
			x, _ := strconv.ParseFloat(row[ix], 64)
			y, _ := strconv.ParseFloat(row[iy], 64)
			switch fc.Crs {
			case GCJ02:
				x, y = Gcj02ToWgs84(x, y)
			case BD09:
				x, y = Bd09ToWgs84(x, y)
			default: //WGS84 & CGCS2000
			}
			gval, err := geomValue(orb.Point{x, y})
			if err != nil {
				log.Errorf(`importCSV, prepare geometry error, details:%s`, err)
				continue
			}
			vals = append(vals, fmt.Sprintf(`(%s,%s)`, rval, gval))
		} else {
			vals = append(vals, fmt.Sprintf(`(%s)`, rval))
		}
		count++
		if count%INSERTNUM == 0 {
			if err := insertRows(tableName, headers, vals); err != nil {
				return err
			}
			vals = nil
		}
	}
	if err := insertRows(tableName, headers, vals); err != nil {
		return err
	}
	log.Infof("imported %d rows, takes: %v", count, time.Since(t))
	return nil
}

func (fc *FeatureClass) importGeoJSON(tableName string, headers []string, headermap map[string]int, cols []*sql.ColumnType) error {
	prepValues := func(props geojson.Properties, cols []*sql.ColumnType) string {
		vals := make([]string, len(cols))
		for i := range vals {
			vals[i] = "null"
		}
		for k, v := range props {
			ki, ok := headermap[strings.ToLower(k)]
			if ok {
				vals[ki] = interfaceFormat(cols[ki].DatabaseTypeName(), v)
			}
		}
		return strings.Join(vals, ",")
	}
	s := time.Now()
	file, err := os.Open(fc.AbsPath())
	if err != nil {
		return fmt.Errorf("import open geojson file failed. error: %v", err)
	}
	defer file.Close()
	decoder, err := jsonDecoder(file, fc.Encoding)
	if err != nil {
		return fmt.Errorf("import jsonDecoder failed. error: %v", err)
	}
	err = movetoFeatures(decoder)
	if err != nil {
		return err
	}
	headers = append(headers, "geom")
	var rowNum int
	var vals []string
	for decoder.More() {
		ft := &geojson.Feature{}
		err := decoder.Decode(ft)
		if err != nil {
			log.Errorf(`decode feature error, details:%s`, err)
			continue
		}
		rval := prepValues(ft.Properties, cols)
		geom := ft.Geometry
		switch fc.Crs {
		case GCJ02:
			geom = TransformGeometry(geom, Gcj02ToWgs84)
		case BD09:
			geom = TransformGeometry(geom, Bd09ToWgs84)
		default: //WGS84 & CGCS2000
		}
		gval, err := geomValue(geom)
		if err != nil {
			log.Errorf(`prepare geometry error, details:%s`, err)
			continue
		}
		if rval == "" {
			vals = append(vals, fmt.Sprintf("(%s)", gval))
		} else {
			vals = append(vals, fmt.Sprintf(`(%s,%s)`, rval, gval))
		}
		rowNum++
		if rowNum%INSERTNUM == 0 {
			if err := insertRows(tableName, headers, vals); err != nil {
				return err
			}
			vals = nil
		}
	}
	if err := insertRows(tableName, headers, vals); err != nil {
		return err
	}
	if rowNum == 0 {
		return fmt.Errorf("empty feature collection: %s", fc.Path)
	}
	log.Infof("total features %d, takes: %v", rowNum, time.Since(s))
	return nil
}

// importShp 读 shp 转 geojson 几何入库
func (fc *FeatureClass) importShp(tableName string) error {
	err := fc.createDataTable()
	if err != nil {
		return fmt.Errorf("import createDataTable failed. error: %v", err)
	}
	cols, err := fc.getColumnTypes()
	if err != nil {
		return fmt.Errorf("import getColumnTypes failed. error: %v", err)
	}
	var headers []string
	for _, col := range cols {
		headers = append(headers, `"`+col.Name()+`"`)
	}
	headers = append(headers, "geom")

	shape, err := shp.Open(fc.AbsPath())
	if err != nil {
		return err
	}
	defer shape.Close()

	var mdec mahonia.Decoder
	switch fc.Encoding {
	case "gbk", "big5", "gb18030":
		mdec = mahonia.NewDecoder(fc.Encoding)
	}

	s := time.Now()
	var vals []string
	rowNum := 0
	for shape.Next() {
		n, p := shape.Shape()
		var rvals []string
		for k, col := range cols {
			v := shape.ReadAttribute(n, k)
			if mdec != nil {
				v = mdec.ConvertString(v)
			}
			rvals = append(rvals, stringFormat(col.DatabaseTypeName(), v))
		}
		geom := shpGeometry(p)
		if geom == nil {
			log.Warnf(`importShp, unsupported shape at row %d`, n)
			continue
		}
		switch fc.Crs {
		case GCJ02:
			geom = TransformGeometry(geom, Gcj02ToWgs84)
		case BD09:
			geom = TransformGeometry(geom, Bd09ToWgs84)
		}
		gval, err := geomValue(geom)
		if err != nil {
			log.Errorf(`prepare geometry error, details:%s`, err)
			continue
		}
		vals = append(vals, fmt.Sprintf(`(%s,%s)`, strings.Join(rvals, ","), gval))
		rowNum++
		if rowNum%INSERTNUM == 0 {
			if err := insertRows(tableName, headers, vals); err != nil {
				return err
			}
			vals = nil
		}
	}
	if err := insertRows(tableName, headers, vals); err != nil {
		return err
	}
	log.Infof("imported %d shapes, takes: %v", rowNum, time.Since(s))
	return nil
}

// shpGeometry shp 几何转 orb 几何
func shpGeometry(p shp.Shape) orb.Geometry {
	toPoints := func(pts []shp.Point) []orb.Point {
		out := make([]orb.Point, len(pts))
		for i, pt := range pts {
			out[i] = orb.Point{pt.X, pt.Y}
		}
		return out
	}
	splitParts := func(parts []int32, pts []shp.Point) [][]orb.Point {
		var rings [][]orb.Point
		for i, start := range parts {
			end := len(pts)
			if i+1 < len(parts) {
				end = int(parts[i+1])
			}
			rings = append(rings, toPoints(pts[start:end]))
		}
		return rings
	}
	switch v := p.(type) {
	case *shp.Point:
		return orb.Point{v.X, v.Y}
	case *shp.MultiPoint:
		return orb.MultiPoint(toPoints(v.Points))
	case *shp.PolyLine:
		parts := splitParts(v.Parts, v.Points)
		mls := make(orb.MultiLineString, len(parts))
		for i, part := range parts {
			mls[i] = orb.LineString(part)
		}
		if len(mls) == 1 {
			return mls[0]
		}
		return mls
	case *shp.Polygon:
		parts := splitParts(v.Parts, v.Points)
		poly := make(orb.Polygon, len(parts))
		for i, part := range parts {
			poly[i] = orb.Ring(part)
		}
		return poly
	}
	return nil
}
