package main

// Constants representing data file formats
const (
	ZIPEXT     = ".zip"
	CSVEXT     = ".csv"
	SHPEXT     = ".shp"
	KMLEXT     = ".kml"
	GPXEXT     = ".gpx"
	GEOJSONEXT = ".geojson"
	MBTILESEXT = ".mbtiles"
)

// CRS coordinate reference system
type CRS string

// Supported CRSs
const (
	WGS84    CRS = "WGS84"
	CGCS2000     = "CGCS2000"
	GCJ02        = "GCJ02"
	BD09         = "BD09"
)

//CRSs 支持的坐标系
var CRSs = []string{"WGS84", "CGCS2000", "GCJ02", "BD09"}

//Encoding text encoding
type Encoding string

// Supported encodings
const (
	UTF8    Encoding = "utf-8"
	GBK              = "gbk"
	BIG5             = "big5"
	GB18030          = "gb18030"
)

//Encodings 支持的编码格式
var Encodings = []string{"utf-8", "gbk", "big5", "gb18030"}

// FieldType is a convenience alias that can be used for a more type safe way of
// reason and use Series types.
type FieldType string

// Supported Series Types
const (
	String FieldType = "string"
	Bool             = "bool"
	Int              = "int"
	Float            = "float"
	Date             = "date"
)

//FieldTypes 支持的字段类型
var FieldTypes = []string{"string", "int", "float", "bool", "date"}

// GeoType is the geometry type of a feature class
type GeoType string

// A list of the geometry types that are currently supported.
const (
	Point           = "Point"
	MultiPoint      = "MultiPoint"
	LineString      = "LineString"
	MultiLineString = "MultiLineString"
	Polygon         = "Polygon"
	MultiPolygon    = "MultiPolygon"
	Attribute       = "Attribute" //属性数据表,non-spatial
)

//GeomTypes 支持的几何类型
var GeomTypes = []string{"Point", "MultiPoint", "LineString", "MultiLineString", "Polygon", "MultiPolygon", "Attribute"}

// Renderer names, the three canned symbology presets
const (
	RendererSingle    = "single"
	RendererUnique    = "unique"
	RendererGraduated = "graduated"
)

//Renderers 支持的渲染器
var Renderers = []string{RendererSingle, RendererUnique, RendererGraduated}
