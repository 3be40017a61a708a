package main

import (
	"math"

	"github.com/paulmach/orb"
)

// 国测局偏移参数
const (
	xPi  = math.Pi * 3000.0 / 180.0
	axis = 6378245.0
	ee   = 0.00669342162296594323
)

func transformLat(x, y float64) float64 {
	ret := -100.0 + 2.0*x + 3.0*y + 0.2*y*y + 0.1*x*y + 0.2*math.Sqrt(math.Abs(x))
	ret += (20.0*math.Sin(6.0*x*math.Pi) + 20.0*math.Sin(2.0*x*math.Pi)) * 2.0 / 3.0
	ret += (20.0*math.Sin(y*math.Pi) + 40.0*math.Sin(y/3.0*math.Pi)) * 2.0 / 3.0
	ret += (160.0*math.Sin(y/12.0*math.Pi) + 320*math.Sin(y*math.Pi/30.0)) * 2.0 / 3.0
	return ret
}

func transformLng(x, y float64) float64 {
	ret := 300.0 + x + 2.0*y + 0.1*x*x + 0.1*x*y + 0.1*math.Sqrt(math.Abs(x))
	ret += (20.0*math.Sin(6.0*x*math.Pi) + 20.0*math.Sin(2.0*x*math.Pi)) * 2.0 / 3.0
	ret += (20.0*math.Sin(x*math.Pi) + 40.0*math.Sin(x/3.0*math.Pi)) * 2.0 / 3.0
	ret += (150.0*math.Sin(x/12.0*math.Pi) + 300.0*math.Sin(x/30.0*math.Pi)) * 2.0 / 3.0
	return ret
}

// outOfChina 国外坐标不做偏移
func outOfChina(lng, lat float64) bool {
	return lng < 72.004 || lng > 137.8347 || lat < 0.8293 || lat > 55.8271
}

func delta(lng, lat float64) (float64, float64) {
	dlat := transformLat(lng-105.0, lat-35.0)
	dlng := transformLng(lng-105.0, lat-35.0)
	radlat := lat / 180.0 * math.Pi
	magic := math.Sin(radlat)
	magic = 1 - ee*magic*magic
	sqrtmagic := math.Sqrt(magic)
	dlat = (dlat * 180.0) / ((axis * (1 - ee)) / (magic * sqrtmagic) * math.Pi)
	dlng = (dlng * 180.0) / (axis / sqrtmagic * math.Cos(radlat) * math.Pi)
	return dlng, dlat
}

// Gcj02ToWgs84 火星坐标转WGS84
func Gcj02ToWgs84(lng, lat float64) (float64, float64) {
	if outOfChina(lng, lat) {
		return lng, lat
	}
	dlng, dlat := delta(lng, lat)
	return lng - dlng, lat - dlat
}

// Bd09ToGcj02 百度坐标转火星坐标
func Bd09ToGcj02(lng, lat float64) (float64, float64) {
	x := lng - 0.0065
	y := lat - 0.006
	z := math.Sqrt(x*x+y*y) - 0.00002*math.Sin(y*xPi)
	theta := math.Atan2(y, x) - 0.000003*math.Cos(x*xPi)
	return z * math.Cos(theta), z * math.Sin(theta)
}

// Bd09ToWgs84 百度坐标转WGS84
func Bd09ToWgs84(lng, lat float64) (float64, float64) {
	lng, lat = Bd09ToGcj02(lng, lat)
	return Gcj02ToWgs84(lng, lat)
}

// TransformGeometry 对几何的所有坐标做同一变换
func TransformGeometry(g orb.Geometry, f func(x, y float64) (float64, float64)) orb.Geometry {
	tp := func(p orb.Point) orb.Point {
		x, y := f(p[0], p[1])
		return orb.Point{x, y}
	}
	switch v := g.(type) {
	case orb.Point:
		return tp(v)
	case orb.MultiPoint:
		out := make(orb.MultiPoint, len(v))
		for i, p := range v {
			out[i] = tp(p)
		}
		return out
	case orb.LineString:
		out := make(orb.LineString, len(v))
		for i, p := range v {
			out[i] = tp(p)
		}
		return out
	case orb.MultiLineString:
		out := make(orb.MultiLineString, len(v))
		for i, ls := range v {
			out[i] = TransformGeometry(ls, f).(orb.LineString)
		}
		return out
	case orb.Ring:
		out := make(orb.Ring, len(v))
		for i, p := range v {
			out[i] = tp(p)
		}
		return out
	case orb.Polygon:
		out := make(orb.Polygon, len(v))
		for i, r := range v {
			out[i] = TransformGeometry(r, f).(orb.Ring)
		}
		return out
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(v))
		for i, p := range v {
			out[i] = TransformGeometry(p, f).(orb.Polygon)
		}
		return out
	case orb.Collection:
		out := make(orb.Collection, len(v))
		for i, c := range v {
			out[i] = TransformGeometry(c, f)
		}
		return out
	}
	return g
}
