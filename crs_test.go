package main

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestGcj02ToWgs84(t *testing.T) {
	// 北京附近, 偏移量应在百米~公里级
	lng, lat := Gcj02ToWgs84(116.404, 39.915)
	dlng := math.Abs(lng - 116.404)
	dlat := math.Abs(lat - 39.915)
	if dlng < 1e-4 || dlng > 0.02 || dlat < 1e-4 || dlat > 0.02 {
		t.Errorf("unexpected gcj02 offset: %v %v", dlng, dlat)
	}

	// 国外坐标不偏移
	lng, lat = Gcj02ToWgs84(-73.9857, 40.7484)
	if lng != -73.9857 || lat != 40.7484 {
		t.Errorf("out of china coords should pass through: %v %v", lng, lat)
	}
}

func TestBd09ToWgs84(t *testing.T) {
	lng, lat := Bd09ToWgs84(116.41, 39.92)
	// bd09 偏移比 gcj02 更大
	if math.Abs(lng-116.41) < 1e-3 || math.Abs(lng-116.41) > 0.03 {
		t.Errorf("unexpected bd09 lng offset: %v", lng)
	}
	if math.Abs(lat-39.92) < 1e-3 || math.Abs(lat-39.92) > 0.03 {
		t.Errorf("unexpected bd09 lat offset: %v", lat)
	}
}

func TestTransformGeometry(t *testing.T) {
	shift := func(x, y float64) (float64, float64) {
		return x + 1, y + 2
	}

	p := TransformGeometry(orb.Point{1, 1}, shift).(orb.Point)
	if p[0] != 2 || p[1] != 3 {
		t.Errorf("bad point transform: %v", p)
	}

	poly := orb.Polygon{
		{{0, 0}, {1, 0}, {1, 1}, {0, 0}},
	}
	out := TransformGeometry(poly, shift).(orb.Polygon)
	if len(out) != 1 || len(out[0]) != 4 {
		t.Fatalf("polygon shape changed: %v", out)
	}
	if out[0][2][0] != 2 || out[0][2][1] != 3 {
		t.Errorf("bad polygon transform: %v", out)
	}
	// 原几何不被修改
	if poly[0][2][0] != 1 {
		t.Errorf("source polygon mutated: %v", poly)
	}

	mls := orb.MultiLineString{
		{{0, 0}, {1, 1}},
		{{2, 2}, {3, 3}},
	}
	outl := TransformGeometry(mls, shift).(orb.MultiLineString)
	if outl[1][0][0] != 3 || outl[1][0][1] != 4 {
		t.Errorf("bad multilinestring transform: %v", outl)
	}
}
