package main

import (
	"archive/zip"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestMostlike(t *testing.T) {
	if enc := Mostlike([]byte("hello, plain ascii")); enc != "utf-8" {
		t.Errorf("ascii should be utf-8, got %s", enc)
	}
	if enc := Mostlike([]byte("你好，世界")); enc != "utf-8" {
		t.Errorf("utf8 chinese should be utf-8, got %s", enc)
	}
	// "中国" 的 gbk 编码
	gbk := []byte{0xd6, 0xd0, 0xb9, 0xfa}
	if enc := Mostlike(gbk); enc != "gb18030" {
		t.Errorf("gbk bytes should be gb18030, got %s", enc)
	}
}

func TestUnZipToDir(t *testing.T) {
	dir := t.TempDir()

	zipfile := filepath.Join(dir, "bundle.zip")
	zf, err := os.Create(zipfile)
	if err != nil {
		t.Fatalf("create zip failed, error: %s\n", err)
	}
	zw := zip.NewWriter(zf)
	w, _ := zw.Create("sub/points.geojson")
	w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
	w, _ = zw.Create("readme.txt")
	w.Write([]byte("hi"))
	zw.Close()
	zf.Close()

	out := filepath.Join(dir, "out")
	if err := UnZipToDir(zipfile, out); err != nil {
		t.Fatalf("unzip failed, error: %s\n", err)
	}

	buf, err := ioutil.ReadFile(filepath.Join(out, "sub", "points.geojson"))
	if err != nil {
		t.Fatalf("read extracted file failed, error: %s\n", err)
	}
	if len(buf) == 0 {
		t.Errorf("extracted file is empty")
	}
}

func TestUnZipToDirSlip(t *testing.T) {
	dir := t.TempDir()

	zipfile := filepath.Join(dir, "evil.zip")
	zf, err := os.Create(zipfile)
	if err != nil {
		t.Fatalf("create zip failed, error: %s\n", err)
	}
	zw := zip.NewWriter(zf)
	w, _ := zw.Create("../evil.txt")
	w.Write([]byte("nope"))
	zw.Close()
	zf.Close()

	out := filepath.Join(dir, "out")
	if err := UnZipToDir(zipfile, out); err == nil {
		t.Errorf("expect error for path escaping entry")
	}
}
