package main

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Mostlike 猜测文本编码
// utf8 校验通过即认为 utf8, 否则按 gbk 特征判断
func Mostlike(buf []byte) string {
	if utf8.Valid(buf) {
		return "utf-8"
	}
	// gbk/gb18030 双字节: 首字节 0x81-0xfe, 次字节 0x40-0xfe
	n := len(buf)
	gbk := 0
	total := 0
	for i := 0; i < n-1; i++ {
		if buf[i] < 0x80 {
			continue
		}
		total++
		if buf[i] >= 0x81 && buf[i] <= 0xfe && buf[i+1] >= 0x40 && buf[i+1] <= 0xfe && buf[i+1] != 0x7f {
			gbk++
			i++
		}
	}
	if total > 0 && gbk*10 >= total*8 {
		return "gb18030"
	}
	if total > 0 {
		return "big5"
	}
	return "utf-8"
}

// UnZipToDir 解压到指定目录
func UnZipToDir(zipfile, dir string) error {
	zr, err := zip.OpenReader(zipfile)
	if err != nil {
		return err
	}
	defer zr.Close()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for _, f := range zr.File {
		name := filepath.Join(dir, f.Name)
		// zip slip
		if !strings.HasPrefix(name, filepath.Clean(dir)+string(os.PathSeparator)) {
			return fmt.Errorf("invalid zip entry path: %s", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(name, 0755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
			return err
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		w, err := os.Create(name)
		if err != nil {
			rc.Close()
			return err
		}
		_, err = io.Copy(w, rc)
		w.Close()
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
