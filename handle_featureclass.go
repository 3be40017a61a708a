package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/teris-io/shortid"

	"github.com/chenguan1/geoclass/mapstyle"
)

//valSizeShp valid shapefile, return 0 is invalid
func valSizeShp(shp string) int64 {
	ext := filepath.Ext(shp)
	if strings.Compare(SHPEXT, ext) != 0 {
		return 0
	}
	info, err := os.Stat(shp)
	if err != nil {
		return 0
	}
	total := info.Size()

	pathname := strings.TrimSuffix(shp, ext)
	info, err = os.Stat(pathname + ".dbf")
	if err != nil {
		return 0
	}
	total += info.Size()

	info, err = os.Stat(pathname + ".shx")
	if err != nil {
		return 0
	}
	total += info.Size()

	info, err = os.Stat(pathname + ".prj")
	if err != nil {
		return 0
	}
	total += info.Size()

	return total
}

func getDatafiles(dir string) (map[string]int64, error) {
	files := make(map[string]int64)
	itmes, err := ioutil.ReadDir(dir)
	if err != nil {
		return files, err
	}
	for _, item := range itmes {
		name := item.Name()
		if item.IsDir() {
			subfiles, _ := getDatafiles(filepath.Join(dir, name))
			for k, v := range subfiles {
				files[k] = v
			}
		}
		ext := filepath.Ext(name)
		//处理zip内部数据文件
		switch ext {
		case CSVEXT, GEOJSONEXT:
			files[filepath.Join(dir, name)] = item.Size()
		case SHPEXT:
			shp := filepath.Join(dir, name)
			size := valSizeShp(shp)
			if size > 0 {
				files[shp] = size
			}
		default:
		}
	}
	return files, nil
}

func loadZipData(zipfile string) ([]*FeatureClass, error) {
	var fcs []*FeatureClass
	wd, _ := os.Getwd()
	tmpdir := strings.TrimSuffix(zipfile, filepath.Ext(zipfile))
	err := UnZipToDir(zipfile, tmpdir)
	if err != nil {
		return nil, err
	}
	files, err := getDatafiles(tmpdir)
	if err != nil {
		return nil, err
	}
	for file, size := range files {
		subase, err := filepath.Rel(tmpdir, file)
		if err != nil {
			subase = filepath.Base(file)
		}
		wdpath, err := filepath.Rel(wd, file)
		if err != nil {
			return nil, err
		}
		ext := filepath.Ext(file)
		subname := filepath.ToSlash(subase)
		subname = strings.Replace(subname, "/", "_", -1)
		subname = strings.TrimSuffix(subname, ext)
		subid, _ := shortid.Generate()
		subfc := &FeatureClass{
			ID:        subid,
			Name:      subname,
			Tag:       "",
			Format:    strings.ToLower(ext),
			Path:      wdpath,
			Size:      size,
			Geotype:   "Unknown",
			CreatedAt: time.Time{},
			UpdatedAt: time.Time{},
		}
		fcs = append(fcs, subfc)
	}

	return fcs, nil
}

func saveDatas(c *gin.Context) ([]*FeatureClass, error) {

	// working folder
	var wd string
	var err error
	if wd, err = os.Getwd(); err != nil {
		return nil, fmt.Errorf("get wd faild, error: %v", err)
	}

	// file updated
	file, err := c.FormFile("file")
	if err != nil {
		log.Warnf(`saveUploadFile, read upload file error, details: %s`, err)
		return nil, err
	}

	// ext
	ext := filepath.Ext(file.Filename)
	lext := strings.ToLower(ext)

	// subdir
	subdir := "data/uploads"
	switch lext {
	case CSVEXT, GEOJSONEXT, ZIPEXT:
		subdir = "data/uploads"
	default:
		return nil, fmt.Errorf("unsupport format")
	}

	dir := filepath.Join(wd, subdir)
	// ensure dir exist
	_, err = os.Stat(dir)
	if os.IsNotExist(err) {
		if err = os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("mkdir failed, error: %v", err)
		}
	}

	// generate id
	id, _ := shortid.Generate()

	// file name
	name := strings.TrimSuffix(file.Filename, ext)
	nameNew := name + "_" + id + lext

	subpath := filepath.Join(subdir, nameNew)
	fulpath := filepath.Join(wd, subpath)

	if err := c.SaveUploadedFile(file, fulpath); err != nil {
		return nil, fmt.Errorf(`saveDatas, saving uploaded file error, details: %s`, err)
	}

	// 数据列表
	fcs := make([]*FeatureClass, 0, 128)

	// 压缩包，或非压缩包
	if lext != ZIPEXT {
		fc := &FeatureClass{
			ID:      id,
			Name:    name,
			Tag:     "",
			Format:  lext,
			Path:    subpath,
			Size:    file.Size,
			Geotype: "Unknown",
		}
		fcs = append(fcs, fc)
	} else {
		fcs2, err := loadZipData(fulpath)
		if err != nil {
			return nil, fmt.Errorf(`saveDatas, unzip file error, details: %s`, err)
		}
		fcs = append(fcs, fcs2...)
	}

	return fcs, nil
}

////////////////////////////////////////////////////////////////
////////////////////////// -handle- ////////////////////////////

func uploadData(c *gin.Context) {
	res := NewRes()
	fcs, err := saveDatas(c)

	if err != nil {
		log.Warn(err)
		res.FailErr(c, err)
		return
	}

	if len(fcs) == 0 {
		res.Fail(c, 4041)
		return
	}

	crs := c.PostForm("crs")
	for _, fc := range fcs {
		if crs != "" {
			fc.Crs = crs
		}
		err := fc.LoadFrom()
		if err != nil {
			log.Errorf("load from failed, error: %v", err)
		}
	}

	// 上传结果返回前端，前端决定是否导入
	res.DoneData(c, fcs)
}

func listFeatureClass(c *gin.Context) {
	res := NewRes()

	var fcs []FeatureClass
	tdb := db

	kw, y := c.GetQuery("keyword")
	if y {
		tdb = tdb.Where("name like ?", "%"+kw+"%")
	}
	order, y := c.GetQuery("order")
	if y {
		log.Info(order)
		tdb = tdb.Order(order)
	}
	total := 0
	err := tdb.Model(&FeatureClass{}).Count(&total).Error
	if err != nil {
		res.Fail(c, 5001)
		return
	}
	start := 0
	rows := 10
	if offset, y := c.GetQuery("start"); y {
		rs, yr := c.GetQuery("rows") //limit count defaut 10
		if yr {
			ri, err := strconv.Atoi(rs)
			if err == nil {
				rows = ri
			}
		}
		start, _ = strconv.Atoi(offset)
		tdb = tdb.Offset(start).Limit(rows)
	}
	err = tdb.Find(&fcs).Error
	if err != nil {
		res.Fail(c, 5001)
		return
	}
	for i := range fcs {
		fcs[i].Fields = []byte(fcs[i].Schema)
	}
	res.DoneData(c, gin.H{
		"keyword": kw,
		"order":   order,
		"start":   start,
		"rows":    rows,
		"total":   total,
		"list":    fcs,
	})
}

// createFeatureClass 由上传的数据生成要素类: 建表导入+缺省符号
func createFeatureClass(c *gin.Context) {
	res := NewRes()
	fc := FeatureClass{}
	err := c.Bind(&fc)

	if err != nil {
		log.Warnf("bind featureclass failed, error: %v", err)
		res.FailErr(c, err)
		return
	}

	if _, err := os.Stat(fc.AbsPath()); err != nil {
		log.Warnf("createFeatureClass, data file not found: %s", fc.Path)
		res.Fail(c, 4041)
		return
	}

	// 重读数据信息, 前端可能只回传了路径
	if err := fc.LoadFrom(); err != nil {
		log.Errorf("load from failed, error: %v", err)
		res.FailErr(c, err)
		return
	}

	// 导入要素表
	if err := fc.Import(); err != nil {
		log.Errorf("import failed, error: %v", err)
		res.FailErr(c, err)
		return
	}

	// 缺省单一符号
	if fc.Geotype != Attribute {
		if err := fc.applySingle(mapstyle.NewMapColor(255, 0, 0), mapstyle.NewMapColor(0, 0, 255)); err != nil {
			log.Errorf("generate mapfile failed, error: %v", err)
			res.Fail(c, 5004)
			return
		}
	}

	// 保存到数据库
	if err = fc.Save(); err != nil {
		log.Warnf("save featureclass failed, error: %v", err)
		res.FailErr(c, err)
		return
	}

	res.DoneData(c, fc)
}

func infoFeatureClass(c *gin.Context) {
	res := NewRes()
	id := c.Param("id")
	fc := &FeatureClass{}
	err := db.Where("id = ?", id).First(fc).Error
	if err != nil {
		res.Fail(c, 4044)
		return
	}
	fc.Fields = []byte(fc.Schema)
	res.DoneData(c, fc)
}

// proxyMapfile 把请求改写到 mapserv 代理
func proxyMapfile(c *gin.Context, mapfile string) {
	c.Request.URL.Path = mapstyle.PathMapServ

	mpf := filepath.ToSlash(mapfile)
	addParam := "map=" + mpf
	if c.Request.URL.RawQuery != "" {
		c.Request.URL.RawQuery = c.Request.URL.RawQuery + "&"
	}
	c.Request.URL.RawQuery = c.Request.URL.RawQuery + addParam

	mapstyle.ProxyMapServ.ServeHTTP(c.Writer, c.Request)
}

// wms 预览要素类
func wmsFeatureClass(c *gin.Context) {
	res := NewRes()
	id := c.Param("id")
	fc := &FeatureClass{}
	err := db.Where("id = ?", id).First(fc).Error
	if err != nil {
		res.Fail(c, 4044)
		return
	}
	if fc.Mapfile == "" {
		res.Fail(c, 5004)
		return
	}
	proxyMapfile(c, fc.Mapfile)
}

// xyz 预览要素类
func xyzFeatureClass(c *gin.Context) {
	res := NewRes()
	id := c.Param("id")
	fc := &FeatureClass{}
	err := db.Where("id = ?", id).First(fc).Error
	if err != nil {
		res.Fail(c, 4044)
		return
	}
	if fc.Mapfile == "" {
		res.Fail(c, 5004)
		return
	}
	proxyMapfile(c, fc.Mapfile)
}
