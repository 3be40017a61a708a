package main

import (
	"runtime"

	"github.com/gin-gonic/gin"

	"github.com/chenguan1/geoclass/mapstyle"
)

func setupRouter() *gin.Engine {
	if runtime.GOOS == "windows" {
		gin.DisableConsoleColor()
	}
	r := gin.Default()

	r.GET("/", hello)

	// api
	api := r.Group("/api")
	{
		// v1 : /api/v1
		v1 := api.Group("/v1")
		{
			// ping : /api/v1/ping
			v1.GET("/ping", ping)

			// mapserver : /api/v1/ms
			v1.Any("/ms", mapstyle.HandleMapServ)

			// featureclass : /api/v1/featureclass
			fc := v1.Group("/featureclass")
			{
				fc.GET("/", listFeatureClass)
				fc.POST("/upload", uploadData)
				fc.POST("/", createFeatureClass)
				fc.GET("/:id", infoFeatureClass)
				// post 路由树里 :id 与 upload 冲突, 动作放前面
				fc.POST("/join/:id", joinFeatureClass)
				fc.POST("/symbology/:id", symbologyFeatureClass)
				fc.GET("/:id/chart", chartFeatureClass)
				fc.GET("/:id/wms", wmsFeatureClass)
				fc.GET("/:id/xyz", xyzFeatureClass)
			}

			// mapset : /api/v1/mapset
			ms := v1.Group("/mapset")
			{
				ms.POST("/", createMapset)
				ms.GET("/:id/wms", wmsMapset)
			}
		}
	}

	return r
}
