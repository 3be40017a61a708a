package mapstyle

import (
	"net/http"
	"net/http/cgi"
	"net/http/httputil"
	"os"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Mapserver Host Info
const HostMapServ = "127.0.0.1:8049"
const UrlMapServ = "http://127.0.0.1:8049/api/v1/ms"
const PathMapServ = "/api/v1/ms"

var ProxyMapServ = httputil.ReverseProxy{
	Director: func(req *http.Request) {
		req.URL.Scheme = "http"
		req.URL.Host = HostMapServ
		req.Host = HostMapServ
	},
}

func HandleMapServ(ctx *gin.Context) {
	ctx.Request.Header.Add("requester-uid", "id")
	ProxyMapServ.ServeHTTP(ctx.Writer, ctx.Request)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func Start() {
	mapserv := envOr("MAPSERV_BIN", "/usr/lib/cgi-bin/mapserv")
	http.HandleFunc(PathMapServ, func(w http.ResponseWriter, r *http.Request) {
		handler := new(cgi.Handler)
		handler.Path = mapserv
		if v := os.Getenv("GDAL_DATA"); v != "" {
			handler.Env = append(handler.Env, "GDAL_DATA="+v)
		}
		if v := os.Getenv("GDAL_DRIVER_PATH"); v != "" {
			handler.Env = append(handler.Env, "GDAL_DRIVER_PATH="+v)
		}
		if v := os.Getenv("PROJ_LIB"); v != "" {
			handler.Env = append(handler.Env, "PROJ_LIB="+v)
		}

		log.Println(r.RemoteAddr, r.RequestURI)

		handler.ServeHTTP(w, r)
	})

	// 启动服务
	go func() {
		log.Infoln("start mapserv wrapper.")
		log.Fatalln(http.ListenAndServe(":8049", nil))
	}()
}
