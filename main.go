package main

import (
	"os"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/chenguan1/geoclass/mapstyle"
)

const (
	VERSION = "1.0.0"
)

var (
	db *gorm.DB
)

// env 环境变量，缺省值
func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func initConf() {
	// .env is optional
	err := godotenv.Load()
	if err != nil {
		log.Infof("no .env file, using defaults")
	}
	switch env("LOG_LEVEL", "info") {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	}
}

func main() {
	initConf()

	var err error
	db, err = gorm.Open("sqlite3", env("GEOCLASS_DB", "geoclass.db"))
	if err != nil {
		log.Fatalf("init gorm db failed, error: %v", err)
	}
	defer db.Close()

	// 自动构建
	db.AutoMigrate(&FeatureClass{}, &Mapset{})

	// mapserver
	mapstyle.Start()

	r := setupRouter()

	log.Infoln("start main server.")
	r.Run(env("GEOCLASS_ADDR", ":8090"))

	log.Info("exit.")

}
