package db

import (
	"VidStream.com/cmd/model"
	"VidStream.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormopentracing "gorm.io/plugin/opentracing"
)

var DB *gorm.DB

// Init init DB
func Init() {
	var err error
	dsn := utils.GetMysqlDsn()
	hlog.Info(dsn)
	DB, err = gorm.Open(mysql.Open(dsn),
		&gorm.Config{
			PrepareStmt:            true,
			SkipDefaultTransaction: true,
		},
	)
	if err != nil {
		panic(err)
	}
	if err = DB.Use(gormopentracing.New()); err != nil {
		panic(err)
	}
	if err = DB.AutoMigrate(
		&model.Comment{},
		&model.Vote{},
		&model.Video{},
		&model.VideoTask{},
	); err != nil {
		panic(err)
	}
}
