package dal

import (
	"VidStream.com/cmd/live/dal/db"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

func Init() {
	db.Init() // mysql init
	hlog.Info("Database initialized successfully")
}
