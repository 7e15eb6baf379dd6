package main

import (
	"VidStream.com/cmd/live/handlers"
	"github.com/cloudwego/hertz/pkg/app/server"
)

func register(r *server.Hertz) {
	v1 := r.Group("/v1")
	{
		comment := v1.Group("/comment")
		comment.POST("/create", handlers.CreateComment)
		comment.GET("/list", handlers.ListComments)

		vote := v1.Group("/vote")
		vote.POST("/cast", handlers.CastVote)

		video := v1.Group("/video")
		video.POST("/upload", handlers.UploadVideo)
		video.GET("/get", handlers.GetVideo)
	}

	live := r.Group("/live")
	{
		live.GET("/comments", handlers.LiveComments)
		live.GET("/comment-updates", handlers.LiveCommentUpdates)
		live.GET("/video", handlers.LiveVideo)
	}
}
