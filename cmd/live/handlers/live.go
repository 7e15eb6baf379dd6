package handlers

import (
	"context"
	"encoding/json"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/websocket"
)

var upgrader = websocket.HertzUpgrader{
	CheckOrigin: func(ctx *app.RequestContext) bool {
		return true // 允许所有来源连接
	},
}

// SubscribeRequest 订阅流的首帧，客户端声明订阅范围和已见游标
type SubscribeRequest struct {
	VideoId     int64 `json:"video_id"`
	LastEventId int64 `json:"last_event_id"`
}

// StreamFrame 推给客户端的一帧，ID回传即可断点续传
type StreamFrame struct {
	ID    int64       `json:"id"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

func readSubscribeRequest(conn *websocket.Conn) (*SubscribeRequest, error) {
	_, message, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	var req SubscribeRequest
	if err := json.Unmarshal(message, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func writeFrame(conn *websocket.Conn, frame *StreamFrame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// watchDisconnect 读循环只为感知断连，客户端一断就取消订阅
func watchDisconnect(conn *websocket.Conn, cancel context.CancelFunc) {
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// LiveComments 断点续传的评论订阅流
func LiveComments(ctx context.Context, c *app.RequestContext) {
	err := upgrader.Upgrade(c, func(conn *websocket.Conn) {
		req, err := readSubscribeRequest(conn)
		if err != nil {
			hlog.Warnf("Bad subscribe request: %v", err)
			return
		}

		streamCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		watchDisconnect(conn, cancel)

		for frame := range commentStream.Stream(streamCtx, req.VideoId, req.LastEventId) {
			if frame.Err != nil {
				writeFrame(conn, &StreamFrame{Error: frame.Err.Error()})
				return
			}
			if err := writeFrame(conn, &StreamFrame{ID: frame.ID, Data: frame.Data}); err != nil {
				return
			}
		}
	})
	if err != nil {
		c.JSON(consts.StatusOK, `error`)
		return
	}
}

// LiveCommentUpdates 评论计数更新的实时转发，无补发
func LiveCommentUpdates(ctx context.Context, c *app.RequestContext) {
	err := upgrader.Upgrade(c, func(conn *websocket.Conn) {
		req, err := readSubscribeRequest(conn)
		if err != nil {
			hlog.Warnf("Bad subscribe request: %v", err)
			return
		}

		streamCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		watchDisconnect(conn, cancel)

		for envelope := range buses.CommentUpdated.Subscribe(streamCtx) {
			if envelope.Data == nil || envelope.Data.VideoId != req.VideoId {
				continue
			}
			if err := writeFrame(conn, &StreamFrame{ID: envelope.ID, Data: envelope.Data}); err != nil {
				return
			}
		}
	})
	if err != nil {
		c.JSON(consts.StatusOK, `error`)
		return
	}
}

// LiveVideo 视频计数更新和处理完成的实时转发，无补发
func LiveVideo(ctx context.Context, c *app.RequestContext) {
	err := upgrader.Upgrade(c, func(conn *websocket.Conn) {
		req, err := readSubscribeRequest(conn)
		if err != nil {
			hlog.Warnf("Bad subscribe request: %v", err)
			return
		}

		streamCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		watchDisconnect(conn, cancel)

		updated := buses.VideoUpdated.Subscribe(streamCtx)
		processed := buses.VideoProcessed.Subscribe(streamCtx)

		for {
			select {
			case <-streamCtx.Done():
				return
			case envelope, ok := <-updated:
				if !ok {
					return
				}
				if envelope.Data == nil || envelope.Data.VideoId != req.VideoId {
					continue
				}
				if err := writeFrame(conn, &StreamFrame{ID: envelope.ID, Data: envelope.Data}); err != nil {
					return
				}
			case envelope, ok := <-processed:
				if !ok {
					return
				}
				if envelope.Data == nil || envelope.Data.VideoId != req.VideoId {
					continue
				}
				if err := writeFrame(conn, &StreamFrame{ID: envelope.ID, Data: envelope.Data}); err != nil {
					return
				}
			}
		}
	})
	if err != nil {
		c.JSON(consts.StatusOK, `error`)
		return
	}
}
