package eventbus

import (
	"context"
	"sync"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// Envelope 事件信封，ID为订阅流的游标
type Envelope[T any] struct {
	ID   int64 `json:"id"`
	Data T     `json:"data"`
}

type subscriber[T any] struct {
	ch chan Envelope[T]
}

// Bus 进程内的类型化发布订阅总线
//
// Emit不阻塞、不落盘：没有订阅者时事件直接丢弃。
// 每个订阅者持有独立的缓冲通道，消费过慢时该订阅者的事件被丢弃，
// 不影响发布方和其他订阅者。订阅随context取消而同步注销。
type Bus[T any] struct {
	mu      sync.Mutex
	subs    map[int64]*subscriber[T]
	nextSub int64
	buffer  int
}

// NewBus 创建事件总线，buffer为每个订阅者的通道缓冲区大小
func NewBus[T any](buffer int) *Bus[T] {
	if buffer <= 0 {
		buffer = 1
	}
	return &Bus[T]{
		subs:   make(map[int64]*subscriber[T]),
		buffer: buffer,
	}
}

// Emit 向所有当前活跃的订阅者投递事件
func (b *Bus[T]) Emit(id int64, data T) {
	env := Envelope[T]{ID: id, Data: data}

	b.mu.Lock()
	defer b.mu.Unlock()

	for key, sub := range b.subs {
		select {
		case sub.ch <- env:
		default:
			// 订阅者消费过慢，丢弃本条，避免阻塞发布方
			hlog.Warnf("eventbus: subscriber %d buffer full, event %d dropped", key, id)
		}
	}
}

// Subscribe 注册订阅者，返回事件通道
// ctx取消后订阅者被注销，通道关闭，资源同步释放
func (b *Bus[T]) Subscribe(ctx context.Context) <-chan Envelope[T] {
	sub := &subscriber[T]{ch: make(chan Envelope[T], b.buffer)}

	b.mu.Lock()
	b.nextSub++
	key := b.nextSub
	b.subs[key] = sub
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, key)
		b.mu.Unlock()
		close(sub.ch)
	}()

	return sub.ch
}

// SubscriberCount 返回当前订阅者数量
func (b *Bus[T]) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
