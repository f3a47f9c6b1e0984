package worker_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/mapty/internal/adapters/mq/queue"
	"github.com/okian/mapty/internal/adapters/mq/worker"
	"github.com/okian/mapty/internal/domain/model"
	logging "github.com/okian/mapty/pkg/logger"
)

func await(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reply")
		return nil
	}
}

func TestDispatcher(t *testing.T) {
	convey.Convey("Given a dispatcher reading a queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		d := worker.NewDispatcher(q, worker.WithName("test"), worker.WithLogger(logging.Nop()))
		go d.Run(ctx)

		convey.Convey("When events are enqueued", func() {
			var order []int
			var replies []chan error
			for i := range 5 {
				e := model.NewEvent(fmt.Sprintf("e%d", i), "click", func(context.Context) error {
					order = append(order, i)
					return nil
				})
				convey.So(q.Enqueue(ctx, e), convey.ShouldBeTrue)
				replies = append(replies, e.Done)
			}

			convey.Convey("Then they are applied one at a time in order", func() {
				for _, r := range replies {
					convey.So(await(t, r), convey.ShouldBeNil)
				}
				convey.So(order, convey.ShouldResemble, []int{0, 1, 2, 3, 4})
				convey.So(d.Processed(), convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When an event fails", func() {
			boom := errors.New("boom")
			e := model.NewEvent("bad", "remove_workout", func(context.Context) error { return boom })
			q.Enqueue(ctx, e)

			convey.Convey("Then the error is the reply", func() {
				convey.So(errors.Is(await(t, e.Done), boom), convey.ShouldBeTrue)
				convey.So(d.Failed(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When an event panics", func() {
			e := model.NewEvent("panic", "sort", func(context.Context) error { panic("kaboom") })
			q.Enqueue(ctx, e)
			after := model.NewEvent("after", "sort", func(context.Context) error { return nil })
			q.Enqueue(ctx, after)

			convey.Convey("Then it is reported and the loop keeps going", func() {
				convey.So(errors.Is(await(t, e.Done), worker.ErrPanic), convey.ShouldBeTrue)
				convey.So(await(t, after.Done), convey.ShouldBeNil)
			})
		})

		convey.Convey("When shut down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			convey.So(d.Shutdown(sctx), convey.ShouldBeNil)

			convey.Convey("Then Done is closed and a second Shutdown is harmless", func() {
				_, open := <-d.Done()
				convey.So(open, convey.ShouldBeFalse)
				convey.So(d.Shutdown(sctx), convey.ShouldBeNil)
			})
		})
	})
}

func TestDispatcherStopsWhenQueueCloses(t *testing.T) {
	convey.Convey("Given a closed queue", t, func() {
		q := queue.NewInMemoryQueue()
		e := model.NewEvent("last", "reset", func(context.Context) error { return nil })
		q.Enqueue(context.Background(), e)
		convey.So(q.Close(), convey.ShouldBeNil)

		d := worker.NewDispatcher(q, worker.WithLogger(logging.Nop()))
		go d.Run(context.Background())

		convey.Convey("Then the remaining event is applied before the loop exits", func() {
			convey.So(await(t, e.Done), convey.ShouldBeNil)
			select {
			case <-d.Done():
			case <-time.After(2 * time.Second):
				t.Fatal("dispatcher did not exit")
			}
		})
	})
}

func TestNewDispatcherWithInjectedLogger(t *testing.T) {
	convey.Convey("Given no process-wide logger", t, func() {
		q := queue.NewInMemoryQueue()
		defer func() { _ = q.Close() }()

		convey.Convey("Then a dispatcher built with its own logger does not need one", func() {
			convey.So(func() {
				_ = worker.NewDispatcher(q, worker.WithLogger(logging.Nop()))
			}, convey.ShouldNotPanic)
		})
	})
}
