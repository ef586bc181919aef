package playback_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/pirouette/internal/adapters/playback"
	"github.com/okian/pirouette/internal/adapters/repository"
)

func TestRedisStore(t *testing.T) {
	convey.Convey("Given a Redis highlight store", t, func() {
		mr := miniredis.RunT(t)
		ctx := context.Background()
		s := playback.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), playback.WithPrefix("test:hl"))
		convey.Reset(func() { _ = s.Close() })

		convey.Convey("an unset pointer reads as empty", func() {
			got, err := s.GetHighlight(ctx, 1)
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldEqual, "")
		})

		convey.Convey("the last write wins", func() {
			convey.So(s.SetHighlight(ctx, 1, "Jazz|Solo|Teen|A"), convey.ShouldBeNil)
			convey.So(s.SetHighlight(ctx, 1, "Tap|Duo|Kids|B"), convey.ShouldBeNil)
			got, err := s.GetHighlight(ctx, 1)
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldEqual, "Tap|Duo|Kids|B")
			convey.So(mr.Exists("test:hl:1"), convey.ShouldBeTrue)
		})

		convey.Convey("events do not share a pointer", func() {
			convey.So(s.SetHighlight(ctx, 1, "Jazz|Solo|Teen|A"), convey.ShouldBeNil)
			got, err := s.GetHighlight(ctx, 2)
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldEqual, "")
		})

		convey.Convey("an empty key clears the pointer", func() {
			convey.So(s.SetHighlight(ctx, 1, "Jazz|Solo|Teen|A"), convey.ShouldBeNil)
			convey.So(s.SetHighlight(ctx, 1, ""), convey.ShouldBeNil)
			convey.So(mr.Exists("test:hl:1"), convey.ShouldBeFalse)
		})

		convey.Convey("a server failure surfaces as an error", func() {
			mr.Close()
			_, err := s.GetHighlight(ctx, 1)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})

	convey.Convey("Dial fails fast on an unreachable server", t, func() {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		_, err := playback.Dial(context.Background(), addr, "", 0)
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestStoreBackedHighlighter(t *testing.T) {
	convey.Convey("The repository store satisfies Highlighter", t, func() {
		var h playback.Highlighter = repository.NewMemoryStore()
		ctx := context.Background()
		convey.So(h.SetHighlight(ctx, 3, "Ballet|Group|Youth|A"), convey.ShouldBeNil)
		got, err := h.GetHighlight(ctx, 3)
		convey.So(err, convey.ShouldBeNil)
		convey.So(got, convey.ShouldEqual, "Ballet|Group|Youth|A")
	})
}
