package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pirouette/internal/adapters/notify"
	"github.com/okian/pirouette/pkg/logger"
)

type published struct {
	key string
	msg amqp.Publishing
}

type fakePublisher struct {
	sent []published
	err  error
}

func (f *fakePublisher) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{key: key, msg: msg})
	return nil
}

func TestAMQPSender(t *testing.T) {
	Convey("Given an AMQP sender", t, func() {
		pub := &fakePublisher{}
		s := notify.NewAMQPSender(pub, "pirouette.notifications")
		ctx := context.Background()

		Convey("each message is one persistent JSON publishing", func() {
			err := s.Send(ctx, notify.Message{EventID: 4, To: "club@example.org", Subject: "Start list", Body: "Published"})
			So(err, ShouldBeNil)
			So(len(pub.sent), ShouldEqual, 1)

			p := pub.sent[0]
			So(p.key, ShouldEqual, "pirouette.notifications")
			So(p.msg.DeliveryMode, ShouldEqual, amqp.Persistent)
			So(p.msg.ContentType, ShouldEqual, "application/json")
			So(p.msg.MessageId, ShouldNotBeEmpty)

			var m notify.Message
			So(json.Unmarshal(p.msg.Body, &m), ShouldBeNil)
			So(m.To, ShouldEqual, "club@example.org")
			So(m.EventID, ShouldEqual, 4)
			So(m.ID, ShouldEqual, p.msg.MessageId)
		})

		Convey("a message without recipient is refused", func() {
			err := s.Send(ctx, notify.Message{Subject: "x"})
			So(errors.Is(err, notify.ErrNoRecipient), ShouldBeTrue)
			So(pub.sent, ShouldBeEmpty)
		})

		Convey("publish failures are returned", func() {
			pub.err = amqp.ErrClosed
			err := s.Send(ctx, notify.Message{To: "a@b.c"})
			So(errors.Is(err, amqp.ErrClosed), ShouldBeTrue)
		})
	})
}

func TestLogSender(t *testing.T) {
	Convey("The log sender accepts addressed messages", t, func() {
		s := notify.NewLogSender(logger.Nop())
		So(s.Send(context.Background(), notify.Message{To: "a@b.c", Subject: "hi"}), ShouldBeNil)
		So(errors.Is(s.Send(context.Background(), notify.Message{}), notify.ErrNoRecipient), ShouldBeTrue)
	})
}
