package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/okian/pirouette/internal/domain/errs"
	. "github.com/smartystreets/goconvey/convey"
)

func TestErrorKinds(t *testing.T) {
	Convey("Given structured domain errors", t, func() {
		v := errs.Validation("register", "group size %s requires %d-%d performers, got %d", "Duo", 2, 2, 3)
		s := errs.State("publish", "timeline is empty")
		n := errs.NotFound("entry", "entry %d not found", 7)

		Convey("Then each unwraps to its kind", func() {
			So(errors.Is(v, errs.ErrValidation), ShouldBeTrue)
			So(errors.Is(s, errs.ErrState), ShouldBeTrue)
			So(errors.Is(n, errs.ErrNotFound), ShouldBeTrue)
			So(errors.Is(v, errs.ErrState), ShouldBeFalse)
		})

		Convey("Then the message is formatted with the op", func() {
			So(v.Error(), ShouldEqual, "register: group size Duo requires 2-2 performers, got 3")
			So(errs.Message(v), ShouldEqual, "group size Duo requires 2-2 performers, got 3")
		})

		Convey("Then kinds survive wrapping", func() {
			wrapped := fmt.Errorf("service: %w", n)
			So(errs.Kind(wrapped), ShouldEqual, "not_found")
			So(errs.Message(wrapped), ShouldEqual, "entry 7 not found")
		})

		Convey("Then unknown errors are internal", func() {
			So(errs.Kind(errors.New("boom")), ShouldEqual, "internal")
			So(errs.Kind(nil), ShouldEqual, "")
		})
	})
}
