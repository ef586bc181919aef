package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pirouette/internal/adapters/http/api"
	"github.com/okian/pirouette/internal/adapters/repository"
	service "github.com/okian/pirouette/internal/app"
	"github.com/okian/pirouette/pkg/logger"
)

type client struct {
	e *echo.Echo
}

func newClient() *client {
	svc := service.New(
		service.WithStore(repository.NewMemoryStore()),
		service.WithReferenceDate(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
		service.WithLogger(logger.Nop()),
	)
	_ = svc.Start(context.Background())
	e := echo.New()
	api.NewServer(svc).Register(e)
	return &client{e: e}
}

type response struct {
	Code int
	Body map[string]any
	List []any
	Raw  string
}

func (c *client) do(method, path string, body any, headers ...string) response {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	c.e.ServeHTTP(rec, req)

	out := response{Code: rec.Code, Raw: rec.Body.String()}
	_ = json.Unmarshal(rec.Body.Bytes(), &out.Body)
	_ = json.Unmarshal(rec.Body.Bytes(), &out.List)
	return out
}

var admin = []string{api.HeaderRole, api.RoleAdmin}

func member(orgID int64) []string {
	return []string{api.HeaderOrganization, strconv.FormatInt(orgID, 10)}
}

func id(r response) int64 {
	return int64(r.Body["id"].(float64))
}

func TestTransport(t *testing.T) {
	Convey("Given the API on an empty store", t, func() {
		c := newClient()

		Convey("health and metrics are served", func() {
			So(c.do(http.MethodGet, "/healthz", nil).Code, ShouldEqual, http.StatusOK)
			m := c.do(http.MethodGet, "/metrics", nil)
			So(m.Code, ShouldEqual, http.StatusOK)
			So(m.Raw, ShouldContainSubstring, "pirouette_engine_http_requests_total")
		})

		Convey("admin routes reject other callers", func() {
			r := c.do(http.MethodPost, "/events", map[string]any{"name": "Cup"})
			So(r.Code, ShouldEqual, http.StatusForbidden)
			So(r.Body["code"], ShouldEqual, "forbidden")
			So(r.Body["message"], ShouldEqual, "forbidden: admin role required")
		})

		Convey("request validation names the field", func() {
			r := c.do(http.MethodPost, "/events", map[string]any{"city": "Split"}, admin...)
			So(r.Code, ShouldEqual, http.StatusBadRequest)
			So(r.Body["code"], ShouldEqual, "validation_error")
			So(r.Body["message"], ShouldContainSubstring, "name")
		})

		Convey("malformed ids and unknown events are told apart", func() {
			So(c.do(http.MethodGet, "/events/abc", nil).Code, ShouldEqual, http.StatusBadRequest)
			r := c.do(http.MethodGet, "/events/42", nil)
			So(r.Code, ShouldEqual, http.StatusNotFound)
			So(r.Body["code"], ShouldEqual, "not_found")
		})

		Convey("a malformed identity header is a bad request", func() {
			r := c.do(http.MethodGet, "/events", nil, api.HeaderOrganization, "club")
			So(r.Code, ShouldEqual, http.StatusBadRequest)
		})
	})

	Convey("Given an event with a registered organization", t, func() {
		c := newClient()
		ev := c.do(http.MethodPost, "/events", map[string]any{"name": "Spring Cup", "city": "Zagreb", "start_time": "10:00"}, admin...)
		So(ev.Code, ShouldEqual, http.StatusCreated)
		eventID := id(ev)
		base := fmt.Sprintf("/events/%d", eventID)

		So(c.do(http.MethodPut, base+"/windows", map[string]any{"registration_open": true, "music_open": true}, admin...).Code, ShouldEqual, http.StatusOK)
		style := c.do(http.MethodPost, base+"/styles", map[string]any{"name": "Jazz"}, admin...)
		So(style.Code, ShouldEqual, http.StatusCreated)

		org := c.do(http.MethodPost, "/organizations", map[string]any{"name": "Studio Plié", "email": "plie@example.org"})
		So(org.Code, ShouldEqual, http.StatusCreated)
		orgID := id(org)
		me := member(orgID)

		var people []int64
		for _, name := range []string{"Ana", "Ben", "Cleo"} {
			p := c.do(http.MethodPost, fmt.Sprintf("/organizations/%d/performers", orgID),
				map[string]any{"first_name": name, "last_name": "Horvat", "birth_date": "2011-03-01"}, me...)
			So(p.Code, ShouldEqual, http.StatusCreated)
			people = append(people, id(p))
		}

		entry := func(size string, performers []int64, headers ...string) response {
			return c.do(http.MethodPost, base+"/entries", map[string]any{
				"style_id": id(style), "group_size": size, "difficulty": "A",
				"choreographer": "Ivana", "performer_ids": performers,
			}, headers...)
		}

		Convey("cardinality violations are validation errors", func() {
			r := entry("Group", people, me...)
			So(r.Code, ShouldEqual, http.StatusBadRequest)
			So(r.Body["message"], ShouldContainSubstring, "got 3")
		})

		Convey("a registered entry is classified and scoped", func() {
			r := entry("Solo", people[:1], me...)
			So(r.Code, ShouldEqual, http.StatusCreated)
			So(r.Body["age_bracket"], ShouldEqual, "Teen")
			path := fmt.Sprintf("/entries/%d", id(r))

			So(c.do(http.MethodGet, path, nil, me...).Code, ShouldEqual, http.StatusOK)
			So(c.do(http.MethodGet, path, nil, member(orgID+1)...).Code, ShouldEqual, http.StatusNotFound)
			So(c.do(http.MethodGet, fmt.Sprintf("/organizations/%d/performers", orgID), nil, member(orgID+1)...).Code,
				ShouldEqual, http.StatusNotFound)
		})

		Convey("a closed window is a conflict", func() {
			So(c.do(http.MethodPut, base+"/windows", map[string]any{"registration_open": false}, admin...).Code, ShouldEqual, http.StatusOK)
			r := entry("Solo", people[:1], me...)
			So(r.Code, ShouldEqual, http.StatusConflict)
			So(r.Body["code"], ShouldEqual, "state_error")
		})

		Convey("the timeline opens to the public once published", func() {
			So(entry("Solo", people[:1], me...).Code, ShouldEqual, http.StatusCreated)
			So(entry("Duo", people[1:], me...).Code, ShouldEqual, http.StatusCreated)
			So(c.do(http.MethodGet, base+"/timeline", nil, me...).Code, ShouldEqual, http.StatusConflict)

			So(c.do(http.MethodPost, base+"/startlist/default", nil, admin...).Code, ShouldEqual, http.StatusOK)
			pub := c.do(http.MethodPost, base+"/startlist/publish", nil, admin...)
			So(pub.Code, ShouldEqual, http.StatusOK)
			So(pub.Body["status"], ShouldEqual, "published")

			tl := c.do(http.MethodGet, base+"/timeline", nil, me...)
			So(tl.Code, ShouldEqual, http.StatusOK)
			slots := tl.Body["slots"].([]any)
			So(len(slots), ShouldEqual, 2)
			first := slots[0].(map[string]any)
			So(first["start"], ShouldEqual, "10:00")
			So(first["entry"].(map[string]any)["category"].(map[string]any)["key"], ShouldEqual, "Jazz|Solo|Teen|A")
		})

		Convey("judging feeds the awards", func() {
			solo := entry("Solo", people[:1], me...)
			So(solo.Code, ShouldEqual, http.StatusCreated)
			So(c.do(http.MethodGet, base, nil).Body["has_judges"], ShouldBeFalse)
			judge := c.do(http.MethodPost, base+"/judges", map[string]any{"first_name": "Nika"}, admin...)
			So(judge.Code, ShouldEqual, http.StatusCreated)
			So(judge.Body["username"], ShouldEqual, fmt.Sprintf("judge_%d_nika", eventID))
			So(c.do(http.MethodPost, base+"/judges", map[string]any{"first_name": "Nika"}, admin...).Code, ShouldEqual, http.StatusBadRequest)
			So(c.do(http.MethodGet, base, nil).Body["has_judges"], ShouldBeTrue)
			listed := c.do(http.MethodGet, "/events", nil)
			So(listed.List[0].(map[string]any)["has_judges"], ShouldBeTrue)

			sheet := fmt.Sprintf("/judges/%d/sheet", id(judge))
			act := c.do(http.MethodPost, sheet, map[string]any{
				"submit": true,
				"marks":  map[string]any{strconv.FormatInt(id(solo), 10): map[string]any{"technique": 8, "composition": 7, "image": 9}},
			})
			So(act.Code, ShouldEqual, http.StatusOK)
			So(act.Body["all_scored"], ShouldBeTrue)

			So(c.do(http.MethodPost, sheet, map[string]any{"action": "sideways"}).Code, ShouldEqual, http.StatusBadRequest)
			So(c.do(http.MethodPost, sheet, map[string]any{
				"submit": true,
				"marks":  map[string]any{strconv.FormatInt(id(solo), 10): map[string]any{"technique": 120}},
			}).Code, ShouldEqual, http.StatusBadRequest)

			So(c.do(http.MethodGet, base+"/awards", nil, me...).Code, ShouldEqual, http.StatusConflict)
			aw := c.do(http.MethodGet, base+"/awards", nil, admin...)
			So(aw.Code, ShouldEqual, http.StatusOK)
			So(len(aw.List), ShouldEqual, 1)
			cat := aw.List[0].(map[string]any)
			So(cat["category"].(map[string]any)["label"], ShouldEqual, "Jazz – Solo – Teen – A")
			So(cat["awards"].([]any)[0].(map[string]any)["score"], ShouldEqual, 8.0)

			bd := c.do(http.MethodGet, fmt.Sprintf("/entries/%d/breakdown", id(solo)), nil, admin...)
			So(bd.Code, ShouldEqual, http.StatusOK)
			So(bd.Body["scored"], ShouldBeTrue)

			dip := c.do(http.MethodPost, base+"/diplomas", map[string]any{"category": "Jazz|Solo|Teen|A"}, admin...)
			So(dip.Code, ShouldEqual, http.StatusOK)
			So(dip.Body["failed"], ShouldEqual, 0.0)
			items := dip.Body["items"].([]any)
			So(len(items), ShouldEqual, 1)
			name := items[0].(map[string]any)["artifact"].(string)
			art := c.do(http.MethodGet, "/artifacts/"+name, nil, admin...)
			So(art.Code, ShouldEqual, http.StatusOK)
			So(art.Raw, ShouldContainSubstring, "Ana Horvat")

			So(c.do(http.MethodPost, base+"/diplomas", map[string]any{"category": "Jazz|Solo"}, admin...).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("maintenance endpoints report counts", func() {
			So(entry("Duo", people[:2], me...).Code, ShouldEqual, http.StatusCreated)
			So(entry("Duo", people[1:], me...).Code, ShouldEqual, http.StatusCreated)
			merged := c.do(http.MethodPost, base+"/entries/merge", nil, admin...)
			So(merged.Code, ShouldEqual, http.StatusOK)
			So(merged.Body["merged"], ShouldEqual, 1.0)

			sum := c.do(http.MethodGet, base+"/summary", nil, admin...)
			So(sum.Code, ShouldEqual, http.StatusOK)
			So(sum.Body["totals"].(map[string]any)["performers"], ShouldEqual, 3.0)

			lint := c.do(http.MethodGet, base+"/categories/lint?distance=-1", nil, admin...)
			So(lint.Code, ShouldEqual, http.StatusBadRequest)

			So(c.do(http.MethodPut, fmt.Sprintf("/organizations/%d/confirmation", orgID), map[string]any{"confirmed": true}, admin...).Code,
				ShouldEqual, http.StatusOK)
			sent := c.do(http.MethodPost, base+"/notifications", map[string]any{}, admin...)
			So(sent.Code, ShouldEqual, http.StatusOK)
			So(sent.Body["sent"], ShouldEqual, 1.0)
		})

		Convey("the highlight pointer round-trips", func() {
			So(c.do(http.MethodPut, base+"/highlight", map[string]any{"key": "Jazz|Duo|Teen|A"}, admin...).Code, ShouldEqual, http.StatusOK)
			r := c.do(http.MethodGet, base+"/highlight", nil)
			So(r.Body["key"], ShouldEqual, "Jazz|Duo|Teen|A")
			So(c.do(http.MethodPut, base+"/highlight", map[string]any{"key": "nope"}, admin...).Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}
