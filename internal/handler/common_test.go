package handler

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestParseIDList(t *testing.T) {
	cases := []struct {
		in      string
		want    []uint64
		wantErr bool
	}{
		{"1,2,3", []uint64{1, 2, 3}, false},
		{"7", []uint64{7}, false},
		{" 1 , 2 ", []uint64{1, 2}, false},
		{"1,,2", []uint64{1, 2}, false},
		{"", []uint64{}, false},
		{"1,x", nil, true},
		{"-1", nil, true},
	}
	for _, tc := range cases {
		got, err := parseIDList(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("parseIDList(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseIDList(%q): %v", tc.in, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("parseIDList(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParsePageClampsToBounds(t *testing.T) {
	e := echo.New()
	newCtx := func(query string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/v1/journeys?"+query, nil)
		return e.NewContext(req, httptest.NewRecorder())
	}

	if page, size := parsePage(newCtx(""), 5, 50); page != 1 || size != 5 {
		t.Fatalf("defaults: page=%d size=%d, want 1/5", page, size)
	}
	if page, size := parsePage(newCtx("page=3&page_size=20"), 5, 50); page != 3 || size != 20 {
		t.Fatalf("explicit: page=%d size=%d, want 3/20", page, size)
	}
	if _, size := parsePage(newCtx("page_size=500"), 5, 50); size != 50 {
		t.Fatalf("cap: size=%d, want 50", size)
	}
	if page, size := parsePage(newCtx("page=0&page_size=-2"), 5, 50); page != 1 || size != 5 {
		t.Fatalf("invalid: page=%d size=%d, want 1/5", page, size)
	}
}

func TestGetUserIDAcceptsClaimShapes(t *testing.T) {
	e := echo.New()
	for _, v := range []interface{}{uint64(42), int(42), int64(42), float64(42), "42"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.Set("user_id", v)
		got, err := getUserID(c)
		if err != nil {
			t.Fatalf("getUserID(%T): %v", v, err)
		}
		if got != 42 {
			t.Fatalf("getUserID(%T) = %d, want 42", v, got)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	if _, err := getUserID(c); err == nil {
		t.Fatal("expected error when user_id is absent")
	}
}
