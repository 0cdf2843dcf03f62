package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestID_UnmarshalNumberAndString(t *testing.T) {
	var recs []Database
	raw := `[{"id": 7, "name": "a"}, {"id": "db1", "name": "b"}, {"id": null, "name": "c"}]`
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		t.Fatal(err)
	}
	want := []ID{"7", "db1", ""}
	for i, w := range want {
		if recs[i].ID != w {
			t.Errorf("recs[%d].ID = %q, want %q", i, recs[i].ID, w)
		}
	}
}

func TestID_UnmarshalRejectsObjects(t *testing.T) {
	var d Database
	if err := json.Unmarshal([]byte(`{"id": {"x": 1}}`), &d); err == nil {
		t.Fatal("expected error for object id")
	}
}

func TestID_Marshal(t *testing.T) {
	b, err := json.Marshal(struct {
		A ID `json:"a"`
		B ID `json:"b"`
	}{A: "12", B: "db1"})
	if err != nil {
		t.Fatal(err)
	}
	if got := string(b); got != `{"a":12,"b":"db1"}` {
		t.Errorf("marshal = %s", got)
	}
}

func TestDecodeRead(t *testing.T) {
	resp, err := DecodeRead([]byte(`{"result":[{"id":1,"name":"p:d.t"}],"count":1}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Result) != 1 || resp.Result[0].Name != "p:d.t" || resp.Count != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}

	if _, err := DecodeRead([]byte(`not json`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestClient_Read(t *testing.T) {
	var gotUser, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = r.Header.Get(DefaultUserHeader)
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":[{"id":1,"name":"one"},{"id":2,"name":"two"}],"count":2}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "alice", time.Second)
	resp, err := c.Read(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != ReadPath {
		t.Errorf("path = %q, want %q", gotPath, ReadPath)
	}
	if gotUser != "alice" {
		t.Errorf("user header = %q, want alice", gotUser)
	}
	if len(resp.Result) != 2 || resp.Result[1].ID != "2" {
		t.Errorf("unexpected result: %+v", resp.Result)
	}
}

func TestClient_NoUserHeaderWhenAnonymous(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header[DefaultUserHeader]; ok {
			t.Error("user header should not be set")
		}
		_, _ = w.Write([]byte(`{"result":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	if _, err := c.Get(context.Background(), ReadPath); err != nil {
		t.Fatal(err)
	}
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"no access"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	_, err := c.Get(context.Background(), ReadPath)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrStatus) {
		t.Errorf("error %v does not wrap ErrStatus", err)
	}
}

func TestClient_Endpoint(t *testing.T) {
	c := NewClient("http://localhost:8088/", "", 0)
	if got := c.Endpoint(ReadPath); got != "http://localhost:8088"+ReadPath {
		t.Errorf("Endpoint = %q", got)
	}
	if got := c.Endpoint("healthz"); got != "http://localhost:8088/healthz" {
		t.Errorf("Endpoint = %q", got)
	}
	if got := c.Endpoint("https://other/x"); got != "https://other/x" {
		t.Errorf("Endpoint = %q", got)
	}
}
