package arcgis

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

func respond(status int, body string) roundTripperFunc {
	return func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(bytes.NewBufferString(body)),
		}, nil
	}
}

func TestFetchNationalSnapshot(t *testing.T) {
	body := `{"features":[
		{"attributes":{"OBJECTID":1,"Country_Region":"US","Province_State":"California","Confirmed":1000,"Deaths":20,"Recovered":0,"Last_Update":1614556800000}},
		{"attributes":{"OBJECTID":2,"Country_Region":"France","Province_State":null,"Confirmed":5,"Deaths":1,"Recovered":2,"Last_Update":1614556800000}}
	]}`
	var gotURL string
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		gotURL = req.URL.String()
		return respond(http.StatusOK, body)(req)
	})

	c := New(rt, Config{URL: "https://example.test/query?f=json"})
	features, err := c.FetchNationalSnapshot(context.Background())
	if err != nil {
		t.Fatalf("FetchNationalSnapshot: %v", err)
	}
	if gotURL != "https://example.test/query?f=json" {
		t.Errorf("url = %q", gotURL)
	}
	if len(features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(features))
	}
	ca := features[0].Attributes
	if *ca.ProvinceState != "California" || *ca.Confirmed != 1000 || *ca.LastUpdate != 1614556800000 {
		t.Errorf("unexpected attributes: %+v", ca)
	}
	if features[1].Attributes.ProvinceState != nil {
		t.Errorf("null Province_State should decode to nil")
	}
}

func TestFetchNationalSnapshotStatusError(t *testing.T) {
	c := New(respond(http.StatusBadGateway, "upstream down"), Config{})
	if _, err := c.FetchNationalSnapshot(context.Background()); err == nil {
		t.Fatalf("expected error on 502")
	}
}

func TestFetchNationalSnapshotServiceError(t *testing.T) {
	c := New(respond(http.StatusOK, `{"error":{"code":400,"message":"Invalid query"}}`), Config{})
	_, err := c.FetchNationalSnapshot(context.Background())
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
}

func TestFetchNationalSnapshotMalformed(t *testing.T) {
	c := New(respond(http.StatusOK, `<html>`), Config{})
	if _, err := c.FetchNationalSnapshot(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}

	c = New(respond(http.StatusOK, `{}`), Config{})
	if _, err := c.FetchNationalSnapshot(context.Background()); err == nil {
		t.Fatalf("expected error for missing features")
	}
}

func TestFetchNationalSnapshotTransportError(t *testing.T) {
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: refused")
	})
	c := New(rt, Config{})
	if _, err := c.FetchNationalSnapshot(context.Background()); err == nil {
		t.Fatalf("expected transport error")
	}
}
