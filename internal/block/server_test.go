package block

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dreamware/surfstore/internal/hashutil"
)

func TestServer_StoreGetHas(t *testing.T) {
	store := NewStore(false)
	srv := httptest.NewServer(NewServer(store).Handler())
	defer srv.Close()

	h := hashutil.Hash([]byte("payload"))

	// HEAD before store: not found.
	resp, err := http.Head(srv.URL + "/blocks/" + h)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("HEAD before store = %d, want 404", resp.StatusCode)
	}

	// POST stores the block.
	resp, err = http.Post(srv.URL+"/blocks/"+h, "application/octet-stream", bytes.NewReader([]byte("payload")))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("POST status = %d, want 204", resp.StatusCode)
	}

	// HEAD after store: found.
	resp, err = http.Head(srv.URL + "/blocks/" + h)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("HEAD after store = %d, want 200", resp.StatusCode)
	}

	// GET returns the bytes verbatim.
	resp, err = http.Get(srv.URL + "/blocks/" + h)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", resp.StatusCode)
	}
	body := make([]byte, 7)
	if _, err := resp.Body.Read(body); err != nil && err.Error() != "EOF" {
		t.Fatal(err)
	}
	if string(body) != "payload" {
		t.Errorf("GET body = %q, want %q", body, "payload")
	}
}

func TestServer_GetMissing(t *testing.T) {
	srv := httptest.NewServer(NewServer(NewStore(false)).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/blocks/" + hashutilDummyHash())
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET missing = %d, want 404", resp.StatusCode)
	}
}

func hashutilDummyHash() string {
	return hashutil.Hash([]byte("does-not-exist"))
}
