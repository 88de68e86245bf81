package compositor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Write([]byte("png-bytes"))
		case "/big.png":
			w.Write([]byte(strings.Repeat("x", 64)))
		case "/slow.png":
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte("late"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	h := NewHTTPFetcher(5 * time.Second)
	data, err := h.Fetch(context.Background(), srv.URL+"/ok.png")
	if err != nil || string(data) != "png-bytes" {
		t.Fatalf("data=%q err=%v", data, err)
	}

	if _, err := h.Fetch(context.Background(), srv.URL+"/missing.png"); err == nil {
		t.Fatal("404 accepted")
	}

	h.MaxBytes = 16
	if _, err := h.Fetch(context.Background(), srv.URL+"/big.png"); err == nil {
		t.Fatal("oversized body accepted")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := h.Fetch(ctx, srv.URL+"/slow.png"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestFileFetcher(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bg.png"), []byte("file-bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	f := FileFetcher{Root: dir}
	for _, ref := range []string{"bg.png", filepath.Join(dir, "bg.png"), "file://" + filepath.Join(dir, "bg.png")} {
		data, err := f.Fetch(context.Background(), ref)
		if err != nil || string(data) != "file-bytes" {
			t.Fatalf("%s: data=%q err=%v", ref, data, err)
		}
	}
	if _, err := f.Fetch(context.Background(), "nope.png"); !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("err = %v, want ErrAssetNotFound", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	id := s.Put([]byte("photo"), "image/jpeg")
	if len(id) != 24 {
		t.Fatalf("id = %q", id)
	}
	data, ct, ok := s.Get(id)
	if !ok || string(data) != "photo" || ct != "image/jpeg" {
		t.Fatalf("get = %q %q %v", data, ct, ok)
	}
	got, err := s.Fetch(context.Background(), Ref(id))
	if err != nil || string(got) != "photo" {
		t.Fatalf("fetch = %q %v", got, err)
	}
	s.Delete(id)
	if _, err := s.Fetch(context.Background(), Ref(id)); !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("err = %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("len = %d", s.Len())
	}
}

type fixedFetcher string

func (f fixedFetcher) Fetch(context.Context, string) ([]byte, error) { return []byte(f), nil }

func TestMultiFetcherRoutes(t *testing.T) {
	s := NewMemoryStore()
	s.PutWithID("a", []byte("store"), "image/png")
	m := MultiFetcher{Store: s, HTTP: fixedFetcher("http"), Files: fixedFetcher("file")}

	for ref, want := range map[string]string{
		"asset:a":                "store",
		"https://cdn.test/x.png": "http",
		"http://cdn.test/x.png":  "http",
		"templates/bg.png":       "file",
	} {
		got, err := m.Fetch(context.Background(), ref)
		if err != nil || string(got) != want {
			t.Errorf("%s: got %q err %v, want %q", ref, got, err, want)
		}
	}

	if _, err := m.Fetch(context.Background(), ""); err == nil {
		t.Error("empty reference accepted")
	}
	if _, err := (MultiFetcher{}).Fetch(context.Background(), "https://cdn.test/x.png"); err == nil {
		t.Error("missing route accepted")
	}
}

func TestPhotoMask(t *testing.T) {
	if photoMask(10, 10, 0) != nil {
		t.Fatal("square corners need no mask")
	}
	circle := photoMask(100, 100, 50)
	if a := circle.AlphaAt(1, 1).A; a != 0 {
		t.Errorf("circle corner alpha = %d", a)
	}
	if a := circle.AlphaAt(50, 50).A; a != 255 {
		t.Errorf("circle centre alpha = %d", a)
	}
	rounded := photoMask(100, 100, 10)
	if a := rounded.AlphaAt(0, 0).A; a != 0 {
		t.Errorf("rounded corner alpha = %d", a)
	}
	if a := rounded.AlphaAt(15, 2).A; a != 255 {
		t.Errorf("rounded edge alpha = %d", a)
	}
}
