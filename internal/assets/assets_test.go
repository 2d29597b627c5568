package assets

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestManagerLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "meshes/quad.bin", []byte("quad"))

	m := NewManager(1 << 20)
	m.AddSource(NewDirSource(dir))
	defer m.Close()

	data, err := m.Load(context.Background(), "meshes/quad.bin")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != "quad" {
		t.Errorf("expected quad, got %q", data)
	}

	// Second load comes from the cache.
	if _, err := m.Load(context.Background(), "meshes/quad.bin"); err != nil {
		t.Fatal(err)
	}
	hits, misses := m.Cache().Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %d/%d", hits, misses)
	}
}

func TestManagerNotFound(t *testing.T) {
	m := NewManager(0)
	m.AddSource(NewDirSource(t.TempDir()))

	_, err := m.Load(context.Background(), "missing.png")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestManagerSourcePriority(t *testing.T) {
	low, high := t.TempDir(), t.TempDir()
	writeFile(t, low, "a.txt", []byte("low"))
	writeFile(t, low, "b.txt", []byte("only-low"))
	writeFile(t, high, "a.txt", []byte("high"))

	m := NewManager(0)
	m.AddSource(NewDirSource(low))
	m.AddSource(NewDirSource(high))

	tests := map[string]string{"a.txt": "high", "b.txt": "only-low"}
	for path, want := range tests {
		data, err := m.Load(context.Background(), path)
		if err != nil {
			t.Fatalf("load %s: %v", path, err)
		}
		if string(data) != want {
			t.Errorf("%s: expected %q, got %q", path, want, data)
		}
	}
}

func TestManagerCompressed(t *testing.T) {
	payload := bytes.Repeat([]byte("vertex"), 512)
	packed, err := Compress(payload)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	writeFile(t, dir, "big.bin.lz4", packed)

	m := NewManager(0)
	m.AddSource(NewDirSource(dir))

	for _, path := range []string{"big.bin", "big.bin.lz4"} {
		data, err := m.Load(context.Background(), path)
		if err != nil {
			t.Fatalf("load %s: %v", path, err)
		}
		if !bytes.Equal(data, payload) {
			t.Errorf("%s: payload mismatch (%d bytes)", path, len(data))
		}
	}
}

func TestDecompressCorrupt(t *testing.T) {
	if _, err := Decompress([]byte("not lz4")); err == nil {
		t.Error("expected error for corrupt payload")
	}
}

func TestDirSourceRejectsEscapes(t *testing.T) {
	src := NewDirSource(t.TempDir())
	if _, err := src.Fetch(context.Background(), "../etc/passwd"); err == nil {
		t.Error("expected error for path outside root")
	}
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/assets/tex/grass.png":
			w.Write([]byte("png"))
		case "/assets/broken":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL+"/assets", srv.Client())
	if err != nil {
		t.Fatal(err)
	}

	data, err := src.Fetch(context.Background(), "tex/grass.png")
	if err != nil || string(data) != "png" {
		t.Errorf("expected png, got %q (%v)", data, err)
	}
	if _, err := src.Fetch(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := src.Fetch(context.Background(), "broken"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("expected server error, got %v", err)
	}
}

func TestNewHTTPSourceScheme(t *testing.T) {
	if _, err := NewHTTPSource("ftp://example.com", nil); err == nil {
		t.Error("expected error for ftp scheme")
	}
}

func TestCacheEviction(t *testing.T) {
	c := NewCache(10)
	c.Set("a", make([]byte, 4))
	c.Set("b", make([]byte, 4))
	c.Get("a") // a becomes most recent
	c.Set("c", make([]byte, 4))

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to stay cached")
	}
	if c.Size() != 8 {
		t.Errorf("expected size 8, got %d", c.Size())
	}

	c.Set("huge", make([]byte, 11))
	if _, ok := c.Get("huge"); ok {
		t.Error("expected oversized item to be skipped")
	}

	c.Delete("a")
	if c.Size() != 4 {
		t.Errorf("expected size 4 after delete, got %d", c.Size())
	}

	c.Clear()
	if hits, misses := c.Stats(); hits != 0 || misses != 0 || c.Size() != 0 {
		t.Errorf("expected empty cache, got %d/%d size %d", hits, misses, c.Size())
	}
}

func TestQueueAdd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.bin", []byte("A"))

	m := NewManager(0)
	m.AddSource(NewDirSource(dir))
	q := NewQueue(m, 2, time.Second)
	defer q.Close()

	ok := q.Add("a.bin")
	missing := q.Add("b.bin")
	ok.Wait()
	missing.Wait()

	if data, err := ok.Result(); err != nil || string(data) != "A" {
		t.Errorf("expected A, got %q (%v)", data, err)
	}
	if _, err := missing.Result(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestQueueCallbacksRunOnUpdate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.bin", []byte("A"))

	m := NewManager(0)
	m.AddSource(NewDirSource(dir))
	q := NewQueue(m, 1, 0)
	defer q.Close()

	var got []byte
	var failed error
	reqA := q.AddFunc("a.bin", func(b []byte) { got = b }, func(err error) { t.Errorf("unexpected failure: %v", err) })
	reqB := q.AddFunc("b.bin", func([]byte) { t.Error("unexpected success") }, func(err error) { failed = err })
	reqA.Wait()
	reqB.Wait()

	if got != nil || failed != nil {
		t.Fatal("callbacks ran before Update")
	}
	if q.NumPending() != 2 {
		t.Errorf("expected 2 pending, got %d", q.NumPending())
	}

	q.Update()
	if string(got) != "A" {
		t.Errorf("expected A, got %q", got)
	}
	if !errors.Is(failed, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", failed)
	}
	if q.NumPending() != 0 {
		t.Errorf("expected no pending requests, got %d", q.NumPending())
	}
}

type blockingSource struct{}

func (blockingSource) Name() string { return "blocking" }

func (blockingSource) Fetch(ctx context.Context, _ string) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestQueueCancel(t *testing.T) {
	m := NewManager(0)
	m.AddSource(blockingSource{})
	q := NewQueue(m, 1, 0)
	defer q.Close()

	req := q.Add("x")
	req.Cancel()
	req.Wait()
	if _, err := req.Result(); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestQueueTimeout(t *testing.T) {
	m := NewManager(0)
	m.AddSource(blockingSource{})
	q := NewQueue(m, 1, 10*time.Millisecond)
	defer q.Close()

	req := q.Add("x")
	req.Wait()
	if _, err := req.Result(); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func waitForChange(t *testing.T, w *Watcher, want string) {
	t.Helper()
	var seen []string
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, p := range w.Drain() {
			if p == want {
				return
			}
			seen = append(seen, p)
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("no change event for %s, got %v", want, seen)
}

func TestWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer w.Close()

	writeFile(t, dir, "shader.glsl", []byte("void main() {}"))
	waitForChange(t, w, "shader.glsl")
}

func TestWatcherReportsChangesInSubdirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "textures/logo.png", []byte("old"))

	w, err := NewWatcher(dir)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer w.Close()

	writeFile(t, dir, "textures/logo.png", []byte("new"))
	waitForChange(t, w, "textures/logo.png")
}

func TestWatcherFollowsNewSubdirs(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer w.Close()

	writeFile(t, dir, "sprites/hero.png", []byte("a"))
	waitForChange(t, w, "sprites/hero.png")

	// Wait out the debounce window before editing again.
	time.Sleep(2 * debounce)
	w.Drain()
	writeFile(t, dir, "sprites/hero.png", []byte("b"))
	waitForChange(t, w, "sprites/hero.png")
}
