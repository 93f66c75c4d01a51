package qr

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"qrattend/internal/queue"
)

func newStore(t *testing.T) *ArtifactStore {
	t.Helper()
	s, err := NewArtifactStore(filepath.Join(t.TempDir(), "qr_codes"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestArtifactWriteOverwrites(t *testing.T) {
	s := newStore(t)

	if err := s.Write("R1", []byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := s.Write("R1", []byte("second")); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(filepath.Join(s.Dir(), "R1.png"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Fatalf("content = %q", got)
	}

	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected a single file, found %d", len(entries))
	}
}

func TestArtifactRejectsPathKeys(t *testing.T) {
	s := newStore(t)
	for _, key := range []string{"", ".", "..", "../escape", `a\b`} {
		if err := s.Write(key, []byte("x")); err == nil {
			t.Errorf("key %q should be rejected", key)
		}
	}
}

func TestArtifactRemove(t *testing.T) {
	s := newStore(t)
	if err := s.Remove("missing"); err != nil {
		t.Fatalf("removing a missing artifact: %v", err)
	}
	if err := s.Write("R1", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if !s.Exists("R1") {
		t.Fatal("artifact should exist")
	}
	if err := s.Remove("R1"); err != nil {
		t.Fatal(err)
	}
	if s.Exists("R1") {
		t.Fatal("artifact should be gone")
	}
}

func TestRunRendererRebuildsArtifacts(t *testing.T) {
	s := newStore(t)
	q := queue.NewInMemory(8)
	ctx, cancel := context.WithCancel(context.Background())

	for _, roll := range []string{"R1", "R2"} {
		if err := q.Publish(ctx, queue.Message{Type: RenderJob, Body: []byte(roll)}); err != nil {
			t.Fatal(err)
		}
	}
	if err := q.Publish(ctx, queue.Message{Type: "other", Body: []byte("R3")}); err != nil {
		t.Fatal(err)
	}

	done := make(chan int, 1)
	go func() {
		n, _ := RunRenderer(ctx, q, s)
		done <- n
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !(s.Exists("R1") && s.Exists("R2")) {
		if time.Now().After(deadline) {
			t.Fatal("renderer did not write artifacts")
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if n := <-done; n != 2 {
		t.Fatalf("written = %d", n)
	}
	if s.Exists("R3") {
		t.Fatal("non-render messages must be ignored")
	}

	want, _ := Encode("R1")
	got, err := os.ReadFile(s.Path("R1"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Fatal("rebuilt artifact differs from a fresh encode")
	}
}
