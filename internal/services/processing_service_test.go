package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"articledesk/internal/domain"
	"articledesk/internal/domain/models"
	"articledesk/internal/repositories"
)

func pending(id, path string) models.Article {
	a := models.Article{
		ID:        id,
		UserID:    author.ID,
		FileName:  id + ".pdf",
		Status:    domain.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if path != "" {
		a.StoragePath = &path
	}
	return a
}

func TestRunOnceDrivesPipeline(t *testing.T) {
	files := &memFiles{}
	okPath, _, _ := files.Save("ok.pdf", strings.NewReader("%PDF"), 100)
	emptyPath, _, _ := files.Save("empty.pdf", strings.NewReader(""), 100)
	badExt := "mem/notes.txt"
	files.files[badExt] = []byte("text")

	store := repositories.NewMemoryArticles(
		pending("a1", okPath),
		pending("a2", emptyPath),
		pending("a3", ""),
		pending("a4", badExt),
	)
	svc := ProcessingService{Articles: store, Files: files, Batch: 10}

	n, err := svc.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if n != 4 {
		t.Fatalf("processed %d, want 4", n)
	}

	want := map[string]struct {
		status domain.ArticleStatus
		reason string
	}{
		"a1": {domain.StatusAwaitingApproval, ""},
		"a2": {domain.StatusFailed, "stored file is empty"},
		"a3": {domain.StatusFailed, "stored file is missing"},
		"a4": {domain.StatusFailed, "unsupported file type"},
	}
	for id, w := range want {
		a, _ := store.GetByID(context.Background(), id)
		if a.Status != w.status {
			t.Fatalf("%s: status = %s, want %s", id, a.Status, w.status)
		}
		if w.reason != "" && (a.RejectionReason == nil || *a.RejectionReason != w.reason) {
			t.Fatalf("%s: reason = %v, want %q", id, a.RejectionReason, w.reason)
		}
		if a.ProcessingStartedAt == nil || a.ProcessedAt == nil {
			t.Fatalf("%s: pipeline timestamps missing", id)
		}
	}

	// nothing left to do
	if n, _ := svc.RunOnce(context.Background()); n != 0 {
		t.Fatalf("second pass processed %d", n)
	}
}

// flakyArticles fails the first PROCESSING exit it is asked to save.
type flakyArticles struct {
	*repositories.MemoryArticles
	failed bool
}

func (f *flakyArticles) SaveTransition(ctx context.Context, from domain.ArticleStatus, next models.Article) error {
	if from == domain.StatusProcessing && !f.failed {
		f.failed = true
		return errors.New("connection reset")
	}
	return f.MemoryArticles.SaveTransition(ctx, from, next)
}

func TestRunOnceResumesStrandedProcessing(t *testing.T) {
	files := &memFiles{}
	path, _, _ := files.Save("ok.pdf", strings.NewReader("%PDF"), 100)
	store := &flakyArticles{MemoryArticles: repositories.NewMemoryArticles(pending("a1", path))}
	svc := ProcessingService{Articles: store, Files: files, Lease: time.Millisecond}

	if n, err := svc.RunOnce(context.Background()); err != nil || n != 0 {
		t.Fatalf("first pass: n=%d err=%v", n, err)
	}
	a, _ := store.GetByID(context.Background(), "a1")
	if a.Status != domain.StatusProcessing {
		t.Fatalf("status after failed save = %s", a.Status)
	}

	time.Sleep(5 * time.Millisecond)
	if n, err := svc.RunOnce(context.Background()); err != nil || n != 1 {
		t.Fatalf("second pass: n=%d err=%v", n, err)
	}
	a, _ = store.GetByID(context.Background(), "a1")
	if a.Status != domain.StatusAwaitingApproval || a.ProcessedAt == nil {
		t.Fatalf("stranded article not finished: %+v", a)
	}
}

func TestRunOnceLeavesFreshProcessingAlone(t *testing.T) {
	files := &memFiles{}
	path, _, _ := files.Save("ok.pdf", strings.NewReader("%PDF"), 100)
	a := pending("a1", path)
	a.Status = domain.StatusProcessing
	started := time.Now().UTC()
	a.ProcessingStartedAt = &started
	store := repositories.NewMemoryArticles(a)
	svc := ProcessingService{Articles: store, Files: files, Lease: time.Hour}

	if n, _ := svc.RunOnce(context.Background()); n != 0 {
		t.Fatalf("fresh PROCESSING article was taken over")
	}
}

func TestRunStopsWithContext(t *testing.T) {
	svc := ProcessingService{Articles: repositories.NewMemoryArticles(), Files: &memFiles{}, Interval: time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop after cancel")
	}
}
