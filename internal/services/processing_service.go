package services

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"time"

	"articledesk/internal/domain"
	"articledesk/internal/domain/models"
	"articledesk/internal/review"
	"articledesk/internal/utils"
)

// ProcessingService moves uploaded articles through the pipeline states.
// Document contents are not parsed; a stored, non-empty file of an
// accepted type is enough to reach AWAITING_APPROVAL.
type ProcessingService struct {
	Articles ArticleStore
	Files    FileStore
	Interval time.Duration
	Batch    int
	// Lease is how long an article may sit in PROCESSING before another
	// pass finishes it. Defaults to three intervals.
	Lease time.Duration
}

func (s ProcessingService) interval() time.Duration {
	if s.Interval <= 0 {
		return 5 * time.Second
	}
	return s.Interval
}

func (s ProcessingService) lease() time.Duration {
	if s.Lease <= 0 {
		return 3 * s.interval()
	}
	return s.Lease
}

// Run polls until ctx is done.
func (s ProcessingService) Run(ctx context.Context) {
	interval := s.interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("[PROCESSING] action=start interval=%s", interval)
	for {
		if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			log.Printf("[PROCESSING] action=poll msg=%v", err)
		}
		select {
		case <-ctx.Done():
			log.Printf("[PROCESSING] action=stop")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce processes one batch of PENDING articles, plus PROCESSING ones
// whose lease ran out, and returns how many reached a new terminal or
// review state.
func (s ProcessingService) RunOnce(ctx context.Context) (int, error) {
	batch := s.Batch
	if batch <= 0 {
		batch = 10
	}
	stranded, err := s.Articles.ListByStatus(ctx, domain.StatusProcessing, batch)
	if err != nil {
		return 0, err
	}
	pending, err := s.Articles.ListByStatus(ctx, domain.StatusPending, batch)
	if err != nil {
		return 0, err
	}

	done := 0
	count := func(a models.Article, ok bool, err error) {
		if err != nil {
			log.Printf("[PROCESSING] action=process article_id=%s msg=%v", a.ID, err)
			return
		}
		if ok {
			done++
		}
	}
	cutoff := utils.NowUTC().Add(-s.lease())
	for _, a := range stranded {
		if ctx.Err() != nil {
			return done, ctx.Err()
		}
		if a.ProcessingStartedAt != nil && a.ProcessingStartedAt.After(cutoff) {
			continue
		}
		utils.LogEvent("", "processing", "resume", "article_id", a.ID)
		ok, err := s.finish(ctx, a)
		count(a, ok, err)
	}
	for _, a := range pending {
		if ctx.Err() != nil {
			return done, ctx.Err()
		}
		ok, err := s.process(ctx, a)
		count(a, ok, err)
	}
	return done, nil
}

func (s ProcessingService) process(ctx context.Context, a models.Article) (bool, error) {
	started, err := review.StartProcessing(a, utils.NowUTC())
	if err != nil {
		return false, err
	}
	if err := s.Articles.SaveTransition(ctx, a.Status, started); err != nil {
		if domain.IsConflict(err) {
			// another worker took it
			return false, nil
		}
		return false, err
	}
	return s.finish(ctx, started)
}

// finish moves a PROCESSING article to AWAITING_APPROVAL or FAILED.
func (s ProcessingService) finish(ctx context.Context, started models.Article) (bool, error) {
	var (
		next models.Article
		err  error
	)
	if reason := s.inspect(started); reason != "" {
		next, err = review.FailProcessing(started, reason, utils.NowUTC())
	} else {
		next, err = review.CompleteProcessing(started, utils.NowUTC())
	}
	if err != nil {
		return false, err
	}
	if err := s.Articles.SaveTransition(ctx, started.Status, next); err != nil {
		if domain.IsConflict(err) {
			return false, nil
		}
		return false, err
	}
	utils.LogEvent("", "processing", "finish", "article_id", next.ID, "status", next.Status)
	return true, nil
}

// inspect returns a failure reason, or "" when the file is usable.
func (s ProcessingService) inspect(a models.Article) string {
	if a.StoragePath == nil || strings.TrimSpace(*a.StoragePath) == "" {
		return "stored file is missing"
	}
	if !AllowedExtensions[strings.ToLower(filepath.Ext(*a.StoragePath))] {
		return "unsupported file type"
	}
	size, err := s.Files.Stat(*a.StoragePath)
	if err != nil {
		return "stored file is missing"
	}
	if size == 0 {
		return "stored file is empty"
	}
	return ""
}
