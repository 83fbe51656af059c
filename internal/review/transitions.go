// Package review holds the article lifecycle: the status transition table,
// the access policy evaluated over it, and the invariants every stored
// article must satisfy.
package review

import (
	"fmt"
	"strings"
	"time"

	"articledesk/internal/domain"
	"articledesk/internal/domain/models"
)

// Action names a lifecycle operation.
type Action string

const (
	ActionEditTitle Action = "editTitle"
	ActionPublish   Action = "publish"
	ActionReject    Action = "reject"
	ActionUpload    Action = "upload"

	// Pipeline actions. No identity may trigger these.
	ActionStartProcessing    Action = "startProcessing"
	ActionCompleteProcessing Action = "completeProcessing"
	ActionFailProcessing     Action = "failProcessing"
)

// actor describes who may fire a transition.
type actor int

const (
	actorPipeline actor = iota
	actorAuthor
	actorAdmin
)

type transition struct {
	from   domain.ArticleStatus
	action Action
	to     domain.ArticleStatus
	actor  actor
}

// transitions is the complete lifecycle. A (status, action) pair missing
// from this table is an illegal transition.
var transitions = []transition{
	{domain.StatusPending, ActionStartProcessing, domain.StatusProcessing, actorPipeline},
	{domain.StatusProcessing, ActionCompleteProcessing, domain.StatusAwaitingApproval, actorPipeline},
	{domain.StatusProcessing, ActionFailProcessing, domain.StatusFailed, actorPipeline},
	{domain.StatusAwaitingApproval, ActionEditTitle, domain.StatusAwaitingApproval, actorAuthor},
	{domain.StatusAwaitingApproval, ActionPublish, domain.StatusPublished, actorAdmin},
	{domain.StatusAwaitingApproval, ActionReject, domain.StatusRejected, actorAdmin},
}

func lookup(from domain.ArticleStatus, action Action) (transition, bool) {
	for _, t := range transitions {
		if t.from == from && t.action == action {
			return t, true
		}
	}
	return transition{}, false
}

// Target returns the status action leads to from the given status.
func Target(from domain.ArticleStatus, action Action) (domain.ArticleStatus, bool) {
	t, ok := lookup(from, action)
	return t.to, ok
}

// Command is one requested transition. Actor is the zero identity for
// pipeline actions.
type Command struct {
	Action Action
	Actor  domain.Identity
	Title  string
	Reason string
	At     time.Time
}

// Apply validates cmd against article and returns the resulting article.
// The input is never modified; on error the caller still holds the prior
// state unchanged.
func Apply(article models.Article, cmd Command) (models.Article, error) {
	switch cmd.Action {
	case ActionEditTitle:
		if err := ValidateTitle(cmd.Title); err != nil {
			return article, err
		}
	case ActionReject:
		if err := ValidateReason(cmd.Reason); err != nil {
			return article, err
		}
	case ActionFailProcessing:
		if strings.TrimSpace(cmd.Reason) == "" {
			return article, domain.ValidationError{Field: "reason", Msg: "failure reason is required"}
		}
	}

	t, ok := lookup(article.Status, cmd.Action)
	if !ok {
		return article, domain.ConflictError{
			Resource: "article",
			Msg:      fmt.Sprintf("cannot %s an article in status %s", cmd.Action, article.Status),
		}
	}
	if !permits(t, cmd.Actor, article) {
		return article, domain.ForbiddenError{Action: string(cmd.Action)}
	}

	at := cmd.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	next := article.Clone()
	next.Status = t.to
	switch cmd.Action {
	case ActionStartProcessing:
		next.ProcessingStartedAt = &at
	case ActionCompleteProcessing:
		next.ProcessedAt = &at
	case ActionFailProcessing:
		reason := strings.TrimSpace(cmd.Reason)
		next.ProcessedAt = &at
		next.RejectionReason = &reason
	case ActionEditTitle:
		title := strings.TrimSpace(cmd.Title)
		next.Title = &title
	case ActionPublish:
		moderator := cmd.Actor.ID
		next.ModeratorID = &moderator
		next.PublishedAt = &at
	case ActionReject:
		moderator := cmd.Actor.ID
		reason := strings.TrimSpace(cmd.Reason)
		next.ModeratorID = &moderator
		next.RejectionReason = &reason
	}
	return next, nil
}

// EditTitle retitles an article awaiting approval on behalf of its author.
func EditTitle(article models.Article, by domain.Identity, title string, at time.Time) (models.Article, error) {
	return Apply(article, Command{Action: ActionEditTitle, Actor: by, Title: title, At: at})
}

// Publish approves an article awaiting approval.
func Publish(article models.Article, by domain.Identity, at time.Time) (models.Article, error) {
	return Apply(article, Command{Action: ActionPublish, Actor: by, At: at})
}

// Reject declines an article awaiting approval with a reason.
func Reject(article models.Article, by domain.Identity, reason string, at time.Time) (models.Article, error) {
	return Apply(article, Command{Action: ActionReject, Actor: by, Reason: reason, At: at})
}

// StartProcessing takes a PENDING article into the pipeline.
func StartProcessing(article models.Article, at time.Time) (models.Article, error) {
	return Apply(article, Command{Action: ActionStartProcessing, At: at})
}

// CompleteProcessing hands a processed article over for review.
func CompleteProcessing(article models.Article, at time.Time) (models.Article, error) {
	return Apply(article, Command{Action: ActionCompleteProcessing, At: at})
}

// FailProcessing ends processing with a failure reason.
func FailProcessing(article models.Article, reason string, at time.Time) (models.Article, error) {
	return Apply(article, Command{Action: ActionFailProcessing, Reason: reason, At: at})
}
