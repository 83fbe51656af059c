package review

import (
	"articledesk/internal/domain"
	"articledesk/internal/domain/models"
)

// CanTransition reports whether id may fire action on article right now.
// It reads only the identity, the article author and the article status.
func CanTransition(id domain.Identity, article models.Article, action Action) bool {
	t, ok := lookup(article.Status, action)
	if !ok {
		return false
	}
	return permits(t, id, article)
}

// CanUpload is true for authors only.
func CanUpload(id domain.Identity) bool {
	return id.IsUser()
}

// CanViewAdminQueue is true for moderators only.
func CanViewAdminQueue(id domain.Identity) bool {
	return id.IsAdmin()
}

// articleActions are the identity-triggered actions bound to one article.
var articleActions = []Action{ActionEditTitle, ActionPublish, ActionReject}

// AvailableActions lists the article actions id may fire, in a stable order.
// Views render a control per entry and hide the rest.
func AvailableActions(id domain.Identity, article models.Article) []Action {
	out := make([]Action, 0, len(articleActions))
	for _, a := range articleActions {
		if CanTransition(id, article, a) {
			out = append(out, a)
		}
	}
	return out
}

// Allowed is the closed-set entry point covering upload as well as the
// article-bound actions. article is ignored for ActionUpload.
func Allowed(id domain.Identity, article models.Article, action Action) bool {
	if action == ActionUpload {
		return CanUpload(id)
	}
	return CanTransition(id, article, action)
}

func permits(t transition, id domain.Identity, article models.Article) bool {
	switch t.actor {
	case actorPipeline:
		return id.Anonymous()
	case actorAuthor:
		return id.IsUser() && article.UserID == id.ID
	case actorAdmin:
		return id.IsAdmin()
	}
	return false
}
