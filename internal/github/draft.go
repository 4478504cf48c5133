package github

import (
	"context"
	"log/slog"

	"github.com/dshills/prbot/internal/review"
)

// DraftAPI is the subset of Client the draft publisher needs.
type DraftAPI interface {
	FindPullRequest(ctx context.Context, head, base string) (PullRequest, bool, error)
	CreatePullRequest(ctx context.Context, head, base, title, body string) (PullRequest, error)
	EditPullRequest(ctx context.Context, number int, title, body string) (PullRequest, error)
}

// DraftPublisher opens or updates the pull request of one branch.
type DraftPublisher struct {
	API    DraftAPI
	Head   string
	Base   string
	Logger *slog.Logger
}

// PublishResult reports what Publish did.
type PublishResult struct {
	PullRequest
	Created bool
}

// Publish edits the open pull request from Head into Base when there is one
// and creates it otherwise.
func (p *DraftPublisher) Publish(ctx context.Context, d review.PRDraft) (PublishResult, error) {
	log := p.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	existing, found, err := p.API.FindPullRequest(ctx, p.Head, p.Base)
	if err != nil {
		return PublishResult{}, err
	}
	if found {
		pr, err := p.API.EditPullRequest(ctx, existing.Number, d.Title, d.Body)
		if err != nil {
			return PublishResult{}, err
		}
		log.Info("updated pull request", "pr", pr.Number, "url", pr.URL)
		return PublishResult{PullRequest: pr}, nil
	}

	pr, err := p.API.CreatePullRequest(ctx, p.Head, p.Base, d.Title, d.Body)
	if err != nil {
		return PublishResult{}, err
	}
	log.Info("created pull request", "pr", pr.Number, "url", pr.URL)
	return PublishResult{PullRequest: pr, Created: true}, nil
}
