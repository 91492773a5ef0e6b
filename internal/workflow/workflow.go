// Package workflow sequences the description generation flows: token
// acquisition, pull request reads, completion, write-back and cleanup, with
// fail-fast short-circuiting at every step.
package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/zavodil/pr-description-agent/internal/event"
	"github.com/zavodil/pr-description-agent/internal/logging"
)

// Per-step timeouts. Completion is the slowest step and gets a longer bound.
const (
	apiTimeout        = 30 * time.Second
	completionTimeout = 60 * time.Second
)

// TokenIssuer exchanges an installation id for a short-lived access token
type TokenIssuer interface {
	InstallationToken(ctx context.Context, installationID int64) (string, error)
}

// PullRequestService reads and writes one pull request on behalf of an
// installation.
type PullRequestService interface {
	GetPullRequestTitle(ctx context.Context, owner, repo string, number int) (string, error)
	GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error)
	UpdatePullRequestBody(ctx context.Context, owner, repo string, number int, body string) error
	DeleteIssueComment(ctx context.Context, owner, repo string, commentID int64) error
}

// Generator produces a PR description for a diff and title
type Generator interface {
	GenerateDescription(ctx context.Context, diff, title string) (string, error)
}

// ServiceFactory builds a PullRequestService scoped to one installation
// token. A fresh service is built per workflow run and discarded with it.
type ServiceFactory func(token string) PullRequestService

// Orchestrator runs the two supported flows over its collaborators
type Orchestrator struct {
	issuer    TokenIssuer
	services  ServiceFactory
	generator Generator
}

// New creates an orchestrator
func New(issuer TokenIssuer, services ServiceFactory, generator Generator) *Orchestrator {
	return &Orchestrator{
		issuer:    issuer,
		services:  services,
		generator: generator,
	}
}

// ProcessCommentCommand handles a trigger comment on a pull request. The
// target is parsed from the issue's pull request URL. On success the
// trigger comment is deleted best-effort: a failed delete never downgrades
// the result.
func (o *Orchestrator) ProcessCommentCommand(ctx context.Context, ev *event.Event) bool {
	if ev.Issue == nil || ev.Issue.PullRequest == nil || ev.Comment == nil {
		logging.Error("Comment event is missing its pull request reference")
		return false
	}

	target, err := ParsePullURL(ev.Issue.PullRequest.URL)
	if err != nil {
		logging.Error("Failed to resolve pull request target", "error", err)
		return false
	}

	svc, ok := o.serviceFor(ctx, ev, target)
	if !ok {
		return false
	}

	if !o.describe(ctx, svc, target) {
		return false
	}

	// Non-critical cleanup step; the description update already succeeded.
	dctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()
	if err := svc.DeleteIssueComment(dctx, target.Owner, target.Repo, ev.Comment.ID); err != nil {
		logging.Warn("Failed to delete trigger comment",
			"target", target.String(),
			"comment_id", ev.Comment.ID,
			"error", err)
	}

	return true
}

// ProcessOpenedPullRequest handles a newly opened pull request. The target
// comes directly from the structured base repository fields; there is no
// trigger comment to clean up.
func (o *Orchestrator) ProcessOpenedPullRequest(ctx context.Context, ev *event.Event) bool {
	pr := ev.PullRequest
	if pr == nil || pr.Base == nil || pr.Base.Repo == nil || pr.Base.Repo.Owner == nil {
		logging.Error("Pull request event is missing base repository fields")
		return false
	}

	target := Target{
		Owner:  pr.Base.Repo.Owner.Login,
		Repo:   pr.Base.Repo.Name,
		Number: pr.Number,
	}

	svc, ok := o.serviceFor(ctx, ev, target)
	if !ok {
		return false
	}

	return o.describe(ctx, svc, target)
}

// serviceFor acquires a fresh installation token for the event and builds
// the pull request service for it. Events without an installation id abort:
// the workflow cannot proceed unauthenticated.
func (o *Orchestrator) serviceFor(ctx context.Context, ev *event.Event, target Target) (PullRequestService, bool) {
	installationID, ok := ev.InstallationID()
	if !ok {
		logging.Error("Event carries no installation id", "target", target.String())
		return nil, false
	}

	tctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	token, err := o.issuer.InstallationToken(tctx, installationID)
	if err != nil {
		logging.Error("Failed to get installation token",
			"installation_id", installationID,
			"target", target.String(),
			"error", err)
		return nil, false
	}

	return o.services(token), true
}

// describe runs the shared fetch, generate and write-back steps
func (o *Orchestrator) describe(ctx context.Context, svc PullRequestService, target Target) bool {
	mctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()
	title, err := svc.GetPullRequestTitle(mctx, target.Owner, target.Repo, target.Number)
	if err != nil {
		logging.Error("Failed to get pull request metadata", "target", target.String(), "error", err)
		return false
	}

	fctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()
	diff, err := svc.GetPullRequestDiff(fctx, target.Owner, target.Repo, target.Number)
	if err != nil {
		logging.Error("Failed to get pull request diff", "target", target.String(), "error", err)
		return false
	}
	if strings.TrimSpace(diff) == "" {
		logging.Error("Pull request diff is empty", "target", target.String())
		return false
	}

	gctx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()
	description, err := o.generator.GenerateDescription(gctx, diff, title)
	if err != nil {
		logging.Error("Failed to generate description", "target", target.String(), "error", err)
		return false
	}

	wctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()
	if err := svc.UpdatePullRequestBody(wctx, target.Owner, target.Repo, target.Number, description); err != nil {
		logging.Error("Failed to update pull request body", "target", target.String(), "error", err)
		return false
	}

	logging.Info("Updated pull request description",
		"target", target.String(),
		"description_length", len(description))

	return true
}
