package workflow

import (
	"context"
	"fmt"
	"testing"

	"github.com/zavodil/pr-description-agent/internal/event"
)

type fakeIssuer struct {
	token string
	err   error
	calls []int64
}

func (f *fakeIssuer) InstallationToken(_ context.Context, installationID int64) (string, error) {
	f.calls = append(f.calls, installationID)
	return f.token, f.err
}

type fakePRService struct {
	title    string
	titleErr error
	diff     string
	diffErr  error

	updateErr error
	deleteErr error

	updatedBody string
	updateCalls int
	deleteCalls int
	deletedID   int64
	seenTarget  Target
}

func (f *fakePRService) GetPullRequestTitle(_ context.Context, owner, repo string, number int) (string, error) {
	f.seenTarget = Target{Owner: owner, Repo: repo, Number: number}
	return f.title, f.titleErr
}

func (f *fakePRService) GetPullRequestDiff(_ context.Context, _, _ string, _ int) (string, error) {
	return f.diff, f.diffErr
}

func (f *fakePRService) UpdatePullRequestBody(_ context.Context, _, _ string, _ int, body string) error {
	f.updateCalls++
	f.updatedBody = body
	return f.updateErr
}

func (f *fakePRService) DeleteIssueComment(_ context.Context, _, _ string, commentID int64) error {
	f.deleteCalls++
	f.deletedID = commentID
	return f.deleteErr
}

type fakeGenerator struct {
	text     string
	err      error
	calls    int
	gotDiff  string
	gotTitle string
}

func (f *fakeGenerator) GenerateDescription(_ context.Context, diff, title string) (string, error) {
	f.calls++
	f.gotDiff = diff
	f.gotTitle = title
	return f.text, f.err
}

type fixture struct {
	issuer       *fakeIssuer
	service      *fakePRService
	generator    *fakeGenerator
	factoryCalls int
	factoryToken string
	orchestrator *Orchestrator
}

func newFixture() *fixture {
	f := &fixture{
		issuer:    &fakeIssuer{token: "ghs_installation_token"},
		service:   &fakePRService{title: "Add widget", diff: "diff --git a/widget.go b/widget.go\n+frobnicate()"},
		generator: &fakeGenerator{text: "## What changed\n- added widget"},
	}
	f.orchestrator = New(f.issuer, func(token string) PullRequestService {
		f.factoryCalls++
		f.factoryToken = token
		return f.service
	}, f.generator)
	return f
}

func commentEvent() *event.Event {
	return &event.Event{
		Action: "created",
		Comment: &event.Comment{
			ID:   555,
			Body: "/describe",
			User: &event.User{ID: 7, Login: "author"},
		},
		Issue: &event.Issue{
			Number:      12,
			User:        &event.User{ID: 7, Login: "author"},
			PullRequest: &event.PullRequestLink{URL: "https://api.github.com/repos/octo/widgets/pulls/12"},
		},
		Repository: &event.Repository{
			Name:  "widgets",
			Owner: &event.User{ID: 99, Login: "octo"},
		},
		Installation: &event.Installation{ID: 42},
	}
}

func openedEvent() *event.Event {
	return &event.Event{
		Action: "opened",
		PullRequest: &event.PullRequest{
			Number: 12,
			Title:  "Add widget",
			Body:   "",
			User:   &event.User{ID: 7, Login: "author"},
			Base: &event.Base{
				Repo: &event.Repository{
					Name:  "widgets",
					Owner: &event.User{ID: 99, Login: "octo"},
				},
			},
		},
		Installation: &event.Installation{ID: 42},
	}
}

func TestProcessCommentCommand_Success(t *testing.T) {
	f := newFixture()

	if !f.orchestrator.ProcessCommentCommand(context.Background(), commentEvent()) {
		t.Fatal("ProcessCommentCommand() = false, want true")
	}

	if len(f.issuer.calls) != 1 || f.issuer.calls[0] != 42 {
		t.Errorf("issuer calls = %v, want [42]", f.issuer.calls)
	}
	if f.factoryCalls != 1 || f.factoryToken != "ghs_installation_token" {
		t.Errorf("factory calls = %d with token %q, want one call with issued token",
			f.factoryCalls, f.factoryToken)
	}
	want := Target{Owner: "octo", Repo: "widgets", Number: 12}
	if f.service.seenTarget != want {
		t.Errorf("service target = %+v, want %+v", f.service.seenTarget, want)
	}
	if f.generator.gotTitle != "Add widget" || f.generator.gotDiff != f.service.diff {
		t.Errorf("generator received (%q, %q), want title and diff from the service",
			f.generator.gotTitle, f.generator.gotDiff)
	}
	if f.service.updatedBody != f.generator.text {
		t.Errorf("updated body = %q, want generated text", f.service.updatedBody)
	}
	if f.service.deleteCalls != 1 || f.service.deletedID != 555 {
		t.Errorf("delete calls = %d id = %d, want 1 call for comment 555",
			f.service.deleteCalls, f.service.deletedID)
	}
}

func TestProcessCommentCommand_DeleteFailureStillSucceeds(t *testing.T) {
	f := newFixture()
	f.service.deleteErr = fmt.Errorf("comment already gone")

	if !f.orchestrator.ProcessCommentCommand(context.Background(), commentEvent()) {
		t.Error("ProcessCommentCommand() = false after delete failure, want true")
	}
	if f.service.updateCalls != 1 {
		t.Errorf("update calls = %d, want 1", f.service.updateCalls)
	}
}

func TestProcessCommentCommand_DiffFetchFailureShortCircuits(t *testing.T) {
	f := newFixture()
	f.service.diffErr = fmt.Errorf("upstream unavailable")

	if f.orchestrator.ProcessCommentCommand(context.Background(), commentEvent()) {
		t.Fatal("ProcessCommentCommand() = true, want false")
	}
	if f.generator.calls != 0 {
		t.Error("generator was invoked after diff fetch failed")
	}
	if f.service.updateCalls != 0 || f.service.deleteCalls != 0 {
		t.Error("write-back or delete attempted after diff fetch failed")
	}
}

func TestProcessCommentCommand_MetadataFailureShortCircuits(t *testing.T) {
	f := newFixture()
	f.service.titleErr = fmt.Errorf("upstream unavailable")

	if f.orchestrator.ProcessCommentCommand(context.Background(), commentEvent()) {
		t.Fatal("ProcessCommentCommand() = true, want false")
	}
	if f.generator.calls != 0 || f.service.updateCalls != 0 {
		t.Error("later steps ran after metadata fetch failed")
	}
}

func TestProcessCommentCommand_EmptyDiffAborts(t *testing.T) {
	f := newFixture()
	f.service.diff = "  \n"

	if f.orchestrator.ProcessCommentCommand(context.Background(), commentEvent()) {
		t.Fatal("ProcessCommentCommand() = true for empty diff, want false")
	}
	if f.generator.calls != 0 {
		t.Error("generator was invoked for an empty diff")
	}
}

func TestProcessCommentCommand_GenerationFailureAborts(t *testing.T) {
	f := newFixture()
	f.generator.err = fmt.Errorf("model timeout")

	if f.orchestrator.ProcessCommentCommand(context.Background(), commentEvent()) {
		t.Fatal("ProcessCommentCommand() = true, want false")
	}
	if f.service.updateCalls != 0 || f.service.deleteCalls != 0 {
		t.Error("write-back or delete attempted after generation failed")
	}
}

func TestProcessCommentCommand_UpdateFailureSkipsDelete(t *testing.T) {
	f := newFixture()
	f.service.updateErr = fmt.Errorf("upstream unavailable")

	if f.orchestrator.ProcessCommentCommand(context.Background(), commentEvent()) {
		t.Fatal("ProcessCommentCommand() = true, want false")
	}
	if f.service.deleteCalls != 0 {
		t.Error("trigger comment deleted although the update failed")
	}
}

func TestProcessCommentCommand_TokenFailureAborts(t *testing.T) {
	f := newFixture()
	f.issuer.err = fmt.Errorf("exchange rejected")
	f.issuer.token = ""

	if f.orchestrator.ProcessCommentCommand(context.Background(), commentEvent()) {
		t.Fatal("ProcessCommentCommand() = true, want false")
	}
	if f.factoryCalls != 0 {
		t.Error("service built without an installation token")
	}
}

func TestProcessCommentCommand_MissingInstallationAborts(t *testing.T) {
	f := newFixture()
	ev := commentEvent()
	ev.Installation = nil

	if f.orchestrator.ProcessCommentCommand(context.Background(), ev) {
		t.Fatal("ProcessCommentCommand() = true, want false")
	}
	if len(f.issuer.calls) != 0 {
		t.Error("token requested for an event without an installation id")
	}
}

func TestProcessCommentCommand_BadPullURLAborts(t *testing.T) {
	f := newFixture()
	ev := commentEvent()
	ev.Issue.PullRequest.URL = "https://api.github.com/repos/octo/widgets/issues/12"

	if f.orchestrator.ProcessCommentCommand(context.Background(), ev) {
		t.Fatal("ProcessCommentCommand() = true, want false")
	}
	if len(f.issuer.calls) != 0 {
		t.Error("token requested although the target could not be resolved")
	}
}

func TestProcessOpenedPullRequest_Success(t *testing.T) {
	f := newFixture()

	if !f.orchestrator.ProcessOpenedPullRequest(context.Background(), openedEvent()) {
		t.Fatal("ProcessOpenedPullRequest() = false, want true")
	}

	want := Target{Owner: "octo", Repo: "widgets", Number: 12}
	if f.service.seenTarget != want {
		t.Errorf("service target = %+v, want %+v", f.service.seenTarget, want)
	}
	if f.service.deleteCalls != 0 {
		t.Error("comment deletion attempted in the auto-generate flow")
	}
	if f.service.updatedBody != f.generator.text {
		t.Errorf("updated body = %q, want generated text", f.service.updatedBody)
	}
}

func TestProcessOpenedPullRequest_MissingInstallationAborts(t *testing.T) {
	f := newFixture()
	ev := openedEvent()
	ev.Installation = nil

	if f.orchestrator.ProcessOpenedPullRequest(context.Background(), ev) {
		t.Fatal("ProcessOpenedPullRequest() = true, want false")
	}
	if len(f.issuer.calls) != 0 {
		t.Error("token requested for an event without an installation id")
	}
}

func TestProcessOpenedPullRequest_MissingBaseAborts(t *testing.T) {
	f := newFixture()
	ev := openedEvent()
	ev.PullRequest.Base = nil

	if f.orchestrator.ProcessOpenedPullRequest(context.Background(), ev) {
		t.Fatal("ProcessOpenedPullRequest() = true, want false")
	}
}

// TestFlowTargetConvergence runs both flows against events describing the
// same pull request and checks they hit the same target.
func TestFlowTargetConvergence(t *testing.T) {
	commentFixture := newFixture()
	if !commentFixture.orchestrator.ProcessCommentCommand(context.Background(), commentEvent()) {
		t.Fatal("comment flow failed")
	}

	openedFixture := newFixture()
	if !openedFixture.orchestrator.ProcessOpenedPullRequest(context.Background(), openedEvent()) {
		t.Fatal("opened flow failed")
	}

	if commentFixture.service.seenTarget != openedFixture.service.seenTarget {
		t.Errorf("flows diverge: comment %+v, opened %+v",
			commentFixture.service.seenTarget, openedFixture.service.seenTarget)
	}
}
