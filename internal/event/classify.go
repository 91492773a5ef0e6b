package event

import (
	"fmt"
	"strings"
)

// Trigger tokens recognized in comment and pull request bodies
const (
	// CommandTrigger invokes generation from a PR comment
	CommandTrigger = "/describe"
	// BodyTrigger opts a non-empty PR body into generation on open
	BodyTrigger = "/auto-describe"
)

// Intent is the classification result for an inbound event
type Intent int

const (
	// IntentIgnored means the event is not actionable
	IntentIgnored Intent = iota
	// IntentCommentCommand means a trigger command was posted on a PR comment
	IntentCommentCommand
	// IntentAutoGenerate means a PR was opened without a usable description
	IntentAutoGenerate
)

// String returns the intent name for logging
func (i Intent) String() string {
	switch i {
	case IntentCommentCommand:
		return "comment_command"
	case IntentAutoGenerate:
		return "auto_generate"
	default:
		return "ignored"
	}
}

// Classify determines the intent of an event. It is a pure function of the
// event structure and applies the rules in precedence order: a created
// comment on a PR-backed issue containing the command trigger, then a PR
// opened with an empty body or the body trigger, then ignored.
func Classify(ev *Event) Intent {
	if ev.Action == "created" &&
		ev.Comment != nil &&
		ev.Issue != nil &&
		ev.Issue.PullRequest != nil &&
		strings.Contains(ev.Comment.Body, CommandTrigger) {
		return IntentCommentCommand
	}

	if ev.Action == "opened" && ev.PullRequest != nil {
		body := strings.TrimSpace(ev.PullRequest.Body)
		if body == "" || strings.Contains(body, BodyTrigger) {
			return IntentAutoGenerate
		}
	}

	return IntentIgnored
}

// Decision is the outcome of an authorization check
type Decision struct {
	Allowed bool
	Reason  string
}

// AuthorizeCommand decides whether the comment author may trigger
// generation. Only numeric IDs are compared: the commenter must be the pull
// request author or the repository owner. Logins are carried in the reason
// for diagnostics only.
func AuthorizeCommand(ev *Event) Decision {
	if ev.Comment == nil || ev.Comment.User == nil {
		return Decision{Reason: "comment author missing from payload"}
	}
	if ev.Issue == nil || ev.Issue.User == nil {
		return Decision{Reason: "pull request author missing from payload"}
	}

	commenter := ev.Comment.User
	if commenter.ID == ev.Issue.User.ID {
		return Decision{Allowed: true, Reason: "commenter is the pull request author"}
	}
	if ev.Repository != nil && ev.Repository.Owner != nil && commenter.ID == ev.Repository.Owner.ID {
		return Decision{Allowed: true, Reason: "commenter is the repository owner"}
	}

	return Decision{
		Reason: fmt.Sprintf("commenter %d (%s) is neither the pull request author nor the repository owner",
			commenter.ID, commenter.Login),
	}
}
