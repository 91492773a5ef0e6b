// Package event defines the typed webhook payload model and the rules for
// classifying and authorizing inbound GitHub events.
package event

import (
	"encoding/json"
	"fmt"
)

// User identifies a GitHub actor. The numeric ID is the only field used for
// authorization decisions; the login is diagnostic.
type User struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// Comment is an issue comment attached to the event
type Comment struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
	User *User  `json:"user"`
}

// PullRequestLink marks an issue as backing a pull request
type PullRequestLink struct {
	URL string `json:"url"`
}

// Issue is the issue a comment was created on. For PR comments the issue
// author is the pull request author.
type Issue struct {
	Number      int              `json:"number"`
	User        *User            `json:"user"`
	PullRequest *PullRequestLink `json:"pull_request"`
}

// Repository is the repository the event originated from
type Repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Owner    *User  `json:"owner"`
}

// Base is the base branch side of a pull request
type Base struct {
	Repo *Repository `json:"repo"`
}

// PullRequest carries the pull request fields used by the auto-generate flow
type PullRequest struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	User   *User  `json:"user"`
	Base   *Base  `json:"base"`
}

// Installation identifies the App installation the event was delivered under
type Installation struct {
	ID int64 `json:"id"`
}

// Event is the validated, structured form of a webhook delivery. Optional
// sub-objects are pointers so missing payload sections stay detectable.
type Event struct {
	Action       string        `json:"action"`
	Comment      *Comment      `json:"comment"`
	Issue        *Issue        `json:"issue"`
	PullRequest  *PullRequest  `json:"pull_request"`
	Repository   *Repository   `json:"repository"`
	Installation *Installation `json:"installation"`
}

// Parse decodes a raw webhook payload into an Event
func Parse(payload []byte) (*Event, error) {
	ev := &Event{}
	if err := json.Unmarshal(payload, ev); err != nil {
		return nil, fmt.Errorf("malformed webhook payload: %w", err)
	}
	return ev, nil
}

// InstallationID returns the installation id the event was delivered under,
// or false when the event carries none.
func (e *Event) InstallationID() (int64, bool) {
	if e.Installation == nil || e.Installation.ID == 0 {
		return 0, false
	}
	return e.Installation.ID, true
}
