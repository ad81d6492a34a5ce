package core

import (
	"fmt"

	"github.com/google/go-github/v73/github"
)

// reviewableActions are the pull request actions that trigger a review.
var reviewableActions = map[string]bool{
	"opened":      true,
	"reopened":    true,
	"synchronize": true,
}

// EventFromPullRequest transforms a raw GitHub PullRequestEvent into the
// application's internal PullRequestRef. It acts as an anti-corruption layer,
// validating the webhook payload before it reaches the orchestrator and
// filtering out actions that do not warrant a review. The second return value
// reports whether the event is reviewable at all; non-reviewable actions are
// not an error.
func EventFromPullRequest(event *github.PullRequestEvent) (PullRequestRef, bool, error) {
	if !reviewableActions[event.GetAction()] {
		return PullRequestRef{}, false, nil
	}

	repo := event.GetRepo()
	if repo == nil || repo.GetFullName() == "" {
		return PullRequestRef{}, false, fmt.Errorf("repository information is missing from the event")
	}

	pr := event.GetPullRequest()
	if pr == nil {
		return PullRequestRef{}, false, fmt.Errorf("pull request information is missing from the event")
	}

	number := pr.GetNumber()
	if number <= 0 {
		return PullRequestRef{}, false, fmt.Errorf("invalid pull request number: %d", number)
	}

	headSHA := pr.GetHead().GetSHA()
	if headSHA == "" {
		return PullRequestRef{}, false, fmt.Errorf("pull request %d has no head SHA", number)
	}

	return PullRequestRef{
		RepoFullName: repo.GetFullName(),
		Number:       number,
		HeadSHA:      headSHA,
	}, true, nil
}
