package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"taskdeck.app/assistant/internal/model"
	"taskdeck.app/assistant/internal/repository"
)

// Entity resolution translates the human names the model supplies into
// workspace rows. The system prompt forbids surfacing database IDs, so the
// model only ever sees and sends names; every mutation or detail lookup
// resolves through here first.
//
// Matching is case-insensitive substring, first match in snapshot order.
// Ambiguity is deliberately not disambiguated: with projects "Website" and
// "Website Redesign", the fragment "website" resolves to whichever is
// first. Candidates are logged so mis-targeting can at least be diagnosed.

// ResolveProject matches a name fragment against the snapshot's project
// names. Returns nil if the fragment is empty or nothing matches.
func ResolveProject(wc *WsContext, fragment string) *model.Project {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil
	}
	needle := strings.ToLower(fragment)

	var match *model.Project
	var candidates []string
	for i := range wc.Projects {
		if strings.Contains(strings.ToLower(wc.Projects[i].Name), needle) {
			if match == nil {
				match = &wc.Projects[i]
			}
			candidates = append(candidates, wc.Projects[i].Name)
		}
	}

	if len(candidates) > 1 {
		slog.Debug("ambiguous project fragment, first match wins",
			"fragment", fragment, "candidates", candidates)
	}
	return match
}

// ResolveMember matches a name fragment against member full names.
func ResolveMember(wc *WsContext, fragment string) *model.Profile {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil
	}
	needle := strings.ToLower(fragment)

	var match *model.Profile
	var candidates []string
	for i := range wc.Profiles {
		if strings.Contains(strings.ToLower(wc.Profiles[i].FullName), needle) {
			if match == nil {
				match = &wc.Profiles[i]
			}
			candidates = append(candidates, wc.Profiles[i].FullName)
		}
	}

	if len(candidates) > 1 {
		slog.Debug("ambiguous member fragment, first match wins",
			"fragment", fragment, "candidates", candidates)
	}
	return match
}

// ResolveTask finds a task by title fragment. Tasks are not preloaded into
// the snapshot, so this is a single case-insensitive substring query scoped
// to the workspace's project IDs, limited to one row. Returns nil if the
// fragment is empty, the workspace has no projects, or nothing matches.
func ResolveTask(ctx context.Context, tasks repository.TaskStore, wc *WsContext, fragment string) (*model.Task, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" || len(wc.ProjectIDs) == 0 {
		return nil, nil
	}

	found, err := tasks.SearchByTitle(ctx, wc.ProjectIDs, fragment, 1)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}
