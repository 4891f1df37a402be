package orgs

import "path/filepath"

// ResolvePath resolves a bare repo handle ("owner/repo" or "repo") against
// the configured orgs in order, returning the local clone path under root
// for the first org that accepts it. This is the collaborator spec.md
// §4.2 calls on when a RepoPath argument's value doesn't canonicalize as
// an existing filesystem path: try each configured org's owner/repo scope
// until one matches.
func ResolvePath(configuredOrgs []Org, handle string, root func(org Org) string) (string, bool) {
	for _, org := range configuredOrgs {
		owner, repo, ok := org.matchRepo(handle)
		if !ok {
			continue
		}
		base := root(org)
		if org.Worktree != nil {
			return filepath.Join(base, owner, repo, *org.Worktree), true
		}
		return filepath.Join(base, owner, repo), true
	}
	return "", false
}

// matchRepo is GetRepoGitURL's matching logic without the URL-building
// step, reused so ResolvePath can build a filesystem path instead.
func (o Org) matchRepo(name string) (owner, repo string, ok bool) {
	if o.Kind == HostAzureDevOps {
		url, ok := o.azureRepoGitURL(name)
		if !ok {
			return "", "", false
		}
		// url is "https://host/owner/project/_git/repo"; the org's own
		// Owner field already holds "owner/project".
		if o.Owner != nil {
			return *o.Owner, repoFromAzureURL(url), true
		}
		parts := splitNonEmpty(name)
		return parts[0] + "/" + parts[1], parts[2], true
	}
	return o.resolveOwnerRepo(name)
}

func repoFromAzureURL(url string) string {
	const sep = "/_git/"
	for i := len(url) - len(sep); i >= 0; i-- {
		if url[i:i+len(sep)] == sep {
			return url[i+len(sep):]
		}
	}
	return ""
}
