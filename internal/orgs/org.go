// Package orgs implements OMNI_ORG resolution: parsing configured org
// handles (owner/host scopes a bare repo name resolves against) and
// building git URLs or local paths from a resolved handle, per
// SPEC_FULL.md §12's "org-loader collaborator" that spec.md §4.2 treats
// as an external dependency of RepoPath argument resolution.
package orgs

import (
	"fmt"
	"strings"
)

// HostKind selects the path-segmentation rules a hosting provider uses to
// split "owner" from "repo", grounded on the parsing behavior of the
// original implementation's Org type.
type HostKind int

const (
	HostGeneric HostKind = iota
	HostAzureDevOps
)

func classifyHost(host string) HostKind {
	h := strings.ToLower(host)
	if h == "dev.azure.com" || h == "ssh.dev.azure.com" {
		return HostAzureDevOps
	}
	return HostGeneric
}

// Org is one configured org scope: a host plus an optional fixed
// owner/repo prefix that bare repo names resolve under.
type Org struct {
	Host     string
	Kind     HostKind
	Owner    *string
	Repo     *string
	Trusted  bool
	Worktree *string
}

// ParseHandle parses a handle string in any of the forms the original
// config accepts: "https://host[/path...]", "git@host:path" (SSH scp
// form), or "host:path" (colon shorthand). path segments are then
// interpreted per the host's segmentation rule.
func ParseHandle(handle string) (Org, error) {
	host, segments, err := splitHandle(handle)
	if err != nil {
		return Org{}, err
	}
	kind := classifyHost(host)
	org := Org{Host: host, Kind: kind, Trusted: true}

	if kind == HostAzureDevOps {
		segments = stripAzureNoise(segments)
	}

	switch {
	case len(segments) == 0:
		// host only: no owner, no repo.
	case len(segments) == 1:
		owner := segments[0]
		org.Owner = &owner
	case kind == HostAzureDevOps:
		owner := segments[0] + "/" + segments[1]
		org.Owner = &owner
		if len(segments) >= 3 {
			repo := segments[2]
			org.Repo = &repo
		}
	default:
		owner := strings.Join(segments[:len(segments)-1], "/")
		repo := strings.TrimSuffix(segments[len(segments)-1], ".git")
		org.Owner = &owner
		org.Repo = &repo
	}
	return org, nil
}

// splitHandle extracts the host and the "/"-separated, non-empty path
// segments from a handle in any of the three accepted forms.
func splitHandle(handle string) (host string, segments []string, err error) {
	switch {
	case strings.HasPrefix(handle, "https://"), strings.HasPrefix(handle, "http://"):
		rest := strings.TrimPrefix(strings.TrimPrefix(handle, "https://"), "http://")
		parts := strings.SplitN(rest, "/", 2)
		host = parts[0]
		if len(parts) == 2 {
			segments = splitNonEmpty(parts[1])
		}
	case strings.HasPrefix(handle, "git@"):
		rest := strings.TrimPrefix(handle, "git@")
		idx := strings.IndexByte(rest, ':')
		if idx < 0 {
			return "", nil, fmt.Errorf("invalid ssh org handle %q: missing ':'", handle)
		}
		host = rest[:idx]
		segments = splitNonEmpty(rest[idx+1:])
	default:
		idx := strings.IndexByte(handle, ':')
		if idx < 0 {
			return "", nil, fmt.Errorf("invalid org handle %q: expected host or host:path", handle)
		}
		host = handle[:idx]
		segments = splitNonEmpty(handle[idx+1:])
	}
	if host == "" {
		return "", nil, fmt.Errorf("invalid org handle %q: empty host", handle)
	}
	return host, segments, nil
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, p := range strings.Split(s, "/") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// stripAzureNoise drops the "v3" API-version segment SSH handles carry and
// any "_git" separator segment HTTPS handles carry, so the remaining
// segments are uniformly [org, project, repo?] regardless of input form.
func stripAzureNoise(segments []string) []string {
	var out []string
	for _, s := range segments {
		if s == "v3" || s == "_git" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// GetRepoGitURL builds the git URL for repo name (bare "repo" or
// "owner/repo") against this org, or reports false if name does not match
// the org's fixed owner/repo scope.
func (o Org) GetRepoGitURL(name string) (string, bool) {
	if o.Kind == HostAzureDevOps {
		return o.azureRepoGitURL(name)
	}

	owner, repo, ok := o.resolveOwnerRepo(name)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("https://%s/%s/%s", o.Host, owner, repo), true
}

func (o Org) resolveOwnerRepo(name string) (owner, repo string, ok bool) {
	nameOwner, nameRepo, hasSlash := strings.Cut(name, "/")

	switch {
	case o.Owner != nil && o.Repo != nil:
		repo = nameRepo
		if !hasSlash {
			repo = name
		}
		if repo != *o.Repo {
			return "", "", false
		}
		if hasSlash && nameOwner != *o.Owner {
			return "", "", false
		}
		return *o.Owner, *o.Repo, true

	case o.Owner != nil:
		if hasSlash {
			if nameOwner != *o.Owner {
				return "", "", false
			}
			return *o.Owner, nameRepo, true
		}
		return *o.Owner, name, true

	default:
		if !hasSlash {
			return "", "", false
		}
		return nameOwner, nameRepo, true
	}
}

func (o Org) azureRepoGitURL(name string) (string, bool) {
	parts := splitNonEmpty(name)

	if o.Owner == nil {
		if len(parts) != 3 {
			return "", false
		}
		return fmt.Sprintf("https://%s/%s/%s/_git/%s", o.Host, parts[0], parts[1], parts[2]), true
	}

	var repo string
	switch len(parts) {
	case 1:
		repo = parts[0]
	case 3:
		if parts[0]+"/"+parts[1] != *o.Owner {
			return "", false
		}
		repo = parts[2]
	default:
		return "", false
	}
	if o.Repo != nil && repo != *o.Repo {
		return "", false
	}
	return fmt.Sprintf("https://%s/%s/_git/%s", o.Host, *o.Owner, repo), true
}
