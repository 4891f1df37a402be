// Package settings resolves the ambient, flat, process-level knobs named in
// spec.md §5 ("Timeouts") and the defaults implied elsewhere, using viper the
// way the teacher's internal/config.Initialize binds BD_-prefixed env vars:
// env var > default, with SetDefault calls spelling out the built-in values.
//
// This is deliberately NOT where C1's scoped config-merge tree lives — that
// tree has per-node provenance and key-suffix reinterpretation semantics no
// flat key/value store can express (see internal/config). Settings is the
// flat ambient layer sitting beside it, the same way the teacher keeps a
// viper singleton for CLI-wide flags distinct from the domain's own issue
// storage.
package settings

import (
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	once sync.Once
	v    *viper.Viper
)

func get() *viper.Viper {
	once.Do(func() {
		v = viper.New()
		v.SetEnvPrefix("OMNI")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		v.AutomaticEnv()

		v.SetDefault("attach_lock_timeout", "60s")
		v.SetDefault("update_expire", "24h")
		v.SetDefault("plugin_update_expire", "168h")
		v.SetDefault("plugin_versions_expire", "1h")
		v.SetDefault("ls_remote_timeout", "30s")
		v.SetDefault("github_release_list_expire", "1h")
		v.SetDefault("follow_poll_interval", "100ms")
	})
	return v
}

// AttachLockTimeout is the §4.5 follower preemption timeout.
func AttachLockTimeout() time.Duration { return get().GetDuration("attach_lock_timeout") }

// UpdateExpire is the TTL for the tool-runtime's own version-list cache.
func UpdateExpire() time.Duration { return get().GetDuration("update_expire") }

// PluginUpdateExpire is the TTL for a plugin's own update check.
func PluginUpdateExpire() time.Duration { return get().GetDuration("plugin_update_expire") }

// PluginVersionsExpire is the TTL for a plugin's remote version list.
func PluginVersionsExpire() time.Duration { return get().GetDuration("plugin_versions_expire") }

// LsRemoteTimeout bounds a single remote version-list fetch.
func LsRemoteTimeout() time.Duration { return get().GetDuration("ls_remote_timeout") }

// GitHubReleaseListExpire is the TTL for a cached GitHub release page.
func GitHubReleaseListExpire() time.Duration {
	return get().GetDuration("github_release_list_expire")
}

// FollowPollInterval is the sleep between tail-follower poll attempts (§4.5,
// §9 "tail-and-follow reader ... reads incrementally with a short sleep
// loop").
func FollowPollInterval() time.Duration { return get().GetDuration("follow_poll_interval") }

// Override sets a setting programmatically (used by tests).
func Override(key string, value any) { get().Set(key, value) }
