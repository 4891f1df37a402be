package dynenv

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/wrkdir/omni/internal/provision"
)

// BuildPlan computes the ordered PlanOp sequence for one up environment,
// per spec.md §4.4 "Planning": (1) tool-version-derived operations, (2)
// declared env_vars[] operations, (3) flag-variable dedup, (4) feature
// list, (5) shims-dir PATH hygiene. prevEnv is the environment as it
// stood before this plan (the currently-applied state), consulted by
// per-tool contributions that must remove a prior version's PATH
// entries (§4.4.1's ruby/go rows) rather than just adding the new ones.
func BuildPlan(env provision.UpEnvironment, prevEnv map[string]string, gopath, home string, keepShims bool, shimsDir string) []PlanOp {
	var plan []PlanOp

	for _, rec := range env.Versions {
		plan = append(plan, toolContribution(rec, prevEnv, gopath, home)...)
	}

	for _, v := range env.EnvVars {
		plan = append(plan, PlanOp{Name: v.Name, Op: OpKind(v.Operation), Value: v.Value})
	}

	plan = dedupFlagVars(plan)

	var features []string
	features = append(features, "env")
	for _, rec := range env.Versions {
		features = append(features, fmt.Sprintf("%s:%s", rec.Tool, rec.Version))
	}
	plan = append(plan, PlanOp{Name: "OMNI_LOADED_FEATURES", Op: OpSet, Value: strings.Join(features, " ")})

	if !keepShims {
		plan = append(plan, PlanOp{Name: "PATH", Op: OpRemove, Value: shimsDir})
	}

	return plan
}

// toolContribution implements the §4.4.1 per-tool contribution table,
// abridged to the operations representable as PlanOp.
func toolContribution(rec provision.ToolVersionRecord, prevEnv map[string]string, gopath, home string) []PlanOp {
	prefix := rec.Dir
	var ops []PlanOp

	switch rec.NormalizedName {
	case "ruby":
		gemRoot := filepath.Join(prefix, "lib", "ruby", "gems", rubyGemVersionDir(rec.Version))
		ops = append(ops, removeStaleBinDirs(prevEnv, "RUBY_ROOT", "GEM_ROOT", "GEM_HOME")...)
		ops = append(ops,
			PlanOp{Name: "GEM_HOME", Op: OpSet, Value: gemRoot},
			PlanOp{Name: "GEM_ROOT", Op: OpSet, Value: gemRoot},
			PlanOp{Name: "RUBY_ENGINE", Op: OpSet, Value: "ruby"},
			PlanOp{Name: "RUBY_ROOT", Op: OpSet, Value: prefix},
			PlanOp{Name: "RUBY_VERSION", Op: OpSet, Value: rec.Version},
			PlanOp{Name: "PATH", Op: OpPrepend, Value: filepath.Join(gemRoot, "bin")},
			PlanOp{Name: "PATH", Op: OpPrepend, Value: filepath.Join(prefix, "bin")},
		)
		if rec.DataPath != "" {
			ops = append(ops,
				PlanOp{Name: "GEM_HOME", Op: OpSet, Value: rec.DataPath},
				PlanOp{Name: "GEM_PATH", Op: OpPrepend, Value: rec.DataPath},
				PlanOp{Name: "PATH", Op: OpPrepend, Value: filepath.Join(rec.DataPath, "bin")},
			)
		}
	case "rust":
		ops = append(ops,
			PlanOp{Name: "RUSTUP_HOME", Op: OpSet, Value: filepath.Join(prefix, "..", "rustup")},
			PlanOp{Name: "CARGO_HOME", Op: OpSet, Value: filepath.Join(prefix, "..", "cargo")},
			PlanOp{Name: "RUSTUP_TOOLCHAIN", Op: OpSet, Value: rec.Version},
			PlanOp{Name: "PATH", Op: OpPrepend, Value: prefix},
		)
		if rec.DataPath != "" {
			ops = append(ops,
				PlanOp{Name: "CARGO_INSTALL_ROOT", Op: OpSet, Value: rec.DataPath},
				PlanOp{Name: "PATH", Op: OpPrepend, Value: filepath.Join(rec.DataPath, "bin")},
			)
		}
	case "go":
		modCache := filepath.Join(gopath, "pkg", "mod")
		if gopath == "" {
			modCache = filepath.Join(home, "go", "pkg", "mod")
		}
		ops = append(ops, removeStaleBinDirs(prevEnv, "GOROOT")...)
		ops = append(ops,
			PlanOp{Name: "GOMODCACHE", Op: OpSet, Value: modCache},
			PlanOp{Name: "GOROOT", Op: OpSet, Value: prefix},
			PlanOp{Name: "GOVERSION", Op: OpSet, Value: rec.Version},
			PlanOp{Name: "GOBIN", Op: OpSet, Value: filepath.Join(prefix, "bin")},
			PlanOp{Name: "PATH", Op: OpPrepend, Value: filepath.Join(prefix, "bin")},
		)
		if rec.DataPath != "" {
			ops = append(ops,
				PlanOp{Name: "GOPATH", Op: OpPrepend, Value: rec.DataPath},
				PlanOp{Name: "GOBIN", Op: OpSet, Value: filepath.Join(rec.DataPath, "bin")},
				PlanOp{Name: "PATH", Op: OpPrepend, Value: filepath.Join(rec.DataPath, "bin")},
			)
		}
	case "python":
		// A data_path stands in for prefix: PATH and the poetry dirs follow
		// the per-project virtualenv, not the mise-managed install.
		effectivePrefix := prefix
		if rec.DataPath != "" {
			effectivePrefix = rec.DataPath
		}
		ops = append(ops,
			PlanOp{Name: "PYTHONHOME", Op: OpRemove},
			PlanOp{Name: "PATH", Op: OpPrepend, Value: filepath.Join(effectivePrefix, rec.BinPath)},
			PlanOp{Name: "POETRY_CONFIG_DIR", Op: OpSet, Value: filepath.Join(effectivePrefix, "poetry")},
			PlanOp{Name: "POETRY_CACHE_DIR", Op: OpSet, Value: filepath.Join(effectivePrefix, "poetry")},
			PlanOp{Name: "POETRY_DATA_DIR", Op: OpSet, Value: filepath.Join(effectivePrefix, "poetry")},
		)
		if rec.DataPath != "" {
			ops = append(ops,
				PlanOp{Name: "VIRTUAL_ENV", Op: OpSet, Value: rec.DataPath},
				PlanOp{Name: "UV_PROJECT_ENVIRONMENT", Op: OpSet, Value: rec.DataPath},
			)
		}
	case "node":
		ops = append(ops,
			PlanOp{Name: "NODE_VERSION", Op: OpSet, Value: rec.Version},
			PlanOp{Name: "PATH", Op: OpPrepend, Value: filepath.Join(prefix, rec.BinPath)},
		)
		if rec.DataPath != "" {
			ops = append(ops,
				PlanOp{Name: "npm_config_prefix", Op: OpSet, Value: rec.DataPath},
				PlanOp{Name: "PATH", Op: OpPrepend, Value: filepath.Join(rec.DataPath, "bin")},
			)
		}
	case "helm":
		ops = append(ops, PlanOp{Name: "PATH", Op: OpPrepend, Value: filepath.Join(prefix, rec.BinPath)})
		if rec.DataPath != "" {
			ops = append(ops,
				PlanOp{Name: "HELM_CONFIG_HOME", Op: OpSet, Value: filepath.Join(rec.DataPath, "config")},
				PlanOp{Name: "HELM_CACHE_HOME", Op: OpSet, Value: filepath.Join(rec.DataPath, "cache")},
				PlanOp{Name: "HELM_DATA_HOME", Op: OpSet, Value: filepath.Join(rec.DataPath, "data")},
			)
		}
	default:
		ops = append(ops, PlanOp{Name: "PATH", Op: OpPrepend, Value: backendInstallDir(rec)})
	}
	return ops
}

func backendInstallDir(rec provision.ToolVersionRecord) string {
	if rec.BinPath != "" {
		return rec.BinPath
	}
	return rec.Dir
}

// rubyGemVersionDir returns the "<MAJOR>.<MINOR>.0" gem directory name ruby
// uses under lib/ruby/gems for a version string like "3.2.1".
func rubyGemVersionDir(version string) string {
	parts := strings.SplitN(version, ".", 3)
	major, minor := "0", "0"
	if len(parts) > 0 {
		major = parts[0]
	}
	if len(parts) > 1 {
		minor = parts[1]
	}
	return major + "." + minor + ".0"
}

// removeStaleBinDirs emits a PATH removal op for each distinct non-empty
// value prevEnv holds under keys, so switching a tool's version drops the
// old install's bin dir instead of accumulating it alongside the new one.
func removeStaleBinDirs(prevEnv map[string]string, keys ...string) []PlanOp {
	seen := map[string]bool{}
	var ops []PlanOp
	for _, k := range keys {
		v := prevEnv[k]
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		ops = append(ops, PlanOp{Name: "PATH", Op: OpRemove, Value: filepath.Join(v, "bin")})
	}
	return ops
}

// dedupFlagVars implements spec.md §4.4 step 3's flag-variable dedup:
// split on " -" and keep first occurrences. This preserves the source's
// known-buggy behavior on values that legitimately contain " -"
// (documented as a limitation, not fixed).
func dedupFlagVars(plan []PlanOp) []PlanOp {
	flagVars := map[string]bool{"CFLAGS": true, "CPPFLAGS": true, "LDFLAGS": true}
	for i, op := range plan {
		if !flagVars[op.Name] || op.Op != OpSet {
			continue
		}
		parts := strings.Split(op.Value, " -")
		seen := map[string]bool{}
		var out []string
		for j, p := range parts {
			key := p
			if j > 0 {
				key = "-" + p
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, key)
		}
		plan[i].Value = strings.Join(out, " ")
	}
	return plan
}
