// SPDX-License-Identifier: MPL-2.0

package policy

// defaultDenylist enumerates program names that must never run host-initiated:
// package-manager install/run/test/exec variants across the tool families in
// common use, plus direct invocations of the runtime executables.
var defaultDenylist = []string{
	"npm",
	"npx",
	"yarn",
	"pnpm",
	"pnpx",
	"bun",
	"bunx",
	"corepack",
	"node",
	"nodejs",
	"tsx",
	"ts-node",
}

// defaultAllowlist enumerates operations the policy recognizes as host-safe:
// version control, file and editor operations, and the container engines
// themselves (which are the dispatch mechanism, not a managed runtime).
var defaultAllowlist = []string{
	"git",
	"gh",
	"ls",
	"cat",
	"grep",
	"rg",
	"sed",
	"awk",
	"echo",
	"printf",
	"pwd",
	"cd",
	"mkdir",
	"rmdir",
	"rm",
	"cp",
	"mv",
	"touch",
	"chmod",
	"ln",
	"find",
	"which",
	"head",
	"tail",
	"less",
	"diff",
	"wc",
	"vim",
	"nvim",
	"nano",
	"code",
	"make",
	"curl",
	"wget",
	"tar",
	"docker",
	"podman",
	"docker-compose",
}

// wrapperPrograms are the dispatch mechanisms themselves. A line already
// prefixed with one of these must not be recursively wrapped.
var wrapperPrograms = []string{
	"docker",
	"podman",
	"corral",
}
