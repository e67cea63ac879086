// SPDX-License-Identifier: MPL-2.0

package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dockerfile renders the Dockerfile content for the compiled profile.
// The output is deterministic for a given profile so image rebuilds are
// cache-friendly.
func (p CompiledProfile) Dockerfile() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "FROM %s\n\n", p.BaseImage)
	sb.WriteString("# Corral auto-provisioned dev container\n\n")

	packages := strings.Join(p.BootstrapPackages, " ")
	if p.BaseImageFamily == FamilyAlpine {
		fmt.Fprintf(&sb, "RUN apk add --no-cache %s\n\n", packages)
	} else {
		fmt.Fprintf(&sb, "RUN apt-get update && apt-get install -y --no-install-recommends %s \\\n", packages)
		sb.WriteString("    && rm -rf /var/lib/apt/lists/*\n\n")
	}

	sb.WriteString("WORKDIR /workspace\n\n")
	fmt.Fprintf(&sb, "EXPOSE %s\n\n", p.Port)
	fmt.Fprintf(&sb, "CMD [\"sh\", \"-lc\", %q]\n", p.DevCommand)

	return sb.String()
}

// WriteBuildContext writes the profile's Dockerfile into dir and returns the
// Dockerfile name relative to dir. The directory must already exist; callers
// typically pass a fresh temp directory and remove it after the build.
func (p CompiledProfile) WriteBuildContext(dir string) (string, error) {
	const name = "Dockerfile"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(p.Dockerfile()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write build context: %w", err)
	}
	return name, nil
}
