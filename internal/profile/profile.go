// SPDX-License-Identifier: MPL-2.0

package profile

import (
	"errors"
	"fmt"

	"corral-cli/internal/container"
)

// ErrInvalidConfiguration indicates a declared profile that cannot be compiled.
var ErrInvalidConfiguration = errors.New("invalid configuration")

const (
	// FamilyUnset means no base image family was declared.
	FamilyUnset BaseImageFamily = ""
	// FamilyAlpine is the musl-based minimal image family.
	FamilyAlpine BaseImageFamily = "alpine"
	// FamilySlim is the trimmed Debian-based image family.
	FamilySlim BaseImageFamily = "slim"
	// FamilyFull is the complete Debian-based image family.
	FamilyFull BaseImageFamily = "full"
)

type (
	// BaseImageFamily selects which runtime base image the dev container uses.
	BaseImageFamily string

	// ProjectProfile is the declared, user-supplied description of a project.
	// It is constructed once per project from the corralfile and treated as
	// immutable for the duration of a session.
	ProjectProfile struct {
		// ContainerName uniquely identifies the project's container.
		ContainerName container.ContainerName
		// BaseImageFamily is the declared image family; may be unset.
		BaseImageFamily BaseImageFamily
		// Port is the single dev-server port exposed from the container.
		Port int
		// HasNativeModules is set when the project compiles native addons.
		HasNativeModules bool
		// DevCommand is the long-lived process the container runs.
		DevCommand string
		// EnvFile is an opaque pass-through env file path.
		EnvFile string
		// AdditionalVolumes are opaque pass-through volume mounts.
		AdditionalVolumes []string
		// BuildArgs are opaque pass-through image build arguments.
		BuildArgs map[string]string
	}

	// CompiledProfile is the resolved, invariant-enforced configuration
	// derived from a declared ProjectProfile.
	CompiledProfile struct {
		ContainerName container.ContainerName
		// BaseImageFamily is the resolved family after invariant enforcement.
		BaseImageFamily BaseImageFamily
		// BaseImage is the concrete image reference for the resolved family.
		BaseImage container.ImageTag
		// BootstrapPackages is the deterministic package bootstrap for the
		// resolved family (apk packages for alpine, apt for slim/full).
		BootstrapPackages []string
		Port              container.NetworkPort
		DevCommand        string
		EnvFile           string
		AdditionalVolumes []string
		BuildArgs         map[string]string
		// WasOverridden is set when the declared family was silently
		// corrected, so callers can detect the correction.
		WasOverridden bool
	}

	// InvalidConfigurationError reports a profile field that failed validation.
	InvalidConfigurationError struct {
		Field  string
		Value  any
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s = %v: %s", e.Field, e.Value, e.Reason)
}

// Unwrap returns ErrInvalidConfiguration for errors.Is() compatibility.
func (e *InvalidConfigurationError) Unwrap() error { return ErrInvalidConfiguration }

// Validate returns an error if the family is not a known value.
func (f BaseImageFamily) Validate() error {
	switch f {
	case FamilyUnset, FamilyAlpine, FamilySlim, FamilyFull:
		return nil
	default:
		return &InvalidConfigurationError{
			Field:  "base_image",
			Value:  string(f),
			Reason: "must be one of alpine, slim, full",
		}
	}
}

// baseImages maps each resolved family to its concrete image reference.
var baseImages = map[BaseImageFamily]container.ImageTag{
	FamilyAlpine: "node:22-alpine",
	FamilySlim:   "node:22-slim",
	FamilyFull:   "node:22-bookworm",
}

// Package bootstrap lists per family. These are data, not behavior: the same
// family always yields the same list, so image builds are reproducible.
var (
	alpineBootstrap = []string{"git", "python3", "make", "g++"}
	debianBootstrap = []string{"git", "python3", "make", "g++", "ca-certificates"}
)

// bootstrapFor returns the package bootstrap for a resolved family.
func bootstrapFor(family BaseImageFamily) []string {
	if family == FamilyAlpine {
		return append([]string(nil), alpineBootstrap...)
	}
	return append([]string(nil), debianBootstrap...)
}

// Compile resolves a declared ProjectProfile into a CompiledProfile.
//
// Invariants enforced:
//   - HasNativeModules forces the slim family regardless of the declared
//     value; the correction is recorded in WasOverridden.
//   - An unset family defaults to alpine when no native modules are declared.
//   - Port must be within [1, 65535].
//
// Compile is pure: it never mutates declared and performs no I/O.
func Compile(declared ProjectProfile) (CompiledProfile, error) {
	if err := declared.ContainerName.Validate(); err != nil {
		return CompiledProfile{}, &InvalidConfigurationError{
			Field:  "container_name",
			Value:  declared.ContainerName.String(),
			Reason: "must not be empty",
		}
	}

	port, err := container.ParseNetworkPort(declared.Port)
	if err != nil {
		return CompiledProfile{}, &InvalidConfigurationError{
			Field:  "port",
			Value:  declared.Port,
			Reason: "must be within [1, 65535]",
		}
	}

	if declared.DevCommand == "" {
		return CompiledProfile{}, &InvalidConfigurationError{
			Field:  "dev_command",
			Value:  declared.DevCommand,
			Reason: "must not be empty",
		}
	}

	if err := declared.BaseImageFamily.Validate(); err != nil {
		return CompiledProfile{}, err
	}

	family := declared.BaseImageFamily
	overridden := false

	if declared.HasNativeModules {
		// Alpine's musl toolchain breaks node-gyp builds, so native modules
		// always get a glibc base.
		if family != FamilySlim && family != FamilyUnset {
			overridden = true
		}
		family = FamilySlim
	} else if family == FamilyUnset {
		family = FamilyAlpine
	}

	return CompiledProfile{
		ContainerName:     declared.ContainerName,
		BaseImageFamily:   family,
		BaseImage:         baseImages[family],
		BootstrapPackages: bootstrapFor(family),
		Port:              port,
		DevCommand:        declared.DevCommand,
		EnvFile:           declared.EnvFile,
		AdditionalVolumes: append([]string(nil), declared.AdditionalVolumes...),
		BuildArgs:         cloneMap(declared.BuildArgs),
		WasOverridden:     overridden,
	}, nil
}

// ImageTag returns the tag of the image built for this profile.
func (p CompiledProfile) ImageTag() container.ImageTag {
	return container.ImageTag(fmt.Sprintf("corral-%s:latest", p.ContainerName))
}

// PortMapping returns the single dev-server port mapping.
func (p CompiledProfile) PortMapping() container.PortMapping {
	return container.PortMapping{HostPort: p.Port, ContainerPort: p.Port}
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
