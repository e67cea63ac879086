// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	DenylistedCommandId Id = iota + 1
	CorralfileNotFoundId
	CorralfileParseErrorId
	InvalidProfileId
	ContainerEngineNotFoundId
	RecoveryExhaustedId
	DispatchFailedId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // documentation links for this issue type
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	denylistedCommandIssue = &Issue{
		id: DenylistedCommandId,
		mdMsg: `
# This command must run inside the project container!

The program you tried to run is on the host denylist: package-manager and
runtime commands modify dependency trees and must execute in the project's
designated container, never on the host.

## Things you can try:
- Let corral route it for you:
~~~
$ corral run -- npm install
~~~

- Check how a command would be classified without running it:
~~~
$ corral check npm install
~~~`,
	}

	corralfileNotFoundIssue = &Issue{
		id: CorralfileNotFoundId,
		mdMsg: `
# No corralfile found!

We searched for a corralfile but couldn't find one in the current directory.

## Things you can try:
- Create a starter corralfile here:
~~~
$ corral init
~~~

- Or move to your project directory first:
~~~
$ cd /path/to/your/project
$ corral status
~~~

## Example corralfile structure:
~~~cue
container_name: "myapp-dev"
base_image:     "slim"
port:           3000
dev_command:    "npm run dev"
~~~`,
	}

	corralfileParseErrorIssue = &Issue{
		id: CorralfileParseErrorId,
		mdMsg: `
# Failed to parse corralfile!

Your corralfile contains syntax errors or invalid configuration.

## Common issues:
- Invalid CUE syntax (missing quotes, braces, etc.)
- Unknown field names
- Invalid values for known fields (e.g. a base_image outside alpine/slim/full)
- Missing required fields (container_name, port, dev_command)

## Things you can try:
- Check the error message above for the specific line/column
- Run with verbose mode for more details:
~~~
$ corral --verbose status
~~~`,
	}

	invalidProfileIssue = &Issue{
		id: InvalidProfileId,
		mdMsg: `
# Invalid project profile!

The declared project profile failed validation, so no container configuration
could be compiled from it.

## Common issues:
- Port outside the valid range (1-65535)
- Empty container name or dev command

## Things you can try:
- Fix the reported field in your corralfile and retry
- Show the resolved profile to see what corral compiled:
~~~
$ corral status
~~~`,
	}

	containerEngineNotFoundIssue = &Issue{
		id: ContainerEngineNotFoundId,
		mdMsg: `
# No container engine available!

Neither Docker nor Podman could be found on this system, so container-required
commands cannot be dispatched.

## Things you can try:
- Install Docker or Podman
- If installed, make sure the daemon/socket is running:
~~~
$ docker version
~~~

- Set your preferred engine in the corral config:
~~~toml
container_engine = "podman"
~~~`,
	}

	recoveryExhaustedIssue = &Issue{
		id: RecoveryExhaustedId,
		mdMsg: `
# Container could not be brought up!

The liveness supervisor tried to start the project container and then to
rebuild it, but it still isn't running. No further attempts will be made.

## Things you can try:
- Inspect the container logs:
~~~
$ docker logs <container-name>
~~~

- Check the dev command in your corralfile exits cleanly
- Rebuild manually to see full build output:
~~~
$ corral up --verbose
~~~`,
	}

	dispatchFailedIssue = &Issue{
		id: DispatchFailedId,
		mdMsg: `
# Command dispatch failed!

The container was running, but executing the command inside it failed.

## Things you can try:
- Run the command manually to see its output:
~~~
$ docker exec <container-name> sh -lc '<command>'
~~~

- Verify the container image includes the tools your command needs`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load corral configuration!

The global config file could not be read or contains invalid values.

## Things you can try:
- Show the configuration corral resolved:
~~~
$ corral config show
~~~

- Check the TOML syntax of your config file
- Remove the config file to fall back to defaults`,
	}

	issues = map[Id]*Issue{
		DenylistedCommandId:       denylistedCommandIssue,
		CorralfileNotFoundId:      corralfileNotFoundIssue,
		CorralfileParseErrorId:    corralfileParseErrorIssue,
		InvalidProfileId:          invalidProfileIssue,
		ContainerEngineNotFoundId: containerEngineNotFoundIssue,
		RecoveryExhaustedId:       recoveryExhaustedIssue,
		DispatchFailedId:          dispatchFailedIssue,
		ConfigLoadFailedId:        configLoadFailedIssue,
	}
)

// Values returns all cataloged issues ordered by id.
func Values() []*Issue {
	ids := maps.Keys(issues)
	slices.Sort(ids)
	result := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		result = append(result, issues[id])
	}
	return result
}

// Get returns the issue registered for id, or nil if none exists.
func Get(id Id) *Issue {
	return issues[id]
}
