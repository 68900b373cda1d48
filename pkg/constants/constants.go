// Package constants provides shared constants used throughout peter-hook.
package constants

// Config file names.
const (
	// ConfigFileName is the canonical per-directory configuration file name.
	ConfigFileName = ".peter-hook.toml"
	// DeprecatedConfigFileName is rejected everywhere except version/license.
	DeprecatedConfigFileName = "hooks.toml"
)

// DefaultTimeoutSeconds is applied to a HookDefinition with no explicit
// timeout_seconds.
const DefaultTimeoutSeconds = 300

// EmptyTreeHash is Git's well-known empty-tree object, substituted for an
// all-zero remote OID on a pre-push new-branch push.
const EmptyTreeHash = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// Bypass commands skip the deprecated-config-file hard failure.
const (
	CommandVersion = "version"
	CommandLicense = "license"
)

// Hook event names recognized by the orchestrator.
const (
	EventPreCommit       = "pre-commit"
	EventPrePush         = "pre-push"
	EventCommitMsg       = "commit-msg"
	EventPrepareCommit   = "prepare-commit-msg"
	EventPostCommit      = "post-commit"
	EventPostMerge       = "post-merge"
	EventPostCheckout    = "post-checkout"
	EventPreRebase       = "pre-rebase"
	EventPostRewrite     = "post-rewrite"
	EventPreReceive      = "pre-receive"
	EventPostReceive     = "post-receive"
	EventUpdate          = "update"
	EventPostUpdate      = "post-update"
	EventPreApplyPatch   = "pre-applypatch"
	EventPostApplyPatch  = "post-applypatch"
	EventApplyPatchMsg   = "applypatch-msg"
)

// filesCapableEvents is the allow-list of events that can furnish a
// changed-file list, ported from the original project's capability table.
// Message-oriented events are deliberately excluded.
var filesCapableEvents = map[string]bool{
	EventPreCommit:      true,
	EventPrePush:        true,
	EventPostCommit:     true,
	EventPostMerge:      true,
	EventPostCheckout:   true,
	EventPreRebase:      true,
	EventPostRewrite:    true,
	EventPreReceive:     true,
	EventPostReceive:    true,
	EventUpdate:         true,
	EventPostUpdate:     true,
	EventPreApplyPatch:  true,
	EventPostApplyPatch: true,
}

// CanProvideFiles reports whether the given event can furnish a changed-file
// list at all (independent of whether one was actually requested).
func CanProvideFiles(event string) bool {
	return filesCapableEvents[event]
}

// Execution types for HookDefinition.execution_type.
const (
	ExecutionStandard = "standard"
	ExecutionOther    = "other"
)

// Group execution strategies.
const (
	ExecutionSequential = "sequential"
	ExecutionParallel   = "parallel"
)
