// Package providers groups the workflow engine's collaborator
// implementations: document registry, credit-bureau client, default
// scorer, qualitative reasoner, and step-event notifiers. Each
// subpackage satisfies one of the interfaces the engine consumes, so a
// deployment can swap any collaborator for a remote service without
// touching the pipeline.
package providers
