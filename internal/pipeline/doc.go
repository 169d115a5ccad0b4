// Package pipeline runs a bundle build as an ordered list of named stages:
//
//	resolve_paths -> scan_document -> bundle_scripts -> inject_license ->
//	commit_outputs -> verify_output
//
// Every stage receives the same *BuildState. The runner times each stage,
// classifies its error (fatal, warning or canceled), records the outcome in
// the BuildReport and stops at the first fatal error. Outputs are written to
// temporary files next to their targets and only renamed into place by
// commit_outputs, so a failed build leaves the previous outputs untouched.
package pipeline
