// Package data manages the on-disk libpostal model files: resolving where
// they live, deciding whether they are present and intact, and acquiring
// them when they are not.
//
// Acquisition is component-based. Each component (base dictionaries, parser
// model, language classifier model) is downloaded as a tar.gz archive,
// large archives as concurrent ranged chunks, extracted into the data
// directory, and stamped with a version file. The version file is written
// last, so an interrupted install is re-acquired on the next run, and a
// matching version file makes re-acquisition a no-op.
//
// When the primary release host fails, the manager falls back to existing
// system installs, project-local data directories, and mirror hosts, in
// that order.
package data
