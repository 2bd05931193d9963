// Package config resolves the ambient inputs the fragment engine needs but
// never reads for itself: the XDG configuration directory, the project-local
// override root, and the ordered list of search roots (config.Root) handed
// to the slug resolver. The engine core treats all of this as already
// decided by the time it receives its search roots.
package config
