// Package textutil cleans user-supplied text before it is stored or used as
// a path segment.
package textutil
