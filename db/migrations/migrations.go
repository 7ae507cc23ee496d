// Package migrations carries the schema migration files inside the
// binary so applying them does not depend on the working directory.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
