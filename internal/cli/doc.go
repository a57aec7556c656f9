// Package cli implements the tienda command line: run, prepare and migrate.
package cli
