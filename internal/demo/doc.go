// Package demo drives the repositories through the classroom exercise:
// seed every table, read one row back, modify and update it, delete another,
// and list what is left. Failed operations are recorded and the run goes on.
package demo
