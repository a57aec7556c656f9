// Package domain contains the entity records moved between the database and
// the rest of the program: stores, articles and users. They are plain values
// with no identity beyond their primary key and no lifecycle beyond a single
// repository call.
package domain
