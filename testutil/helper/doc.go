// Package helper provides test doubles, fixtures and database helpers for the rulesquery tests.
package helper
