// Package bantest holds the fixtures of the ban tests: the stub User model,
// the migration creating its table, factories and the TestCase suite that
// prepares a fresh environment for every test.
package bantest
