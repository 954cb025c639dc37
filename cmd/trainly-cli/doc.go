// Package main provides the entry point for trainly-cli.
//
// trainly-cli signs in to the Trainly API, keeps the session token on
// disk between runs and lists training plans. It runs one command per
// invocation or, with "trainly-cli shell", an interactive session that
// shares one login across commands.
//
// Usage:
//
//	trainly-cli login -e ada@example.com
//	trainly-cli -o json whoami
//	trainly-cli plans
//	trainly-cli shell
package main
