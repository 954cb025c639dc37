// Package output renders trainly-cli results.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: aligned tables, with wide-only columns
//   - json.go, yaml.go: machine-readable output
//   - marks.go: colored status lines
//   - spinner.go: animation while waiting on the identity service
//
// Colors and the spinner are disabled automatically when stdout is not a
// terminal (fatih/color detects this), so piped output stays plain.
package output
