// Package cmd contains the standalone binaries: the mint service, a
// file-backed wallet CLI, and an in-process end-to-end demo.
package cmd
