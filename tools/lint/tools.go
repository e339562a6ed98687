//go:build tools

// Package lint pins the linters run against go-depmerge.
// It is a separate module so the main go.mod only lists library dependencies.
//
// Usage from the project root:
//
//	go run -modfile=tools/lint/go.mod github.com/golangci/golangci-lint/v2/cmd/golangci-lint run ./...
//	go run -modfile=tools/lint/go.mod honnef.co/go/tools/cmd/staticcheck ./...
package lint
