//go:build generate
// +build generate

// Package main is the entry point for code generation in this project.
//
// Usage:
//
//	go generate -tags generate ./...
//
// This regenerates taxonomy-api-openapi.ts and taxonomy-api.ts from
// taxonomy-api.json using the settings in typegen.toml, when present.
package main

//go:generate go run ./cmd/typegen generate
