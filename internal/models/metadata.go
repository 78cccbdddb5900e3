// Package models holds the metadata the scanner extracts from annotated
// source files and the generator turns into registration code.
package models

import "github.com/toyz/dendrite/internal/annotations"

// MemberMetadata describes one //dendrite::subscribe annotated method
type MemberMetadata struct {
	// Name is the method name
	Name string

	// Key, Type, Nullable and Attributes mirror the marker fields the
	// annotation set explicitly; empty values mean "use discovery defaults"
	Key        string
	Type       string
	Nullable   bool
	Attributes []annotations.Attribute

	// FileName and Line locate the annotated method for error reporting
	FileName string
	Line     int
}

// SubscriberMetadata describes one //dendrite::subscriber annotated struct
type SubscriberMetadata struct {
	// StructName is the subscriber type name
	StructName string

	// Members lists the annotated methods in declaration order
	Members []MemberMetadata

	// FileName and Line locate the struct declaration
	FileName string
	Line     int
}

// HasMembers reports whether the subscriber declares any service methods
func (s *SubscriberMetadata) HasMembers() bool {
	return len(s.Members) > 0
}

// PackageMetadata is the scan result for one package directory
type PackageMetadata struct {
	// PackageName is the Go package name shared by the scanned files
	PackageName string

	// PackageDir is the directory that was scanned
	PackageDir string

	// Subscribers lists annotated types, files in name order, types in
	// declaration order within a file
	Subscribers []SubscriberMetadata
}

// HasSubscribers reports whether the scan found anything to generate for
func (p *PackageMetadata) HasSubscribers() bool {
	return len(p.Subscribers) > 0
}
