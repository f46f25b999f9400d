package domain

// domain package contains the Domain Models and Interfaces for mlpipe.
//
// `domain/ENTITY.go` has high-level entities (Domain Model types) and functions.
// For example, `domain/artifact.go` contains the `Artifact` entity.
//
// `domain/ENTITY` directory contains the "phisical" representation of the domain entities,
// for example the metadata store (RDB, embedded database or remote metadata server)
// or the execution cache.
//
// `domain/ENTITY/.../interface.go` exposes the client interface to handle the domain entity.
//
// # Entities
//
// - `artifact`: a record describing a unit of pipeline output (examples, trained model, blessing...).
// Artifacts are written once by a component execution and only read afterward.
// Their typed properties (`span`) and custom properties (`blessed`, `component_unique_name`, ...)
// are used by drivers to pick inputs for the next execution.
//
// - `execution decision`: properties and an optional execution id, produced by a driver
// for each pipeline step invocation and consumed by the execution harness.
//
// - `cache`: remembers finished executions by fingerprint, so that the same step with
// the same inputs and properties can reuse prior outputs.
