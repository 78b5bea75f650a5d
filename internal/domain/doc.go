// Package domain contains the core domain entities and value objects for livemount.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (HTTP, file system, logging) and
// contains only pure business logic.
//
// # Entities
//
//   - [ClusterInfo]: Identity and timezone of the cluster handling the request
//   - [SourceLocator]: The host:database pair naming the protected database
//   - [DatabaseInfo]: Database metadata, including its [Topology]
//   - [MountRequest]: The parameters of a single live mount
//   - [LiveMountResult]: The cluster's response to a live mount
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Focused on business rules and invariants
//   - Testable without mocks or external systems
package domain
