// Package domain contains the core domain entities and value objects for cartkeeper.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (storage, HTTP, logging) and
// contains only pure business logic.
//
// # Entities
//
//   - [LineItem]: One product entry in the cart, carrying its own quantity
//   - [ItemDescriptor]: A product as supplied by a caller, before it has a quantity
//   - [Cart]: The ordered set of line items, unique by product id
//
// # Design Principles
//
// Domain entities are:
//   - Copied, never shared, across mutation boundaries
//   - Free of infrastructure dependencies
//   - Focused on business rules and invariants
//   - Testable without mocks or external systems
package domain
