// Package analytics contains the seller analytics bounded context.
// It models storefront shops, the products seen on their analytics pages and the
// daily metric snapshots ingested for those products.
//
// Key concepts:
//   - Shop: connection settings for one seller account, provisioned externally
//   - Product: dimension row keyed by (shop, external id), last write wins
//   - Snapshot: fact row keyed by (product, date), overwritten on re-sync
//   - ProductRecord: one normalized product as extracted from a vendor page
//   - Envelope: the unified error envelope for vendor, transport and bridge failures
//
// Design Pattern: Ports & Adapters
//   - Repository ports are defined here in the domain layer
//   - GORM adapters live in the infrastructure layer
package analytics
