// Package models contains GORM persistence models that map to database tables.
// Domain entities stay free of GORM tags; repositories convert through ToDomain/FromDomain.
//
// The schema is owned by the SQL migrations. The gorm tags here mirror it closely enough
// for AutoMigrate to build an equivalent sqlite schema in tests.
package models
