// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from the domain records to keep the domain layer free
// from ORM concerns.
//
// Structure:
// - base.go: timestamp columns shared by every table
// - partner.go: the customer table fed by ledger imports
// - catalog.go: the stock_item table fed by stock item imports
// - identity.go: the admins table used by the back office
package models
