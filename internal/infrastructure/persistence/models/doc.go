// Package models contains the GORM persistence models for the ledger.
//
// Models are kept separate from domain entities so that storage concerns
// (column types, soft delete, indexes) never leak into the domain layer.
// Every model exposes ToDomain and FromDomain for the repository layer.
package models
