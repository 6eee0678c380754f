// Package models defines domain entities and persistence interfaces for the shotwork task service.
//
// The package contains two categories of types:
//
// 1. Value types carried inside the aggregate:
//   - [MediaItem] : A photo or video reference by external file ID
//   - [MediaSet] : A bundle of photos plus an optional video within a task
//   - [Actor] : A user ID plus role making a request
//   - [Status] / [Role] : Workflow status and role enumerations
//
// 2. Persistent entities:
//   - [Task] : The aggregate root tracked through the approval workflow
//
// Task implements the Model interface providing ID access, timestamps, and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
