// Package domain contains the core domain model for the goose-tapping game.
//
// This package defines:
//   - Entities: Round, PlayerRoundStats, User
//   - Pure rules: round status resolution (StatusAt) and tap scoring (PointsForTap)
//   - Domain errors used across the application
//
// Rules for this package:
//   - No infrastructure concerns (database, HTTP, etc.)
//   - Functions here are pure; the current time is always passed in
package domain
