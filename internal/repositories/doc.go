// Package repositories implements SQLite persistence for the playlist
// builder.
//
// Key Implementations:
//   - [CacheRepository] : response cache for provider API calls, satisfying
//     the services cache contract via GetOrCompute
//   - [RunRepository] : history of pipeline runs with per-stage counts
//
// Schema lives in the embedded migrations applied by shared.RunMigrations.
package repositories
