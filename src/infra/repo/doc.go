// Package repo contains the storage adapters implementing ports.GameRepository.
//
//   - PostgresRepository: raw SQL over a pgx pool; the production store.
//   - MemoryRepository: a mutex-guarded in-process store with the same
//     transactional contract, used with APP_STORAGE=memory and in tests.
//
// Both receive their dependencies via constructor injection.
package repo
