// Package runs keeps the history of cheat analyses.
//
// Every analysis performed through the service layer is recorded as a
// service.Run: the maze, the parameters, the baseline distance, the count,
// the savings histogram and timings. Runs live in memory behind a Manager
// and can be written through to a RunPersistence; FilePersistence stores
// one JSON document per run, named by its UUID.
//
// Usage:
//
//	persistence, err := runs.NewFilePersistence("runs")
//	manager := runs.NewManagerWithPersistence(persistence)
//	manager.LoadPersistedRuns()
//
// Runs whose files are removed from disk are dropped by PruneOrphans, and
// CleanupExpiredRuns removes runs older than a retention window.
package runs
