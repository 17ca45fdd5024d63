// Package warera analyzes a player's economy in the WarEra browser game.
//
// It synchronizes the player's transaction feed from the remote tRPC API
// into a local SQLite store (incremental, watermark-bounded, idempotent),
// aggregates stored transactions into per-item and per-type buy/sell
// rollups, and caches session-lifetime reference data (regions, countries,
// item prices) used by the CLI reports.
package warera
