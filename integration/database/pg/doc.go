// Package pg provides PostgreSQL connection management and the canonical
// session store for the game backend.
//
// Connect wraps the pgx pool with exponential backoff retry and a ping
// verification, so services survive a database that is still coming up.
// Migrate applies the embedded goose migrations through the stdlib adapter,
// since goose speaks database/sql rather than pgx. Healthcheck returns a probe
// function for readiness endpoints.
//
//	cfg, _ := config.Load[pg.Config]()
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, logger); err != nil {
//		log.Fatal(err)
//	}
//
//	store := pg.NewSessionStore[GameState](pool)
//	mgr, _ := session.NewManager[GameState](store)
//
// SessionStore implements session.Store. Rows are keyed by the stable session
// ID with a unique index on the rotating token; an upsert after rotation
// therefore invalidates the previous identifier in the same statement. The
// generic session payload lives in a jsonb column and never participates in
// lifecycle queries.
//
// WithTx and TxFromContext propagate a pgx.Tx through the context so store
// operations can join an application transaction, for example persisting a
// session alongside the account row it was just authenticated against.
//
// Error classification helpers (IsNotFoundError, IsDuplicateKeyError and
// friends) give callers type-safe checks for common PostgreSQL failure modes.
package pg
