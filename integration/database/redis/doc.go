// Package redis provides Redis client initialization and an alternative
// session store for deployments that keep session state out of PostgreSQL.
//
// Connect validates the connection URL, dials with exponential backoff retry,
// and verifies connectivity with a ping before returning the client. Both
// redis:// and rediss:// (TLS) schemes are accepted. Healthcheck returns a
// probe function for readiness endpoints.
//
//	cfg, _ := config.Load[redis.Config]()
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	store := redis.NewSessionStore[GameState](client, 24*time.Hour, cfg.ScanBatchSize)
//	mgr, _ := session.NewManager[GameState](store)
//
// SessionStore implements session.Store with two keys per session: the JSON
// record under session:id:<uuid> and a token index under
// session:token:<token>. Both carry the session lifetime as TTL, so expired
// sessions vanish without a sweep; the maintenance operations still work for
// stats and for lifetimes shortened after the fact. Token rotation writes the
// new index and drops the old one in a single pipeline.
package redis
