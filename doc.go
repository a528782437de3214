// Package forge is a typed RPC framework for building LifeForge API
// servers out of self-describing feature modules.
//
// A module bundles three things: a manifest (name, version, category),
// a set of collection schemas, and a tree of route controllers. The
// application aggregates module schemas into a single registry,
// validates every controller against it, and mounts the route trees
// under the module's name. Misconfiguration (schema collisions,
// malformed trees, checks against unknown collections) fails at
// startup, never at request time.
//
// # Quick Start
//
//	pool, _ := pgxpool.New(ctx, databaseURL)
//	pg := store.NewPostgres(pool, nil)
//	keys, _ := crypto.GenerateKeyPair()
//	tokens, _ := jwt.New(secret)
//
//	app, err := forge.New(
//	    forge.WithStore(pg),
//	    forge.WithKeyPair(keys),
//	    forge.WithJWT(tokens),
//	    forge.WithModules(achievements.New()),
//	    forge.WithLogger("api"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Controllers
//
// Endpoints are declared with the Forge builder. Builders are value
// types; every method returns a copy:
//
//	f := forge.NewForge("achievements")
//
//	list := f.Query().
//	    Input(forge.Input{Query: listShape}).
//	    Callback(func(c forge.Context) (any, error) {
//	        return c.Store().Collection("entries").GetFullList().Execute(c)
//	    })
//
// Each controller runs a fixed pipeline before its callback:
// authentication, session key exchange, input decryption, media
// extraction, schema validation, and reference existence checks.
// Callback results are wrapped in the response envelope:
//
//	{"state": "success", "data": ...}
//	{"state": "error", "message": "..."}
//
// # Subpackages
//
// The framework's building blocks live under pkg/ and can be used on
// their own: pkg/schema (collection schemas), pkg/query (fluent query
// builder), pkg/store (Postgres and in-memory record stores),
// pkg/federation (module discovery and loading), pkg/crypto
// (session-key exchange), pkg/client (typed API client), and the
// ambient toolkit (logger, jwt, otp, mailer, storage, cache, job).
package forge
