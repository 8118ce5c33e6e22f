// Package resolver finds an entity's public key in its published JSON Web
// Key Set and returns it as PEM text.
//
// A resolution fetches the key set, drops records that are not well-formed
// or whose use or algorithm disagree with the request, builds typed keys
// through a jwk.Registry, and
// picks the key whose ID matches the request, falling back to the first
// remaining key:
//
//	r, err := resolver.New(resolver.WithLogger(logger))
//	pem, err := r.Resolve(ctx,
//	    resolver.Entity{KeySetURL: "https://issuer.example.com/jwks.json"},
//	    resolver.Criteria{Algorithm: "RS256", KeyID: "2024-01"},
//	)
//
// Resolve has three outcomes. A PEM string with a nil error is a found
// key. An empty string with a nil error means the entity has no key set
// URL, or its URL fails the transport policy; callers should try other
// mechanisms. A non-nil error is one of *FetchError, *StatusError,
// *ParseError, ErrNoSuitableKey, an unknown Criteria.Use, or a key
// material error from package jwk. *ParseError is reserved for bodies that
// are not JSON.
//
// Nothing is retried or cached here. Retries belong to the fetch.Fetcher.
package resolver
