// Package client is the Go consumer of a forge server. It handles the
// bearer token, the RSA/AES encryption handshake against /forge/key,
// and the response envelope, exposing typed request builders.
//
// Typed endpoints are declared once (usually by clientgen) and called
// fluently:
//
//	list := client.NewEndpoint[client.None, ListQuery, []Entry](
//	    api, http.MethodGet, "/achievements/entries/list", client.Encrypted(),
//	)
//	entries, err := list.Query(ListQuery{Page: 2}).Fetch(ctx)
//
// Unregistered paths go through the untyped escape hatch:
//
//	out, err := api.Untyped(http.MethodPost, "/achievements/entries/create").
//	    Input(map[string]any{"title": "Ran a marathon"}).
//	    Mutate(ctx)
//
// Server-side failures surface as *APIError carrying the envelope's
// message and field errors.
package client
