package schema

import "strings"

// UsersCollection is the built-in user collection. It is shared by every
// module and addressed by its bare name, never namespaced.
const UsersCollection = "users"

// ResolveCollection returns the namespaced collection key for a
// module-local collection name.
//
// First-party modules ("achievements") yield "achievements__entries".
// Third-party modules carry a username prefix separated by "--"
// ("acme--crm") and yield "acme___crm__clients". The built-in users
// collection always resolves to the bare name "users".
//
// Stored data and relation IDs depend on this layout, so the convention
// is bit-exact and must not change.
func ResolveCollection(collection, moduleID string) string {
	if collection == UsersCollection {
		return UsersCollection
	}
	if username, module, ok := strings.Cut(moduleID, "--"); ok {
		return username + "___" + module + "__" + collection
	}
	return moduleID + "__" + collection
}
