// Package federation assembles the set of feature modules an app
// serves. Core modules are registered synchronously; remote module
// manifests and the category-order map are fetched concurrently and
// resolved against an explicit plugin registry. A single module's
// failure is logged and skipped, so the rest of the app still mounts.
package federation
