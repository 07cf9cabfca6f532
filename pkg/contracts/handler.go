// Package contracts holds the small interfaces the app shell accepts,
// so cmd wiring depends on behavior instead of concrete handlers.
package contracts

import "github.com/julienschmidt/httprouter"

// Handler is anything that can mount its routes on the shared router.
// The calendar and management HTTP handlers both satisfy it.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
