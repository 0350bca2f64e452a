// Package all wires every built-in storage backend into the storage factory.
//
// It exists purely for side effects: a blank import of this package runs the
// init functions of each backend, registering their factories (and DDL
// bootstrappers where available) with the storage package. The wiring layer
// imports it once so the rest of the code stays backend-agnostic:
//
//	import _ "unietl/internal/storage/all"
package all

import (
	_ "unietl/internal/storage/mssql"
	_ "unietl/internal/storage/mysql"
	_ "unietl/internal/storage/postgres"
	_ "unietl/internal/storage/sqlite"
)
