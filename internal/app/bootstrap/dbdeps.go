// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/enrolldesk/internal/app/store/audit"
	"github.com/dalemusser/enrolldesk/internal/app/store/backend"
	"github.com/dalemusser/enrolldesk/internal/app/store/viewstate"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	Backend *backend.Client

	// ViewState is always set. Memory is non-nil only when no Redis address
	// is configured, so the sweep job can find it.
	ViewState viewstate.Store
	Memory    *viewstate.MemoryStore

	// Mongo fields are nil when no audit database is configured.
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Audit         *audit.Store
}
