// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/aboutadmin/internal/app/store/diagnostics"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app. All fields are
// nil when diagnostics are not persisted.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Diagnostics   *diagnostics.Store
}
