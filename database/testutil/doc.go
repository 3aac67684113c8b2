// Package testutil provides a file-backed sqlite test database and fixture
// helpers for database-dependent tests.
//
//	func TestRepository(t *testing.T) {
//	    db := testutil.NewComponent(t.TempDir())
//	    roottestutil.T(t).Setup(db)
//
//	    testutil.MustLoadFixture(t, db.DB(), "users", []map[string]interface{}{
//	        {"id": 1, "name": "Alice"},
//	    })
//	    testutil.AssertRowCount(t, db.DB(), "users", 1)
//	}
//
// The database lives in <dir>/testing.sqlite rather than in memory so every
// pooled connection, and the migration driver sharing the pool, sees the
// same schema.
package testutil
