// Package testutil extends the component lifecycle with testing-specific
// capabilities: reset between cases, snapshot and restore.
//
//	func TestMyFeature(t *testing.T) {
//	    db := dbtestutil.NewComponent(t.TempDir())
//	    testutil.T(t).Setup(db)
//	    // db is stopped when the test ends
//	}
package testutil
