// Package testenv prepares an isolated application for each test.
//
// SetUp boots a fresh application whose auth user model is replaced by a
// stub, then runs a fixed sequence against it:
//
//  1. delete the published migrations
//  2. vendor:publish --force
//  3. migrate the published package migrations
//  4. migrate the test suite's own migrations
//  5. load the model factories
//
// Any failing step aborts SetUp with the step name in the error. TearDown
// runs the callbacks registered with BeforeApplicationDestroyed, most recent
// first, and then destroys the application.
//
//	env := testenv.Setup(t, testenv.Options{UserModel: model, Fixtures: set})
package testenv
