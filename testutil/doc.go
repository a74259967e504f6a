// Package testutil provides fixtures for testing the ecash protocol
// stack: test keysets, random secrets, and pre-signed notes.
//
// The helpers accept *testing.T and fail the test on fixture errors so
// test bodies stay focused on the behavior under test:
//
//	ks := testutil.NewTestKeyset(t)
//	note := testutil.NewTestNote(t, ks, 4)
package testutil
