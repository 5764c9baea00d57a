// Package registry stores mock rules and matches the calls providers receive against them.
//
// Rules are grouped in a Handle, one per registered mock. Matching prefers the best Score and,
// among equal scores, the most recently registered handle, so a later mock overrides an earlier
// one. Calls nothing matches fail with an *UnmatchedCallError describing the call to mock.
package registry
