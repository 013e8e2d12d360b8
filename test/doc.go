// Package test contains helper functions to remove some of the tedium of
// test writing. The Expect functions mark the test as having failed but
// allow it to continue. The Demand functions end the test immediately, which
// is useful when later parts of the test would be meaningless after the
// failure.
package test
