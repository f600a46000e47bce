// Package promotions manages discount codes.
//
// # Overview
//
// A promotion has a code, a percentage discount, a validity window
// and an optional use limit. Creating, listing and deleting codes
// requires the promotion permission (admin roles). Redemption is open
// to any signed-in user, at most once per user per code, enforced
// with a row lock so concurrent redemptions cannot overshoot the use
// limit.
package promotions
