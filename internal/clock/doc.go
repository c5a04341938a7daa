// Package clock provides millisecond-resolution ordering tokens for
// detecting stale writes. Tokens are wall-clock timestamps, bumped past
// the previous token when the clock has not advanced, so the token
// sequence for any single key is strictly increasing.
package clock
