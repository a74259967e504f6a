// Package wallet implements the user side of the ecash protocol: secret
// generation, blinding, unblinding, DLEQ checking, note storage, and coin
// selection, plus an HTTP client for the mint's API.
//
// The wallet keeps each blinding factor private until its signature is
// unblinded and discards it afterwards; blinding factors are never stored
// in notes or sent anywhere. A retried request always uses fresh blinding
// factors so the mint cannot correlate retries.
package wallet
