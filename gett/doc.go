// Package gett is a client for the Ge.tt file sharing API.
//
// A Client holds an API key and the account credentials. It logs in on
// the first call, keeps the access token for later calls and refreshes it
// shortly before it expires.
//
//	client, err := gett.NewClient(apiKey, "me@example.com", password)
//	if err != nil {
//		// a credential was empty or malformed
//	}
//	shares, err := client.GetShares(ctx)
//
// Shares and files are plain values. Changes happen on the server and are
// observed by fetching the share or file again.
//
// Errors can be matched with errors.Is against ErrConfiguration,
// ErrAuthentication and ErrNotFound. Failed HTTP exchanges are reported as
// *APIError or *NetworkError. The client never retries.
package gett
