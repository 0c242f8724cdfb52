// Package google provides shared infrastructure for the Google API sources.
//
// It bridges a driven.TokenProvider to oauth2.TokenSource, builds Calendar
// and Gmail service clients, maps API errors to sentinels and rate limits
// requests per service.
//
//	ts := google.NewTokenSource(ctx, tokenProvider)
//	svc, err := google.NewGmailService(ctx, ts)
//
// Scopes used:
//   - https://www.googleapis.com/auth/gmail.readonly
//   - https://www.googleapis.com/auth/calendar.readonly
package google
