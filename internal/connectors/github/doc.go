// Package github downloads a markdown documentation corpus from a GitHub repository.
//
// The fetcher resolves the requested ref (the default branch when empty),
// lists the repository tree recursively in one call and downloads each
// markdown blob into a local directory. Files whose git blob SHA already
// matches the local copy are not downloaded again.
//
// # Authentication
//
// When a token is configured (GITHUB_TOKEN) requests are authenticated and
// get 5,000 API requests per hour. Unauthenticated requests are limited to
// 60 per hour, which is enough only for small repositories or re-fetches
// where most files are unchanged.
//
// # Rate Limiting
//
// Two strategies are combined:
//
//  1. Proactive throttling: a token bucket limits the request rate.
//
//  2. Reactive handling: X-RateLimit-Remaining and X-RateLimit-Reset headers
//     are tracked. When the remaining quota drops below a reserve the fetcher
//     waits for the reset time before continuing.
package github
