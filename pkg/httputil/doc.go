// Package httputil provides the HTTP plumbing shared by the flowtower API
// client.
//
// # Retry
//
// [Retry] re-runs an operation on transient failures. Only errors wrapped
// with [RetryableError] are retried; everything else (404s, decode errors,
// validation failures) is returned on the first attempt:
//
//	err := httputil.Retry(ctx, 3, 500*time.Millisecond, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// The delay doubles after every failed attempt and the wait is abandoned as
// soon as ctx is cancelled.
//
// # Defaults
//
//   - Request timeout: 10 seconds ([DefaultTimeout])
//   - Attempts: 3 ([RetryWithBackoff])
//   - Base backoff: 1 second
package httputil
