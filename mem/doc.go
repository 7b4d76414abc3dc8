// Package mem models memory spaces: explicit location tags that every
// container in the library carries. A space decides where a buffer lives and
// under what budget; data never moves between spaces implicitly — the only
// way across is Copy, a synchronous, ordered, chunked bulk transfer.
//
// The host space is unbounded. Bounded spaces cap resident bytes with a
// semaphore and can pace transfers with a rate limiter, which makes staging
// pipelines and constrained environments testable without real device
// memory.
package mem
