// Package webhook implements the HTTP boundary of TFM-hook: the push
// webhook endpoint with HMAC-SHA256 verification, plus health and info
// endpoints.
//
// # Security Model
//
// - HMAC-SHA256 signatures verified using crypto/subtle (constant-time comparison)
// - An empty secret disables verification entirely; this is an explicit
//   trust-degradation mode for closed networks, not an error
// - With a secret configured, requests without a signature header are
//   rejected (fail closed)
// - Body size limits enforced to prevent DoS
// - No signature details leaked in error responses (generic 401)
// - Command output and repository paths never appear in responses
//
// # Request Flow
//
//  1. HTTP POST arrives at /hook/refresh
//  2. Body size checked (reject with 413 if too large)
//  3. Signature header extracted and verified against the raw body
//  4. On mismatch, respond 401 with no orchestration performed
//  5. Repositories pulled in configured order, then services restarted
//  6. 200 on full success, 500 with per-target results on any failure
package webhook
