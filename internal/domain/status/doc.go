// Package status keeps catalog reachability up to date.
//
// A Monitor probes every catalog app that has a URL on a fixed interval
// and marks it online or offline; terminal and settings are always local.
// Rounds never overlap: a tick that arrives while a round is running is
// skipped. HTTPProber issues a GET through resty with a per-host circuit
// breaker and a shared rate limit, and treats any HTTP response as
// reachable.
package status
