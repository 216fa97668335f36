/*
Package resilience provides the circuit breaker that guards reachability
probes.

A probe against a host that keeps failing would otherwise cost a full
timeout on every status tick. The breaker opens after a run of failures,
answers ErrCircuitOpen until its timeout passes, then admits a limited
number of trial calls.

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                       [failure]
	                                           v
	                                          Open

Group keeps one breaker per host:

	breakers := resilience.NewGroup(resilience.Settings{Timeout: 30 * time.Second})
	err := breakers.Do(ctx, "wiki.example", func(ctx context.Context) error {
		return probe(ctx, url)
	})
*/
package resilience
