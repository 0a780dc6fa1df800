/*
Package resilience provides a circuit breaker for the script host.

A breaker counts faults reported by the work it guards. After Trips
consecutive faults it opens and rejects calls with ErrCircuitOpen until the
cooldown elapses, then admits Trials calls half-open before closing again.
IsFault narrows which errors count, so ordinary script errors can pass
through while runaway scripts trip the breaker.

	breaker := resilience.New("pool", resilience.Settings{
		Trips:    3,
		Cooldown: 30 * time.Second,
		IsFault: func(err error) bool {
			var interrupted *goja.InterruptedError
			return errors.As(err, &interrupted)
		},
	})

	err := breaker.Do(func() error {
		result, err = rt.Trace(ctx, req)
		return err
	})

States:

	Closed --[Trips faults]-> Open --[Cooldown]-> Half-Open --[Trials ok]-> Closed
	                                                  |
	                                              [fault]
	                                                  v
	                                                Open
*/
package resilience
