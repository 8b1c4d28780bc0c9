/*
Package session implements stepwise runs that survive between requests.

A session records the automaton name, the input and the current
configuration. Each Step loads it, performs one unit of work and stores the
result, under a per-session lock that is reference counted locally and
optionally backed by a distributed locker across replicas.
*/
package session
