/*
Package ports defines the driven ports (interfaces) around the automaton core.

These interfaces decouple sessions and adapters from concrete storage, so the
same Manager works over memory, files or redis.

# Key Interfaces

  - DefinitionLoader: resolves automaton definitions by name (directory, catalog, memory).
  - SessionStore: persists stepwise runs.
  - DistributedLocker: serialises access to a session across replicas.
  - Stepper: the automaton operations a session drives.

RunSessionStoreContract and RunDefinitionLoaderContract are reusable test
suites for implementations.
*/
package ports
