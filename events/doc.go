// Package events defines the test lifecycle event types exchanged between the
// test engine, the logger manager and registered loggers, together with the
// source contracts a run or discovery producer must satisfy. The RunEmitter
// and DiscoveryEmitter types are ready-made producer-side implementations of
// those contracts: handlers subscribe and receive an opaque Subscription that
// must be closed to release the registration.
package events
