// Package hub implements the gated, ordered, in-process fan-out dispatcher
// that connects the logger manager to registered loggers. Events raised before
// Enable are buffered in raise order and flushed exactly once when the hub is
// enabled; afterwards delivery is synchronous, on the caller's stack, in
// subscription order. A slow or blocking subscriber stalls the whole pipeline;
// there is no background queue and no timeout on a subscriber call.
package hub
