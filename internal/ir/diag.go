package ir

import "go.uber.org/zap"

// diagnostics wraps the Context's logger with the handful of builder-level
// events worth surfacing: folds applied, phi trivialization, exit
// unification, and block split/merge. None of this affects IR semantics;
// it exists purely so an embedding application gets structured visibility
// into what the builder and SSA engine did, without the core itself
// depending on any telemetry backend.
type diagnostics struct {
	log *zap.Logger
}

func newDiagnostics(log *zap.Logger) *diagnostics {
	return &diagnostics{log: log}
}

func (d *diagnostics) fold(op string, from, to ValueID) {
	d.log.Debug("fold applied", zap.String("op", op), zap.Stringer("from", from), zap.Stringer("to", to))
}

func (d *diagnostics) phiTrivialized(block blockID, phi, replacement ValueID) {
	d.log.Debug("phi trivialized",
		zap.Uint32("block", uint32(block)),
		zap.Stringer("phi", phi),
		zap.Stringer("replacement", replacement))
}

func (d *diagnostics) exitUnified(count int, exit blockID) {
	d.log.Debug("exit blocks unified", zap.Int("exitCount", count), zap.Uint32("newExit", uint32(exit)))
}

func (d *diagnostics) blockSplit(original, tail blockID) {
	d.log.Debug("block split", zap.Uint32("original", uint32(original)), zap.Uint32("tail", uint32(tail)))
}

func (d *diagnostics) blockMerged(into, other blockID) {
	d.log.Debug("block merged", zap.Uint32("into", uint32(into)), zap.Uint32("other", uint32(other)))
}

func (d *diagnostics) specialized(caller, callee MethodHandle, clonedValues int) {
	d.log.Debug("call specialized",
		zap.Stringer("caller", callerStringer{caller}),
		zap.Stringer("callee", callerStringer{callee}),
		zap.Int("clonedValues", clonedValues))
}

type callerStringer struct{ h MethodHandle }

func (c callerStringer) String() string { return c.h.Serialize() }
