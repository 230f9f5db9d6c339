// Package wire is the binary encoding of recorded host operations.
//
// A Frame carries the operations of one flush together with a sequence
// number and the digest of the tree they produce, so a remote replica
// can apply them in order and check that it converged:
//
//	frame := wire.Frame{Seq: seq, Digest: vdom.Digest(root), Patches: host.Ops()}
//	data := wire.EncodeFrame(&frame)
//
// All integers are varints except the digest, which is a big-endian
// uint64. Strings are varint-length-prefixed UTF-8.
package wire
