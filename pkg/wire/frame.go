package wire

import (
	"github.com/vango-dev/reactor/pkg/vdom"
)

// Frame is the set of host operations one flush produced.
type Frame struct {
	Seq     uint64
	Digest  uint64
	Patches []vdom.Patch
}

// EncodeFrame encodes f to bytes.
func EncodeFrame(f *Frame) []byte {
	e := NewEncoder()
	EncodeFrameTo(e, f)
	return e.Bytes()
}

// EncodeFrameTo encodes f using the provided encoder.
func EncodeFrameTo(e *Encoder, f *Frame) {
	e.WriteUvarint(f.Seq)
	e.WriteUint64(f.Digest)
	e.WriteUvarint(uint64(len(f.Patches)))
	for i := range f.Patches {
		encodePatch(e, &f.Patches[i])
	}
}

func encodePatch(e *Encoder, p *vdom.Patch) {
	e.WriteByte(byte(p.Op))
	e.WriteString(p.ID)

	switch p.Op {
	case vdom.PatchSetText:
		e.WriteString(p.Value)

	case vdom.PatchSetAttr:
		e.WriteString(p.Key)
		e.WriteString(p.Value)

	case vdom.PatchRemoveAttr:
		e.WriteString(p.Key)

	case vdom.PatchInsertNode, vdom.PatchMoveNode:
		e.WriteString(p.ParentID)
		e.WriteString(p.RefID)

	case vdom.PatchRemoveNode:
		e.WriteString(p.ParentID)

	case vdom.PatchCreateNode:
		e.WriteString(p.Tag)
		e.WriteString(p.Value)
	}
}

// DecodeFrame decodes a frame that fills data exactly.
func DecodeFrame(data []byte) (*Frame, error) {
	d := NewDecoder(data)
	f, err := DecodeFrameFrom(d)
	if err != nil {
		return nil, err
	}
	if !d.EOF() {
		return nil, ErrTrailingData
	}
	return f, nil
}

// DecodeFrameFrom decodes one frame from d.
func DecodeFrameFrom(d *Decoder) (*Frame, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	digest, err := d.ReadUint64()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if count > MaxPatches {
		return nil, ErrCollectionTooLarge
	}

	patches := make([]vdom.Patch, count)
	for i := range patches {
		if err := decodePatch(d, &patches[i]); err != nil {
			return nil, err
		}
	}
	return &Frame{Seq: seq, Digest: digest, Patches: patches}, nil
}

func decodePatch(d *Decoder, p *vdom.Patch) error {
	opByte, err := d.ReadByte()
	if err != nil {
		return err
	}
	p.Op = vdom.PatchOp(opByte)

	if p.ID, err = d.ReadString(); err != nil {
		return err
	}

	switch p.Op {
	case vdom.PatchSetText:
		p.Value, err = d.ReadString()

	case vdom.PatchSetAttr:
		if p.Key, err = d.ReadString(); err != nil {
			return err
		}
		p.Value, err = d.ReadString()

	case vdom.PatchRemoveAttr:
		p.Key, err = d.ReadString()

	case vdom.PatchInsertNode, vdom.PatchMoveNode:
		if p.ParentID, err = d.ReadString(); err != nil {
			return err
		}
		p.RefID, err = d.ReadString()

	case vdom.PatchRemoveNode:
		p.ParentID, err = d.ReadString()

	case vdom.PatchCreateNode:
		if p.Tag, err = d.ReadString(); err != nil {
			return err
		}
		p.Value, err = d.ReadString()

	default:
		return ErrUnknownOp
	}
	return err
}
