package protocols

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/colorium/colorium-zkp/internal/colorium-zkp/core"
	"github.com/colorium/colorium-zkp/internal/colorium-zkp/utils"
)

// TranscriptMagic opens every serialized proof file.
const TranscriptMagic = "ZKPCC\x00"

// TranscriptVersion is the current wire version.
const TranscriptVersion uint16 = 1

// Structure type tags. Every variable-size structure serializes as
// tag (u16 BE) || length (u32 BE) || payload.
const (
	tagBatchProof    uint16 = 0x0001
	tagRoundResponse uint16 = 0x0002
	tagStarkProof    uint16 = 0x0003
	tagFriProof      uint16 = 0x0004
)

type encoder struct {
	buf bytes.Buffer
}

func (e *encoder) u8(v uint8)   { e.buf.WriteByte(v) }
func (e *encoder) u16(v uint16) { var b [2]byte; binary.BigEndian.PutUint16(b[:], v); e.buf.Write(b[:]) }
func (e *encoder) u32(v uint32) { var b [4]byte; binary.BigEndian.PutUint32(b[:], v); e.buf.Write(b[:]) }
func (e *encoder) raw(b []byte) { e.buf.Write(b) }

func (e *encoder) digest(d core.Digest) { e.buf.Write(d[:]) }

func (e *encoder) element(el core.Element) {
	b := core.ElementToBytes(el)
	e.buf.Write(b[:])
}

func (e *encoder) block(tag uint16, payload []byte) {
	e.u16(tag)
	e.u32(uint32(len(payload)))
	e.raw(payload)
}

type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) remaining() int { return len(d.data) - d.pos }

func (d *decoder) take(n int) ([]byte, error) {
	if n < 0 || d.remaining() < n {
		return nil, fmt.Errorf("truncated input: need %d bytes, have %d", n, d.remaining())
	}
	out := d.data[d.pos : d.pos+n]
	d.pos += n
	return out, nil
}

func (d *decoder) u8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *decoder) u16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *decoder) u32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *decoder) digest() (core.Digest, error) {
	var out core.Digest
	b, err := d.take(core.DigestSize)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

func (d *decoder) element() (core.Element, error) {
	b, err := d.take(8)
	if err != nil {
		return core.Element{}, err
	}
	return core.ElementFromBytes(b)
}

func (d *decoder) block(wantTag uint16) (*decoder, error) {
	tag, err := d.u16()
	if err != nil {
		return nil, err
	}
	if tag != wantTag {
		return nil, fmt.Errorf("unexpected type tag %#04x, want %#04x", tag, wantTag)
	}
	size, err := d.u32()
	if err != nil {
		return nil, err
	}
	payload, err := d.take(int(size))
	if err != nil {
		return nil, err
	}
	return &decoder{data: payload}, nil
}

func encodeBatchProof(e *encoder, p *core.BatchProof) {
	var inner encoder
	inner.u32(uint32(len(p.ChunkIndices)))
	for _, idx := range p.ChunkIndices {
		inner.u32(idx)
	}
	inner.u32(uint32(len(p.Chunks)))
	for _, chunk := range p.Chunks {
		inner.u32(uint32(len(chunk)))
		inner.raw(chunk)
	}
	inner.u32(uint32(len(p.Path)))
	for _, node := range p.Path {
		inner.digest(node)
	}
	e.block(tagBatchProof, inner.buf.Bytes())
}

func decodeBatchProof(d *decoder) (*core.BatchProof, error) {
	inner, err := d.block(tagBatchProof)
	if err != nil {
		return nil, err
	}
	p := &core.BatchProof{}
	n, err := inner.u32()
	if err != nil {
		return nil, err
	}
	p.ChunkIndices = make([]uint32, n)
	for i := range p.ChunkIndices {
		if p.ChunkIndices[i], err = inner.u32(); err != nil {
			return nil, err
		}
	}
	if n, err = inner.u32(); err != nil {
		return nil, err
	}
	p.Chunks = make([][]byte, n)
	for i := range p.Chunks {
		size, err := inner.u32()
		if err != nil {
			return nil, err
		}
		raw, err := inner.take(int(size))
		if err != nil {
			return nil, err
		}
		chunk := make([]byte, size)
		copy(chunk, raw)
		p.Chunks[i] = chunk
	}
	if n, err = inner.u32(); err != nil {
		return nil, err
	}
	// an empty path stays nil, as Open produces it
	if n > 0 {
		p.Path = make([]core.Digest, n)
	}
	for i := range p.Path {
		if p.Path[i], err = inner.digest(); err != nil {
			return nil, err
		}
	}
	if inner.remaining() != 0 {
		return nil, fmt.Errorf("batch proof has %d trailing bytes", inner.remaining())
	}
	return p, nil
}

// EncodeRoundResponse serializes a response as its canonical tagged block.
// These exact bytes are absorbed into the transcript.
func EncodeRoundResponse(r *RoundResponse) []byte {
	var inner encoder
	encodeBatchProof(&inner, r.EdgeOpen)
	if r.PermOpen != nil {
		inner.u8(1)
		encodeBatchProof(&inner, r.PermOpen)
	} else {
		inner.u8(0)
	}
	encodeBatchProof(&inner, r.BlankOpen)

	var e encoder
	e.block(tagRoundResponse, inner.buf.Bytes())
	return e.buf.Bytes()
}

func decodeRoundResponse(d *decoder) (*RoundResponse, error) {
	inner, err := d.block(tagRoundResponse)
	if err != nil {
		return nil, err
	}
	r := &RoundResponse{}
	if r.EdgeOpen, err = decodeBatchProof(inner); err != nil {
		return nil, err
	}
	hasPerm, err := inner.u8()
	if err != nil {
		return nil, err
	}
	switch hasPerm {
	case 1:
		if r.PermOpen, err = decodeBatchProof(inner); err != nil {
			return nil, err
		}
	case 0:
	default:
		return nil, fmt.Errorf("invalid permutation-opening flag %d", hasPerm)
	}
	if r.BlankOpen, err = decodeBatchProof(inner); err != nil {
		return nil, err
	}
	if inner.remaining() != 0 {
		return nil, fmt.Errorf("round response has %d trailing bytes", inner.remaining())
	}
	return r, nil
}

func encodeStarkProof(e *encoder, s *StarkProof) {
	var inner encoder
	inner.digest(s.TraceRoot)
	inner.digest(s.ConstraintRoot)

	var fri encoder
	fri.u32(uint32(len(s.Fri.LayerRoots)))
	for _, root := range s.Fri.LayerRoots {
		fri.digest(root)
	}
	fri.u32(uint32(len(s.Fri.FinalCodeword)))
	for _, el := range s.Fri.FinalCodeword {
		fri.element(el)
	}
	fri.u32(uint32(len(s.Fri.LayerOpen)))
	for _, open := range s.Fri.LayerOpen {
		encodeBatchProof(&fri, open)
	}
	inner.block(tagFriProof, fri.buf.Bytes())

	encodeBatchProof(&inner, s.TraceOpen)
	encodeBatchProof(&inner, s.CompOpen)
	if s.BlankOpen != nil {
		inner.u8(1)
		encodeBatchProof(&inner, s.BlankOpen)
	} else {
		inner.u8(0)
	}
	e.block(tagStarkProof, inner.buf.Bytes())
}

func decodeStarkProof(d *decoder) (StarkProof, error) {
	var s StarkProof
	inner, err := d.block(tagStarkProof)
	if err != nil {
		return s, err
	}
	if s.TraceRoot, err = inner.digest(); err != nil {
		return s, err
	}
	if s.ConstraintRoot, err = inner.digest(); err != nil {
		return s, err
	}

	fri, err := inner.block(tagFriProof)
	if err != nil {
		return s, err
	}
	n, err := fri.u32()
	if err != nil {
		return s, err
	}
	s.Fri.LayerRoots = make([]core.Digest, n)
	for i := range s.Fri.LayerRoots {
		if s.Fri.LayerRoots[i], err = fri.digest(); err != nil {
			return s, err
		}
	}
	if n, err = fri.u32(); err != nil {
		return s, err
	}
	s.Fri.FinalCodeword = make([]core.Element, n)
	for i := range s.Fri.FinalCodeword {
		if s.Fri.FinalCodeword[i], err = fri.element(); err != nil {
			return s, err
		}
	}
	if n, err = fri.u32(); err != nil {
		return s, err
	}
	s.Fri.LayerOpen = make([]*core.BatchProof, n)
	for i := range s.Fri.LayerOpen {
		if s.Fri.LayerOpen[i], err = decodeBatchProof(fri); err != nil {
			return s, err
		}
	}
	if fri.remaining() != 0 {
		return s, fmt.Errorf("FRI proof has %d trailing bytes", fri.remaining())
	}

	if s.TraceOpen, err = decodeBatchProof(inner); err != nil {
		return s, err
	}
	if s.CompOpen, err = decodeBatchProof(inner); err != nil {
		return s, err
	}
	hasBlank, err := inner.u8()
	if err != nil {
		return s, err
	}
	switch hasBlank {
	case 1:
		if s.BlankOpen, err = decodeBatchProof(inner); err != nil {
			return s, err
		}
	case 0:
	default:
		return s, fmt.Errorf("invalid blank-opening flag %d", hasBlank)
	}
	if inner.remaining() != 0 {
		return s, fmt.Errorf("STARK proof has %d trailing bytes", inner.remaining())
	}
	return s, nil
}

// Marshal serializes the proof in the transcript file layout: magic,
// version, instance digest, configuration, round records, STARK blob.
func (p *Proof) Marshal() ([]byte, error) {
	if p.Config == nil {
		return nil, fmt.Errorf("proof has no configuration")
	}
	if len(p.Rounds) != int(p.Config.Rounds) {
		return nil, fmt.Errorf("proof has %d rounds, config says %d", len(p.Rounds), p.Config.Rounds)
	}
	var e encoder
	e.raw([]byte(TranscriptMagic))
	e.u16(TranscriptVersion)
	e.digest(p.InstanceDigest)
	e.raw(p.Config.Encode())
	for i := range p.Rounds {
		rec := &p.Rounds[i]
		e.digest(rec.Commitment.EdgeRoot)
		e.digest(rec.Commitment.PermRoot)
		e.digest(rec.Commitment.BlankRoot)
		e.raw(EncodeRoundResponse(&rec.Response))
	}
	encodeStarkProof(&e, &p.Stark)
	return e.buf.Bytes(), nil
}

// UnmarshalProof parses a transcript file. Schema violations surface as
// MalformedProof rejections.
func UnmarshalProof(data []byte) (*Proof, error) {
	d := &decoder{data: data}
	magic, err := d.take(len(TranscriptMagic))
	if err != nil || !bytes.Equal(magic, []byte(TranscriptMagic)) {
		return nil, reject(RejectMalformedProof, "bad transcript magic")
	}
	version, err := d.u16()
	if err != nil {
		return nil, reject(RejectMalformedProof, "missing version: %v", err)
	}
	if version != TranscriptVersion {
		return nil, reject(RejectMalformedProof, "unsupported transcript version %d", version)
	}
	p := &Proof{}
	if p.InstanceDigest, err = d.digest(); err != nil {
		return nil, reject(RejectMalformedProof, "missing instance digest: %v", err)
	}
	cfgRaw, err := d.take(28)
	if err != nil {
		return nil, reject(RejectMalformedProof, "missing configuration: %v", err)
	}
	if p.Config, err = utils.DecodeVerifierConfig(cfgRaw); err != nil {
		return nil, reject(RejectMalformedProof, "bad configuration: %v", err)
	}
	if err := p.Config.Validate(); err != nil {
		return nil, reject(RejectInvalidConfig, "%v", err)
	}
	p.Rounds = make([]RoundRecord, p.Config.Rounds)
	for i := range p.Rounds {
		rec := &p.Rounds[i]
		if rec.Commitment.EdgeRoot, err = d.digest(); err != nil {
			return nil, reject(RejectMalformedProof, "round %d commitment: %v", i, err)
		}
		if rec.Commitment.PermRoot, err = d.digest(); err != nil {
			return nil, reject(RejectMalformedProof, "round %d commitment: %v", i, err)
		}
		if rec.Commitment.BlankRoot, err = d.digest(); err != nil {
			return nil, reject(RejectMalformedProof, "round %d commitment: %v", i, err)
		}
		resp, err := decodeRoundResponse(d)
		if err != nil {
			return nil, reject(RejectMalformedProof, "round %d response: %v", i, err)
		}
		rec.Response = *resp
	}
	if p.Stark, err = decodeStarkProof(d); err != nil {
		return nil, reject(RejectMalformedProof, "STARK proof: %v", err)
	}
	if d.remaining() != 0 {
		return nil, reject(RejectMalformedProof, "transcript has %d trailing bytes", d.remaining())
	}
	return p, nil
}
