package partition

import (
	"encoding/binary"
	"fmt"

	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/entry"
	"github.com/obadir/oba/internal/errs"
)

// encodeEntry serializes e to its plain record form, then encrypts it
// with p.cryptoKey if one is configured, per spec.md §3's "B-tree Table
// Layer" storing the master table's records at rest. A Partition opened
// without a key (the default) writes the plain record form unchanged.
func (p *Partition) encodeEntry(e *entry.Entry) []byte {
	plain := encodeEntryPlain(e)
	if p.cryptoKey == nil {
		return plain
	}
	ciphertext, err := p.cryptoKey.Encrypt(plain)
	if err != nil {
		// AES-GCM encryption only fails on a misconstructed key, which
		// crypto.NewEncryptionKey already validated; this is unreachable in
		// practice but the master table must never silently persist
		// plaintext when encryption was requested.
		panic("partition: encrypt: " + err.Error())
	}
	return ciphertext
}

// decodeEntry reverses encodeEntry, decrypting first if p.cryptoKey is
// configured.
func (p *Partition) decodeEntry(b []byte) (*entry.Entry, error) {
	if p.cryptoKey != nil {
		plain, err := p.cryptoKey.Decrypt(b)
		if err != nil {
			return nil, errs.Wrap(errs.KindOperationsError, "decrypting master table record", err)
		}
		b = plain
	}
	return decodeEntryPlain(b)
}

// encodeEntryPlain serializes an Entry to the byte form stored in the
// master table, per spec.md §4.3 "B-tree Table Layer... serializers".
// The format is private to this package: length-prefixed DN text
// followed by length-prefixed (name, [isBinary, value]...) attribute
// records.
func encodeEntryPlain(e *entry.Entry) []byte {
	var buf []byte
	buf = appendString(buf, e.DN.String())
	names := e.AttributeNames()
	buf = appendUint32(buf, uint32(len(names)))
	for _, name := range names {
		a := e.Get(name)
		buf = appendString(buf, a.Name)
		buf = appendUint32(buf, uint32(len(a.Values)))
		for _, v := range a.Values {
			if v.IsBinary() {
				buf = append(buf, 1)
			} else {
				buf = append(buf, 0)
			}
			buf = appendBytes(buf, v.Raw())
		}
	}
	return buf
}

// decodeEntryPlain reverses encodeEntryPlain.
func decodeEntryPlain(b []byte) (*entry.Entry, error) {
	r := &reader{buf: b}
	dnText, err := r.readString()
	if err != nil {
		return nil, err
	}
	name, err := dn.Parse(dnText)
	if err != nil {
		return nil, err
	}
	e := entry.New(name)
	attrCount, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < attrCount; i++ {
		attrName, err := r.readString()
		if err != nil {
			return nil, err
		}
		valCount, err := r.readUint32()
		if err != nil {
			return nil, err
		}
		for j := uint32(0); j < valCount; j++ {
			isBinary, err := r.readByte()
			if err != nil {
				return nil, err
			}
			raw, err := r.readBytes()
			if err != nil {
				return nil, err
			}
			if isBinary == 1 {
				e.Add(attrName, entry.NewBinaryValue(raw))
			} else {
				e.Add(attrName, entry.NewTextValue(string(raw)))
			}
		}
	}
	return e, nil
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendBytes(buf []byte, b []byte) []byte {
	buf = appendUint32(buf, uint32(len(b)))
	return append(buf, b...)
}

func appendString(buf []byte, s string) []byte {
	return appendBytes(buf, []byte(s))
}

type reader struct {
	buf []byte
	pos int
}

func (r *reader) readUint32() (uint32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, fmt.Errorf("partition: truncated entry record")
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) readByte() (byte, error) {
	if r.pos+1 > len(r.buf) {
		return 0, fmt.Errorf("partition: truncated entry record")
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) readBytes() ([]byte, error) {
	n, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	if r.pos+int(n) > len(r.buf) {
		return nil, fmt.Errorf("partition: truncated entry record")
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return out, nil
}

func (r *reader) readString() (string, error) {
	b, err := r.readBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
