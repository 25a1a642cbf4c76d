package dn

import (
	"encoding/hex"
	"fmt"
	"strings"

	ber "github.com/go-asn1-ber/asn1-ber"

	"github.com/obadir/oba/internal/errs"
)

// Parse parses a DN in its RFC 4514 textual form, leftmost RDN first
// (the leaf). An empty string parses to the root DN.
func Parse(s string) (DN, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DN{}, nil
	}
	p := &parser{input: s}
	rdns, err := p.parseRDNSequence()
	if err != nil {
		return DN{}, err
	}
	return DN{RDNs: rdns}, nil
}

// MustParse is Parse, panicking on error; reserved for literal DNs
// embedded in bootstrap data and tests where the input is known-valid.
func MustParse(s string) DN {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

type parser struct {
	input string
	pos   int
}

func (p *parser) syntaxError(msg string) error {
	return errs.New(errs.KindInvalidDNSyntax, fmt.Sprintf("%s at offset %d in %q", msg, p.pos, p.input))
}

func (p *parser) eof() bool { return p.pos >= len(p.input) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) parseRDNSequence() ([]RDN, error) {
	var rdns []RDN
	for {
		rdn, err := p.parseRDN()
		if err != nil {
			return nil, err
		}
		rdns = append(rdns, rdn)
		if p.eof() {
			break
		}
		switch p.peek() {
		case ',', ';':
			p.pos++
			continue
		default:
			return nil, p.syntaxError("expected ',' between RDNs")
		}
	}
	return rdns, nil
}

func (p *parser) parseRDN() (RDN, error) {
	var rdn RDN
	for {
		atv, err := p.parseAttributeTypeAndValue()
		if err != nil {
			return nil, err
		}
		rdn = append(rdn, atv)
		if !p.eof() && p.peek() == '+' {
			p.pos++
			continue
		}
		return rdn, nil
	}
}

func (p *parser) parseAttributeTypeAndValue() (AttributeTypeAndValue, error) {
	attrType, err := p.parseAttributeType()
	if err != nil {
		return AttributeTypeAndValue{}, err
	}
	if p.eof() || p.peek() != '=' {
		return AttributeTypeAndValue{}, p.syntaxError("expected '=' after attribute type")
	}
	p.pos++
	value, raw, err := p.parseAttributeValue()
	if err != nil {
		return AttributeTypeAndValue{}, err
	}
	return AttributeTypeAndValue{Type: attrType, Value: value, Raw: raw}, nil
}

func isDescriptorChar(c byte) bool {
	return c == '-' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (p *parser) parseAttributeType() (string, error) {
	start := p.pos
	for !p.eof() && isDescriptorChar(p.peek()) {
		p.pos++
	}
	if p.pos == start {
		return "", p.syntaxError("expected attribute type")
	}
	return p.input[start:p.pos], nil
}

// parseAttributeValue consumes either an escaped string value or a
// '#'-prefixed hex (BER) value, per RFC 4514 §2.4. Returns the decoded
// user value and, for hex values, the raw decoded bytes.
func (p *parser) parseAttributeValue() (string, []byte, error) {
	if !p.eof() && p.peek() == '#' {
		p.pos++
		start := p.pos
		for !p.eof() && isHex(p.peek()) {
			p.pos++
		}
		hexStr := p.input[start:p.pos]
		if len(hexStr) == 0 || len(hexStr)%2 != 0 {
			return "", nil, p.syntaxError("malformed hex-encoded attribute value")
		}
		raw, err := hex.DecodeString(hexStr)
		if err != nil {
			return "", nil, p.syntaxError("invalid hex in attribute value: " + err.Error())
		}
		return decodeBEROctets(raw), raw, nil
	}

	var b strings.Builder
	for !p.eof() {
		c := p.peek()
		switch c {
		case ',', '+', '"', '\\', '<', '>', ';':
			if c == ',' || c == '+' || c == '<' || c == '>' || c == ';' {
				return b.String(), nil, nil
			}
			if c == '\\' {
				p.pos++
				esc, err := p.parseEscape()
				if err != nil {
					return "", nil, err
				}
				b.WriteByte(esc)
				continue
			}
			return "", nil, p.syntaxError("unexpected quote in unquoted value")
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return b.String(), nil, nil
}

func (p *parser) parseEscape() (byte, error) {
	if p.eof() {
		return 0, p.syntaxError("dangling escape")
	}
	c := p.peek()
	if isHex(c) && p.pos+1 < len(p.input) && isHex(p.input[p.pos+1]) {
		pair := p.input[p.pos : p.pos+2]
		p.pos += 2
		decoded, err := hex.DecodeString(pair)
		if err != nil {
			return 0, p.syntaxError("invalid hex escape")
		}
		return decoded[0], nil
	}
	p.pos++
	return c, nil
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// decodeBEROctets decodes a '#'-hex RDN value per RFC 4514 §2.4: the hex
// digits are the BER encoding of the attribute value. Primitive string
// and octet-string tags unwrap to their content bytes; anything this
// package cannot confidently unwrap is kept as the raw decoded bytes so
// no information is lost.
func decodeBEROctets(raw []byte) string {
	packet := ber.DecodePacket(raw)
	if packet == nil || packet.Data == nil {
		return string(raw)
	}
	if content := packet.Data.Bytes(); len(content) > 0 {
		return string(content)
	}
	return string(raw)
}
