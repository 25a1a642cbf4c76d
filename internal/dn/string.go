package dn

import "strings"

// String renders the DN in its RFC 4514 textual form, leaf first.
func (d DN) String() string {
	if len(d.RDNs) == 0 {
		return ""
	}
	parts := make([]string, len(d.RDNs))
	for i, rdn := range d.RDNs {
		parts[i] = rdn.String()
	}
	return strings.Join(parts, ",")
}

// String renders an RDN's atoms joined by '+', each atom escaped per
// RFC 4514 §2.4.
func (r RDN) String() string {
	parts := make([]string, len(r))
	for i, atv := range r {
		parts[i] = atv.Type + "=" + escapeValue(atv.Value)
	}
	return strings.Join(parts, "+")
}

// escapeValue backslash-escapes the characters RFC 4514 reserves, and a
// leading '#' or space and a trailing space, so the rendered value parses
// back to the same bytes.
func escapeValue(v string) string {
	if v == "" {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(v); i++ {
		c := v[i]
		switch {
		case i == 0 && (c == ' ' || c == '#'):
			b.WriteByte('\\')
			b.WriteByte(c)
		case i == len(v)-1 && c == ' ':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == ',' || c == '+' || c == '"' || c == '\\' || c == '<' || c == '>' || c == ';' || c == '=':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == 0:
			b.WriteString(`\00`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
