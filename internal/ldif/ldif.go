// Package ldif implements RFC 2849 LDIF encode/decode: plain and
// changetype records, with the line-folding and base64 rules §6 of
// spec.md requires for round-trippable import/export.
//
// Distilled from the teacher's internal/backup/ldif.go, generalized from
// a flat storage.Entry (map[string][][]byte keyed by raw attribute name)
// to the typed dn.DN/entry.Entry model, and extended from add-only
// content records to the full add/delete/modify/modrdn changetype
// records spec.md §6 names.
package ldif

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/entry"
	"github.com/obadir/oba/internal/errs"
)

// ChangeType names an LDIF changetype line's value.
type ChangeType string

const (
	// ChangeNone marks a content record: a dn: line followed by
	// attribute lines, with no changetype line at all. Decode treats it
	// as an implicit add.
	ChangeNone   ChangeType = ""
	ChangeAdd    ChangeType = "add"
	ChangeDelete ChangeType = "delete"
	ChangeModify ChangeType = "modify"
	ChangeModRDN ChangeType = "modrdn"
)

// Record is one LDIF entry or change record.
type Record struct {
	DN         dn.DN
	ChangeType ChangeType

	// Entry is populated for ChangeNone and ChangeAdd.
	Entry *entry.Entry

	// Mods is populated for ChangeModify.
	Mods []entry.Modification

	// ModRDN fields, populated for ChangeModRDN.
	NewRDN           dn.RDN
	DeleteOldRDN     bool
	NewSuperior      dn.DN
	HasNewSuperior   bool
}

// Decode parses LDIF content from r into a sequence of Records, in file
// order. It accepts both content records (no changetype) and full
// change records, since spec.md §6 requires parsing both an export and
// a change-replay stream with one reader.
func Decode(r io.Reader) ([]*Record, error) {
	lines, err := unfold(r)
	if err != nil {
		return nil, err
	}

	var records []*Record
	var cur *rawRecord
	for _, line := range lines {
		if line == "" {
			if cur != nil {
				rec, err := cur.build()
				if err != nil {
					return nil, err
				}
				records = append(records, rec)
				cur = nil
			}
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		if cur == nil {
			d, err := parseDNLine(line)
			if err != nil {
				return nil, err
			}
			cur = &rawRecord{dn: d}
			continue
		}
		cur.lines = append(cur.lines, line)
	}
	if cur != nil {
		rec, err := cur.build()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// rawRecord accumulates one record's unfolded lines before they are
// classified into a content, add, delete, modify, or modrdn Record.
type rawRecord struct {
	dn    dn.DN
	lines []string
}

func (raw *rawRecord) build() (*Record, error) {
	if len(raw.lines) > 0 && strings.HasPrefix(strings.ToLower(raw.lines[0]), "changetype:") {
		ct := ChangeType(strings.TrimSpace(raw.lines[0][len("changetype:"):]))
		return raw.buildChange(ct, raw.lines[1:])
	}
	e := entry.New(raw.dn)
	for _, line := range raw.lines {
		attr, val, err := parseAttrLine(line)
		if err != nil {
			return nil, err
		}
		e.Add(attr, val)
	}
	return &Record{DN: raw.dn, ChangeType: ChangeNone, Entry: e}, nil
}

func (raw *rawRecord) buildChange(ct ChangeType, lines []string) (*Record, error) {
	switch ct {
	case ChangeAdd:
		e := entry.New(raw.dn)
		for _, line := range lines {
			attr, val, err := parseAttrLine(line)
			if err != nil {
				return nil, err
			}
			e.Add(attr, val)
		}
		return &Record{DN: raw.dn, ChangeType: ChangeAdd, Entry: e}, nil

	case ChangeDelete:
		return &Record{DN: raw.dn, ChangeType: ChangeDelete}, nil

	case ChangeModify:
		mods, err := parseModifySections(lines)
		if err != nil {
			return nil, err
		}
		return &Record{DN: raw.dn, ChangeType: ChangeModify, Mods: mods}, nil

	case ChangeModRDN, "moddn":
		rec := &Record{DN: raw.dn, ChangeType: ChangeModRDN}
		for _, line := range lines {
			lower := strings.ToLower(line)
			switch {
			case strings.HasPrefix(lower, "newrdn:"):
				val := strings.TrimSpace(line[len("newrdn:"):])
				parsed, err := dn.Parse(val)
				if err != nil {
					return nil, errs.Wrap(errs.KindInvalidDNSyntax, "invalid newrdn", err)
				}
				if len(parsed.RDNs) != 1 {
					return nil, errs.New(errs.KindInvalidDNSyntax, "newrdn must name exactly one RDN")
				}
				rec.NewRDN = parsed.RDNs[0]
			case strings.HasPrefix(lower, "deleteoldrdn:"):
				rec.DeleteOldRDN = strings.TrimSpace(line[len("deleteoldrdn:"):]) == "1"
			case strings.HasPrefix(lower, "newsuperior:"):
				val := strings.TrimSpace(line[len("newsuperior:"):])
				parsed, err := dn.Parse(val)
				if err != nil {
					return nil, errs.Wrap(errs.KindInvalidDNSyntax, "invalid newsuperior", err)
				}
				rec.NewSuperior = parsed
				rec.HasNewSuperior = true
			}
		}
		return rec, nil

	default:
		return nil, errs.New(errs.KindProtocolError, "unsupported changetype "+string(ct))
	}
}

func parseModifySections(lines []string) ([]entry.Modification, error) {
	var mods []entry.Modification
	var op entry.ModOp
	var attr string
	var values []entry.Value
	have := false

	flush := func() {
		if have {
			mods = append(mods, entry.Modification{Op: op, Attribute: attr, Values: values})
		}
		have = false
		values = nil
	}

	for _, line := range lines {
		if line == "-" {
			flush()
			continue
		}
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "add:"):
			flush()
			op, attr, have = entry.ModAdd, strings.TrimSpace(line[len("add:"):]), true
		case strings.HasPrefix(lower, "delete:"):
			flush()
			op, attr, have = entry.ModDelete, strings.TrimSpace(line[len("delete:"):]), true
		case strings.HasPrefix(lower, "replace:"):
			flush()
			op, attr, have = entry.ModReplace, strings.TrimSpace(line[len("replace:"):]), true
		default:
			a, v, err := parseAttrLine(line)
			if err != nil {
				return nil, err
			}
			if !have || !strings.EqualFold(a, attr) {
				return nil, errs.New(errs.KindProtocolError, "modify value line outside a section: "+line)
			}
			values = append(values, v)
		}
	}
	flush()
	return mods, nil
}

func parseDNLine(line string) (dn.DN, error) {
	lower := strings.ToLower(line)
	switch {
	case strings.HasPrefix(lower, "dn::"):
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(line[4:]))
		if err != nil {
			return dn.DN{}, errs.Wrap(errs.KindInvalidDNSyntax, "invalid base64 dn", err)
		}
		return dn.Parse(string(decoded))
	case strings.HasPrefix(lower, "dn:"):
		return dn.Parse(strings.TrimSpace(line[3:]))
	default:
		return dn.DN{}, errs.New(errs.KindProtocolError, "record does not begin with dn: "+line)
	}
}

func parseAttrLine(line string) (string, entry.Value, error) {
	colon := strings.IndexByte(line, ':')
	if colon == -1 {
		return "", entry.Value{}, errs.New(errs.KindProtocolError, "missing colon in line: "+line)
	}
	attr := line[:colon]
	rest := line[colon+1:]
	if strings.HasPrefix(rest, ":") {
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(rest[1:]))
		if err != nil {
			return "", entry.Value{}, errs.Wrap(errs.KindProtocolError, "invalid base64 value", err)
		}
		return attr, entry.NewBinaryValue(decoded), nil
	}
	return attr, entry.NewTextValue(strings.TrimSpace(rest)), nil
}

// unfold reads r and joins RFC 2849 folded continuation lines (any line
// beginning with a single space continues the previous one), returning
// one logical line per slice element; blank lines and comments pass
// through unchanged as record/entry separators.
func unfold(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	var out []string
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) > 0 && line[0] == ' ' {
			if len(out) == 0 {
				return nil, errs.New(errs.KindProtocolError, "LDIF starts with a continuation line")
			}
			out[len(out)-1] += line[1:]
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.Wrap(errs.KindOperationsError, "reading LDIF", err)
	}
	return out, nil
}

// EncodeEntry writes e as a content record (dn: line plus attribute
// lines, no changetype), matching what Decode reads back for ChangeNone.
func EncodeEntry(w io.Writer, e *entry.Entry) error {
	return writeRecord(w, e.DN, ChangeNone, e, nil, dn.RDN{}, false, dn.DN{}, false)
}

// EncodeEntries writes each entry as a content record, separated by
// blank lines, for a full subtree export.
func EncodeEntries(w io.Writer, entries []*entry.Entry) error {
	for _, e := range entries {
		if err := EncodeEntry(w, e); err != nil {
			return err
		}
	}
	return nil
}

// EncodeChange writes rec as a changetype record, round-tripping
// whatever Decode would have produced for the same operation.
func EncodeChange(w io.Writer, rec *Record) error {
	return writeRecord(w, rec.DN, rec.ChangeType, rec.Entry, rec.Mods, rec.NewRDN, rec.DeleteOldRDN, rec.NewSuperior, rec.HasNewSuperior)
}

func writeRecord(w io.Writer, target dn.DN, ct ChangeType, e *entry.Entry, mods []entry.Modification, newRDN dn.RDN, deleteOld bool, newSuperior dn.DN, hasSuperior bool) error {
	if err := writeDNLine(w, target); err != nil {
		return err
	}
	if ct != ChangeNone {
		if _, err := fmt.Fprintf(w, "changetype: %s\n", ct); err != nil {
			return err
		}
	}
	switch ct {
	case ChangeNone, ChangeAdd:
		if err := writeAttrs(w, e); err != nil {
			return err
		}
	case ChangeDelete:
		// no body
	case ChangeModify:
		for _, m := range mods {
			verb := "add"
			switch m.Op {
			case entry.ModDelete:
				verb = "delete"
			case entry.ModReplace:
				verb = "replace"
			}
			if _, err := fmt.Fprintf(w, "%s: %s\n", verb, m.Attribute); err != nil {
				return err
			}
			for _, v := range m.Values {
				if err := writeAttrValue(w, m.Attribute, v); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintln(w, "-"); err != nil {
				return err
			}
		}
	case ChangeModRDN:
		if err := writeLine(w, "newrdn", newRDN.String()); err != nil {
			return err
		}
		flag := "0"
		if deleteOld {
			flag = "1"
		}
		if _, err := fmt.Fprintf(w, "deleteoldrdn: %s\n", flag); err != nil {
			return err
		}
		if hasSuperior {
			if err := writeLine(w, "newsuperior", newSuperior.String()); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

func writeDNLine(w io.Writer, d dn.DN) error {
	return writeLine(w, "dn", d.String())
}

func writeLine(w io.Writer, attr, value string) error {
	if needsBase64([]byte(value)) {
		_, err := fmt.Fprintf(w, "%s:: %s\n", attr, base64.StdEncoding.EncodeToString([]byte(value)))
		return err
	}
	_, err := fmt.Fprintf(w, "%s: %s\n", attr, value)
	return err
}

func writeAttrValue(w io.Writer, attr string, v entry.Value) error {
	raw := v.Raw()
	if needsBase64(raw) {
		_, err := fmt.Fprintf(w, "%s:: %s\n", attr, base64.StdEncoding.EncodeToString(raw))
		return err
	}
	_, err := fmt.Fprintf(w, "%s: %s\n", attr, string(raw))
	return err
}

func writeAttrs(w io.Writer, e *entry.Entry) error {
	names := e.AttributeNames()
	sort.Strings(names)
	for _, name := range names {
		attr := e.Get(name)
		if attr == nil {
			continue
		}
		for _, v := range attr.Values {
			if err := writeAttrValue(w, name, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// needsBase64 reports whether value requires RFC 2849 SAFE-STRING
// base64 encoding: a leading space, colon, or less-than sign, any
// non-printable byte, or a line break.
func needsBase64(value []byte) bool {
	if len(value) == 0 {
		return false
	}
	if c := value[0]; c == ' ' || c == ':' || c == '<' {
		return true
	}
	for _, b := range value {
		if b == 0 || b == '\n' || b == '\r' || b < 0x20 || b > 0x7E {
			return true
		}
	}
	return bytes.IndexByte(value, 0) != -1
}
