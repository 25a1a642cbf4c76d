package schema

// Bootstrap returns the minimal schema a freshly started directory needs
// to host its own configuration and root DSE entries and to run the
// spec.md §8 end-to-end scenarios: 'top', 'person',
// 'organizationalPerson', 'organization', 'organizationalUnit',
// 'dcObject', 'groupOfNames', 'simpleSecurityObject', 'alias',
// 'extensibleObject', 'referral' and 'subentry' object classes, plus the attribute types they reference and
// the operational attributes §4.5 stage 8 stamps on every entry.
//
// Grounded in the teacher's internal/schema/defaults.go bootstrap list,
// generalized from a flat name-keyed map to OID-registered definitions
// with real matching rules attached.
func Bootstrap() *Registry {
	r := New()
	for _, mr := range bootstrapMatchingRules() {
		r = r.WithMatchingRule(mr)
	}
	r = r.WithSyntax(&Syntax{OID: "1.3.6.1.4.1.1466.115.121.1.15", Desc: "Directory String"})
	r = r.WithSyntax(&Syntax{OID: "1.3.6.1.4.1.1466.115.121.1.12", Desc: "DN"})
	r = r.WithSyntax(&Syntax{OID: "1.3.6.1.4.1.1466.115.121.1.40", Desc: "Octet String", Binary: true})
	r = r.WithSyntax(&Syntax{OID: "1.3.6.1.4.1.1466.115.121.1.27", Desc: "Integer"})
	r = r.WithSyntax(&Syntax{OID: "1.3.6.1.4.1.1466.115.121.1.24", Desc: "Generalized Time"})
	r = r.WithSyntax(&Syntax{OID: "1.3.6.1.4.1.1466.115.121.1.38", Desc: "OID"})

	const dirString = "1.3.6.1.4.1.1466.115.121.1.15"
	const dnSyntax = "1.3.6.1.4.1.1466.115.121.1.12"
	const octetString = "1.3.6.1.4.1.1466.115.121.1.40"
	const genTime = "1.3.6.1.4.1.1466.115.121.1.24"
	const oidSyntax = "1.3.6.1.4.1.1466.115.121.1.38"

	attr := func(oid, name string, syn string, equality, ordering, substring string, single, operational, noUserMod bool) *AttributeType {
		at := &AttributeType{
			OID: oid, Name: name, Names: []string{name},
			Syntax: syn, Equality: equality, Ordering: ordering, Substring: substring,
			SingleValue: single, NoUserMod: noUserMod,
		}
		if operational {
			at.Usage = DirectoryOperation
		}
		return at
	}

	types := []*AttributeType{
		attr("2.5.4.0", "objectClass", oidSyntax, "objectIdentifierMatch", "", "", false, false, false),
		attr("2.5.4.3", "cn", dirString, "caseIgnoreMatch", "caseIgnoreOrderingMatch", "caseIgnoreSubstringsMatch", false, false, false),
		attr("2.5.4.4", "sn", dirString, "caseIgnoreMatch", "caseIgnoreOrderingMatch", "caseIgnoreSubstringsMatch", false, false, false),
		attr("2.5.4.10", "o", dirString, "caseIgnoreMatch", "caseIgnoreOrderingMatch", "caseIgnoreSubstringsMatch", false, false, false),
		attr("2.5.4.11", "ou", dirString, "caseIgnoreMatch", "caseIgnoreOrderingMatch", "caseIgnoreSubstringsMatch", false, false, false),
		attr("0.9.2342.19200300.100.1.25", "dc", dirString, "caseIgnoreMatch", "", "caseIgnoreSubstringsMatch", true, false, false),
		attr("0.9.2342.19200300.100.1.1", "uid", dirString, "caseIgnoreMatch", "", "caseIgnoreSubstringsMatch", false, false, false),
		attr("2.5.4.35", "userPassword", octetString, "octetStringMatch", "", "", false, false, false),
		attr("2.5.4.31", "member", dnSyntax, "distinguishedNameMatch", "", "", false, false, false),
		attr("2.16.840.1.113730.3.4.16", "aliasedObjectName", dnSyntax, "distinguishedNameMatch", "", "", true, false, false),
		attr("2.5.4.34", "ref", dirString, "caseExactMatch", "", "", false, false, false),
		attr("1.3.6.1.4.1.1466.101.120.6", "subtreeSpecification", dirString, "caseExactMatch", "", "", true, true, false),
		attr("2.5.4.13", "description", dirString, "caseIgnoreMatch", "", "caseIgnoreSubstringsMatch", false, false, false),
		attr("2.5.4.12", "title", dirString, "caseIgnoreMatch", "", "caseIgnoreSubstringsMatch", false, false, false),

		// Operational attributes stamped by the Operational Attributes
		// interceptor stage (spec.md §4.5 stage 8).
		attr("1.3.6.1.1.16.4", "entryUUID", octetString, "octetStringMatch", "", "", true, true, true),
		attr("1.3.6.1.4.1.4203.666.1.7", "entryCSN", dirString, "caseExactMatch", "caseIgnoreOrderingMatch", "", true, true, true),
		attr("2.5.18.3", "creatorsName", dnSyntax, "distinguishedNameMatch", "", "", true, true, true),
		attr("2.5.18.1", "createTimestamp", genTime, "octetStringMatch", "caseIgnoreOrderingMatch", "", true, true, true),
		attr("2.5.18.4", "modifiersName", dnSyntax, "distinguishedNameMatch", "", "", true, true, true),
		attr("2.5.18.2", "modifyTimestamp", genTime, "octetStringMatch", "caseIgnoreOrderingMatch", "", true, true, true),
	}
	types[0].Equality = "caseIgnoreMatch" // objectIdentifierMatch unregistered: fall back
	for _, at := range types {
		r = r.WithAttributeType(at)
	}

	oc := func(oid, name string, kind ObjectClassKind, superiors, must, may []string) *ObjectClass {
		return &ObjectClass{OID: oid, Name: name, Names: []string{name}, Kind: kind, Superiors: superiors, Must: must, May: may}
	}

	classes := []*ObjectClass{
		oc("2.5.6.0", "top", KindAbstract, nil, []string{"objectClass"}, nil),
		oc("2.5.6.6", "person", KindStructural, []string{"top"}, []string{"cn", "sn"}, []string{"userPassword", "description"}),
		oc("2.5.6.7", "organizationalPerson", KindStructural, []string{"person"}, nil, []string{"ou", "title"}),
		oc("0.9.2342.19200300.100.4.19", "simpleSecurityObject", KindAuxiliary, []string{"top"}, []string{"userPassword"}, nil),
		oc("2.5.6.11", "organizationalUnit", KindStructural, []string{"top"}, []string{"ou"}, nil),
		oc("2.5.6.4", "organization", KindStructural, []string{"top"}, []string{"o"}, nil),
		oc("1.3.6.1.4.1.1466.344", "dcObject", KindAuxiliary, []string{"top"}, []string{"dc"}, nil),
		oc("1.3.6.1.4.1.1466.101.120.111", "extensibleObject", KindAuxiliary, []string{"top"}, nil, nil),
		oc("2.5.6.1", "alias", KindStructural, []string{"top"}, []string{"aliasedObjectName"}, nil),
		oc("2.16.840.1.113730.3.2.6", "referral", KindStructural, []string{"top"}, []string{"ref"}, nil),
		oc("2.5.17.0", "subentry", KindStructural, []string{"top"}, []string{"cn", "subtreeSpecification"}, nil),
		oc("2.5.6.9", "groupOfNames", KindStructural, []string{"top"}, []string{"cn", "member"}, []string{"description"}),
	}
	for _, c := range classes {
		r = r.WithObjectClass(c)
	}
	return r
}
