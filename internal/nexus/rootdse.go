package nexus

import (
	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/entry"
)

// RootDSE builds the virtual root DSE entry: objectClass plus
// namingContexts, supportedLDAPVersion, supportedControl,
// supportedExtension, supportedFeatures, vendorName, and vendorVersion,
// per spec.md §2 "exposes a virtual root DSE aggregating server
// metadata", in the attribute shape teacher rootdse.go's GetSearchEntry
// produces.
func (n *Nexus) RootDSE() *entry.Entry {
	n.mu.RLock()
	cfg := n.rootDSE
	contexts := make([]dn.DN, len(n.partitions))
	for i, m := range n.partitions {
		contexts[i] = m.suffix
	}
	n.mu.RUnlock()

	e := entry.New(dn.DN{})
	e.Add("objectClass", entry.NewTextValue("top"))

	for _, c := range contexts {
		e.Add("namingContexts", entry.NewTextValue(c.String()))
	}
	for _, v := range cfg.SupportedLDAPVersion {
		e.Add("supportedLDAPVersion", entry.NewTextValue(v))
	}
	for _, oid := range cfg.SupportedControl {
		e.Add("supportedControl", entry.NewTextValue(oid))
	}
	for _, oid := range cfg.SupportedExtension {
		e.Add("supportedExtension", entry.NewTextValue(oid))
	}
	for _, oid := range cfg.SupportedFeatures {
		e.Add("supportedFeatures", entry.NewTextValue(oid))
	}
	if cfg.VendorName != "" {
		e.Add("vendorName", entry.NewTextValue(cfg.VendorName))
	}
	if cfg.VendorVersion != "" {
		e.Add("vendorVersion", entry.NewTextValue(cfg.VendorVersion))
	}
	return e
}
