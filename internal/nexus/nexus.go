package nexus

import (
	"sort"
	"sync"

	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/errs"
	"github.com/obadir/oba/internal/partition"
	"github.com/obadir/oba/internal/schema"
)

// Nexus routes a DN to the Partition whose suffix is the longest
// matching ancestor of that DN, per spec.md §2 "Partition Nexus". It
// holds only a weak handle to each mounted Partition; Partitions never
// reference the Nexus back, so there is no owning cycle (spec.md §11
// "Cyclic structures").
type Nexus struct {
	mu         sync.RWMutex
	registry   *schema.Registry
	partitions []*mountedPartition // sorted longest suffix first
	rootDSE    RootDSEConfig
}

type mountedPartition struct {
	suffix dn.DN
	p      *partition.Partition
}

// RootDSEConfig holds the server metadata the virtual root DSE reports,
// mirroring teacher internal/server/rootdse.go's RootDSEConfig.
type RootDSEConfig struct {
	VendorName           string
	VendorVersion        string
	SupportedLDAPVersion []string
	SupportedControl     []string
	SupportedExtension   []string
	SupportedFeatures    []string
}

// DefaultVendorName and DefaultVendorVersion mirror the teacher's
// rootdse.go defaults.
const (
	DefaultVendorName    = "Oba"
	DefaultVendorVersion = "dev"
)

// New constructs an empty Nexus with no partitions mounted.
func New(registry *schema.Registry) *Nexus {
	return &Nexus{
		registry: registry,
		rootDSE: RootDSEConfig{
			VendorName:           DefaultVendorName,
			VendorVersion:        DefaultVendorVersion,
			SupportedLDAPVersion: []string{"3"},
		},
	}
}

// WithRootDSE replaces the root DSE metadata the Nexus reports.
func (n *Nexus) WithRootDSE(cfg RootDSEConfig) *Nexus {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(cfg.SupportedLDAPVersion) == 0 {
		cfg.SupportedLDAPVersion = []string{"3"}
	}
	n.rootDSE = cfg
	return n
}

// Mount registers p as the owner of the subtree rooted at suffix.
// Mounting a suffix that duplicates or nests inside an already-mounted
// suffix is a configuration error; spec.md leaves multi-partition
// deployments to the operator, so Mount rejects ambiguous overlap
// outright rather than silently picking one.
func (n *Nexus) Mount(suffix dn.DN, p *partition.Partition) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	cmp := dn.Comparator(n.registry)
	for _, m := range n.partitions {
		if suffix.Equal(m.suffix, cmp) {
			return errs.New(errs.KindUnwillingToPerform, "suffix already mounted: "+suffix.String())
		}
		if suffix.IsDescendantOf(m.suffix, cmp) || m.suffix.IsDescendantOf(suffix, cmp) {
			return errs.New(errs.KindUnwillingToPerform, "suffix overlaps an existing mount: "+suffix.String())
		}
	}
	n.partitions = append(n.partitions, &mountedPartition{suffix: suffix, p: p})
	sort.Slice(n.partitions, func(i, j int) bool {
		return n.partitions[i].suffix.Depth() > n.partitions[j].suffix.Depth()
	})
	return nil
}

// Route returns the Partition owning target, chosen by longest-suffix
// match across every mounted partition.
func (n *Nexus) Route(target dn.DN) (*partition.Partition, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if target.IsRoot() {
		return nil, errs.New(errs.KindNoSuchObject, "the root DSE has no partition")
	}
	cmp := dn.Comparator(n.registry)
	for _, m := range n.partitions {
		if target.Equal(m.suffix, cmp) || target.IsDescendantOf(m.suffix, cmp) {
			return m.p, nil
		}
	}
	return nil, errs.New(errs.KindNoSuchObject, "no partition serves: "+target.String())
}

// NamingContexts returns every mounted suffix, ordered deepest suffix
// first (the order Route scans them in; the order among suffixes of equal
// depth is not defined), used to populate the root DSE's namingContexts
// attribute.
func (n *Nexus) NamingContexts() []dn.DN {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]dn.DN, len(n.partitions))
	for i, m := range n.partitions {
		out[i] = m.suffix
	}
	return out
}

// IsRootDSE reports whether target names the root DSE: the empty DN,
// per spec.md §3 "Empty DN resolves to the root DSE".
func IsRootDSE(target dn.DN) bool { return target.IsRoot() }
