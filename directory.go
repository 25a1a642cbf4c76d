// Package oba is the directory core's single entry point: it owns the
// Schema Registry, Partition Nexus, Interceptor Chain and Operation
// Manager and wires them into one DirectoryService value a caller
// constructs once and shares across every connection, per spec.md §9
// DESIGN NOTES: "Global mutable state... encapsulate in a
// DirectoryService value owned by the Operation Manager; caches live in
// the nexus with their own locks."
package oba

import (
	"github.com/obadir/oba/internal/acl"
	"github.com/obadir/oba/internal/authn"
	"github.com/obadir/oba/internal/changelog"
	"github.com/obadir/oba/internal/config"
	"github.com/obadir/oba/internal/crypto"
	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/entry"
	"github.com/obadir/oba/internal/errs"
	"github.com/obadir/oba/internal/interceptor"
	"github.com/obadir/oba/internal/logging"
	"github.com/obadir/oba/internal/nexus"
	"github.com/obadir/oba/internal/partition"
	"github.com/obadir/oba/internal/password"
	"github.com/obadir/oba/internal/referral"
	"github.com/obadir/oba/internal/schema"
	"github.com/obadir/oba/internal/session"
)

// DirectoryService is the directory core's single constructed instance:
// one Schema Registry, one Nexus (mounting every configured Partition),
// one 13-stage Interceptor Chain, and the Operation Manager front-ending
// them. A caller builds requests through its Manager; it never reaches
// a Partition or the Nexus directly.
type DirectoryService struct {
	Registry *schema.Registry
	Nexus    *nexus.Nexus
	Manager  *session.Manager

	ACL       *acl.Manager
	Lockout   *authn.LockoutRegistry
	Referrals *referral.Tree
	Subentry  *interceptor.SubentryStore
	Events    *interceptor.EventBroker
	Triggers  *interceptor.TriggerRegistry
	ChangeLog *changelog.Log

	Logger logging.Logger
}

// Open constructs a DirectoryService from cfg: it bootstraps the schema
// registry, mounts a single Partition at cfg.Directory.BaseDN, loads the
// ACL file (if configured), and assembles the full stage-1-through-13
// Interceptor Chain spec.md §4.5 describes, in its canonical order.
func Open(cfg config.Config) (*DirectoryService, error) {
	logger := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: cfg.Logging.Output})

	registry := schema.Bootstrap()

	base, err := dn.Parse(cfg.Directory.BaseDN)
	if err != nil {
		return nil, errs.Wrap(errs.KindInvalidDNSyntax, "parsing directory.baseDN", err)
	}

	indexed := []string{"objectClass", "uid", "cn", "sn", "mail"}
	replicaID := cfg.Server.Address
	if replicaID == "" {
		replicaID = "oba-0"
	}
	p := partition.NewPartition(base, registry, replicaID, indexed)
	if cfg.Storage.EncryptionKeyFile != "" {
		key, err := crypto.LoadKeyFromFile(cfg.Storage.EncryptionKeyFile)
		if err != nil {
			return nil, errs.Wrap(errs.KindOperationsError, "loading storage encryption key", err)
		}
		p = p.WithEncryption(key)
	}

	nx := nexus.New(registry)
	if err := nx.Mount(base, p); err != nil {
		return nil, err
	}

	if err := seedRoot(p, cfg); err != nil {
		return nil, err
	}

	aclMgr, err := acl.NewManager(cfg.ACLFile, registry, logger.Slog())
	if err != nil {
		return nil, err
	}

	lockoutPolicy := authn.LockoutPolicy{
		MaxFailures:     cfg.Security.RateLimit.MaxAttempts,
		LockoutDuration: cfg.Security.RateLimit.LockoutDuration,
	}
	lockout := authn.NewLockoutRegistry(lockoutPolicy, registry)

	referrals := referral.NewTree(registry)
	subentryStore := interceptor.NewSubentryStore(registry)
	events := interceptor.NewEventBroker()
	triggers := interceptor.NewTriggerRegistry()
	changes := changelog.New()

	var rootDN dn.DN
	if cfg.Directory.RootDN != "" {
		rootDN, err = dn.Parse(cfg.Directory.RootDN)
		if err != nil {
			return nil, errs.Wrap(errs.KindInvalidDNSyntax, "parsing directory.rootDN", err)
		}
	}
	authzPolicy := interceptor.NewAuthorizationPolicy(rootDN, false, dn.Comparator(registry))

	var pwPolicy *password.Validator
	if cfg.Security.PasswordPolicy.Enabled {
		pwPolicy = password.NewValidator(&password.Policy{
			Enabled:          true,
			MinLength:        cfg.Security.PasswordPolicy.MinLength,
			RequireUppercase: cfg.Security.PasswordPolicy.RequireUppercase,
			RequireLowercase: cfg.Security.PasswordPolicy.RequireLowercase,
			RequireDigit:     cfg.Security.PasswordPolicy.RequireDigit,
			RequireSpecial:   cfg.Security.PasswordPolicy.RequireSpecial,
			MaxAge:           cfg.Security.PasswordPolicy.MaxAge,
			HistoryCount:     cfg.Security.PasswordPolicy.HistoryCount,
		})
	}

	chain := interceptor.NewChain(
		interceptor.NewNormalizationStage(registry),
		interceptor.NewAuthenticationStage(nx, lockout),
		interceptor.NewReferralStage(referrals),
		interceptor.NewAccessControlStage(aclMgr),
		interceptor.NewDefaultAuthorizationStage(authzPolicy),
		interceptor.NewExceptionStage(nx),
		interceptor.NewSchemaStage(registry, pwPolicy),
		interceptor.NewOperationalAttributesStage(),
		interceptor.NewSubentryStage(subentryStore),
		interceptor.NewCollectiveAttributesStage(subentryStore),
		interceptor.NewChangeLogStage(nx, changes),
		interceptor.NewEventStage(events),
		interceptor.NewTriggerStage(triggers),
	)

	mgr := session.NewManager(nx, chain, registry)

	return &DirectoryService{
		Registry:  registry,
		Nexus:     nx,
		Manager:   mgr,
		ACL:       aclMgr,
		Lockout:   lockout,
		Referrals: referrals,
		Subentry:  subentryStore,
		Events:    events,
		Triggers:  triggers,
		ChangeLog: changes,
		Logger:    logger,
	}, nil
}

// seedRoot ensures the suffix entry and, if configured, a root
// administrator entry exist, so a freshly opened DirectoryService is
// immediately bindable per spec.md §8's end-to-end scenarios.
func seedRoot(p *partition.Partition, cfg config.Config) error {
	if p.HasEntry(p.Suffix) {
		return nil
	}
	root := newOrgEntry(p.Suffix)
	if err := p.Add(root); err != nil {
		return err
	}
	if cfg.Directory.RootDN == "" {
		return nil
	}
	rootDN, err := dn.Parse(cfg.Directory.RootDN)
	if err != nil {
		return errs.Wrap(errs.KindInvalidDNSyntax, "parsing directory.rootDN", err)
	}
	if p.HasEntry(rootDN) {
		return nil
	}
	admin := newAdminEntry(rootDN, cfg.Directory.RootPassword)
	return p.Add(admin)
}

// buildEntry constructs a new entry at d whose naming attribute (the
// RDN's own type/value) is populated alongside the given objectClasses,
// per spec.md §4.2 "every entry's RDN attribute must also appear as a
// value of that attribute."
func buildEntry(d dn.DN, objectClasses []string) *entry.Entry {
	e := entry.New(d)
	ocValues := make([]entry.Value, len(objectClasses))
	for i, oc := range objectClasses {
		ocValues[i] = entry.NewTextValue(oc)
	}
	e.Add("objectClass", ocValues...)
	if leaf, ok := d.RDNAt(0); ok {
		for _, atv := range leaf {
			e.Add(atv.Type, entry.NewTextValue(atv.Value))
		}
	}
	return e
}

func newOrgEntry(d dn.DN) *entry.Entry {
	return buildEntry(d, []string{"top", "organization"})
}

func newAdminEntry(d dn.DN, plaintext string) *entry.Entry {
	e := buildEntry(d, []string{"top", "organizationalRole"})
	if plaintext != "" {
		if hash, err := authn.HashPassword(plaintext); err == nil {
			e.Add("userPassword", entry.NewTextValue(hash))
		}
	}
	return e
}
