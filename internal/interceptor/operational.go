package interceptor

import (
	"time"

	"github.com/obadir/oba/internal/entry"
)

// timestampLayout is the LDAP generalizedTime form spec.md §4.5 stage 8
// stamps on createTimestamp/modifyTimestamp, matching entry.CSN's own
// UTC "Z" rendering.
const timestampLayout = "20060102150405Z"

// operationalAttributesStage is spec.md §4.5 stage 8: stamps
// creatorsName/createTimestamp on Add and modifiersName/modifyTimestamp
// on Modify. entryUUID and entryCSN are stamped one layer
// deeper, by internal/partition itself at the point an ID is allocated,
// since a Partition is the only component that knows the replica's CSN
// generator; this stage owns the two attributes that depend on the
// calling principal instead.
type operationalAttributesStage struct{}

// NewOperationalAttributesStage constructs the Operational Attributes
// interceptor.
func NewOperationalAttributesStage() Interceptor {
	return &operationalAttributesStage{}
}

func (s *operationalAttributesStage) Name() string { return "operationalattributes" }

func (s *operationalAttributesStage) Handle(ctx *OperationContext, next Next) error {
	now := time.Now().UTC().Format(timestampLayout)
	principal := ctx.Principal.String()

	switch ctx.Op {
	case OpAdd:
		if ctx.NewEntry.Get("creatorsName") == nil {
			ctx.NewEntry.Add("creatorsName", entry.NewTextValue(principal))
		}
		if ctx.NewEntry.Get("createTimestamp") == nil {
			ctx.NewEntry.Add("createTimestamp", entry.NewTextValue(now))
		}
		ctx.NewEntry.Replace("modifiersName", entry.NewTextValue(principal))
		ctx.NewEntry.Replace("modifyTimestamp", entry.NewTextValue(now))

	case OpModify:
		ctx.Mods = append(ctx.Mods,
			entry.Modification{Op: entry.ModReplace, Attribute: "modifiersName", Values: []entry.Value{entry.NewTextValue(principal)}},
			entry.Modification{Op: entry.ModReplace, Attribute: "modifyTimestamp", Values: []entry.Value{entry.NewTextValue(now)}},
		)
	}
	return next()
}
