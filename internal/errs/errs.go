// Package errs defines the closed error taxonomy shared by every layer of
// the directory core and maps each kind onto its LDAPv3 result code, per
// RFC 4511 Section 4.1.9.
package errs

import "fmt"

// Kind identifies one entry in the closed taxonomy described in spec.md §7.
type Kind int

// Kinds, grouped the way RFC 4511 groups its result codes.
const (
	KindSuccess Kind = iota
	KindOperationsError
	KindProtocolError
	KindTimeLimitExceeded
	KindSizeLimitExceeded
	KindAdminLimitExceeded
	KindAuthMethodNotSupported
	KindInappropriateAuthentication
	KindInvalidCredentials
	KindInsufficientAccessRights
	KindUnwillingToPerform
	KindNamingViolation
	KindObjectClassViolation
	KindNotAllowedOnNonLeaf
	KindNotAllowedOnRDN
	KindEntryAlreadyExists
	KindUndefinedAttributeType
	KindInappropriateMatching
	KindConstraintViolation
	KindAttributeOrValueExists
	KindInvalidAttributeSyntax
	KindNoSuchAttribute
	KindNoSuchObject
	KindAliasProblem
	KindInvalidDNSyntax
	KindAliasDereferencingProblem
	KindCanceled
	KindReferral
)

// code returns the RFC 4511 numeric result code for a Kind.
func (k Kind) code() int {
	switch k {
	case KindSuccess:
		return 0
	case KindOperationsError:
		return 1
	case KindProtocolError:
		return 2
	case KindTimeLimitExceeded:
		return 3
	case KindSizeLimitExceeded:
		return 4
	case KindAdminLimitExceeded:
		return 11
	case KindAuthMethodNotSupported:
		return 7
	case KindInappropriateAuthentication:
		return 48
	case KindInvalidCredentials:
		return 49
	case KindInsufficientAccessRights:
		return 50
	case KindUnwillingToPerform:
		return 53
	case KindNamingViolation:
		return 64
	case KindObjectClassViolation:
		return 65
	case KindNotAllowedOnNonLeaf:
		return 66
	case KindNotAllowedOnRDN:
		return 67
	case KindEntryAlreadyExists:
		return 68
	case KindUndefinedAttributeType:
		return 17
	case KindInappropriateMatching:
		return 18
	case KindConstraintViolation:
		return 19
	case KindAttributeOrValueExists:
		return 20
	case KindInvalidAttributeSyntax:
		return 21
	case KindNoSuchAttribute:
		return 16
	case KindNoSuchObject:
		return 32
	case KindAliasProblem:
		return 33
	case KindInvalidDNSyntax:
		return 34
	case KindAliasDereferencingProblem:
		return 36
	case KindCanceled:
		return 118
	case KindReferral:
		return 10
	default:
		return 1
	}
}

// String names the Kind the way it is written in spec.md §6.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindOperationsError:
		return "operationsError"
	case KindProtocolError:
		return "protocolError"
	case KindTimeLimitExceeded:
		return "timeLimitExceeded"
	case KindSizeLimitExceeded:
		return "sizeLimitExceeded"
	case KindAdminLimitExceeded:
		return "adminLimitExceeded"
	case KindAuthMethodNotSupported:
		return "authMethodNotSupported"
	case KindInappropriateAuthentication:
		return "inappropriateAuthentication"
	case KindInvalidCredentials:
		return "invalidCredentials"
	case KindInsufficientAccessRights:
		return "insufficientAccessRights"
	case KindUnwillingToPerform:
		return "unwillingToPerform"
	case KindNamingViolation:
		return "namingViolation"
	case KindObjectClassViolation:
		return "objectClassViolation"
	case KindNotAllowedOnNonLeaf:
		return "notAllowedOnNonLeaf"
	case KindNotAllowedOnRDN:
		return "notAllowedOnRDN"
	case KindEntryAlreadyExists:
		return "entryAlreadyExists"
	case KindUndefinedAttributeType:
		return "undefinedAttributeType"
	case KindInappropriateMatching:
		return "inappropriateMatching"
	case KindConstraintViolation:
		return "constraintViolation"
	case KindAttributeOrValueExists:
		return "attributeOrValueExists"
	case KindInvalidAttributeSyntax:
		return "invalidAttributeSyntax"
	case KindNoSuchAttribute:
		return "noSuchAttribute"
	case KindNoSuchObject:
		return "noSuchObject"
	case KindAliasProblem:
		return "aliasProblem"
	case KindInvalidDNSyntax:
		return "invalidDNSyntax"
	case KindAliasDereferencingProblem:
		return "aliasDereferencingProblem"
	case KindCanceled:
		return "canceled"
	case KindReferral:
		return "referral"
	default:
		return "unknown"
	}
}

// Error is the directory core's single error type. Every layer (name
// parsing, schema, partition, search, interceptors) raises one of these
// rather than ad hoc sentinel values, so a caller one layer up can always
// recover the Kind with As/errors.As and map it onto a wire result code.
type Error struct {
	Kind      Kind
	Message   string
	MatchedDN string   // deepest existing ancestor of the failing DN, if known
	Referrals []string // ref URIs carried by a KindReferral error, per spec.md §4.6
	Cause     error
}

// New builds an Error with no matched DN or cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Referral builds a KindReferral error carrying the referral's URIs,
// per spec.md §4.6 "the server returns a referral response carrying the
// ref URLs".
func Referral(matchedDN string, uris []string) *Error {
	return &Error{Kind: KindReferral, Message: "referral", MatchedDN: matchedDN, Referrals: uris}
}

// Wrap builds an Error that chains an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// WithMatchedDN returns a copy of e carrying the given matched DN.
func (e *Error) WithMatchedDN(dn string) *Error {
	c := *e
	c.MatchedDN = dn
	return &c
}

func (e *Error) Error() string {
	if e.MatchedDN != "" {
		return fmt.Sprintf("%s: %s (matchedDN=%q)", e.Kind, e.Message, e.MatchedDN)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the chained cause to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// ResultCode returns the RFC 4511 numeric result code for the error's Kind.
func (e *Error) ResultCode() int { return e.Kind.code() }

// Is reports whether err carries the given Kind, looking through wrapping.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if ae, ok := err.(*Error); ok {
			e = ae
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return e != nil && e.Kind == kind
}
