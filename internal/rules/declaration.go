package rules

// Family identifies an IP address family.
type Family int

const (
	FamilyIPv4 Family = 4
	FamilyIPv6 Family = 6
)

// String returns the conventional short name for the family.
func (f Family) String() string {
	if f == FamilyIPv6 {
		return "ipv6"
	}
	return "ipv4"
}

// Declaration is a single caller-specified firewall rule description before
// family resolution. String fields use "" to mean "not set"; unset fields are
// omitted during rendering, never rendered literally. Address fields may hold
// plain addresses, CIDRs, explicit ranges (a-b), or comma-joined lists of
// those inside a single element.
type Declaration struct {
	Title                  string
	Action                 string
	Chain                  string
	Comment                string
	Destination            []string
	DestinationPort        string
	IncomingInterface      string
	OutgoingInterface      string
	LogLevel               string
	LogPrefix              string
	Limit                  string
	LimitBurst             int
	Order                  string
	Priority               string // Deprecated: alias of Order
	Protocol               string
	Raw                    string
	RawAfter               string
	RejectWith             string
	Source                 []string
	SourcePort             string
	State                  []string
	StrictProtocolChecking *bool // nil means default (true)
	Table                  string
	ToPort                 string
	Version                string
}

// RuleOptions is the family-scoped, fully-resolved output record handed to an
// Emitter. Source and Destination hold only the addresses of the emitted
// family; Order carries the effective ordering key with the deprecated
// priority alias already folded in.
type RuleOptions struct {
	Action                 string
	Chain                  string
	Comment                string
	Destination            []string
	DestinationPort        string
	IncomingInterface      string
	OutgoingInterface      string
	LogLevel               string
	LogPrefix              string
	Limit                  string
	LimitBurst             int
	Order                  string
	Protocol               string
	Raw                    string
	RawAfter               string
	RejectWith             string
	Source                 []string
	SourcePort             string
	State                  []string
	StrictProtocolChecking bool
	Table                  string
	ToPort                 string
}

// Emitter receives the per-family output of rule processing. Activate is an
// idempotent request to bring a family's rule-file infrastructure under
// management; it may be called redundantly for every declaration. Emit hands
// over one family-scoped record for rendering.
type Emitter interface {
	Activate(family Family)
	Emit(title string, family Family, opts RuleOptions) error
}
