package domain

// Accessor is anything that can reach a domain: the domain itself, the
// embeddable bases below, and controllers that hold a reference.
type Accessor interface {
	Domain() *Domain
}

// Lifecycle is the one-time setup/teardown pair run by the domain.
type Lifecycle interface {
	Initialize()
	Uninitialize()
}

// Binder receives the back-reference to the domain it is registered in or
// dispatched through.
type Binder interface {
	SetDomain(d *Domain)
}

// System holds cross-cutting logic. It may read models and utilities,
// subscribe to and send events. Embed BaseSystem and implement Initialize.
type System interface {
	Accessor
	Binder
	Lifecycle
	isSystem()
}

// Model owns one slice of state. It may read utilities and send events.
// Embed BaseModel and implement Initialize.
type Model interface {
	Accessor
	Binder
	Lifecycle
	isModel()
}

// Utility is a passive helper with no lifecycle. Embed BaseUtility.
type Utility interface {
	isUtility()
}

type bound struct {
	domain *Domain
}

// SetDomain stores the back-reference.
func (b *bound) SetDomain(d *Domain) { b.domain = d }

// Domain returns the domain set by SetDomain, or nil.
func (b *bound) Domain() *Domain { return b.domain }

// BaseSystem implements everything a System needs except Initialize.
type BaseSystem struct {
	bound
}

// Uninitialize is a no-op; override to release resources on teardown.
func (*BaseSystem) Uninitialize() {}

func (*BaseSystem) isSystem() {}

// BaseModel implements everything a Model needs except Initialize.
type BaseModel struct {
	bound
}

// Uninitialize is a no-op; override to release resources on teardown.
func (*BaseModel) Uninitialize() {}

func (*BaseModel) isModel() {}

// BaseUtility marks a type as a Utility.
type BaseUtility struct{}

func (BaseUtility) isUtility() {}
