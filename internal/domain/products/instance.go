package products

type InstanceState int

const (
	InstanceUnset InstanceState = iota
	InstanceCreated
	InstanceInProduction
	InstanceSuccess
	InstanceFailure
)

func (s InstanceState) String() string {
	switch s {
	case InstanceUnset:
		return "Unset"
	case InstanceCreated:
		return "Created"
	case InstanceInProduction:
		return "InProduction"
	case InstanceSuccess:
		return "Success"
	case InstanceFailure:
		return "Failure"
	default:
		return "Unknown"
	}
}

// ProductInstance is one produced or used occurrence of a product type.
type ProductInstance interface {
	Instance() *InstanceBase
	Kind() string
}

// InstanceBase is shared by every instance kind. Identity is an optional
// application identity such as a serial number.
type InstanceBase struct {
	ID       int64
	Type     ProductType
	Identity string
	State    InstanceState
	Version  int64
}

func (i *InstanceBase) Instance() *InstanceBase { return i }

// GenericInstance is the instance kind for types without instance state.
type GenericInstance struct {
	InstanceBase
}

const KindGenericInstance = "GenericInstance"

func (*GenericInstance) Kind() string { return KindGenericInstance }

// Instantiator is implemented by product types that create their own
// instance kind.
type Instantiator interface {
	CreateInstance() ProductInstance
}

// NewInstance creates an unsaved instance of t.
func NewInstance(t ProductType) ProductInstance {
	var inst ProductInstance
	if factory, ok := t.(Instantiator); ok {
		inst = factory.CreateInstance()
	}
	if inst == nil {
		inst = &GenericInstance{}
	}
	base := inst.Instance()
	base.Type = t
	base.State = InstanceCreated
	return inst
}
