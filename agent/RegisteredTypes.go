package agent

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/go-viper/mapstructure/v2"
)

// ErrUnknownType is returned when creating a Config for a Type which
// has not been registered
var ErrUnknownType = errors.New("unknown agent type")

// Type represents a specific type of an agent Config.
// Config's with this type can create Agents of the corresponding type.
type Type string

const (
	RandomSearch              Type = "RandomSearch"
	Constant                  Type = "Constant"
	GaussianActorCriticLinear Type = "GaussianActorCritic-Linear"
)

// Registered types with the package. Once a Type has been registered
// with this map, a Config with that type can be created.
//
// No Type's are registered wtih this package upon initialization.
// Each separate package is in charge of registering its Type with
// the package separately to avoid circular imports.
var registeredTypes = make(map[Type]Config)

// Register registers an agent's Type with its default Config. Configs
// created with NewConfig for agentType start from these defaults.
//
// Register panics if the default config is nil or a pointer, since
// the defaults are copied by value.
func Register(agentType Type, defaults Config) {
	if defaults == nil {
		panic(fmt.Sprintf("register: nil default config for %v", agentType))
	}
	if reflect.TypeOf(defaults).Kind() == reflect.Ptr {
		panic(fmt.Sprintf("register: default config for %v must not be "+
			"a pointer", agentType))
	}
	registeredTypes[agentType] = defaults
}

// Registered returns whether agentType has been registered
func Registered(agentType Type) bool {
	_, ok := registeredTypes[agentType]
	return ok
}

// Types returns all registered Types in sorted order
func Types() []Type {
	types := make([]Type, 0, len(registeredTypes))
	for t := range registeredTypes {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// NewConfig returns a Config for agentType, starting from the
// registered defaults and overriding them with settings. Keys of
// settings are matched case-insensitively against the fields of the
// concrete Config. Unknown keys are an error.
func NewConfig(agentType Type, settings map[string]any) (Config, error) {
	defaults, ok := registeredTypes[agentType]
	if !ok {
		return nil, fmt.Errorf("newConfig: %w %q", ErrUnknownType, agentType)
	}

	value := reflect.New(reflect.TypeOf(defaults))
	value.Elem().Set(reflect.ValueOf(defaults))
	cloneSlices(value.Elem())

	if len(settings) > 0 {
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           value.Interface(),
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		})
		if err != nil {
			return nil, fmt.Errorf("newConfig: %w", err)
		}
		if err := decoder.Decode(settings); err != nil {
			return nil, fmt.Errorf("newConfig: could not decode %v "+
				"settings: %w", agentType, err)
		}
	}

	config := value.Elem().Interface().(Config)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("newConfig: invalid %v config: %w",
			agentType, err)
	}
	return config, nil
}

// cloneSlices replaces each slice field of the struct v with a copy so
// that decoding into v never writes through to the registered defaults
func cloneSlices(v reflect.Value) {
	if v.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if field.Kind() != reflect.Slice || field.IsNil() ||
			!field.CanSet() {
			continue
		}
		clone := reflect.MakeSlice(field.Type(), field.Len(), field.Len())
		reflect.Copy(clone, field)
		field.Set(clone)
	}
}
