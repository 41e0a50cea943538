// Package config binds property bags into typed configuration structs.
//
// A [Factory] is created from one immutable [properties.Bag]. Configuration
// classes are registered with a prefix; [Factory.Validate] then resolves,
// coerces and constraint-checks every registered class and returns one batch
// of errors and warnings.
//
// # Declaring a class
//
// Defaults are the field values of the registered struct. Property keys,
// legacy keys, deprecation and constraints come from struct tags:
//
//	type HTTPConfig struct {
//		Port    int           `config:"port" legacy:"http-port" validate:"min=1,max=65535"`
//		Timeout time.Duration `config:"idle-timeout,deprecated"`
//	}
//
//	func (HTTPConfig) DefunctProperties() []string { return []string{"max-threads"} }
//
// # Binding
//
//	http := HTTPConfig{Port: 8080, Timeout: time.Minute}
//
//	factory := config.NewFactory(bag, config.NewLogMonitor(log.Logger))
//	if err := factory.Register(&http, "http"); err != nil {
//	    // the class itself is malformed
//	}
//	if err := factory.Validate().Err(); err != nil {
//	    // err is a *problems.CreationError listing errors and warnings
//	}
//
// A class is written back to its target only when it produced no errors.
// Constraint validation is skipped for a class whose keys already failed to
// resolve or coerce.
//
// # Messages
//
// Errors:
//
//	Defunct property '<key>' (<class>)
//	Configuration property '<alias>' conflicts with property '<current>' (<class>)
//	Invalid value '<raw>' for type <type> (property '<key>') (<class>)
//	Invalid configuration property <key>: <violation> (<class>)
//
// Warnings:
//
//	Configuration property '<alias>' has been replaced. Use '<current>' instead.
//	Configuration property '<key>' is deprecated and should not be used
//
// # Used properties
//
// Every key matched to a property is recorded, including keys whose value
// failed to coerce. [Factory.UsedProperties] and [Factory.UnusedProperties]
// expose the result; [Factory.ValidateStrict] turns unused keys into errors.
package config
